package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/storage"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the envelope format version.
const BackupVersion = "1.0.0"

// AppVersion stamps backups with the producing build.
var AppVersion = "0.1.0"

// backupCategories are the base keys a backup walks; scoped variants are
// discovered by prefix.
var backupCategories = []string{
	storage.KeyHealth,
	storage.KeyVelocity,
	storage.KeyCapacity,
	storage.KeyTeam,
	storage.KeyAbsences,
	storage.KeyOverrides,
	storage.KeyStakeholders,
	storage.KeyDocuments,
	storage.KeyDecisions,
	storage.KeyRecords,
	storage.KeyPreferences,
	storage.KeyBacklogHistory,
	storage.KeyTokens,
}

// BackupMetadata is the envelope header.
type BackupMetadata struct {
	Version        string   `json:"version"`
	Timestamp      string   `json:"timestamp"`
	AppVersion     string   `json:"appVersion"`
	BackupType     string   `json:"backupType"`
	IncludedData   []string `json:"includedData"`
	TokensIncluded bool     `json:"tokensIncluded"`
	ItemCount      int      `json:"itemCount"`
}

// BackupDocument is the full backup envelope. Data values are the raw
// stored category text, keyed by store key.
type BackupDocument struct {
	Metadata BackupMetadata    `json:"metadata"`
	Data     map[string]string `json:"data"`
}

// RestorePolicy decides how restored categories meet existing ones.
type RestorePolicy string

const (
	PolicyOverwrite     RestorePolicy = "overwrite"
	PolicySkipIfPresent RestorePolicy = "skip-if-present"
	PolicyMerge         RestorePolicy = "merge"
)

// backupSchema validates the envelope shape before restore touches the
// store.
const backupSchema = `{
  "type": "object",
  "required": ["metadata", "data"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["version", "timestamp", "includedData", "tokensIncluded", "itemCount"],
      "properties": {
        "version": {"type": "string", "pattern": "^\\d+\\.\\d+\\.\\d+$"},
        "timestamp": {"type": "string"},
        "appVersion": {"type": "string"},
        "backupType": {"type": "string"},
        "includedData": {"type": "array", "items": {"type": "string"}},
        "tokensIncluded": {"type": "boolean"},
        "itemCount": {"type": "integer", "minimum": 0}
      }
    },
    "data": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

// BackupService serializes the store into a portable document and
// restores it per category.
type BackupService struct {
	store *storage.FilesystemStore
}

func NewBackupService(store *storage.FilesystemStore) *BackupService {
	return &BackupService{store: store}
}

// Create walks every category and its scoped variants into a backup
// document. Tokens are masked unless includeTokens is set.
func (s *BackupService) Create(includeTokens bool) (*BackupDocument, error) {
	doc := &BackupDocument{
		Metadata: BackupMetadata{
			Version:        BackupVersion,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			AppVersion:     AppVersion,
			BackupType:     "plain",
			TokensIncluded: includeTokens,
		},
		Data: map[string]string{},
	}

	included := map[string]bool{}
	for _, base := range backupCategories {
		keys, err := s.store.KeysWithPrefix(base)
		if err != nil {
			return nil, fmt.Errorf("failed to walk category %s: %w", base, err)
		}
		for _, key := range keys {
			data, err := s.store.Get(key)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", key, err)
			}
			value := string(data)
			if base == storage.KeyTokens && !includeTokens {
				value, err = maskTokens(value)
				if err != nil {
					return nil, fmt.Errorf("failed to mask tokens in %s: %w", key, err)
				}
			}
			doc.Data[key] = value
			included[base] = true
		}
	}

	for _, base := range backupCategories {
		if included[base] {
			doc.Metadata.IncludedData = append(doc.Metadata.IncludedData, base)
		}
	}
	doc.Metadata.ItemCount = len(doc.Data)
	return doc, nil
}

// Marshal renders the document as indented JSON.
func (d *BackupDocument) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Validate checks raw backup JSON against the envelope schema and
// returns the decoded document. A version with a different major.minor
// yields a warning, not an error.
func (s *BackupService) Validate(raw []byte) (*BackupDocument, []string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(backupSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate backup: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, nil, fmt.Errorf("backup document is malformed: %s", strings.Join(details, "; "))
	}

	var doc BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode backup: %w", err)
	}

	var warnings []string
	if !sameMinor(doc.Metadata.Version, BackupVersion) {
		warnings = append(warnings,
			fmt.Sprintf("backup version %s differs from supported %s, restoring anyway", doc.Metadata.Version, BackupVersion))
	}
	return &doc, warnings, nil
}

// Restore writes the document's categories into the store under the
// given policy. Category selection is optional; empty means all.
func (s *BackupService) Restore(doc *BackupDocument, policy RestorePolicy, categories []string) error {
	selected := map[string]bool{}
	for _, c := range categories {
		selected[c] = true
	}

	for key, value := range doc.Data {
		if len(selected) > 0 && !selected[baseCategory(key)] {
			continue
		}

		switch policy {
		case PolicyOverwrite:
			if err := s.store.Put(key, []byte(value)); err != nil {
				return err
			}
		case PolicySkipIfPresent:
			if _, err := s.store.Get(key); err == nil {
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := s.store.Put(key, []byte(value)); err != nil {
				return err
			}
		case PolicyMerge:
			if err := s.merge(key, value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown restore policy: %q", policy)
		}
	}
	return nil
}

// merge appends list-valued categories onto the stored list without
// deduplication. Non-list categories keep their existing value and are
// written only when absent.
func (s *BackupService) merge(key, value string) error {
	existing, err := s.store.Get(key)
	if errors.Is(err, os.ErrNotExist) {
		return s.store.Put(key, []byte(value))
	}
	if err != nil {
		return err
	}

	var current, incoming []any
	if yaml.Unmarshal(existing, &current) != nil || yaml.Unmarshal([]byte(value), &incoming) != nil {
		return nil
	}
	if current == nil || incoming == nil {
		return nil
	}

	merged, err := yaml.Marshal(append(current, incoming...))
	if err != nil {
		return fmt.Errorf("failed to merge %s: %w", key, err)
	}
	return s.store.Put(key, merged)
}

// maskTokens replaces each token value with its first and last four
// characters around a *** marker, so the restore path can detect that
// re-entry is needed.
func maskTokens(raw string) (string, error) {
	tokens := map[string]string{}
	if err := yaml.Unmarshal([]byte(raw), &tokens); err != nil {
		return "", err
	}
	for host, token := range tokens {
		tokens[host] = MaskToken(token)
	}
	masked, err := yaml.Marshal(tokens)
	if err != nil {
		return "", err
	}
	return string(masked), nil
}

// MaskToken renders a credential as AAAA***ZZZZ. Short tokens mask
// entirely.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***" + token[len(token)-4:]
}

// IsMaskedToken reports whether a stored token is a mask needing
// re-entry.
func IsMaskedToken(token string) bool {
	return strings.Contains(token, "***")
}

// sameMinor reports whether two semantic versions share major.minor.
func sameMinor(a, b string) bool {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	if len(pa) < 2 || len(pb) < 2 {
		return false
	}
	return pa[0] == pb[0] && pa[1] == pb[1]
}

// baseCategory strips scope suffixes back to the base key.
func baseCategory(key string) string {
	for _, base := range backupCategories {
		if key == base || strings.HasPrefix(key, base+"_") {
			return base
		}
	}
	return key
}
