package application

import (
	"reflect"
	"strings"
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

func seedStore(t *testing.T) *storage.FilesystemStore {
	t.Helper()
	store := newTestStore(t)

	roster := &team.Config{Members: []team.Member{{Username: "alice", WeeklyCapacity: 40}}}
	if err := store.SaveTeam(storage.Scope{ProjectID: "42"}, roster); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveAbsences(storage.Global, []team.Absence{{Username: "alice", HoursPerDay: 8}}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveTokens(map[string]string{"gitlab.example.com": "glpat-0123456789abcdef"}); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestBackupRoundTrip(t *testing.T) {
	source := seedStore(t)
	doc, err := NewBackupService(source).Create(true)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Metadata.Version != BackupVersion {
		t.Errorf("Version = %q, want %q", doc.Metadata.Version, BackupVersion)
	}
	if doc.Metadata.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", doc.Metadata.ItemCount)
	}
	for _, want := range []string{"team", "absences", "tokens"} {
		found := false
		for _, c := range doc.Metadata.IncludedData {
			found = found || c == want
		}
		if !found {
			t.Errorf("IncludedData missing %q: %v", want, doc.Metadata.IncludedData)
		}
	}

	// restore into a fresh store and compare every key
	target := newTestStore(t)
	if err := NewBackupService(target).Restore(doc, PolicyOverwrite, nil); err != nil {
		t.Fatal(err)
	}

	sourceKeys, _ := source.Keys()
	targetKeys, _ := target.Keys()
	if !reflect.DeepEqual(sourceKeys, targetKeys) {
		t.Fatalf("restored keys = %v, want %v", targetKeys, sourceKeys)
	}
	for _, key := range sourceKeys {
		want, _ := source.Get(key)
		got, err := target.Get(key)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(want) {
			t.Errorf("restored %s = %q, want %q", key, got, want)
		}
	}
}

func TestBackup_MasksTokens(t *testing.T) {
	doc, err := NewBackupService(seedStore(t)).Create(false)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Metadata.TokensIncluded {
		t.Error("TokensIncluded = true, want false")
	}
	tokens := doc.Data["tokens"]
	if strings.Contains(tokens, "glpat-0123456789abcdef") {
		t.Errorf("backup leaked raw token: %q", tokens)
	}
	if !strings.Contains(tokens, "glpa***cdef") {
		t.Errorf("tokens = %q, want masked form glpa***cdef", tokens)
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("glpat-0123456789abcdef"); got != "glpa***cdef" {
		t.Errorf("MaskToken() = %q, want %q", got, "glpa***cdef")
	}
	if got := MaskToken("short"); got != "***" {
		t.Errorf("MaskToken(short) = %q, want ***", got)
	}
	if !IsMaskedToken("glpa***cdef") || IsMaskedToken("glpat-0123456789abcdef") {
		t.Error("IsMaskedToken misclassified")
	}
}

func TestRestore_SkipIfPresent(t *testing.T) {
	doc, err := NewBackupService(seedStore(t)).Create(true)
	if err != nil {
		t.Fatal(err)
	}

	target := newTestStore(t)
	if err := target.Put("absences", []byte("existing")); err != nil {
		t.Fatal(err)
	}
	if err := NewBackupService(target).Restore(doc, PolicySkipIfPresent, nil); err != nil {
		t.Fatal(err)
	}

	kept, _ := target.Get("absences")
	if string(kept) != "existing" {
		t.Errorf("skip-if-present overwrote existing value: %q", kept)
	}
	if _, err := target.Get("team_42"); err != nil {
		t.Errorf("missing key should be restored: %v", err)
	}
}

func TestRestore_MergeAppendsLists(t *testing.T) {
	source := seedStore(t)
	doc, err := NewBackupService(source).Create(true)
	if err != nil {
		t.Fatal(err)
	}

	target := newTestStore(t)
	if err := target.SaveAbsences(storage.Global, []team.Absence{{Username: "bob", HoursPerDay: 4}}); err != nil {
		t.Fatal(err)
	}
	if err := NewBackupService(target).Restore(doc, PolicyMerge, []string{"absences"}); err != nil {
		t.Fatal(err)
	}

	absences, err := target.LoadAbsences(storage.Global)
	if err != nil {
		t.Fatal(err)
	}
	if len(absences) != 2 {
		t.Fatalf("merged absences = %d, want 2 (no dedup)", len(absences))
	}
	if absences[0].Username != "bob" || absences[1].Username != "alice" {
		t.Errorf("merge order = %s, %s, want existing first", absences[0].Username, absences[1].Username)
	}

	// category filter kept the rest out
	if _, err := target.Get("team_42"); err == nil {
		t.Error("unselected category was restored")
	}
}

func TestValidate_VersionWarning(t *testing.T) {
	svc := NewBackupService(seedStore(t))
	doc, err := svc.Create(true)
	if err != nil {
		t.Fatal(err)
	}

	doc.Metadata.Version = "1.1.0"
	raw, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded, warnings, err := svc.Validate(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one version warning", warnings)
	}
	if decoded.Metadata.Version != "1.1.0" {
		t.Errorf("Version = %q, want 1.1.0", decoded.Metadata.Version)
	}
}

func TestValidate_RejectsMalformed(t *testing.T) {
	svc := NewBackupService(newTestStore(t))

	if _, _, err := svc.Validate([]byte(`{"data": {}}`)); err == nil {
		t.Error("envelope without metadata should be rejected")
	}
	if _, _, err := svc.Validate([]byte(`{"metadata": {"version": "x", "timestamp": "t", "includedData": [], "tokensIncluded": false, "itemCount": 0}, "data": {}}`)); err == nil {
		t.Error("non-semver version should be rejected")
	}
}
