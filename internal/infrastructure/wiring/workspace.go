package wiring

import (
	"net/url"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/tracker"
	"github.com/felixgeelhaar/pulse/pkg/application"
	"github.com/felixgeelhaar/pulse/pkg/domain/events"
	"github.com/felixgeelhaar/pulse/pkg/domain/velocity"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// PrefGitLabURL is the preference key holding the tracker base URL.
const PrefGitLabURL = "gitlab_url"

// DefaultHost is the token key used when no base URL preference is set.
const DefaultHost = "gitlab.com"

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Store      *storage.FilesystemStore
	Dispatcher *events.Dispatcher
	Cache      *velocity.Cache
}

func NewWorkspace(root string) *Workspace {
	return &Workspace{
		Store:      storage.NewFilesystemStore(root),
		Dispatcher: events.NewDispatcher(),
		Cache:      velocity.NewCache(0),
	}
}

// LoadFetcher builds a GitLab fetcher from the stored token and base URL
// preference. Returns nil when no usable token is configured, which keeps
// every offline command working against the persisted snapshot.
func LoadFetcher(store *storage.FilesystemStore, log zerolog.Logger) (application.Fetcher, error) {
	tokens, err := store.LoadTokens()
	if err != nil {
		return nil, err
	}
	prefs, err := store.LoadPreferences()
	if err != nil {
		return nil, err
	}

	baseURL := prefs[PrefGitLabURL]
	host := DefaultHost
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
			host = u.Host
		}
	}

	token := tokens[host]
	if token == "" || application.IsMaskedToken(token) {
		return nil, nil
	}
	return tracker.NewGitLabFetcher(baseURL, token, log)
}
