package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/pulse/internal/logger"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

func loadServices(root string) (*wiring.AppServices, error) {
	services, loadErr := wiring.BuildAppServices(root, logger.New(verbose, true))
	if services == nil {
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", loadErr)
	}
	return services, nil
}

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(root)
}

// currentScope resolves the --project/--pod flags into a storage scope.
func currentScope() storage.Scope {
	return storage.Scope{ProjectID: scopeProject, PodID: scopePod}
}

func loadSnapshot(services *wiring.AppServices) (*tracker.Snapshot, error) {
	snap, err := services.Snapshot.Load()
	if err != nil {
		return nil, MapError(err)
	}
	return snap, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
