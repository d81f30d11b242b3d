// Command loanform is the MSME loan application intake CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/loanform/internal/adapters/driven/config/file"
	"github.com/custodia-labs/loanform/internal/adapters/driven/extractor/keyvalue"
	"github.com/custodia-labs/loanform/internal/adapters/driven/extractor/remote"
	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/bolt"
	filestore "github.com/custodia-labs/loanform/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/loanform/internal/adapters/driving/cli"
	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
	"github.com/custodia-labs/loanform/internal/core/services"
	"github.com/custodia-labs/loanform/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		logger.Error("loading config: %v", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		logger.Error("reading settings: %v", err)
		return err
	}

	app, closeStores, err := buildApplicationService(settings)
	if err != nil {
		logger.Error("%v", err)
		return err
	}
	defer closeStores()

	cli.SetVersion(version)
	cli.SetServices(app, settingsService)
	return cli.Execute()
}

// stores holds the persistence adapters for one backend.
type stores struct {
	sessions driven.SessionStore
	apps     driven.ApplicationStore
	blobs    driven.BlobStore
	close    func()
}

// buildApplicationService wires the application service from settings.
// The returned function releases the storage backend.
func buildApplicationService(settings *domain.AppSettings) (*services.ApplicationService, func(), error) {
	st, err := openStores(settings.Storage)
	if err != nil {
		return nil, nil, err
	}

	registry, err := buildExtractors(settings.Extraction)
	if err != nil {
		st.close()
		return nil, nil, err
	}

	mapping, err := file.LoadFieldMapping(settings.Extraction.MappingFile)
	if err != nil {
		st.close()
		return nil, nil, fmt.Errorf("loading field mapping: %w", err)
	}

	app := services.NewApplicationService(
		st.sessions,
		st.apps,
		st.blobs,
		registry,
		services.NewReconciler(mapping),
		services.ApplicationOptions{
			Autosave:      settings.Application.Autosave,
			InsertOnStale: settings.Application.InsertOnStale,
		},
	)
	return app, st.close, nil
}

func openStores(cfg domain.StorageSettings) (*stores, error) {
	if cfg.Backend == domain.StorageMemory {
		logger.Debug("using in-memory storage")
		return &stores{
			sessions: memory.NewSessionStore(),
			apps:     memory.NewApplicationStore(),
			blobs:    memory.NewBlobStore(),
			close:    func() {},
		}, nil
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".loanform", "data")
	}

	sessions, err := filestore.NewSessionStore(filepath.Join(dataDir, "sessions"))
	if err != nil {
		return nil, err
	}
	blobs, err := filestore.NewBlobStore(filepath.Join(dataDir, "uploads"))
	if err != nil {
		return nil, err
	}

	st := &stores{sessions: sessions, blobs: blobs}
	switch cfg.Backend {
	case domain.StorageBolt:
		db, err := bolt.NewStore(dataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("using bolt storage at %s", db.Path())
		st.apps = db
		st.close = closer("bolt", db.Close)
	case domain.StorageSQLite:
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("using sqlite storage at %s", db.Path())
		st.apps = db.ApplicationStore()
		st.close = closer("sqlite", db.Close)
	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
	return st, nil
}

func buildExtractors(cfg domain.ExtractionSettings) (*services.ExtractorRegistry, error) {
	registry := services.NewExtractorRegistry(
		keyvalue.NewTextExtractor(),
		keyvalue.NewDocxExtractor(),
	)

	if err := keyvalue.CheckAvailable(); err == nil {
		registry.Register(keyvalue.NewPDFExtractor())
	} else {
		logger.Debug("PDF extraction disabled: %v", err)
	}

	if cfg.Mode == domain.ExtractionRemote {
		ext, err := remote.New(remote.Config{
			Endpoint:          cfg.Endpoint,
			APIKey:            cfg.APIKey,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring remote extraction: %w", err)
		}
		registry.Register(ext)
	}

	return registry, nil
}

func closer(name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Warn("closing %s store: %v", name, err)
		}
	}
}
