package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
	"github.com/custodia-labs/loanform/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageBackend    = "storage.backend"
	keyStorageDataDir    = "storage.data_dir"
	keyAutosave          = "application.autosave"
	keyInsertOnStale     = "application.insert_on_stale"
	keyExtractionMode    = "extraction.mode"
	keyExtractionURL     = "extraction.endpoint"
	keyExtractionAPIKey  = "extraction.api_key"
	keyExtractionRPS     = "extraction.requests_per_second"
	keyExtractionMapping = "extraction.mapping_file"
)

// SettingsKeys returns every configuration key Set accepts.
func SettingsKeys() []string {
	return []string{
		keyStorageBackend,
		keyStorageDataDir,
		keyAutosave,
		keyInsertOnStale,
		keyExtractionMode,
		keyExtractionURL,
		keyExtractionAPIKey,
		keyExtractionRPS,
		keyExtractionMapping,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Application: domain.ApplicationSettings{
			Autosave:      s.getBool(keyAutosave, defaults.Application.Autosave),
			InsertOnStale: s.getBool(keyInsertOnStale, defaults.Application.InsertOnStale),
		},
		Extraction: domain.ExtractionSettings{
			Mode:              s.getMode(defaults.Extraction.Mode),
			Endpoint:          s.configStore.GetString(keyExtractionURL),
			APIKey:            s.configStore.GetString(keyExtractionAPIKey),
			RequestsPerSecond: s.getFloat(keyExtractionRPS, defaults.Extraction.RequestsPerSecond),
			MappingFile:       s.configStore.GetString(keyExtractionMapping),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyAutosave, settings.Application.Autosave},
		{keyInsertOnStale, settings.Application.InsertOnStale},
		{keyExtractionMode, settings.Extraction.Mode.String()},
		{keyExtractionURL, settings.Extraction.Endpoint},
		{keyExtractionRPS, settings.Extraction.RequestsPerSecond},
		{keyExtractionMapping, settings.Extraction.MappingFile},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Extraction.APIKey != "" {
		if err := s.configStore.Set(keyExtractionAPIKey, settings.Extraction.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyExtractionAPIKey, err)
		}
	}

	return nil
}

// Set updates a single setting from its string form.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var typed any
	switch key {
	case keyStorageBackend:
		backend := domain.StorageBackend(value)
		if !backend.IsValid() {
			return fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, value)
		}
		typed = value
	case keyExtractionMode:
		if !domain.ExtractionMode(value).IsValid() {
			return fmt.Errorf("%w: extraction mode %q", domain.ErrUnsupportedType, value)
		}
		typed = value
	case keyAutosave, keyInsertOnStale:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	case keyExtractionRPS:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		typed = f
	case keyExtractionURL:
		if value != "" {
			if err := validateEndpoint(value); err != nil {
				return err
			}
		}
		typed = value
	case keyStorageDataDir, keyExtractionAPIKey, keyExtractionMapping:
		typed = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetExtractor configures the extraction mode and remote endpoint.
// An empty apiKey keeps the stored key.
func (s *SettingsService) SetExtractor(mode domain.ExtractionMode, endpoint, apiKey string) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: extraction mode %q", domain.ErrUnsupportedType, mode)
	}
	if mode == domain.ExtractionRemote {
		if endpoint == "" {
			return fmt.Errorf("%w: remote extraction requires an endpoint", domain.ErrInvalidInput)
		}
		if err := validateEndpoint(endpoint); err != nil {
			return err
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Extraction.Mode = mode
	if mode == domain.ExtractionRemote {
		settings.Extraction.Endpoint = endpoint
	}
	if apiKey != "" {
		settings.Extraction.APIKey = apiKey
	}

	return s.Save(settings)
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend)
	}
	if !settings.Extraction.IsConfigured() {
		return fmt.Errorf("extraction mode %q is not fully configured", settings.Extraction.Mode)
	}
	if settings.Extraction.RequestsPerSecond <= 0 {
		return fmt.Errorf("%s must be positive", keyExtractionRPS)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint must be an http(s) URL", domain.ErrInvalidInput)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getMode(defaultVal domain.ExtractionMode) domain.ExtractionMode {
	mode := domain.ExtractionMode(s.configStore.GetString(keyExtractionMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
