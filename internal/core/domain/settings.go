package domain

const unknownDescription = "Unknown"

// StorageBackend selects the persistence adapter.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite stores applications in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageBolt stores applications as JSON documents in a bbolt file.
	StorageBolt StorageBackend = "bolt"

	// StorageMemory keeps applications in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageBolt, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (local database file)"
	case StorageBolt:
		return "Bolt (local key-value document file)"
	case StorageMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// ExtractionMode selects the document extractor.
type ExtractionMode string

// Available extraction modes.
const (
	// ExtractionLocal reads "Label: value" pairs from text-bearing documents.
	ExtractionLocal ExtractionMode = "local"

	// ExtractionRemote posts documents to an extraction service.
	ExtractionRemote ExtractionMode = "remote"
)

// IsValid returns true if the mode is recognised.
func (m ExtractionMode) IsValid() bool {
	return m == ExtractionLocal || m == ExtractionRemote
}

// String returns the string representation.
func (m ExtractionMode) String() string {
	return string(m)
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend selects the adapter.
	Backend StorageBackend

	// DataDir is where database and upload files live.
	// Empty means ~/.loanform/data.
	DataDir string
}

// ApplicationSettings holds form behaviour configuration.
type ApplicationSettings struct {
	// Autosave persists the application after every edit or upload.
	Autosave bool

	// InsertOnStale re-inserts an application whose stored ID has vanished
	// instead of failing the save.
	InsertOnStale bool
}

// ExtractionSettings holds document extractor configuration.
type ExtractionSettings struct {
	// Mode selects the extractor.
	Mode ExtractionMode

	// Endpoint is the extraction service URL (remote mode).
	Endpoint string

	// APIKey authenticates against the extraction service.
	APIKey string

	// RequestsPerSecond limits calls to the extraction service.
	RequestsPerSecond float64

	// MappingFile is an optional YAML file of extra field mappings.
	MappingFile string
}

// IsConfigured returns true if the extractor can be constructed.
func (e ExtractionSettings) IsConfigured() bool {
	if !e.Mode.IsValid() {
		return false
	}
	if e.Mode == ExtractionRemote && e.Endpoint == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage     StorageSettings
	Application ApplicationSettings
	Extraction  ExtractionSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Application: ApplicationSettings{
			Autosave:      true,
			InsertOnStale: false,
		},
		Extraction: ExtractionSettings{
			Mode:              ExtractionLocal,
			RequestsPerSecond: 2.0,
		},
	}
}

// AllStorageBackends returns the available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageBolt, StorageMemory}
}
