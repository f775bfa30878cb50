package config

// Storage providers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Event publishing providers.
const (
	EventsNop   = "nop"
	EventsKafka = "kafka"
)

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultOrganizationID = "demo-org"
	defaultMaxRetries     = 2

	defaultServeListen = ":8000"

	defaultStorageProvider = StorageSQLite

	defaultEventsProvider = EventsNop
	defaultEventsTopic    = "binder.chat.completed"
	defaultKafkaBroker    = "localhost:9092"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
//
// storage.sqlite_path has no static default; it resolves to binder.sqlite
// inside the dot directory at runtime.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Backend: BackendConfig{
			BaseURL:        defaultBaseURL,
			OrganizationID: defaultOrganizationID,
			MaxRetries:     defaultMaxRetries,
		},
		Serve: ServeConfig{
			Listen: defaultServeListen,
		},
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Brokers:  []string{defaultKafkaBroker},
			Topic:    defaultEventsTopic,
		},
	}
}
