package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --backend
// on "binder chat", "binder overview" and "binder gaps").
type Flag struct {
	// Name is the long flag name (e.g. "backend").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "backend.base_url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBackend         = "backend"
	FlagOrganization    = "organization"
	FlagMaxRetries      = "max-retries"
	FlagProperty        = "property"
	FlagDocumentType    = "document-type"
	FlagListen          = "listen"
	FlagStorageProvider = "storage"
	FlagSQLite          = "sqlite"
	FlagPostgresDSN     = "postgres-dsn"
	FlagEventsProvider  = "events"
	FlagEventsTopic     = "events-topic"
)

// BackendFlags are the flags shared by every command that talks to the backend.
var BackendFlags = FlagSet{
	FlagBackend:      {Name: "backend", Shorthand: "b", ViperKey: "backend.base_url", Description: "Portfolio backend base URL"},
	FlagOrganization: {Name: "organization", Shorthand: "o", ViperKey: "backend.organization_id", Description: "Organization the requests are scoped to"},
	FlagMaxRetries:   {Name: "max-retries", ViperKey: "backend.max_retries", Description: "Retries for failed read requests"},
}

// ChatFlags scope chat requests.
var ChatFlags = FlagSet{
	FlagProperty:     {Name: "property", Shorthand: "p", ViperKey: "chat.property_id", Description: "Scope questions to a property"},
	FlagDocumentType: {Name: "document-type", Shorthand: "t", ViperKey: "chat.document_type", Description: "Scope questions to a document type"},
}

// RecordingFlags select transcript storage and event publishing.
var RecordingFlags = FlagSet{
	FlagStorageProvider: {Name: "storage", ViperKey: "storage.provider", Description: "Transcript storage provider (memory, sqlite, postgres)"},
	FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite transcript database"},
	FlagPostgresDSN:     {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagEventsProvider:  {Name: "events", ViperKey: "events.provider", Description: "Event publisher (nop, kafka)"},
	FlagEventsTopic:     {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for chat completion events"},
}

// ServeFlags configure the mock backend.
var ServeFlags = FlagSet{
	FlagListen: {Name: "listen", Shorthand: "l", ViperKey: "serve.listen", Description: "Address for the mock backend to listen on"},
}

// Keys returns the registry keys in fs.
func (fs FlagSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	return keys
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
