// Package configcmder provides the config command for managing persistent
// binder configuration stored in the .binder/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent binder configuration.

Configuration is stored as config.toml in the .binder/ directory and provides
default values for command flags. CLI flags and BINDER_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  backend.base_url, backend.organization_id, backend.max_retries,
  chat.property_id, chat.document_type,
  serve.listen,
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  binder config set <key> <value>    Set a configuration value
  binder config get <key>            Get a configuration value
  binder config list                 List all configuration values

Examples:
  binder config set backend.base_url https://portfolio.example.com
  binder config set events.brokers kafka-1:9092,kafka-2:9092
  binder config get storage.provider
  binder config list`

const configShortDesc string = "Manage persistent binder configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
