// Package cmdutil holds the wiring shared by binder subcommands: the
// persistent flags, the logger, the backend client and transcript recording.
package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/config"
	"github.com/papercomputeco/binder/pkg/logger"
)

// Persistent flag names registered on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
)

// AddPersistentFlags registers --debug and --config-dir on a root command.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP(FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(FlagConfigDir, "", "Override path to .binder/ config directory")
}

// ConfigDir returns the --config-dir override, or "" to resolve .binder/
// from the working and home directories.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString(FlagConfigDir)
	return dir
}

// Debug reports whether --debug was set.
func Debug(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	return debug
}

// NewLogger returns the pretty CLI logger. Logs go to stderr so they never
// interleave with streamed answers on stdout.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	return logger.New(
		logger.WithDebug(Debug(cmd)),
		logger.WithFormat(logger.FormatPretty),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
}

// AddBackendFlags registers --backend, --organization and --max-retries.
func AddBackendFlags(cmd *cobra.Command) {
	var (
		baseURL string
		org     string
		retries int
	)
	config.AddStringFlag(cmd, config.BackendFlags, config.FlagBackend, &baseURL)
	config.AddStringFlag(cmd, config.BackendFlags, config.FlagOrganization, &org)
	config.AddIntFlag(cmd, config.BackendFlags, config.FlagMaxRetries, &retries)
}

// LoadViper initializes viper for cmd and binds every registered flag of
// the given sets.
func LoadViper(cmd *cobra.Command, sets ...config.FlagSet) (*viper.Viper, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, err
	}

	for _, fs := range sets {
		config.BindRegisteredFlags(v, cmd, fs, fs.Keys())
	}
	return v, nil
}

// NewClient builds a backend client from the backend.* keys in v.
func NewClient(v *viper.Viper, log *slog.Logger) (*client.Client, error) {
	c, err := client.New(client.Config{
		BaseURL:        v.GetString("backend.base_url"),
		OrganizationID: v.GetString("backend.organization_id"),
		MaxRetries:     v.GetInt("backend.max_retries"),
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}
	return c, nil
}

// Backend resolves viper and a client in one step, for read-only commands.
func Backend(cmd *cobra.Command, log *slog.Logger) (*client.Client, *viper.Viper, error) {
	v, err := LoadViper(cmd, config.BackendFlags)
	if err != nil {
		return nil, nil, err
	}

	c, err := NewClient(v, log)
	if err != nil {
		return nil, nil, err
	}
	return c, v, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
