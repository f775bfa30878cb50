// Package servecmder provides the serve command, which runs the mock
// portfolio backend.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/binder/api"
	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/config"
	"github.com/papercomputeco/binder/pkg/logger"
)

type serveCommander struct {
	listen        string
	logFile       string
	logFormat     string
	fragmentDelay time.Duration

	logger *slog.Logger

	// ready is called with the bound address once the server accepts
	// connections.
	ready func(addr string)
}

const serveLongDesc string = `Run the mock portfolio backend.

Serves the demo portfolio (dashboard, properties, gaps, compliance, renewals,
documents and claims) and a streaming chat endpoint that answers from canned
responses, so every other binder command can be tried without the real
backend.

Use --log-file to also write logs to a file, as JSON unless --log-format
says otherwise.

Examples:
  binder serve
  binder serve --listen :9000 --fragment-delay 40ms
  binder serve --log-file binder-serve.log`

const serveShortDesc string = "Run the mock portfolio backend"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cmdutil.LoadViper(cmd, config.ServeFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.listen = v.GetString("serve.listen")

			var closeLog func() error
			cmder.logger, closeLog, err = newServeLogger(cmd, cmder.logFile, cmder.logFormat)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := cmdutil.SignalContext(cmd.Context())
			defer stop()
			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagListen, &cmder.listen)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write logs to this file")
	cmd.Flags().StringVar(&cmder.logFormat, "log-format", string(logger.FormatJSON), "Format of --log-file output (json, text or pretty)")
	cmd.Flags().DurationVar(&cmder.fragmentDelay, "fragment-delay", 25*time.Millisecond, "Pause between streamed answer fragments")

	return cmd
}

// newServeLogger returns the pretty terminal logger, fanned out to a file
// logger when logFile is set.
func newServeLogger(cmd *cobra.Command, logFile, logFormat string) (*slog.Logger, func() error, error) {
	terminal := cmdutil.NewLogger(cmd)
	if logFile == "" {
		return terminal, func() error { return nil }, nil
	}

	format, err := logger.ParseFormat(logFormat)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(cmdutil.Debug(cmd)),
		logger.WithFormat(format),
		logger.WithWriter(f),
	)
	return logger.Multi(terminal, file), f.Close, nil
}

func (c *serveCommander) run(ctx context.Context) error {
	fixtures, err := api.DefaultFixtures(time.Now())
	if err != nil {
		return fmt.Errorf("loading fixtures: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:    c.listen,
		FragmentDelay: c.fragmentDelay,
	}, fixtures, c.logger)
	if err != nil {
		return fmt.Errorf("creating mock backend: %w", err)
	}

	ln, err := net.Listen("tcp", c.listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", c.listen, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil {
			return fmt.Errorf("mock backend error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down mock backend")
		return server.Shutdown()
	})

	if c.ready != nil {
		c.ready(ln.Addr().String())
	}

	return g.Wait()
}
