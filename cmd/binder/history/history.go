// Package historycmder provides the history command for reading recorded
// chat transcripts.
package historycmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/cliui"
	"github.com/papercomputeco/binder/pkg/config"
	"github.com/papercomputeco/binder/pkg/storage"
	"github.com/papercomputeco/binder/pkg/utils"
)

type historyCommander struct {
	storageProvider string
	sqlitePath      string
	postgresDSN     string
	limit           int

	driver storage.Driver
	out    io.Writer
	logger *slog.Logger
}

const historyLongDesc string = `Show recorded chat transcripts.

Without arguments, lists recorded conversations, most recent first. With a
conversation id, prints every question and answer of that conversation with
its sources.

Transcripts are read from the configured storage provider (SQLite in the
.binder/ directory by default).

Examples:
  binder history
  binder history 3f1c9a2e-7b7d-4c55-9d1e-0a5f7e0f2c11
  binder history --storage postgres --postgres-dsn postgres://localhost/binder`

const historyShortDesc string = "Show recorded chat transcripts"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [conversation-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.logger = cmdutil.NewLogger(cmd)
			cmder.out = cmd.OutOrStdout()

			v, err := cmdutil.LoadViper(cmd, config.RecordingFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.driver, err = cmdutil.NewStorageDriver(cmd.Context(), v, cmdutil.ConfigDir(cmd), cmder.logger)
			if err != nil {
				return err
			}
			defer cmder.driver.Close()

			if len(args) == 1 {
				return cmder.show(cmd.Context(), args[0])
			}
			return cmder.list(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagPostgresDSN, &cmder.postgresDSN)
	cmd.Flags().IntVar(&cmder.limit, "limit", 20, "Maximum number of conversations to list (0 lists all)")

	return cmd
}

func (c *historyCommander) list(ctx context.Context) error {
	summaries, err := c.driver.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No recorded conversations."))
		return nil
	}

	total := len(summaries)
	if c.limit > 0 && total > c.limit {
		summaries = summaries[:c.limit]
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.ID,
			fmt.Sprintf("%d", s.Turns),
			utils.Truncate(s.FirstQuestion, 48),
			s.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(c.out, cliui.Table([]string{"Conversation", "Turns", "First question", "Updated"}, rows))

	if len(summaries) < total {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d of %d conversations shown", len(summaries), total)))
	}
	return nil
}

func (c *historyCommander) show(ctx context.Context, conversationID string) error {
	turns, err := c.driver.Conversation(ctx, conversationID)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Errorf("conversation %q not found", conversationID)
		}
		return fmt.Errorf("loading conversation: %w", err)
	}

	fmt.Fprintf(c.out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Conversation"),
		cliui.HashStyle.Render(conversationID),
	)

	for _, t := range turns {
		fmt.Fprintf(c.out, "\n  %s %s\n",
			cliui.DimStyle.Render(t.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.NameStyle.Render(t.Question),
		)
		fmt.Fprintf(c.out, "\n%s\n", t.Answer)

		for _, s := range t.Sources {
			fmt.Fprintf(c.out, "  %s %s\n",
				cliui.DimStyle.Render("-"),
				cliui.DimStyle.Render(fmt.Sprintf("%s p.%d", s.DocumentName, s.Page)),
			)
		}
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Confidence:"), cliui.ConfidenceBadge(t.Confidence))
	}
	fmt.Fprintln(c.out)
	return nil
}
