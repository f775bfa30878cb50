// Package chatcmder provides the chat command for asking the portfolio
// assistant questions about insurance documents.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/chatstream"
	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/cliui"
	"github.com/papercomputeco/binder/pkg/config"
	"github.com/papercomputeco/binder/pkg/dotdir"
	"github.com/papercomputeco/binder/pkg/portfolio"
	"github.com/papercomputeco/binder/pkg/recorder"
	"github.com/papercomputeco/binder/pkg/storage"
	"github.com/papercomputeco/binder/pkg/utils"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("binder> ")
)

type chatCommander struct {
	propertyID      string
	documentType    string
	newConversation bool
	noRecord        bool
	configDir       string

	storageProvider string
	sqlitePath      string
	postgresDSN     string
	eventsProvider  string
	eventsTopic     string

	in          io.Reader
	out         io.Writer
	interactive bool

	client   *client.Client
	recorder *cmdutil.Recorder
	sessions *dotdir.Manager
	logger   *slog.Logger

	conversationID string
}

// answer is what one streamed response produced.
type answer struct {
	text           strings.Builder
	fragments      int
	sources        []portfolio.Source
	conversationID string
	confidence     float64
	done           bool
	errMessage     string
	startedAt      time.Time
	completedAt    time.Time
}

const chatLongDesc string = `Ask the portfolio assistant questions about your insurance documents.

Each answer streams in as it is generated, followed by the documents it is
grounded on and the assistant's confidence. The conversation id returned by
the backend is remembered in .binder/session.json so that the next "binder
chat" continues the same conversation; pass --new to start over.

Completed turns are recorded to the configured transcript store and can be
read back with "binder history".

Inside the chat:
  /new     start a new conversation
  /exit    quit (Ctrl+D also quits, Ctrl+C cancels the current answer)

Examples:
  binder chat
  binder chat --property prop-harbor
  binder chat --document-type policy --new`

const chatShortDesc string = "Chat with the portfolio assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.logger = cmdutil.NewLogger(cmd)
			cmder.configDir = cmdutil.ConfigDir(cmd)

			v, err := cmdutil.LoadViper(cmd, config.BackendFlags, config.ChatFlags, config.RecordingFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.propertyID = v.GetString("chat.property_id")
			cmder.documentType = v.GetString("chat.document_type")

			cmder.client, err = cmdutil.NewClient(v, cmder.logger)
			if err != nil {
				return err
			}

			if !cmder.noRecord {
				cmder.recorder, err = cmdutil.NewRecorder(cmd.Context(), v, cmder.configDir, cmder.logger)
				if err != nil {
					return fmt.Errorf("starting transcript recorder: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.interactive = isTerminal(cmder.out)

			err := cmder.run(cmd.Context())
			if cmder.recorder != nil {
				err = errors.Join(err, cmder.recorder.Close())
			}
			return err
		},
	}

	cmdutil.AddBackendFlags(cmd)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagProperty, &cmder.propertyID)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagDocumentType, &cmder.documentType)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.RecordingFlags, config.FlagEventsTopic, &cmder.eventsTopic)
	cmd.Flags().BoolVarP(&cmder.newConversation, "new", "n", false, "Start a new conversation instead of resuming the last one")
	cmd.Flags().BoolVar(&cmder.noRecord, "no-record", false, "Do not record turns to the transcript store")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.sessions = dotdir.NewManager()

	if err := c.resume(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Backend:"),
		cliui.NameStyle.Render(c.client.BaseURL()),
	)
	if c.propertyID != "" {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Property:"), cliui.ValueStyle.Render(c.propertyID))
	}
	if c.documentType != "" {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Documents:"), cliui.ValueStyle.Render(c.documentType))
	}
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /new starts over, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(c.out)
			return nil
		case "/new":
			if err := c.startOver(); err != nil {
				fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
			}
			continue
		}

		if err := c.ask(ctx, input); err != nil {
			fmt.Fprintf(c.out, "\n  %s %v\n\n", cliui.FailMark, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// resume picks up the conversation id from the last session unless --new
// was given or the session was scoped differently.
func (c *chatCommander) resume() error {
	if c.newConversation {
		return c.sessions.ClearSession(c.configDir)
	}

	session, err := c.sessions.LoadSession(c.configDir)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if session == nil || session.ConversationID == "" {
		fmt.Fprintf(c.out, "\n  %s New conversation\n", cliui.DimStyle.Render("●"))
		return nil
	}

	if session.PropertyID != c.propertyID || session.DocumentType != c.documentType {
		fmt.Fprintf(c.out, "\n  %s New conversation %s\n",
			cliui.DimStyle.Render("●"),
			cliui.DimStyle.Render("(scope changed)"),
		)
		return nil
	}

	c.conversationID = session.ConversationID
	fmt.Fprintf(c.out, "\n  %s Resuming %s\n",
		cliui.SuccessMark,
		cliui.HashStyle.Render(utils.Truncate(c.conversationID, 16)),
	)
	return nil
}

func (c *chatCommander) startOver() error {
	c.conversationID = ""
	if err := c.sessions.ClearSession(c.configDir); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Fprintf(c.out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
	return nil
}

// ask streams one answer to the terminal and records it once complete.
// Ctrl+C cancels only the answer in flight.
func (c *chatCommander) ask(ctx context.Context, question string) error {
	ctx, stop := cmdutil.SignalContext(ctx)
	defer stop()

	a := &answer{startedAt: time.Now()}
	fmt.Fprint(c.out, assistantPrompt)

	err := c.client.StreamChat(ctx, portfolio.ChatRequest{
		Message:        question,
		ConversationID: c.conversationID,
		PropertyID:     c.propertyID,
		DocumentType:   c.documentType,
	}, c.handler(a))
	a.completedAt = time.Now()
	fmt.Fprintln(c.out)

	switch {
	case err != nil && ctx.Err() != nil:
		return errors.New("answer cancelled")
	case err != nil:
		return err
	case a.errMessage != "":
		return fmt.Errorf("assistant error: %s", a.errMessage)
	case !a.done:
		return errors.New("answer ended before the assistant finished")
	}

	c.render(a)
	c.remember(question, a)
	return nil
}

func (c *chatCommander) handler(a *answer) chatstream.Handler {
	return chatstream.Handler{
		OnContent: func(text string) {
			a.fragments++
			a.text.WriteString(text)
			fmt.Fprint(c.out, text)
		},
		OnSources: func(sources []portfolio.Source) {
			a.sources = sources
		},
		OnDone: func(conversationID string, confidence float64) {
			a.done = true
			a.conversationID = conversationID
			a.confidence = confidence
		},
		OnError: func(message string) {
			a.errMessage = message
		},
	}
}

// render prints the sources and confidence, and on a terminal the answer
// again as rendered markdown.
func (c *chatCommander) render(a *answer) {
	if c.interactive {
		if rendered, err := cliui.RenderMarkdown(a.text.String()); err == nil {
			fmt.Fprint(c.out, rendered)
		}
	}

	if len(a.sources) > 0 {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.KeyStyle.Render("Sources:"))
		for i, s := range a.sources {
			fmt.Fprintf(c.out, "  %d. %s %s\n",
				i+1,
				cliui.NameStyle.Render(s.DocumentName),
				cliui.DimStyle.Render(fmt.Sprintf("p.%d", s.Page)),
			)
			if s.Snippet != "" {
				fmt.Fprintf(c.out, "     %s\n", cliui.DimStyle.Render(utils.Truncate(s.Snippet, 96)))
			}
		}
	}

	fmt.Fprintf(c.out, "\n  %s %s  %s\n\n",
		cliui.KeyStyle.Render("Confidence:"),
		cliui.ConfidenceBadge(a.confidence),
		cliui.StepStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(a.completedAt.Sub(a.startedAt)))),
	)
}

// remember carries the conversation id forward, persists the session and
// queues the turn for recording. Turns without a conversation id cannot be
// grouped and are not recorded.
func (c *chatCommander) remember(question string, a *answer) {
	if a.conversationID == "" {
		c.logger.Debug("answer carried no conversation id, not recording")
		return
	}
	c.conversationID = a.conversationID

	err := c.sessions.SaveSession(&dotdir.Session{
		ConversationID: a.conversationID,
		PropertyID:     c.propertyID,
		DocumentType:   c.documentType,
		UpdatedAt:      a.completedAt.UTC(),
	}, c.configDir)
	if err != nil {
		c.logger.Warn("could not save session", "error", err)
	}

	if c.recorder == nil {
		return
	}

	c.recorder.Enqueue(recorder.Job{
		Turn: &storage.Turn{
			ID:             uuid.NewString(),
			ConversationID: a.conversationID,
			Question:       question,
			Answer:         a.text.String(),
			Sources:        a.sources,
			Confidence:     a.confidence,
			PropertyID:     c.propertyID,
			DocumentType:   c.documentType,
			CreatedAt:      a.completedAt.UTC(),
		},
		StartedAt:   a.startedAt.UTC(),
		CompletedAt: a.completedAt.UTC(),
		Fragments:   a.fragments,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
