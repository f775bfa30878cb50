// Package gapscmder provides the gaps command.
package gapscmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/cliui"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

type gapsCommander struct {
	severity   string
	propertyID string
	status     string

	client *client.Client
	out    io.Writer
}

const gapsLongDesc string = `List coverage gaps found in the portfolio's documents.

Gaps are listed most severe first. Filters are sent to the backend and
applied again locally, so older backends that ignore them still list the
right gaps.

Examples:
  binder gaps
  binder gaps --severity critical
  binder gaps --property prop-harbor --status open`

const gapsShortDesc string = "List coverage gaps"

func NewGapsCmd() *cobra.Command {
	cmder := &gapsCommander{}

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: gapsShortDesc,
		Long:  gapsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch portfolio.Severity(cmder.severity) {
			case "", portfolio.SeverityCritical, portfolio.SeverityWarning, portfolio.SeverityInfo:
				return nil
			default:
				return fmt.Errorf("invalid severity %q: must be critical, warning or info", cmder.severity)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.client, _, err = cmdutil.Backend(cmd, cmdutil.NewLogger(cmd))
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmdutil.AddBackendFlags(cmd)
	cmd.Flags().StringVar(&cmder.severity, "severity", "", "Only show gaps of this severity (critical, warning, info)")
	cmd.Flags().StringVarP(&cmder.propertyID, "property", "p", "", "Only show gaps for this property")
	cmd.Flags().StringVar(&cmder.status, "status", "", "Only show gaps with this status (e.g. open, resolved)")

	return cmd
}

func (c *gapsCommander) run(ctx context.Context) error {
	gaps, err := c.client.ListGaps(ctx, client.GapQuery{
		PropertyID: c.propertyID,
		Severity:   portfolio.Severity(c.severity),
		Status:     c.status,
	})
	if err != nil {
		return err
	}

	gaps = portfolio.FilterGaps(gaps, portfolio.GapFilter{
		Severity:   portfolio.Severity(c.severity),
		PropertyID: c.propertyID,
		Status:     c.status,
	})
	if len(gaps) == 0 {
		fmt.Fprintf(c.out, "\n  %s No coverage gaps found.\n\n", cliui.SuccessMark)
		return nil
	}

	rows := make([][]string, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, []string{
			cliui.SeverityBadge(string(g.Severity)),
			g.PropertyName,
			g.Title,
			g.Status,
		})
	}
	fmt.Fprintln(c.out, cliui.Table([]string{"Severity", "Property", "Gap", "Status"}, rows))

	for _, g := range gaps {
		if g.Recommendation == "" {
			continue
		}
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render(g.ID), cliui.DimStyle.Render(g.Recommendation))
	}
	return nil
}
