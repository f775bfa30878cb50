// Package overviewcmder provides the overview command: the portfolio
// dashboard with its most urgent gaps and renewals.
package overviewcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/cliui"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

// renewalWindow is how far ahead the overview looks for renewals.
const renewalWindow = 90 * 24 * time.Hour

type overviewCommander struct {
	client *client.Client
	logger *slog.Logger
	out    io.Writer
	now    func() time.Time
}

const overviewLongDesc string = `Show the portfolio dashboard.

Fetches the dashboard, coverage gaps and renewals in parallel and shows the
headline numbers, the critical gaps and the renewals due in the next 90 days.

Examples:
  binder overview
  binder overview --backend https://portfolio.example.com`

const overviewShortDesc string = "Show the portfolio dashboard"

func NewOverviewCmd() *cobra.Command {
	cmder := &overviewCommander{now: time.Now}

	cmd := &cobra.Command{
		Use:   "overview",
		Short: overviewShortDesc,
		Long:  overviewLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.logger = cmdutil.NewLogger(cmd)
			cmder.client, _, err = cmdutil.Backend(cmd, cmder.logger)
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmdutil.AddBackendFlags(cmd)

	return cmd
}

func (c *overviewCommander) run(ctx context.Context) error {
	o, err := c.client.Overview(ctx)
	if err != nil {
		return err
	}

	d := o.Dashboard
	fmt.Fprintf(c.out, "\n  %s %s\n\n", cliui.TitleStyle.Render("Portfolio"), cliui.DimStyle.Render(d.OrganizationID))
	rows := [][]string{
		{"Properties", fmt.Sprintf("%d", d.TotalProperties)},
		{"Insured value", cliui.Money(d.TotalInsuredValue)},
		{"Annual premium", cliui.Money(d.TotalPremium)},
		{"Open gaps", fmt.Sprintf("%d (%d critical)", d.OpenGaps, d.CriticalGaps)},
		{"Compliance", fmt.Sprintf("%.0f%%", d.ComplianceRate*100)},
		{"Upcoming renewals", fmt.Sprintf("%d", d.UpcomingRenewals)},
		{"Open claims", fmt.Sprintf("%d", d.OpenClaims)},
		{"Documents processed", fmt.Sprintf("%d", d.DocumentsProcessed)},
	}
	for _, r := range rows {
		fmt.Fprintf(c.out, "  %-20s %s\n", cliui.KeyStyle.Render(r[0]), cliui.ValueStyle.Render(r[1]))
	}

	critical := portfolio.FilterGaps(o.Gaps, portfolio.GapFilter{Severity: portfolio.SeverityCritical, Status: "open"})
	fmt.Fprintf(c.out, "\n  %s\n", cliui.TitleStyle.Render("Critical gaps"))
	if len(critical) == 0 {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("None"))
	}
	for _, g := range critical {
		fmt.Fprintf(c.out, "  %s %s %s\n", cliui.FailMark, cliui.NameStyle.Render(g.PropertyName), g.Title)
	}

	now := c.now()
	due := portfolio.DueWithin(o.Renewals, now, renewalWindow)
	fmt.Fprintf(c.out, "\n  %s\n", cliui.TitleStyle.Render("Renewals in the next 90 days"))
	if len(due) == 0 {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("None"))
	}
	for _, r := range due {
		fmt.Fprintf(c.out, "  %s %s %s\n",
			cliui.HashStyle.Render(fmt.Sprintf("%3dd", portfolio.DaysUntil(r.ExpirationDate, now))),
			cliui.NameStyle.Render(r.PropertyName),
			cliui.DimStyle.Render(r.Carrier),
		)
	}
	fmt.Fprintln(c.out)

	c.logger.Debug("overview rendered", "gaps", len(o.Gaps), "renewals", len(o.Renewals))
	return nil
}
