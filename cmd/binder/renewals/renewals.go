// Package renewalscmder provides the renewals command.
package renewalscmder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/cliui"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

type renewalsCommander struct {
	withinDays int

	client *client.Client
	out    io.Writer
	now    func() time.Time
}

const renewalsLongDesc string = `List policy renewals, soonest first.

Use --within to only show renewals expiring in the next N days. Policies that
have already expired are left out when --within is set.

Examples:
  binder renewals
  binder renewals --within 60`

const renewalsShortDesc string = "List upcoming policy renewals"

func NewRenewalsCmd() *cobra.Command {
	cmder := &renewalsCommander{now: time.Now}

	cmd := &cobra.Command{
		Use:   "renewals",
		Short: renewalsShortDesc,
		Long:  renewalsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if cmder.withinDays < 0 {
				return fmt.Errorf("--within must not be negative, got %d", cmder.withinDays)
			}
			return nil
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
	cmd.Flags().IntVarP(&cmder.withinDays, "within", "w", 0, "Only show renewals expiring within this many days (0 shows all)")

	return cmd
}

func (c *renewalsCommander) run(ctx context.Context) error {
	renewals, err := c.client.ListRenewals(ctx)
	if err != nil {
		return err
	}

	now := c.now()
	if c.withinDays > 0 {
		renewals = portfolio.DueWithin(renewals, now, time.Duration(c.withinDays)*24*time.Hour)
	} else {
		renewals = portfolio.SortRenewalsByDue(renewals)
	}

	if len(renewals) == 0 {
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No renewals found."))
		return nil
	}

	rows := make([][]string, 0, len(renewals))
	for _, r := range renewals {
		rows = append(rows, []string{
			r.PropertyName,
			r.PolicyNumber,
			r.Carrier,
			r.ExpirationDate.Format("2006-01-02"),
			fmt.Sprintf("%d", portfolio.DaysUntil(r.ExpirationDate, now)),
			cliui.Money(r.CurrentPremium),
			fmt.Sprintf("%+.1f%%", r.ProjectedChange),
			r.Stage,
		})
	}
	fmt.Fprintln(c.out, cliui.Table(
		[]string{"Property", "Policy", "Carrier", "Expires", "Days", "Premium", "Change", "Stage"},
		rows,
	))
	return nil
}
