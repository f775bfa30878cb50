// Package compliancecmder provides the compliance command.
package compliancecmder

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

type complianceCommander struct {
	propertyID string
	status     string

	client *client.Client
	out    io.Writer
}

const complianceLongDesc string = `List lender and contract insurance requirements and whether the
current policies satisfy them.

Examples:
  binder compliance
  binder compliance --status non_compliant
  binder compliance --property prop-maple`

const complianceShortDesc string = "List compliance requirements"

func NewComplianceCmd() *cobra.Command {
	cmder := &complianceCommander{}

	cmd := &cobra.Command{
		Use:   "compliance",
		Short: complianceShortDesc,
		Long:  complianceLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch portfolio.ComplianceStatus(cmder.status) {
			case "", portfolio.ComplianceCompliant, portfolio.ComplianceNonCompliant, portfolio.CompliancePending:
				return nil
			default:
				return fmt.Errorf("invalid status %q: must be compliant, non_compliant or pending", cmder.status)
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
	cmd.Flags().StringVarP(&cmder.propertyID, "property", "p", "", "Only show requirements for this property")
	cmd.Flags().StringVar(&cmder.status, "status", "", "Only show requirements with this status (compliant, non_compliant, pending)")

	return cmd
}

func (c *complianceCommander) run(ctx context.Context) error {
	all, err := c.client.ListCompliance(ctx, c.propertyID)
	if err != nil {
		return err
	}

	items := portfolio.FilterCompliance(all, portfolio.ComplianceStatus(c.status))

	fmt.Fprintf(c.out, "\n  %s %.0f%% %s\n",
		cliui.KeyStyle.Render("Compliance rate:"),
		portfolio.ComplianceRate(all)*100,
		cliui.DimStyle.Render(fmt.Sprintf("(%d requirements)", len(all))),
	)

	if len(items) == 0 {
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No matching requirements."))
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.PropertyID, it.Requirement, it.Source, statusLabel(it.Status), it.Notes})
	}
	fmt.Fprintln(c.out, cliui.Table([]string{"Property", "Requirement", "Source", "Status", "Notes"}, rows))
	return nil
}

func statusLabel(s portfolio.ComplianceStatus) string {
	switch s {
	case portfolio.ComplianceCompliant:
		return cliui.SuccessMark + " compliant"
	case portfolio.ComplianceNonCompliant:
		return cliui.FailMark + " non compliant"
	default:
		return string(s)
	}
}
