// Package propertiescmder provides the properties command.
package propertiescmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/cliui"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

type propertiesCommander struct {
	client *client.Client
	out    io.Writer
}

const propertiesLongDesc string = `List the properties in the portfolio.

With a property id, shows that property with its documents, claims and
compliance requirements.

Examples:
  binder properties
  binder properties prop-harbor`

const propertiesShortDesc string = "List properties or show one property"

func NewPropertiesCmd() *cobra.Command {
	cmder := &propertiesCommander{}

	cmd := &cobra.Command{
		Use:   "properties [property-id]",
		Short: propertiesShortDesc,
		Long:  propertiesLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.client, _, err = cmdutil.Backend(cmd, cmdutil.NewLogger(cmd))
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()

			if len(args) == 1 {
				return cmder.show(cmd.Context(), args[0])
			}
			return cmder.list(cmd.Context())
		},
	}

	cmdutil.AddBackendFlags(cmd)

	return cmd
}

func (c *propertiesCommander) list(ctx context.Context) error {
	props, err := c.client.ListProperties(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			p.City + ", " + p.State,
			cliui.Money(p.InsuredValue),
			fmt.Sprintf("%d", p.HealthScore),
			fmt.Sprintf("%d", p.OpenGaps),
		})
	}

	fmt.Fprintln(c.out, cliui.Table([]string{"ID", "Name", "Location", "Insured value", "Health", "Gaps"}, rows))
	return nil
}

// show fetches the property and its related lists concurrently.
func (c *propertiesCommander) show(ctx context.Context, id string) error {
	var (
		prop       *portfolio.Property
		documents  []portfolio.Document
		claims     []portfolio.Claim
		compliance []portfolio.ComplianceItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prop, err = c.client.GetProperty(gctx, id)
		if client.IsNotFound(err) {
			return fmt.Errorf("property %q not found", id)
		}
		return err
	})
	g.Go(func() error {
		var err error
		documents, err = c.client.ListDocuments(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		claims, err = c.client.ListClaims(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		compliance, err = c.client.ListCompliance(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s %s\n", cliui.TitleStyle.Render(prop.Name), cliui.DimStyle.Render(prop.ID))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%s, %s, %s", prop.Address, prop.City, prop.State)))
	fmt.Fprintf(c.out, "  %s %s  %s %d  %s %d\n",
		cliui.KeyStyle.Render("Type:"), prop.PropertyType,
		cliui.KeyStyle.Render("Units:"), prop.Units,
		cliui.KeyStyle.Render("Health:"), prop.HealthScore,
	)
	fmt.Fprintf(c.out, "  %s %s  %s %s\n",
		cliui.KeyStyle.Render("Insured value:"), cliui.Money(prop.InsuredValue),
		cliui.KeyStyle.Render("Premium:"), cliui.Money(prop.AnnualPremium),
	)
	fmt.Fprintf(c.out, "  %s %.0f%%\n\n",
		cliui.KeyStyle.Render("Compliance:"), portfolio.ComplianceRate(compliance)*100,
	)

	if len(documents) > 0 {
		rows := make([][]string, 0, len(documents))
		for _, d := range documents {
			rows = append(rows, []string{d.Name, d.DocumentType, d.Status, fmt.Sprintf("%d", d.Pages)})
		}
		fmt.Fprintln(c.out, cliui.Table([]string{"Document", "Type", "Status", "Pages"}, rows))
	}

	if len(claims) > 0 {
		rows := make([][]string, 0, len(claims))
		for _, cl := range claims {
			rows = append(rows, []string{cl.ClaimNumber, cl.LossType, cl.LossDate.Format("2006-01-02"), cliui.Money(cl.Amount), cl.Status})
		}
		fmt.Fprintln(c.out, cliui.Table([]string{"Claim", "Loss", "Date", "Amount", "Status"}, rows))
	}

	return nil
}
