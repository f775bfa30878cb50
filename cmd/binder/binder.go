// Package bindercmder is the root of the binder CLI.
package bindercmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/binder/cmd/binder/chat"
	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	compliancecmder "github.com/papercomputeco/binder/cmd/binder/compliance"
	configcmder "github.com/papercomputeco/binder/cmd/binder/config"
	gapscmder "github.com/papercomputeco/binder/cmd/binder/gaps"
	historycmder "github.com/papercomputeco/binder/cmd/binder/history"
	overviewcmder "github.com/papercomputeco/binder/cmd/binder/overview"
	propertiescmder "github.com/papercomputeco/binder/cmd/binder/properties"
	renewalscmder "github.com/papercomputeco/binder/cmd/binder/renewals"
	servecmder "github.com/papercomputeco/binder/cmd/binder/serve"
	versioncmder "github.com/papercomputeco/binder/cmd/binder/version"
)

const binderLongDesc string = `Binder is a terminal front-end for your insurance portfolio.

Ask the portfolio assistant about your policies and loan documents, and
review coverage gaps, compliance and renewals:
  binder chat          Chat with the portfolio assistant
  binder overview      Show the portfolio dashboard
  binder gaps          List coverage gaps
  binder history       Show recorded chat transcripts

Try everything locally against the mock backend:
  binder serve`

const binderShortDesc string = "Binder - Insurance Portfolio Assistant"

func NewBinderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "binder",
		Short:        binderShortDesc,
		Long:         binderLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmdutil.AddPersistentFlags(cmd)

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(overviewcmder.NewOverviewCmd())
	cmd.AddCommand(propertiescmder.NewPropertiesCmd())
	cmd.AddCommand(gapscmder.NewGapsCmd())
	cmd.AddCommand(renewalscmder.NewRenewalsCmd())
	cmd.AddCommand(compliancecmder.NewComplianceCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
