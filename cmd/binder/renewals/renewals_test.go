package renewalscmder_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	renewalscmder "github.com/papercomputeco/binder/cmd/binder/renewals"
	testutils "github.com/papercomputeco/binder/pkg/utils/test"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := &cobra.Command{Use: "binder", SilenceUsage: true, SilenceErrors: true}
	cmdutil.AddPersistentFlags(root)
	root.AddCommand(renewalscmder.NewRenewalsCmd())
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"renewals", "--config-dir", GinkgoT().TempDir()}, args...))
	err := root.Execute()
	return out.String(), err
}

var _ = Describe("NewRenewalsCmd", func() {
	var backend string

	BeforeEach(func() {
		backend = testutils.StartBackend()
	})

	It("lists every renewal soonest first", func() {
		out, err := run("--backend", backend)
		Expect(err).NotTo(HaveOccurred())

		harbor := strings.Index(out, "Coastal Mutual")
		ridge := strings.Index(out, "Front Range Insurance")
		maple := strings.Index(out, "Heartland Casualty")
		Expect(harbor).To(BeNumerically(">=", 0))
		Expect(harbor).To(BeNumerically("<", ridge))
		Expect(ridge).To(BeNumerically("<", maple))
	})

	It("limits the list with --within", func() {
		out, err := run("--backend", backend, "--within", "30")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("CP-448812"))
		Expect(out).NotTo(ContainSubstring("PK-20931"))
		Expect(out).NotTo(ContainSubstring("BOP-77120"))
	})

	It("rejects a negative window", func() {
		_, err := run("--backend", backend, "--within", "-5")
		Expect(err).To(MatchError(ContainSubstring("--within must not be negative")))
	})
})
