package historycmder_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
	historycmder "github.com/papercomputeco/binder/cmd/binder/history"
	"github.com/papercomputeco/binder/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/binder/pkg/utils/test"
)

var _ = Describe("NewHistoryCmd", func() {
	var configDir string

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		root := &cobra.Command{Use: "binder", SilenceUsage: true, SilenceErrors: true}
		cmdutil.AddPersistentFlags(root)
		root.AddCommand(historycmder.NewHistoryCmd())
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"history", "--config-dir", configDir}, args...))
		err := root.Execute()
		return out.String(), err
	}

	seed := func(conversations, turns int) {
		ctx := context.Background()
		d, err := sqlite.NewDriver(ctx, filepath.Join(configDir, "binder.sqlite"))
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()

		for c := range conversations {
			for t := range turns {
				Expect(d.SaveTurn(ctx, testutils.NewTestTurn(fmt.Sprintf("conv-%d", c), c*turns+t))).To(Succeed())
			}
		}
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
	})

	It("says so when nothing was recorded", func() {
		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No recorded conversations."))
	})

	It("lists recorded conversations", func() {
		seed(2, 2)

		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("conv-0"))
		Expect(out).To(ContainSubstring("conv-1"))
		Expect(out).To(ContainSubstring("question 0"))
		Expect(out).To(ContainSubstring("question 2"))
	})

	It("honors --limit", func() {
		seed(3, 1)

		out, err := run("--limit", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("conv-2"))
		Expect(out).NotTo(ContainSubstring("conv-0"))
		Expect(out).To(ContainSubstring("1 of 3 conversations shown"))
	})

	It("shows one conversation", func() {
		seed(1, 2)

		out, err := run("conv-0")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("question 0"))
		Expect(out).To(ContainSubstring("answer 1"))
		Expect(out).To(ContainSubstring("policy.pdf p.2"))
		Expect(out).To(ContainSubstring("75%"))
	})

	It("reports an unknown conversation", func() {
		_, err := run("conv-missing")
		Expect(err).To(MatchError(`conversation "conv-missing" not found`))
	})

	It("reads from the in-memory store when asked", func() {
		out, err := run("--storage", "memory")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No recorded conversations."))
		Expect(filepath.Join(configDir, "binder.sqlite")).NotTo(BeAnExistingFile())
	})
})
