package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/binder/cmd/binder/config"
	"github.com/papercomputeco/binder/cmd/binder/cmdutil"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var tmpDir string

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		root := &cobra.Command{Use: "binder", SilenceUsage: true, SilenceErrors: true}
		cmdutil.AddPersistentFlags(root)
		root.AddCommand(configcmder.NewConfigCmd())
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append(append([]string{"config"}, args...), "--config-dir", tmpDir))
		err := root.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			out, err := run("set", "backend.base_url", "https://portfolio.example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Set"))

			_, err = os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			_, err := run("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring(`unknown config key: "invalid_key"`)))
		})

		It("rejects invalid values", func() {
			_, err := run("set", "backend.max_retries", "lots")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			_, err := run("set", "backend.base_url")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := run("set", "storage.provider", "postgres")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("get", "storage.provider")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("postgres"))
		})

		It("shows defaults when no config file exists", func() {
			out, err := run("get", "backend.base_url")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("http://localhost:8000"))
		})

		It("rejects unknown keys", func() {
			_, err := run("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			_, err := run("set", "events.brokers", "k1:9092,k2:9092")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Using config file"))
			Expect(out).To(ContainSubstring(`events.brokers`))
			Expect(out).To(ContainSubstring(`"k1:9092,k2:9092"`))
			Expect(out).To(ContainSubstring("storage.postgres_dsn"))
			Expect(out).To(ContainSubstring("<not set>"))
		})
	})
})
