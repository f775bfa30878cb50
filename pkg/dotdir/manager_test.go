package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	// chdirWithHome moves into dir and points HOME at home for the rest of
	// the test.
	chdirWithHome := func(dir, home string) {
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { _ = os.Chdir(origDir) })
		GinkgoT().Setenv("HOME", home)
	}

	Describe("Target", func() {
		It("creates the override directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns the override dir even when a local .binder dir exists", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".binder"), 0o755)).To(Succeed())
			chdirWithHome(tmpDir, tmpDir)

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .binder dir when it exists and no override is provided", func() {
			localDir := filepath.Join(tmpDir, ".binder")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())
			chdirWithHome(tmpDir, filepath.Join(tmpDir, "nohome"))

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localDir))
		})

		It("falls back to the home .binder dir", func() {
			home := filepath.Join(tmpDir, "home")
			Expect(os.MkdirAll(filepath.Join(home, ".binder"), 0o755)).To(Succeed())
			work := filepath.Join(tmpDir, "work")
			Expect(os.Mkdir(work, 0o755)).To(Succeed())
			chdirWithHome(work, home)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(home, ".binder")))
		})

		It("returns empty string when no directory can be resolved", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())
			chdirWithHome(emptyDir, emptyDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})

	Describe("Ensure", func() {
		It("creates ~/.binder when nothing else resolves", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())
			chdirWithHome(emptyDir, emptyDir)

			result, err := m.Ensure("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(emptyDir, ".binder")))
			Expect(filepath.Join(emptyDir, ".binder")).To(BeADirectory())
		})
	})

	Describe("Session", func() {
		It("returns nil when no session file exists", func() {
			session, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(session).To(BeNil())
		})

		It("round-trips a saved session", func() {
			saved := &dotdir.Session{
				ConversationID: "conv-42",
				PropertyID:     "prop-7",
			}
			Expect(m.SaveSession(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ConversationID).To(Equal("conv-42"))
			Expect(loaded.PropertyID).To(Equal("prop-7"))
		})

		It("returns error for invalid JSON", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("not json"), 0o600)).To(Succeed())

			session, err := m.LoadSession(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(session).To(BeNil())
		})

		It("returns error for nil session", func() {
			Expect(m.SaveSession(nil, tmpDir)).NotTo(Succeed())
		})

		It("clears the session", func() {
			Expect(m.SaveSession(&dotdir.Session{ConversationID: "c"}, tmpDir)).To(Succeed())
			Expect(m.ClearSession(tmpDir)).To(Succeed())

			session, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(session).To(BeNil())
		})

		It("succeeds clearing when no session exists", func() {
			Expect(m.ClearSession(tmpDir)).To(Succeed())
		})
	})
})
