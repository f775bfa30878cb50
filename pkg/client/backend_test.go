package client_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/chatstream"
	"github.com/papercomputeco/binder/pkg/client"
	"github.com/papercomputeco/binder/pkg/portfolio"
	testutils "github.com/papercomputeco/binder/pkg/utils/test"
)

var _ = Describe("Against the mock backend", func() {
	var c *client.Client

	BeforeEach(func() {
		c = newClient(testutils.StartBackend(), 0)
	})

	It("loads the overview", func() {
		o, err := c.Overview(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(o.Dashboard.OrganizationID).To(Equal("org-1"))
		Expect(o.Gaps).NotTo(BeEmpty())
		Expect(o.Renewals).NotTo(BeEmpty())
	})

	It("streams a complete answer", func() {
		var (
			text    strings.Builder
			sources []portfolio.Source
			convID  string
		)
		err := c.StreamChat(context.Background(), portfolio.ChatRequest{Message: "flood zone?"}, chatstream.Handler{
			OnContent: func(s string) { text.WriteString(s) },
			OnSources: func(s []portfolio.Source) { sources = s },
			OnDone:    func(id string, _ float64) { convID = id },
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(text.String()).To(ContainSubstring("Harbor View Apartments"))
		Expect(sources).To(HaveLen(2))
		Expect(convID).NotTo(BeEmpty())
	})
})
