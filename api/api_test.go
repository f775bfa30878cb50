package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/logger"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer() *Server {
	fixtures, err := DefaultFixtures(testNow)
	Expect(err).NotTo(HaveOccurred())

	server, err := NewServer(Config{ListenAddr: ":0"}, fixtures, logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return server
}

// getJSON performs a GET against the server and decodes the body into out.
func getJSON(server *Server, target string, out any) int {
	resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	if out != nil {
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}
	return resp.StatusCode
}

var _ = Describe("Fixtures", func() {
	It("parses the embedded portfolio", func() {
		f, err := DefaultFixtures(testNow)
		Expect(err).NotTo(HaveOccurred())

		Expect(f.Properties).To(HaveLen(3))
		Expect(f.Gaps).NotTo(BeEmpty())
		Expect(f.Documents).NotTo(BeEmpty())
		Expect(f.Answers).NotTo(BeEmpty())
	})

	It("resolves renewal expirations against the load time", func() {
		f, err := DefaultFixtures(testNow)
		Expect(err).NotTo(HaveOccurred())

		Expect(f.Renewals).To(HaveLen(3))
		Expect(f.Renewals[0].ID).To(Equal("ren-1"))
		Expect(f.Renewals[0].ExpirationDate).To(Equal(time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC)))
	})

	It("rejects fixtures without a fallback answer", func() {
		_, err := ParseFixtures([]byte("answers:\n  - keywords: [x]\n    text: y\n"), testNow)
		Expect(err).To(MatchError(ContainSubstring("no fallback answer")))
	})

	It("picks answers by keyword, case-insensitively", func() {
		f, err := DefaultFixtures(testNow)
		Expect(err).NotTo(HaveOccurred())

		Expect(f.answerFor("Are we covered for FLOOD?").Keywords).To(ContainElement("flood"))
		Expect(f.answerFor("what's for lunch").Keywords).To(BeEmpty())
	})
})

var _ = Describe("Read endpoints", func() {
	var server *Server

	BeforeEach(func() {
		server = newTestServer()
	})

	It("responds to ping", func() {
		var out string
		Expect(getJSON(server, "/ping", &out)).To(Equal(http.StatusOK))
		Expect(out).To(Equal("pong"))
	})

	It("scopes the dashboard to the requested organization", func() {
		var d portfolio.Dashboard
		Expect(getJSON(server, "/api/dashboard?organization_id=acme", &d)).To(Equal(http.StatusOK))
		Expect(d.OrganizationID).To(Equal("acme"))
		Expect(d.TotalProperties).To(Equal(3))
	})

	It("lists and gets properties", func() {
		var props []portfolio.Property
		Expect(getJSON(server, "/api/properties", &props)).To(Equal(http.StatusOK))
		Expect(props).To(HaveLen(3))

		var p portfolio.Property
		Expect(getJSON(server, "/api/properties/prop-maple", &p)).To(Equal(http.StatusOK))
		Expect(p.Name).To(Equal("Maple Court"))
	})

	It("returns 404 for an unknown property", func() {
		var e ErrorResponse
		Expect(getJSON(server, "/api/properties/nope", &e)).To(Equal(http.StatusNotFound))
		Expect(e.Error).To(Equal("property not found"))
	})

	It("filters gaps and sorts them by severity", func() {
		var gaps []portfolio.CoverageGap
		Expect(getJSON(server, "/api/gaps?property_id=prop-harbor", &gaps)).To(Equal(http.StatusOK))
		Expect(gaps).To(HaveLen(2))
		Expect(gaps[0].Severity).To(Equal(portfolio.SeverityCritical))

		Expect(getJSON(server, "/api/gaps?severity=warning&status=open", &gaps)).To(Equal(http.StatusOK))
		for _, g := range gaps {
			Expect(g.Severity).To(Equal(portfolio.SeverityWarning))
			Expect(g.Status).To(Equal("open"))
		}
	})

	It("encodes an empty result as an empty list", func() {
		resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/api/claims?property_id=prop-maple", nil), -1)
		Expect(err).NotTo(HaveOccurred())
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
	})

	It("filters compliance by property and status", func() {
		var items []portfolio.ComplianceItem
		Expect(getJSON(server, "/api/compliance?status=pending", &items)).To(Equal(http.StatusOK))
		Expect(items).To(HaveLen(1))
		Expect(items[0].PropertyID).To(Equal("prop-ridge"))
	})

	It("returns renewals soonest first", func() {
		var renewals []portfolio.Renewal
		Expect(getJSON(server, "/api/renewals", &renewals)).To(Equal(http.StatusOK))
		Expect(renewals).To(HaveLen(3))
		Expect(renewals[0].ExpirationDate.Before(renewals[1].ExpirationDate)).To(BeTrue())
	})

	It("filters documents by property", func() {
		var docs []portfolio.Document
		Expect(getJSON(server, "/api/documents?property_id=prop-harbor", &docs)).To(Equal(http.StatusOK))
		Expect(docs).To(HaveLen(2))
	})
})

var _ = Describe("fragments", func() {
	It("reassembles to the original text", func() {
		text := "The deductible is **5%**.\n\nSee page 11. "
		Expect(strings.Join(fragments(text), "")).To(Equal(text))
		Expect(fragments(text)).NotTo(ContainElement(""))
	})

	It("returns nothing for empty text", func() {
		Expect(fragments("")).To(BeEmpty())
	})
})
