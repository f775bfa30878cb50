package portfolio_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/portfolio"
)

var _ = Describe("ChatRequest", func() {
	It("rejects blank messages", func() {
		Expect(portfolio.ChatRequest{Message: "  "}.Validate()).To(MatchError(portfolio.ErrEmptyMessage))
		Expect(portfolio.ChatRequest{Message: "Is flood covered?"}.Validate()).To(Succeed())
	})

	It("omits optional fields and always sends stream", func() {
		data, err := json.Marshal(portfolio.ChatRequest{Message: "hi"})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"message":"hi","stream":false}`))

		data, err = json.Marshal(portfolio.ChatRequest{
			Message:        "hi",
			ConversationID: "c1",
			PropertyID:     "p1",
			DocumentType:   "policy",
			Stream:         true,
		})
		Expect(err).NotTo(HaveOccurred())

		var parsed map[string]any
		Expect(json.Unmarshal(data, &parsed)).To(Succeed())
		Expect(parsed).To(HaveKeyWithValue("conversation_id", "c1"))
		Expect(parsed).To(HaveKeyWithValue("property_id", "p1"))
		Expect(parsed).To(HaveKeyWithValue("document_type", "policy"))
		Expect(parsed).To(HaveKeyWithValue("stream", true))
	})
})

var _ = Describe("FilterGaps", func() {
	gaps := []portfolio.CoverageGap{
		{ID: "g1", PropertyID: "p1", Severity: portfolio.SeverityInfo, Status: "open"},
		{ID: "g2", PropertyID: "p2", Severity: portfolio.SeverityCritical, Status: "open"},
		{ID: "g3", PropertyID: "p1", Severity: portfolio.SeverityWarning, Status: "resolved"},
		{ID: "g4", PropertyID: "p1", Severity: portfolio.SeverityCritical, Status: "open"},
	}

	ids := func(gs []portfolio.CoverageGap) []string {
		out := make([]string, 0, len(gs))
		for _, g := range gs {
			out = append(out, g.ID)
		}
		return out
	}

	It("orders by severity and keeps input order within a severity", func() {
		Expect(ids(portfolio.FilterGaps(gaps, portfolio.GapFilter{}))).To(Equal([]string{"g2", "g4", "g3", "g1"}))
	})

	It("filters by severity case-insensitively", func() {
		out := portfolio.FilterGaps(gaps, portfolio.GapFilter{Severity: "CRITICAL"})
		Expect(ids(out)).To(Equal([]string{"g2", "g4"}))
	})

	It("combines property and status filters", func() {
		out := portfolio.FilterGaps(gaps, portfolio.GapFilter{PropertyID: "p1", Status: "open"})
		Expect(ids(out)).To(Equal([]string{"g4", "g1"}))
	})

	It("does not reorder the input", func() {
		portfolio.FilterGaps(gaps, portfolio.GapFilter{})
		Expect(gaps[0].ID).To(Equal("g1"))
	})
})

var _ = Describe("Compliance helpers", func() {
	items := []portfolio.ComplianceItem{
		{ID: "c1", Status: portfolio.ComplianceCompliant},
		{ID: "c2", Status: portfolio.ComplianceNonCompliant},
		{ID: "c3", Status: portfolio.ComplianceCompliant},
		{ID: "c4", Status: portfolio.CompliancePending},
	}

	It("filters by status", func() {
		Expect(portfolio.FilterCompliance(items, portfolio.ComplianceNonCompliant)).To(HaveLen(1))
		Expect(portfolio.FilterCompliance(items, "")).To(HaveLen(4))
	})

	It("computes the compliance rate", func() {
		Expect(portfolio.ComplianceRate(items)).To(BeNumerically("~", 0.5))
		Expect(portfolio.ComplianceRate(nil)).To(BeZero())
	})
})

var _ = Describe("Renewal helpers", func() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	renewals := []portfolio.Renewal{
		{ID: "r1", ExpirationDate: now.AddDate(0, 0, 90)},
		{ID: "r2", ExpirationDate: now.AddDate(0, 0, 10)},
		{ID: "r3", ExpirationDate: now.AddDate(0, 0, -5)},
		{ID: "r4", ExpirationDate: now.AddDate(0, 0, 45)},
	}

	It("sorts soonest first without mutating the input", func() {
		sorted := portfolio.SortRenewalsByDue(renewals)
		Expect(sorted[0].ID).To(Equal("r3"))
		Expect(sorted[3].ID).To(Equal("r1"))
		Expect(renewals[0].ID).To(Equal("r1"))
	})

	It("selects renewals due within a window", func() {
		due := portfolio.DueWithin(renewals, now, 60*24*time.Hour)
		Expect(due).To(HaveLen(2))
		Expect(due[0].ID).To(Equal("r2"))
		Expect(due[1].ID).To(Equal("r4"))
	})

	It("counts days until expiration", func() {
		Expect(portfolio.DaysUntil(renewals[1].ExpirationDate, now)).To(Equal(10))
		Expect(portfolio.DaysUntil(renewals[2].ExpirationDate, now)).To(Equal(-5))
	})

	It("ranks severities", func() {
		Expect(portfolio.SeverityCritical.Rank()).To(BeNumerically("<", portfolio.SeverityWarning.Rank()))
		Expect(portfolio.Severity("other").Rank()).To(Equal(3))
	})
})
