package portfolio

import (
	"slices"
	"strings"
	"time"
)

// GapFilter narrows a list of coverage gaps. Zero-value fields match
// everything.
type GapFilter struct {
	Severity   Severity
	PropertyID string
	Status     string
}

// FilterGaps returns the gaps matching f, most severe first. Gaps of equal
// severity keep their input order. The input slice is not modified.
func FilterGaps(gaps []CoverageGap, f GapFilter) []CoverageGap {
	out := make([]CoverageGap, 0, len(gaps))
	for _, g := range gaps {
		if f.Severity != "" && !strings.EqualFold(string(g.Severity), string(f.Severity)) {
			continue
		}
		if f.PropertyID != "" && g.PropertyID != f.PropertyID {
			continue
		}
		if f.Status != "" && !strings.EqualFold(g.Status, f.Status) {
			continue
		}
		out = append(out, g)
	}

	slices.SortStableFunc(out, func(a, b CoverageGap) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
	return out
}

// FilterCompliance returns the items with the given status. An empty status
// returns a copy of all items.
func FilterCompliance(items []ComplianceItem, status ComplianceStatus) []ComplianceItem {
	out := make([]ComplianceItem, 0, len(items))
	for _, it := range items {
		if status == "" || it.Status == status {
			out = append(out, it)
		}
	}
	return out
}

// ComplianceRate returns the fraction of items that are compliant, or 0 for
// an empty list.
func ComplianceRate(items []ComplianceItem) float64 {
	if len(items) == 0 {
		return 0
	}

	compliant := 0
	for _, it := range items {
		if it.Status == ComplianceCompliant {
			compliant++
		}
	}
	return float64(compliant) / float64(len(items))
}

// SortRenewalsByDue returns a copy of renewals ordered by expiration date,
// soonest first.
func SortRenewalsByDue(renewals []Renewal) []Renewal {
	out := slices.Clone(renewals)
	slices.SortStableFunc(out, func(a, b Renewal) int {
		return a.ExpirationDate.Compare(b.ExpirationDate)
	})
	return out
}

// DueWithin returns the renewals expiring in [now, now+window], soonest
// first. Already-expired renewals are excluded.
func DueWithin(renewals []Renewal, now time.Time, window time.Duration) []Renewal {
	limit := now.Add(window)

	var out []Renewal
	for _, r := range SortRenewalsByDue(renewals) {
		if r.ExpirationDate.Before(now) || r.ExpirationDate.After(limit) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DaysUntil returns the whole number of days from now until t, rounding
// down. Negative when t is in the past.
func DaysUntil(t, now time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}
