package api

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/papercomputeco/binder/pkg/portfolio"
)

//go:embed fixtures/portfolio.yaml
var defaultFixtures []byte

// Fixtures is the data the mock backend serves.
type Fixtures struct {
	Dashboard  portfolio.Dashboard        `yaml:"dashboard"`
	Properties []portfolio.Property       `yaml:"properties"`
	Gaps       []portfolio.CoverageGap    `yaml:"gaps"`
	Compliance []portfolio.ComplianceItem `yaml:"compliance"`
	Renewals   []portfolio.Renewal        `yaml:"-"`
	Documents  []portfolio.Document       `yaml:"documents"`
	Claims     []portfolio.Claim          `yaml:"claims"`
	Answers    []Answer                   `yaml:"answers"`
}

// Answer is a canned chat reply.
type Answer struct {
	// Keywords select the answer when any of them occurs in the question.
	// An answer without keywords is the fallback.
	Keywords   []string           `yaml:"keywords"`
	Text       string             `yaml:"text"`
	Sources    []portfolio.Source `yaml:"sources"`
	Confidence float64            `yaml:"confidence"`
}

// renewalFixture stores expirations relative to load time.
type renewalFixture struct {
	portfolio.Renewal `yaml:",inline"`
	ExpiresInDays     int `yaml:"expires_in_days"`
}

type fixtureFile struct {
	Fixtures `yaml:",inline"`
	Renewals []renewalFixture `yaml:"renewals"`
}

// DefaultFixtures parses the embedded demo portfolio.
func DefaultFixtures(now time.Time) (*Fixtures, error) {
	return ParseFixtures(defaultFixtures, now)
}

// ParseFixtures parses YAML fixtures. Renewal expirations are resolved
// against now.
func ParseFixtures(data []byte, now time.Time) (*Fixtures, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	f := file.Fixtures
	day := now.UTC().Truncate(24 * time.Hour)
	f.Renewals = make([]portfolio.Renewal, 0, len(file.Renewals))
	for _, r := range file.Renewals {
		renewal := r.Renewal
		if renewal.ExpirationDate.IsZero() {
			renewal.ExpirationDate = day.AddDate(0, 0, r.ExpiresInDays)
		}
		f.Renewals = append(f.Renewals, renewal)
	}

	if f.fallback() == nil {
		return nil, fmt.Errorf("parsing fixtures: no fallback answer (an answer without keywords)")
	}

	return &f, nil
}

// answerFor picks the first answer with a keyword contained in message,
// falling back to the keyword-less answer.
func (f *Fixtures) answerFor(message string) Answer {
	lower := strings.ToLower(message)
	for _, a := range f.Answers {
		for _, kw := range a.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return a
			}
		}
	}
	return *f.fallback()
}

func (f *Fixtures) fallback() *Answer {
	for i := range f.Answers {
		if len(f.Answers[i].Keywords) == 0 {
			return &f.Answers[i]
		}
	}
	return nil
}

func (f *Fixtures) property(id string) (portfolio.Property, bool) {
	for _, p := range f.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return portfolio.Property{}, false
}
