package client

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/binder/pkg/portfolio"
)

// Backend read endpoints.
const (
	PathDashboard  = "/api/dashboard"
	PathProperties = "/api/properties"
	PathGaps       = "/api/gaps"
	PathCompliance = "/api/compliance"
	PathRenewals   = "/api/renewals"
	PathDocuments  = "/api/documents"
	PathClaims     = "/api/claims"
	PathChat       = "/api/chat"
)

// GapQuery narrows ListGaps. Empty fields are not sent.
type GapQuery struct {
	PropertyID string
	Severity   portfolio.Severity
	Status     string
}

func (q GapQuery) values() url.Values {
	return url.Values{
		"property_id": {q.PropertyID},
		"severity":    {string(q.Severity)},
		"status":      {q.Status},
	}
}

func byProperty(propertyID string) url.Values {
	return url.Values{"property_id": {propertyID}}
}

// Dashboard returns the organization summary.
func (c *Client) Dashboard(ctx context.Context) (*portfolio.Dashboard, error) {
	var out portfolio.Dashboard
	if err := c.getJSON(ctx, PathDashboard, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProperties returns every property in the organization.
func (c *Client) ListProperties(ctx context.Context) ([]portfolio.Property, error) {
	var out []portfolio.Property
	if err := c.getJSON(ctx, PathProperties, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProperty returns one property. A missing property is a *StatusError
// for which IsNotFound reports true.
func (c *Client) GetProperty(ctx context.Context, id string) (*portfolio.Property, error) {
	if id == "" {
		return nil, fmt.Errorf("property id is required")
	}

	var out portfolio.Property
	if err := c.getJSON(ctx, PathProperties+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGaps returns coverage gaps matching q.
func (c *Client) ListGaps(ctx context.Context, q GapQuery) ([]portfolio.CoverageGap, error) {
	var out []portfolio.CoverageGap
	if err := c.getJSON(ctx, PathGaps, q.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCompliance returns compliance checklist items, optionally for one
// property.
func (c *Client) ListCompliance(ctx context.Context, propertyID string) ([]portfolio.ComplianceItem, error) {
	var out []portfolio.ComplianceItem
	if err := c.getJSON(ctx, PathCompliance, byProperty(propertyID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRenewals returns upcoming policy renewals.
func (c *Client) ListRenewals(ctx context.Context) ([]portfolio.Renewal, error) {
	var out []portfolio.Renewal
	if err := c.getJSON(ctx, PathRenewals, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDocuments returns uploaded documents, optionally for one property.
func (c *Client) ListDocuments(ctx context.Context, propertyID string) ([]portfolio.Document, error) {
	var out []portfolio.Document
	if err := c.getJSON(ctx, PathDocuments, byProperty(propertyID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListClaims returns claims, optionally for one property.
func (c *Client) ListClaims(ctx context.Context, propertyID string) ([]portfolio.Claim, error) {
	var out []portfolio.Claim
	if err := c.getJSON(ctx, PathClaims, byProperty(propertyID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Overview is the landing view: the dashboard with its gap and renewal lists.
type Overview struct {
	Dashboard *portfolio.Dashboard
	Gaps      []portfolio.CoverageGap
	Renewals  []portfolio.Renewal
}

// Overview fetches the dashboard, gaps and renewals concurrently. The first
// failure cancels the remaining requests and is returned.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	out := &Overview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d, err := c.Dashboard(gctx)
		if err != nil {
			return fmt.Errorf("fetching dashboard: %w", err)
		}
		out.Dashboard = d
		return nil
	})

	g.Go(func() error {
		gaps, err := c.ListGaps(gctx, GapQuery{})
		if err != nil {
			return fmt.Errorf("fetching gaps: %w", err)
		}
		out.Gaps = gaps
		return nil
	})

	g.Go(func() error {
		renewals, err := c.ListRenewals(gctx)
		if err != nil {
			return fmt.Errorf("fetching renewals: %w", err)
		}
		out.Renewals = renewals
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
