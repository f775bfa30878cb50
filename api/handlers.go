package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/binder/pkg/portfolio"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleDashboard returns the dashboard scoped to the requested organization.
func (s *Server) handleDashboard(c *fiber.Ctx) error {
	d := s.fixtures.Dashboard
	if org := c.Query("organization_id"); org != "" {
		d.OrganizationID = org
	}
	return c.JSON(d)
}

func (s *Server) handleListProperties(c *fiber.Ctx) error {
	return c.JSON(nonNil(s.fixtures.Properties))
}

func (s *Server) handleGetProperty(c *fiber.Ctx) error {
	p, ok := s.fixtures.property(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "property not found"})
	}
	return c.JSON(p)
}

// handleListGaps filters by property_id, severity and status and returns the
// gaps most severe first.
func (s *Server) handleListGaps(c *fiber.Ctx) error {
	gaps := portfolio.FilterGaps(s.fixtures.Gaps, portfolio.GapFilter{
		PropertyID: c.Query("property_id"),
		Severity:   portfolio.Severity(c.Query("severity")),
		Status:     c.Query("status"),
	})
	return c.JSON(nonNil(gaps))
}

func (s *Server) handleListCompliance(c *fiber.Ctx) error {
	items := byProperty(s.fixtures.Compliance, c.Query("property_id"),
		func(i portfolio.ComplianceItem) string { return i.PropertyID })
	return c.JSON(portfolio.FilterCompliance(items, portfolio.ComplianceStatus(c.Query("status"))))
}

func (s *Server) handleListRenewals(c *fiber.Ctx) error {
	return c.JSON(nonNil(portfolio.SortRenewalsByDue(s.fixtures.Renewals)))
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	return c.JSON(nonNil(byProperty(s.fixtures.Documents, c.Query("property_id"),
		func(d portfolio.Document) string { return d.PropertyID })))
}

func (s *Server) handleListClaims(c *fiber.Ctx) error {
	return c.JSON(nonNil(byProperty(s.fixtures.Claims, c.Query("property_id"),
		func(cl portfolio.Claim) string { return cl.PropertyID })))
}

// byProperty keeps items belonging to propertyID. An empty id keeps all.
func byProperty[T any](items []T, propertyID string, idOf func(T) string) []T {
	if propertyID == "" {
		return items
	}

	var out []T
	for _, item := range items {
		if idOf(item) == propertyID {
			out = append(out, item)
		}
	}
	return out
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
