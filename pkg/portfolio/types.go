// Package portfolio defines the insurance-portfolio domain model shared by the
// backend client, the mock backend, and the CLI.
package portfolio

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyMessage is returned when a chat request carries no message text.
var ErrEmptyMessage = errors.New("chat message is required")

// ChatRequest is the body POSTed to the chat endpoint.
type ChatRequest struct {
	// Message is the user's question. Required.
	Message string `json:"message"`

	// ConversationID continues an existing conversation when set.
	ConversationID string `json:"conversation_id,omitempty"`

	// PropertyID scopes document retrieval to a single property.
	PropertyID string `json:"property_id,omitempty"`

	// DocumentType filters retrieval to one document type (e.g. "policy").
	DocumentType string `json:"document_type,omitempty"`

	// Stream requests an event stream response. The client always sets it.
	Stream bool `json:"stream"`
}

// Validate reports whether the request can be sent.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Source is a document passage the assistant grounded its answer on.
type Source struct {
	DocumentID   string  `json:"document_id" yaml:"document_id"`
	DocumentName string  `json:"document_name" yaml:"document_name"`
	Page         int     `json:"page" yaml:"page"`
	Snippet      string  `json:"snippet" yaml:"snippet"`
	Score        float64 `json:"score" yaml:"score"`
}

// Dashboard is the organization-level portfolio summary.
type Dashboard struct {
	OrganizationID     string  `json:"organization_id" yaml:"organization_id"`
	TotalProperties    int     `json:"total_properties" yaml:"total_properties"`
	TotalInsuredValue  float64 `json:"total_insured_value" yaml:"total_insured_value"`
	TotalPremium       float64 `json:"total_premium" yaml:"total_premium"`
	OpenGaps           int     `json:"open_gaps" yaml:"open_gaps"`
	CriticalGaps       int     `json:"critical_gaps" yaml:"critical_gaps"`
	ComplianceRate     float64 `json:"compliance_rate" yaml:"compliance_rate"`
	UpcomingRenewals   int     `json:"upcoming_renewals" yaml:"upcoming_renewals"`
	OpenClaims         int     `json:"open_claims" yaml:"open_claims"`
	DocumentsProcessed int     `json:"documents_processed" yaml:"documents_processed"`
}

// Property is an insured location.
type Property struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Address       string  `json:"address" yaml:"address"`
	City          string  `json:"city" yaml:"city"`
	State         string  `json:"state" yaml:"state"`
	PropertyType  string  `json:"property_type" yaml:"property_type"`
	Units         int     `json:"units" yaml:"units"`
	InsuredValue  float64 `json:"insured_value" yaml:"insured_value"`
	AnnualPremium float64 `json:"annual_premium" yaml:"annual_premium"`
	HealthScore   int     `json:"health_score" yaml:"health_score"`
	OpenGaps      int     `json:"open_gaps" yaml:"open_gaps"`
}

// Severity ranks coverage gaps.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities from most (0) to least severe. Unknown values sort
// last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// CoverageGap is a detected shortfall between a property's coverage and its
// requirements.
type CoverageGap struct {
	ID             string   `json:"id" yaml:"id"`
	PropertyID     string   `json:"property_id" yaml:"property_id"`
	PropertyName   string   `json:"property_name" yaml:"property_name"`
	GapType        string   `json:"gap_type" yaml:"gap_type"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	CurrentValue   string   `json:"current_value,omitempty" yaml:"current_value"`
	RequiredValue  string   `json:"required_value,omitempty" yaml:"required_value"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation"`
	Status         string   `json:"status" yaml:"status"`
}

// ComplianceStatus is the state of a lender or regulatory requirement.
type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
	CompliancePending      ComplianceStatus = "pending"
)

// ComplianceItem is one checklist entry for a property.
type ComplianceItem struct {
	ID          string           `json:"id" yaml:"id"`
	PropertyID  string           `json:"property_id" yaml:"property_id"`
	Requirement string           `json:"requirement" yaml:"requirement"`
	Source      string           `json:"source" yaml:"source"`
	Status      ComplianceStatus `json:"status" yaml:"status"`
	Notes       string           `json:"notes,omitempty" yaml:"notes"`
}

// Renewal tracks an upcoming policy renewal.
type Renewal struct {
	ID              string    `json:"id" yaml:"id"`
	PropertyID      string    `json:"property_id" yaml:"property_id"`
	PropertyName    string    `json:"property_name" yaml:"property_name"`
	PolicyNumber    string    `json:"policy_number" yaml:"policy_number"`
	Carrier         string    `json:"carrier" yaml:"carrier"`
	ExpirationDate  time.Time `json:"expiration_date" yaml:"expiration_date"`
	CurrentPremium  float64   `json:"current_premium" yaml:"current_premium"`
	ProjectedChange float64   `json:"projected_change" yaml:"projected_change"`
	Stage           string    `json:"stage" yaml:"stage"`
}

// Document is an uploaded insurance document.
type Document struct {
	ID           string    `json:"id" yaml:"id"`
	PropertyID   string    `json:"property_id" yaml:"property_id"`
	Name         string    `json:"name" yaml:"name"`
	DocumentType string    `json:"document_type" yaml:"document_type"`
	Status       string    `json:"status" yaml:"status"`
	Pages        int       `json:"pages" yaml:"pages"`
	UploadedAt   time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// Claim is a loss claim against a property's policy.
type Claim struct {
	ID          string    `json:"id" yaml:"id"`
	PropertyID  string    `json:"property_id" yaml:"property_id"`
	ClaimNumber string    `json:"claim_number" yaml:"claim_number"`
	LossType    string    `json:"loss_type" yaml:"loss_type"`
	LossDate    time.Time `json:"loss_date" yaml:"loss_date"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Status      string    `json:"status" yaml:"status"`
}
