package models

import (
	"strings"
	"time"
)

// AnalysisResult is the validated output of a grounded analysis
type AnalysisResult struct {
	Summary        string   `json:"summary"`
	TopRisks       []string `json:"topRisks"`
	TeamAssessment string   `json:"teamAssessment"`
	MarketOutlook  string   `json:"marketOutlook"`
	ValuationNotes string   `json:"valuationNotes,omitempty"`
}

// StartupMetadata represents the founder-supplied description of a startup
type StartupMetadata struct {
	StartupName     string            `json:"startupName,omitempty" form:"startupName"`
	Location        string            `json:"location,omitempty" form:"location"`
	Stage           string            `json:"stage,omitempty" form:"stage"`
	Sector          string            `json:"sector,omitempty" form:"sector"`
	BusinessModel   string            `json:"businessModel,omitempty" form:"businessModel"`
	Website         string            `json:"website,omitempty" form:"website"`
	FundingRaised   string            `json:"fundingRaised,omitempty" form:"fundingRaised"`
	TeamSize        string            `json:"teamSize,omitempty" form:"teamSize"`
	AdditionalNotes string            `json:"additionalNotes,omitempty" form:"additionalNotes"`
	Extra           map[string]string `json:"extra,omitempty" form:"-"`
}

// Slug derives the startup id from its name: lower case, whitespace runs
// replaced by "-". Empty when the name is blank.
func (m StartupMetadata) Slug() string {
	name := strings.TrimSpace(m.StartupName)
	if name == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// StartupRecord represents a registered startup
type StartupRecord struct {
	ID        string          `json:"id"`
	Metadata  StartupMetadata `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StartupProfile is the dashboard view of a startup
type StartupProfile struct {
	StartupID         string                   `json:"startupId"`
	Metadata          StartupMetadata          `json:"metadata"`
	Claims            []Claim                  `json:"claims"`
	Summary           string                   `json:"summary"`
	Analysis          *AnalysisResult          `json:"analysis,omitempty"`
	MarketOpportunity *MarketOpportunityResult `json:"marketOpportunity,omitempty"`
	ProductTech       *ProductTechSignals      `json:"productTech,omitempty"`
}
