package models

import (
	"encoding/json"
)

// Claim kinds produced by the claim extractor
const (
	ClaimRevenue       = "revenue"
	ClaimUsers         = "users"
	ClaimGrowthRate    = "growthRate"
	ClaimFundingRaised = "fundingRaised"
	ClaimTeamSize      = "teamSize"
	ClaimMarket        = "market"
	ClaimStage         = "stage"
	ClaimGeography     = "geography"
	ClaimTAM           = "TAM"
	ClaimSAM           = "SAM"
	ClaimSOM           = "SOM"
)

// Revenue periods
const (
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"
)

// Claim is one financial or operational fact found in a chunk. Numeric values
// are stored as float64; text values (market, stage, geography) as string.
type Claim struct {
	Claim       string                 `json:"claim"`
	Value       interface{}            `json:"value,omitempty"`
	Period      string                 `json:"period,omitempty"`
	Confidence  *float64               `json:"confidence,omitempty"`
	RawEvidence []string               `json:"rawEvidence"`
	SourceChunk string                 `json:"sourceChunk,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// Number returns the claim value as a float when it is numeric
func (c Claim) Number() (float64, bool) {
	switch v := c.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// MarshalJSON emits the normalized fields plus the keyed form consumers of the
// dashboard read ({"revenue": 71000, "revenuePeriod": "monthly"}).
func (c Claim) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"claim":       c.Claim,
		"rawEvidence": c.RawEvidence,
	}
	if c.RawEvidence == nil {
		out["rawEvidence"] = []string{}
	}
	if c.Value != nil {
		out["value"] = c.Value
		if _, taken := out[c.Claim]; !taken && c.Claim != "" {
			out[c.Claim] = c.Value
		}
	}
	if c.Period != "" {
		out["period"] = c.Period
		if c.Claim == ClaimRevenue {
			out["revenuePeriod"] = c.Period
		}
	}
	if c.Confidence != nil {
		out["confidence"] = *c.Confidence
	}
	if c.SourceChunk != "" {
		out["sourceChunk"] = c.SourceChunk
	}
	if len(c.Extra) > 0 {
		out["extra"] = c.Extra
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads back the normalized fields and ignores the keyed aliases
func (c *Claim) UnmarshalJSON(data []byte) error {
	type plain Claim
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Claim(p)
	return nil
}
