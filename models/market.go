package models

// MarketSector is a sector with published benchmarks
type MarketSector string

const (
	MarketSectorSaaS       MarketSector = "SaaS"
	MarketSectorFintech    MarketSector = "Fintech"
	MarketSectorHealthtech MarketSector = "Healthtech"
)

// GrowthAlignment compares claimed growth with the sector CAGR
type GrowthAlignment string

const (
	GrowthAligned      GrowthAlignment = "aligned"
	GrowthAggressive   GrowthAlignment = "aggressive"
	GrowthConservative GrowthAlignment = "conservative"
)

// SectorBenchmark holds reference figures for one sector (USD, percent)
type SectorBenchmark struct {
	MinTAM           float64 `yaml:"minTAM" json:"minTAM"`
	MaxReasonableTAM float64 `yaml:"maxReasonableTAM" json:"maxReasonableTAM"`
	CAGR             float64 `yaml:"CAGR" json:"CAGR"`
	AvgTAM           float64 `yaml:"avgTAM" json:"avgTAM"`
	AvgGrowthRate    float64 `yaml:"avgGrowthRate" json:"avgGrowthRate"`
}

// MarketOpportunityInput is the market sizing claimed by a startup
type MarketOpportunityInput struct {
	Sector     MarketSector `json:"sector"`
	TAM        float64      `json:"TAM"`
	SAM        float64      `json:"SAM"`
	SOM        float64      `json:"SOM"`
	GrowthRate float64      `json:"growthRate"`
}

// MarketOpportunityResult is the benchmark validation of a MarketOpportunityInput
type MarketOpportunityResult struct {
	Score           int             `json:"score"`
	Flags           []string        `json:"flags"`
	ValidatedTAM    float64         `json:"validatedTAM"`
	GrowthAlignment GrowthAlignment `json:"growthAlignment"`
}
