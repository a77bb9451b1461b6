package signals

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"nivesh-ai-backend/models"

	"gopkg.in/yaml.v3"
)

// Market flags
const (
	FlagTAMBelowMin   = "TAM below sector minimum"
	FlagTAMAboveMax   = "TAM exceeds sector maximum"
	FlagSAMAboveTAM   = "SAM exceeds TAM"
	FlagSOMAboveSAM   = "SOM exceeds 10% of SAM"
	FlagAggressive    = "Growth rate > sector CAGR + 5% (aggressive)"
	FlagConservative  = "Growth rate < sector CAGR - 5% (conservative)"
	growthTolerancePP = 5.0
)

var ErrUnsupportedSector = errors.New("sector has no market benchmarks")

//go:embed benchmarks.yaml
var benchmarksYAML []byte

var (
	defaultBenchmarks     Benchmarks
	defaultBenchmarksErr  error
	defaultBenchmarksOnce sync.Once
)

// Benchmarks maps a sector to its reference figures
type Benchmarks map[models.MarketSector]models.SectorBenchmark

// ParseBenchmarks reads a YAML document keyed by sector name
func ParseBenchmarks(data []byte) (Benchmarks, error) {
	var b Benchmarks
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse sector benchmarks: %w", err)
	}
	return b, nil
}

// DefaultBenchmarks returns the embedded benchmark table
func DefaultBenchmarks() (Benchmarks, error) {
	defaultBenchmarksOnce.Do(func() {
		defaultBenchmarks, defaultBenchmarksErr = ParseBenchmarks(benchmarksYAML)
	})
	return defaultBenchmarks, defaultBenchmarksErr
}

// ValidateMarketOpportunity checks claimed market sizing against the embedded
// benchmarks
func ValidateMarketOpportunity(input models.MarketOpportunityInput) (models.MarketOpportunityResult, error) {
	b, err := DefaultBenchmarks()
	if err != nil {
		return models.MarketOpportunityResult{}, err
	}
	return b.Validate(input)
}

// Validate scores input starting from 100 and subtracting per failed check.
// A TAM under the sector minimum is flagged without a penalty.
func (b Benchmarks) Validate(input models.MarketOpportunityInput) (models.MarketOpportunityResult, error) {
	bench, ok := b[input.Sector]
	if !ok {
		return models.MarketOpportunityResult{}, fmt.Errorf("%w: %q", ErrUnsupportedSector, input.Sector)
	}

	score := 100
	flags := []string{}

	if input.TAM < bench.MinTAM {
		flags = append(flags, FlagTAMBelowMin)
	}
	if input.TAM > bench.MaxReasonableTAM {
		flags = append(flags, FlagTAMAboveMax)
		score -= 20
	}
	if input.SAM > input.TAM {
		flags = append(flags, FlagSAMAboveTAM)
		score -= 10
	}
	if input.SOM > 0.1*input.SAM {
		flags = append(flags, FlagSOMAboveSAM)
		score -= 15
	}

	alignment := models.GrowthAligned
	switch {
	case input.GrowthRate > bench.CAGR+growthTolerancePP:
		alignment = models.GrowthAggressive
		flags = append(flags, FlagAggressive)
		score -= 10
	case input.GrowthRate < bench.CAGR-growthTolerancePP:
		alignment = models.GrowthConservative
		flags = append(flags, FlagConservative)
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	return models.MarketOpportunityResult{
		Score:           score,
		Flags:           flags,
		ValidatedTAM:    input.TAM,
		GrowthAlignment: alignment,
	}, nil
}

// MarketSectorFromString maps a free-form sector label (case-insensitive) to
// a benchmarked sector
func MarketSectorFromString(s string) (models.MarketSector, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "saas":
		return models.MarketSectorSaaS, true
	case "fintech":
		return models.MarketSectorFintech, true
	case "healthtech":
		return models.MarketSectorHealthtech, true
	}
	return "", false
}

// MarketInputFromClaims assembles validation input from extracted claims. It
// takes the first TAM, SAM and SOM claim and prefers a CAGR growth claim over
// other growth claims. It reports false when the sector is unsupported or any
// value is missing or zero.
func MarketInputFromClaims(sector string, claims []models.Claim) (models.MarketOpportunityInput, bool) {
	ms, ok := MarketSectorFromString(sector)
	if !ok {
		return models.MarketOpportunityInput{}, false
	}

	input := models.MarketOpportunityInput{Sector: ms}
	var growth, cagr float64
	for _, c := range claims {
		v, numeric := c.Number()
		if !numeric {
			continue
		}
		switch c.Claim {
		case models.ClaimTAM:
			if input.TAM == 0 {
				input.TAM = v
			}
		case models.ClaimSAM:
			if input.SAM == 0 {
				input.SAM = v
			}
		case models.ClaimSOM:
			if input.SOM == 0 {
				input.SOM = v
			}
		case models.ClaimGrowthRate:
			if basis, _ := c.Extra["basis"].(string); basis == "CAGR" {
				if cagr == 0 {
					cagr = v
				}
			} else if growth == 0 {
				growth = v
			}
		}
	}
	input.GrowthRate = cagr
	if input.GrowthRate == 0 {
		input.GrowthRate = growth
	}

	if input.TAM == 0 || input.SAM == 0 || input.SOM == 0 || input.GrowthRate == 0 {
		return input, false
	}
	return input, true
}
