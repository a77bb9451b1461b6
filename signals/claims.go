// Package signals extracts deterministic facts from startup documents: financial
// claims, founder signals, the team roster, product/tech attributes and market
// sizing. Nothing here calls a model or touches a store.
package signals

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"nivesh-ai-backend/models"
)

const (
	currency   = `(\$|₹|rs\.?|inr)`
	number     = `(\d+(?:,\d{3})*(?:\.\d+)?)`
	suffix     = `(k|m|b|cr|lakh|l|million|billion)`
	sizeSuffix = `(k|m|b|cr|lakh|l|million|billion|trillion|bn|mn)`
	period     = `(month|monthly|year|annual|annually)`
	stageWords = `(idea|mvp|prototype|beta|launch|growth|scale|series|seed|pre-seed|early|late)`
)

var (
	revenuePatterns = []*regexp.Regexp{
		regexp.MustCompile(currency + `\s*` + number + `\s*` + suffix + `?\s*(?:per\s+)?` + period),
		regexp.MustCompile(number + `\s*` + suffix + `?\s*(?:per\s+)?` + period + `\s*(revenue|income|sales)`),
		regexp.MustCompile(`(revenue|income|sales)\s*(?:of|is|:)\s*` + currency + `?\s*` + number + `\s*` + suffix + `?\s*(?:per\s+)?` + period),
	}

	userPatterns = []*regexp.Regexp{
		regexp.MustCompile(number + `\s*(k|m|b|million|billion)?\s*(users?|customers?|clients?|people)`),
		regexp.MustCompile(`(users?|customers?|clients?|people)\s*(?:base|count|number)\s*(?:of|is|:)\s*` + number + `\s*` + suffix + `?`),
	}

	growthPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)%\s*` + period + `\s*(?:over\s+)?` + period + `?\s*(growth|increase)`),
		regexp.MustCompile(`(growth|increase)\s*(?:rate|of)\s*(\d+(?:\.\d+)?)%\s*(?:per\s+)?` + period),
	}

	cagrPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)%\s*cagr`),
		regexp.MustCompile(`cagr\s*(?:of|is|:|at)?\s*(\d+(?:\.\d+)?)%`),
	}

	fundingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:raised|secured|received)\s*` + currency + `?\s*` + number + `\s*` + suffix +
			`?\s*(?:in\s+)?(?:(?:pre-seed|seed|series\s+[a-e]|angel|bridge)\s+)?(?:funding|investment|series|round)`),
		regexp.MustCompile(`(?:funding|investment|series|round)\s*(?:of|amount)\s*` + currency + `?\s*` + number + `\s*` + suffix + `?`),
	}

	teamPatterns = []*regexp.Regexp{
		regexp.MustCompile(number + `\s*(?:person|people|member|employee|team|staff)`),
		regexp.MustCompile(`(team|staff|employees?|people)\s*(?:size|of|count)\s*(?:is|:)\s*` + number),
	}

	marketPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:market|sector|industry|domain)\s*(?:is|:|of)\s*([a-zA-Z\s&,-]+)`),
		regexp.MustCompile(`(?:operating|working)\s*(?:in|on)\s*(?:the\s+)?([a-zA-Z\s&,-]+)\s*(?:market|sector|industry)`),
	}

	stagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:stage|phase)\s*(?:is|:|of)\s*` + stageWords),
		regexp.MustCompile(stageWords + `\s*(?:stage|phase)`),
	}

	geographyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:located|based|operating)\s*(?:in|at)\s*([a-zA-Z\s,]+)`),
		regexp.MustCompile(`(?:geography|location|region)\s*(?:is|:|of)\s*([a-zA-Z\s,]+)`),
	}

	// TAM / SAM / SOM, by acronym or spelled out
	marketSizePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(tam|sam|som)\b\s*(?:\([^)]*\))?\s*(?:of|is|:|-|=)?\s*` + currency + `?\s*` + number + `\s*` + sizeSuffix + `?\b`),
		regexp.MustCompile(`(total addressable|serviceable addressable|serviceable obtainable|serviceable available)\s+market\s*(?:\([a-z]+\))?\s*(?:of|is|:|-|=)?\s*` +
			currency + `?\s*` + number + `\s*` + sizeSuffix + `?\b`),
	}

	marketSizeKinds = map[string]string{
		"tam":                     models.ClaimTAM,
		"sam":                     models.ClaimSAM,
		"som":                     models.ClaimSOM,
		"total addressable":       models.ClaimTAM,
		"serviceable addressable": models.ClaimSAM,
		"serviceable available":   models.ClaimSAM,
		"serviceable obtainable":  models.ClaimSOM,
	}
)

// ExtractClaims runs the claim patterns over every chunk. Each match becomes one
// claim tagged with the chunk id and the chunk text as evidence; duplicates
// across chunks and pattern families are kept.
func ExtractClaims(chunks []models.DocumentChunk) []models.Claim {
	var claims []models.Claim
	for _, chunk := range chunks {
		claims = append(claims, extractChunkClaims(chunk)...)
	}
	return claims
}

// ValidateClaims is the cross-checking hook; claims currently pass unchanged.
func ValidateClaims(claims []models.Claim) []models.Claim {
	return claims
}

func extractChunkClaims(chunk models.DocumentChunk) []models.Claim {
	text := strings.ToLower(chunk.Text)
	var out []models.Claim

	add := func(kind string, value interface{}, period string, extra map[string]interface{}) {
		out = append(out, models.Claim{
			Claim:       kind,
			Value:       value,
			Period:      period,
			RawEvidence: []string{chunk.Text},
			SourceChunk: chunk.ID,
			Extra:       extra,
		})
	}

	for i, re := range revenuePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			var num, sfx, per string
			switch i {
			case 0:
				num, sfx, per = m[2], m[3], m[4]
			case 1:
				num, sfx, per = m[1], m[2], m[3]
			case 2:
				num, sfx, per = m[3], m[4], m[5]
			}
			amount, ok := normalizeAmount(num, sfx)
			if !ok || amount == 0 || per == "" {
				continue
			}
			add(models.ClaimRevenue, amount, revenuePeriod(per), nil)
		}
	}

	for i, re := range userPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			num, sfx := m[1], m[2]
			if i == 1 {
				num, sfx = m[2], m[3]
			}
			users, ok := normalizeAmount(num, sfx)
			if !ok || users == 0 {
				continue
			}
			add(models.ClaimUsers, users, "", nil)
		}
	}

	for i, re := range growthPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := m[1]
			if i == 1 {
				raw = m[2]
			}
			rate, err := strconv.ParseFloat(raw, 64)
			if err != nil || rate == 0 {
				continue
			}
			add(models.ClaimGrowthRate, rate, "", nil)
		}
	}

	for _, re := range cagrPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			rate, err := strconv.ParseFloat(m[1], 64)
			if err != nil || rate == 0 {
				continue
			}
			add(models.ClaimGrowthRate, rate, "", map[string]interface{}{"basis": "CAGR"})
		}
	}

	for _, re := range fundingPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			amount, ok := normalizeAmount(m[2], m[3])
			if !ok || amount == 0 {
				continue
			}
			add(models.ClaimFundingRaised, amount, "", nil)
		}
	}

	for i, re := range teamPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := m[1]
			if i == 1 {
				raw = m[2]
			}
			size, ok := parseNumber(raw)
			if !ok || math.Trunc(size) == 0 {
				continue
			}
			add(models.ClaimTeamSize, math.Trunc(size), "", nil)
		}
	}

	for _, re := range marketPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if market := strings.TrimSpace(m[1]); len(market) > 2 {
				add(models.ClaimMarket, market, "", nil)
			}
		}
	}

	for _, re := range stagePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if stage := strings.TrimSpace(m[1]); stage != "" {
				add(models.ClaimStage, stage, "", nil)
			}
		}
	}

	for _, re := range geographyPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if geo := strings.TrimSpace(m[1]); len(geo) > 2 {
				add(models.ClaimGeography, geo, "", nil)
			}
		}
	}

	for _, re := range marketSizePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			kind := marketSizeKinds[m[1]]
			amount, ok := normalizeAmount(m[3], m[4])
			if kind == "" || !ok || amount == 0 {
				continue
			}
			add(kind, amount, "", nil)
		}
	}

	return out
}

func revenuePeriod(p string) string {
	if strings.Contains(p, "month") {
		return models.PeriodMonthly
	}
	return models.PeriodAnnual
}

// parseNumber strips thousands separators and parses the remainder
func parseNumber(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Multiplier maps a magnitude suffix to its factor. Unknown or empty suffixes
// return 1.
func Multiplier(suffix string) float64 {
	switch strings.ToLower(strings.TrimSpace(suffix)) {
	case "k":
		return 1e3
	case "m", "mn", "million":
		return 1e6
	case "b", "bn", "billion":
		return 1e9
	case "cr", "lakh", "l":
		return 1e5
	case "trillion":
		return 1e12
	}
	return 1
}

// normalizeAmount applies the suffix multiplier and rounds to a whole number
func normalizeAmount(raw, suffix string) (float64, bool) {
	n, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	return math.Round(n * Multiplier(suffix)), true
}
