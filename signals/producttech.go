package signals

import (
	"fmt"
	"regexp"
	"strings"

	"nivesh-ai-backend/models"
)

// MinSectionLength drops sections too short to carry content
const MinSectionLength = 30

var (
	headingLine = regexp.MustCompile(`^[A-Z0-9 .\-]{5,}$`)

	productKeywords = []string{
		"product", "solution", "technology", "platform", "features", "tech",
		"architecture", "ai", "machine learning", "ml", "security",
	}
	productKeywordPatterns = wordPatterns(productKeywords)

	sectorTable = []struct {
		sector   models.Sector
		keywords []*regexp.Regexp
	}{
		{models.SectorSaaS, wordPatterns([]string{"saas", "software", "subscription", "cloud"})},
		{models.SectorFintech, wordPatterns([]string{"fintech", "finance", "payments", "banking", "lending", "wallet"})},
		{models.SectorHealthtech, wordPatterns([]string{"healthtech", "healthcare", "medical", "patient", "clinical", "doctor", "hospital"})},
	}

	metricTable = []struct {
		name     string
		patterns []*regexp.Regexp
	}{
		{"MRR", []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:\bMRR\b|monthly recurring revenue)\s*[:\-]?\s*\$?(\d[\d,.]*[mk]?)`),
			regexp.MustCompile(`(?i)\$?(\d[\d,.]*[mk]?)\s*(?:\bMRR\b|monthly recurring revenue)`),
		}},
		{"users", []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:users|customers|clients)\s*[:\-]?\s*(\d[\d,.]*[mk]?)`),
			regexp.MustCompile(`(?i)(\d[\d,.]*[mk]?)\+?\s*(?:active\s+)?(?:users|customers|clients)\b`),
		}},
		{"pilots", []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:pilots|trials)\s*[:\-]?\s*(\d[\d,.]*)`),
			regexp.MustCompile(`(?i)(\d[\d,.]*)\s*(?:paid\s+)?(?:pilots|trials)\b`),
		}},
		{"accuracy", []*regexp.Regexp{
			regexp.MustCompile(`(?i)\baccuracy\s*[:\-]?\s*(\d[\d.]*%?)`),
			regexp.MustCompile(`(?i)(\d[\d.]*%)\s*accuracy`),
		}},
		{"uptime", []*regexp.Regexp{
			regexp.MustCompile(`(?i)\buptime\s*[:\-]?\s*(\d[\d.]*%?)`),
			regexp.MustCompile(`(?i)(\d[\d.]*%)\s*uptime`),
		}},
	}
)

func wordPatterns(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// SplitSections cuts deck text at all-caps heading lines. A section is named
// after its heading, or "Section N" when it has none. Sections whose text is
// MinSectionLength characters or shorter are dropped.
func SplitSections(text string) []models.SectionChunk {
	var raw [][]string
	var current []string
	for i, line := range strings.Split(text, "\n") {
		if i > 0 && headingLine.MatchString(strings.TrimRight(line, "\r")) {
			raw = append(raw, current)
			current = nil
		}
		current = append(current, line)
	}
	raw = append(raw, current)

	var sections []models.SectionChunk
	for i, lines := range raw {
		body := strings.TrimSpace(strings.Join(lines, "\n"))
		if len(body) <= MinSectionLength {
			continue
		}
		title := fmt.Sprintf("Section %d", i+1)
		if first := strings.TrimSpace(lines[0]); headingLine.MatchString(first) {
			title = first
		}
		sections = append(sections, models.SectionChunk{Section: title, Text: body})
	}
	return sections
}

// ExtractProductTech builds product/tech signals from deck sections. When
// sections is empty the deck text is split first. Defensibility stays empty
// and the polished summary equals the extracted summary until a model pass
// replaces them.
func ExtractProductTech(deckText string, sections []models.SectionChunk) models.ProductTechSignals {
	if len(sections) == 0 {
		sections = SplitSections(deckText)
	}

	var evidence []models.EvidenceSnippet
	var summary []string
	for _, s := range sections {
		if isProductSection(s) {
			evidence = append(evidence, models.EvidenceSnippet{Section: s.Section, Snippet: s.Text})
			summary = append(summary, s.Text)
		}
	}

	if len(summary) == 0 {
		if largest, ok := largestSection(sections); ok {
			evidence = append(evidence, models.EvidenceSnippet{Section: largest.Section, Snippet: largest.Text})
			summary = append(summary, largest.Text)
		} else if t := strings.TrimSpace(deckText); t != "" {
			summary = append(summary, t)
		}
	}

	productSummary := strings.TrimSpace(strings.Join(summary, "\n"))
	if evidence == nil {
		evidence = []models.EvidenceSnippet{}
	}
	return models.ProductTechSignals{
		Sector:          detectSector(sections),
		ProductSummary:  productSummary,
		PolishedSummary: productSummary,
		KeyMetrics:      extractMetrics(sections),
		Defensibility:   models.Defensibility{Pros: []string{}, Cons: []string{}},
		RawEvidence:     evidence,
	}
}

func isProductSection(s models.SectionChunk) bool {
	title := strings.ToLower(s.Section)
	for i, k := range productKeywords {
		if strings.Contains(title, k) && len(k) > 2 {
			return true
		}
		if productKeywordPatterns[i].MatchString(s.Section) || productKeywordPatterns[i].MatchString(s.Text) {
			return true
		}
	}
	return false
}

func largestSection(sections []models.SectionChunk) (models.SectionChunk, bool) {
	var best models.SectionChunk
	found := false
	for _, s := range sections {
		if !found || len(s.Text) > len(best.Text) {
			best = s
			found = true
		}
	}
	return best, found
}

// detectSector picks the sector with the most keyword hits; ties go to the
// earlier table entry
func detectSector(sections []models.SectionChunk) models.Sector {
	best, bestHits := models.SectorUnknown, 0
	for _, row := range sectorTable {
		hits := 0
		for _, s := range sections {
			for _, re := range row.keywords {
				hits += len(re.FindAllStringIndex(s.Text, -1))
			}
		}
		if hits > bestHits {
			best, bestHits = row.sector, hits
		}
	}
	return best
}

// extractMetrics keeps the first value found for each metric
func extractMetrics(sections []models.SectionChunk) map[string]interface{} {
	metrics := make(map[string]interface{})
	for _, row := range metricTable {
		for _, s := range sections {
			if _, done := metrics[row.name]; done {
				break
			}
			for _, re := range row.patterns {
				if m := re.FindStringSubmatch(s.Text); m != nil {
					if v := strings.TrimRight(m[1], ".,"); v != "" {
						metrics[row.name] = v
						break
					}
				}
			}
		}
	}
	return metrics
}
