package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"nivesh-ai-backend/models"
	"nivesh-ai-backend/oracle"
	"nivesh-ai-backend/signals"

	"github.com/xeipuuv/gojsonschema"
)

const (
	polishMaxTokens  = 512
	maxDefensibility = 2
	minContentWord   = 4
)

const polishSystemPrompt = "You are a venture capital analyst AI. You must NOT invent, infer, or hallucinate any information. " +
	"Only use the provided extracted content and metrics. If information is missing, leave it blank or say 'Not specified'."

const polishSchema = `{
  "type": "object",
  "required": ["polishedSummary", "defensibility"],
  "properties": {
    "polishedSummary": {"type": "string"},
    "defensibility": {
      "type": "object",
      "properties": {
        "pros": {"type": "array", "items": {"type": "string"}},
        "cons": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var contentWord = regexp.MustCompile(`[a-z0-9]+`)

var stopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true, "their": true,
	"there": true, "which": true, "about": true, "into": true, "more": true, "than": true,
	"they": true, "been": true, "will": true, "would": true, "could": true, "product": true,
	"startup": true, "company": true, "specified": true, "strong": true, "limited": true,
}

// ProductTechService extracts product/tech signals and optionally has the
// oracle polish them
type ProductTechService struct {
	oracle oracle.Oracle
	polish bool
	schema *gojsonschema.Schema
}

// ProductTechOption is a functional option for ProductTechService
type ProductTechOption func(*ProductTechService)

// ProductTechWithOracle sets the oracle
func ProductTechWithOracle(o oracle.Oracle) ProductTechOption {
	return func(s *ProductTechService) {
		s.oracle = o
	}
}

// ProductTechWithPolish turns the oracle pass on or off (ENABLE_GROQ_ANALYSIS)
func ProductTechWithPolish(enabled bool) ProductTechOption {
	return func(s *ProductTechService) {
		s.polish = enabled
	}
}

// NewProductTechService creates a new product/tech service
func NewProductTechService(opts ...ProductTechOption) *ProductTechService {
	s := &ProductTechService{schema: mustSchema(polishSchema)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs deterministic extraction, then Polish. sections may be nil.
func (s *ProductTechService) Extract(ctx context.Context, deckText string, sections []models.SectionChunk) models.ProductTechSignals {
	return s.Polish(ctx, signals.ExtractProductTech(deckText, sections))
}

type polishOutput struct {
	PolishedSummary string `json:"polishedSummary"`
	Defensibility   struct {
		Pros []string `json:"pros"`
		Cons []string `json:"cons"`
	} `json:"defensibility"`
}

// Polish replaces the polished summary and defensibility with oracle output.
// Any failure keeps the extracted summary and empty pros and cons.
func (s *ProductTechService) Polish(ctx context.Context, extracted models.ProductTechSignals) models.ProductTechSignals {
	out := extracted
	out.PolishedSummary = extracted.ProductSummary
	out.Defensibility = models.Defensibility{Pros: []string{}, Cons: []string{}}

	if !s.polish {
		log.Printf("Warning: [ORACLE] Skipping product/tech polish: ENABLE_GROQ_ANALYSIS is not true")
		return out
	}
	if !oracle.Ready(s.oracle) {
		log.Printf("Warning: [ORACLE] Credentials not configured, skipping product/tech polish")
		return out
	}

	raw, err := s.oracle.Complete(ctx, oracle.Request{
		System:      polishSystemPrompt,
		Prompt:      BuildProductTechPrompt(extracted),
		Temperature: analysisTemp,
		MaxTokens:   polishMaxTokens,
		JSON:        true,
	})
	if err != nil {
		log.Printf("Warning: [ORACLE] Product/tech polish failed: %v", err)
		return out
	}

	parsed, err := s.parsePolish(raw)
	if err != nil {
		log.Printf("Warning: [ORACLE] Product/tech polish output rejected: %v", err)
		return out
	}

	vocab := evidenceVocabulary(extracted)
	if summary := strings.TrimSpace(parsed.PolishedSummary); summary != "" {
		out.PolishedSummary = summary
	}
	out.Defensibility.Pros = traceable(parsed.Defensibility.Pros, vocab)
	out.Defensibility.Cons = traceable(parsed.Defensibility.Cons, vocab)
	return out
}

func (s *ProductTechService) parsePolish(raw string) (*polishOutput, error) {
	cleaned := oracle.StripCodeFence(raw)
	res, err := s.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		return nil, fmt.Errorf("schema violation: %v", res.Errors())
	}
	var out polishOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildProductTechPrompt lists the summary, metrics and evidence the oracle
// may use
func BuildProductTechPrompt(p models.ProductTechSignals) string {
	summary := p.ProductSummary
	if summary == "" {
		summary = "Not specified"
	}

	keys := make([]string, 0, len(p.KeyMetrics))
	for k := range p.KeyMetrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	metricLines := make([]string, 0, len(keys))
	for _, k := range keys {
		metricLines = append(metricLines, fmt.Sprintf("- %s: %v", k, p.KeyMetrics[k]))
	}
	metricsText := strings.Join(metricLines, "\n")
	if metricsText == "" {
		metricsText = "None found"
	}

	snippets := make([]string, 0, len(p.RawEvidence))
	for _, e := range p.RawEvidence {
		snippets = append(snippets, fmt.Sprintf("Section: %s\n%s", e.Section, e.Snippet))
	}
	evidenceText := strings.Join(snippets, "\n---\n")
	if evidenceText == "" {
		evidenceText = "None"
	}

	return "Startup Product/Tech Analysis\n\n" +
		"Extracted Product Summary:\n" + summary + "\n\n" +
		"Key Metrics:\n" + metricsText + "\n\n" +
		"Evidence Snippets:\n" + evidenceText + "\n\n" +
		"Instructions:\n" +
		"1. Polish the product summary for clarity and conciseness, but do NOT add any new information.\n" +
		"2. List exactly 2 pros and 2 cons about the product/tech, strictly based on the evidence and metrics above. If not enough data, leave blank or say 'Not specified'.\n" +
		"3. Do NOT invent or speculate about metrics, tech stack, or claims.\n" +
		"4. Output JSON in this format (STRICT):\n" +
		"{\n" +
		"  \"polishedSummary\": \"<polished summary>\",\n" +
		"  \"defensibility\": {\n" +
		"    \"pros\": [\"<pro 1>\", \"<pro 2>\"],\n" +
		"    \"cons\": [\"<con 1>\", \"<con 2>\"]\n" +
		"  }\n" +
		"}"
}

func contentWords(s string) []string {
	var out []string
	for _, w := range contentWord.FindAllString(strings.ToLower(s), -1) {
		if len(w) >= minContentWord && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

func evidenceVocabulary(p models.ProductTechSignals) map[string]bool {
	vocab := make(map[string]bool)
	add := func(s string) {
		for _, w := range contentWords(s) {
			vocab[w] = true
		}
	}
	add(p.ProductSummary)
	for k, v := range p.KeyMetrics {
		add(k)
		add(fmt.Sprint(v))
	}
	for _, e := range p.RawEvidence {
		add(e.Snippet)
	}
	return vocab
}

// traceable keeps at most two items that share a content word with the evidence
func traceable(items []string, vocab map[string]bool) []string {
	out := []string{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		for _, w := range contentWords(item) {
			if vocab[w] {
				out = append(out, item)
				break
			}
		}
		if len(out) == maxDefensibility {
			break
		}
	}
	return out
}
