package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/metrics"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/oracle"
	"nivesh-ai-backend/vectorstore"

	"github.com/xeipuuv/gojsonschema"
)

const (
	// MaxEvidenceLength caps each evidence chunk in the prompt
	MaxEvidenceLength = 12000
	maxAnalysisTokens = 2000
	analysisTemp      = 0.2
)

// Fallback texts returned instead of an error
const (
	SummaryUnavailable   = "Analysis unavailable: Groq API credentials not configured."
	RiskConfiguration    = "API configuration required"
	AssessNoAccess       = "Unable to assess without API access."
	RiskCommunication    = "API communication error"
	AssessAPIError       = "Unable to assess due to API error."
	summaryFailedPattern = "Analysis failed: %s. Please check API configuration."
)

const analysisSystemPrompt = "You are a venture capital analyst. Use ONLY the provided evidence from the startup documents. " +
	"Do NOT hallucinate or make up information. If evidence is insufficient, state that clearly. " +
	"Pay special attention to red flags and suspicious patterns in founder verification data."

const founderInstructions = "\n\nIMPORTANT: Analyze this founder verification data carefully. Flag any red flags or suspicious patterns in the topRisks array. Pay attention to:\n" +
	"- Low founder strength score (< 6.0)\n" +
	"- Red flags detected (short tenure, recent hires, IC-only roles, etc.)\n" +
	"- Missing critical experience or credentials\n" +
	"- Any inconsistencies or concerns"

const founderCritical = "\n\nCRITICAL: If founder verification shows red flags (low score, short tenure, recent hires, IC-only roles, etc.), include these as specific risks in the topRisks array."

const outputSchemaExample = `{
  "summary": "string",
  "topRisks": [
    "string"
  ],
  "teamAssessment": "string",
  "marketOutlook": "string"
}`

const analysisResultSchema = `{
  "type": "object",
  "required": ["summary", "topRisks", "teamAssessment", "marketOutlook"],
  "properties": {
    "summary": {"type": "string"},
    "topRisks": {"type": "array", "items": {"type": "string"}},
    "teamAssessment": {"type": "string"},
    "marketOutlook": {"type": "string"},
    "valuationNotes": {"type": ["string", "null"]}
  }
}`

// ErrMalformedOracleResponse means the oracle answered but broke the output
// contract. It is never downgraded to a fallback.
var ErrMalformedOracleResponse = errors.New("oracle response is not valid JSON or missing required fields")

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// SanitizeQuery strips control characters, caps the length and trims. Raw
// user queries never reach the oracle.
func SanitizeQuery(q string) string {
	q = controlChars.ReplaceAllString(q, "")
	q = docparse.Truncate(q, MaxQueryLength)
	return strings.TrimSpace(q)
}

// InvestorQuery is the fixed query of a full startup analysis
func InvestorQuery(startupName string) string {
	if strings.TrimSpace(startupName) == "" {
		startupName = "Unknown"
	}
	return fmt.Sprintf("Analyze this startup: %s. Provide a comprehensive assessment including summary, risks, team evaluation, and market outlook. "+
		"Pay special attention to founder verification data and flag any red flags or concerns.", startupName)
}

// AnalysisService produces grounded analyses: Retrieve, Compose, Validate
type AnalysisService struct {
	retriever *Retriever
	oracle    oracle.Oracle
	maxTokens int
	topK      int
	schema    *gojsonschema.Schema
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithRetriever sets the retriever
func AnalysisWithRetriever(r *Retriever) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.retriever = r
	}
}

// AnalysisWithOracle sets the oracle
func AnalysisWithOracle(o oracle.Oracle) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.oracle = o
	}
}

// AnalysisWithMaxTokens sets the token budget, capped at 2000
func AnalysisWithMaxTokens(n int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if n > 0 && n < maxAnalysisTokens {
			s.maxTokens = n
		}
	}
}

// AnalysisWithTopK sets how many evidence chunks are retrieved
func AnalysisWithTopK(k int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.topK = k
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		maxTokens: maxAnalysisTokens,
		topK:      vectorstore.DefaultTopK,
		schema:    mustSchema(analysisResultSchema),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func mustSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// AnalyzeRequest represents one grounded analysis
type AnalyzeRequest struct {
	StartupID string // Scopes retrieval; empty searches every startup
	Query     string
	Metadata  models.StartupMetadata
	Founder   *models.FounderVerificationResult

	// Progress, if set, is told when a phase starts and ends
	Progress func(step, status string)
}

// Analyze runs the three phases. Missing credentials and transport failures
// give fallback results; malformed oracle output is ErrMalformedOracleResponse.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	if !oracle.Ready(s.oracle) {
		log.Printf("Warning: [ANALYZE] Oracle credentials missing, returning fallback analysis")
		return unavailableAnalysis(), nil
	}

	progress := req.Progress
	if progress == nil {
		progress = func(string, string) {}
	}

	query := SanitizeQuery(req.Query)

	progress(models.StepRetrieve, "in_progress")
	var opts []vectorstore.QueryOption
	if req.StartupID != "" {
		opts = append(opts, vectorstore.WithStartupID(req.StartupID))
	}
	evidence := s.retriever.Retrieve(ctx, query, s.topK, opts...)
	if len(evidence) == 0 {
		log.Printf("Warning: [ANALYZE] No evidence retrieved, proceeding with minimal context")
	}
	progress(models.StepRetrieve, "completed")

	progress(models.StepCompose, "in_progress")
	prompt, err := BuildAnalysisPrompt(query, req.Metadata, req.Founder, evidence)
	if err != nil {
		progress(models.StepCompose, "failed")
		return nil, err
	}
	progress(models.StepCompose, "completed")

	progress(models.StepValidate, "in_progress")
	raw, err := s.oracle.Complete(ctx, oracle.Request{
		System:      analysisSystemPrompt,
		Prompt:      prompt,
		Temperature: analysisTemp,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		switch {
		case errors.Is(err, oracle.ErrNotConfigured):
			progress(models.StepValidate, "completed")
			return unavailableAnalysis(), nil
		case oracle.IsTransport(err):
			log.Printf("Warning: [ANALYZE] Oracle transport failure: %v", err)
			progress(models.StepValidate, "completed")
			return transportFailureAnalysis(err), nil
		default:
			progress(models.StepValidate, "failed")
			return nil, fmt.Errorf("%w: %v", ErrMalformedOracleResponse, err)
		}
	}

	result, err := s.parseResult(raw)
	if err != nil {
		progress(models.StepValidate, "failed")
		return nil, err
	}
	progress(models.StepValidate, "completed")
	return result, nil
}

// parseResult strips a code fence and checks the result schema
func (s *AnalysisService) parseResult(raw string) (*models.AnalysisResult, error) {
	cleaned := oracle.StripCodeFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedOracleResponse)
	}

	res, err := s.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOracleResponse, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedOracleResponse, strings.Join(msgs, "; "))
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOracleResponse, err)
	}
	return &result, nil
}

// BuildAnalysisPrompt composes the evidence-only user prompt. query must
// already be sanitized.
func BuildAnalysisPrompt(query string, metadata models.StartupMetadata, founder *models.FounderVerificationResult, evidence []models.DocumentChunk) (string, error) {
	metaJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode startup metadata: %w", err)
	}

	founderBlock := ""
	if founder != nil {
		founderJSON, err := json.MarshalIndent(founder, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode founder verification: %w", err)
		}
		founderBlock = "\n\nFounder Verification Data:\n" + string(founderJSON) + founderInstructions
	}

	evidenceText := "No relevant evidence found in documents."
	if len(evidence) > 0 {
		parts := make([]string, 0, len(evidence))
		for i, e := range evidence {
			parts = append(parts, fmt.Sprintf("[Evidence %d]\n%s", i+1, docparse.Truncate(e.Text, MaxEvidenceLength)))
		}
		evidenceText = strings.Join(parts, "\n\n")
	}

	critical := ""
	if founder != nil {
		critical = founderCritical
	}

	lines := []string{
		"User's analysis request: " + query,
		"\nStartup Context:\nStartup metadata:\n" + string(metaJSON),
		founderBlock,
		"\nRetrieved Evidence from Documents:\n" + evidenceText,
		"\nRequired Output Format (JSON only, no markdown, no extra text):",
		outputSchemaExample,
		"\nReturn ONLY a valid JSON object matching this schema. Do not include markdown code blocks, explanations, or any text outside the JSON.",
		critical,
	}
	return strings.Join(lines, "\n"), nil
}

func unavailableAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:        SummaryUnavailable,
		TopRisks:       []string{RiskConfiguration},
		TeamAssessment: AssessNoAccess,
		MarketOutlook:  AssessNoAccess,
	}
}

func transportFailureAnalysis(err error) *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:        fmt.Sprintf(summaryFailedPattern, err.Error()),
		TopRisks:       []string{RiskCommunication},
		TeamAssessment: AssessAPIError,
		MarketOutlook:  AssessAPIError,
	}
}
