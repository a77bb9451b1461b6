package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/oracle"
	"nivesh-ai-backend/repository"
	"nivesh-ai-backend/storage"
	"nivesh-ai-backend/vectorstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deckText = `LedgerLoop
PRODUCT
Cloud platform that reconciles invoices automatically for merchants with bank integrations.
OUR TEAM
Priya Sharma - CEO & Co-Founder
Formerly at Razorpay, 10 years of experience in payments.
Rahul Verma - CTO
MARKET
TAM of $50B
Serviceable addressable market: $4.2 billion
SOM: $120M
Market growing at 22% CAGR
raised $2.5M in Seed funding`

const cvText = `Priya Sharma, Founder of LedgerLoop
12 years of experience building fintech products. Previously at Google.`

// pdfRunner stands in for pdftotext and returns its input unchanged
type pdfRunner struct{}

func (pdfRunner) Run(_ context.Context, _ string, _ []string, stdin []byte) ([]byte, error) {
	return stdin, nil
}

type startupFixture struct {
	svc       *StartupService
	oracle    *fakeOracle
	vectors   *vectorstore.MemoryStore
	signals   *repository.JSONFileStore
	documents *repository.MemoryDocumentStore
	jobs      *repository.MemoryJobStore
}

// analysisOracle answers JSON requests with an analysis and text requests
// with a role sentence
func analysisOracle() *fakeOracle {
	return &fakeOracle{respond: func(req oracle.Request) (string, error) {
		if req.JSON {
			return validAnalysisJSON, nil
		}
		return "Key hire for the payments stack.", nil
	}}
}

func newStartupFixture(t *testing.T, o *fakeOracle) *startupFixture {
	t.Helper()
	signalStore, err := repository.NewJSONFileStore(t.TempDir())
	require.NoError(t, err)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	embedder := embedding.NewHashEmbedder(64)
	vectors := vectorstore.NewMemoryStore()
	documents := repository.NewMemoryDocumentStore()
	jobs := repository.NewMemoryJobStore()

	var orc oracle.Oracle
	if o != nil {
		orc = o
	}

	svc := NewStartupService(
		StartupWithIngestion(NewIngestionService(IngestWithEmbedder(embedder), IngestWithStore(vectors))),
		StartupWithAnalysis(NewAnalysisService(
			AnalysisWithOracle(orc),
			AnalysisWithRetriever(NewRetriever(embedder, vectors)),
		)),
		StartupWithTeam(NewTeamService(orc)),
		StartupWithSignalStore(signalStore),
		StartupWithJobStore(jobs),
		StartupWithDocumentStore(documents),
		StartupWithStorage(files),
		StartupWithParser(docparse.NewParser(docparse.WithCommandRunner(pdfRunner{}))),
		StartupWithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	return &startupFixture{svc: svc, oracle: o, vectors: vectors, signals: signalStore, documents: documents, jobs: jobs}
}

func ledgerLoopRequest() RunRequest {
	return RunRequest{
		Metadata: models.StartupMetadata{StartupName: "Ledger Loop", Sector: "Fintech"},
		Files: []UploadedFile{
			{Field: models.FieldPitchDeck, Filename: "deck.pdf", MimeType: "application/pdf", Data: []byte(deckText)},
			{Field: models.FieldCV, Filename: "priya.txt", MimeType: "text/plain", Data: []byte(cvText)},
		},
	}
}

func TestRunRequiresFiles(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	_, err := f.svc.Run(context.Background(), RunRequest{})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestRunProducesEverySignal(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	res, err := f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	assert.Equal(t, "ledger-loop", res.StartupID)
	assert.Equal(t, "Payments infra for SMBs", res.Summary)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, []string{"Short runway"}, res.Analysis.TopRisks)

	require.NotNil(t, res.FounderVerification)
	assert.Equal(t, "Priya Sharma", res.FounderVerification.Name)
	assert.Equal(t, "Founder", res.FounderVerification.Role)
	assert.Equal(t, "ledger-loop", res.FounderVerification.StartupID)

	require.NotNil(t, res.TeamInfo)
	assert.GreaterOrEqual(t, res.TeamInfo.TotalMembers, 2)

	require.NotNil(t, res.ProductTech)
	assert.NotEmpty(t, res.ProductTech.ProductSummary)

	require.NotEmpty(t, res.Claims)
	for _, c := range res.Claims {
		assert.Equal(t, "1", c.SourceChunk)
	}

	require.NotNil(t, res.MarketOpportunity)
	assert.Equal(t, 50e9, res.MarketOpportunity.ValidatedTAM)

	// analysis prompt carries the founder block
	var analysisPrompt string
	for _, req := range f.oracle.calls() {
		if req.JSON {
			analysisPrompt = req.Prompt
		}
	}
	assert.Contains(t, analysisPrompt, "Founder Verification Data:")
	assert.Contains(t, analysisPrompt, "Analyze this startup: Ledger Loop.")
}

func TestRunIngestsDocumentsButNotCV(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	hits, err := f.vectors.Query(ctx, make([]float64, 64), vectorstore.MaxTopK, vectorstore.WithStartupID("ledger-loop"))
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.NotContains(t, h.Text, "Previously at Google")
		assert.Equal(t, "Fintech", h.Metadata["sector"])
		assert.Equal(t, "pdf", h.Metadata[models.MetaFileType])
	}
}

func TestRunStoresUploadsOnce(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)
	_, err = f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	docs, err := f.documents.ListByStartup(ctx, "ledger-loop")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var deck *models.UploadedDocument
	for _, d := range docs {
		if d.Field == models.FieldPitchDeck {
			deck = d
		}
	}
	require.NotNil(t, deck)
	assert.Equal(t, models.FileTypePDF, deck.FileType)
	assert.True(t, strings.HasPrefix(deck.StoragePath, "startups/ledger-loop/"))

	doc, rc, err := f.svc.GetFile(ctx, deck.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, deckText, string(data))
	assert.Equal(t, "deck.pdf", doc.Filename)

	_, _, err = f.svc.GetFile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRunWithoutNameGeneratesID(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	req := ledgerLoopRequest()
	req.Metadata.StartupName = "  "

	res, err := f.svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "startup-1700000000000", res.StartupID)
}

func TestRunWithoutOracleStillSucceeds(t *testing.T) {
	f := newStartupFixture(t, nil)

	res, err := f.svc.Run(context.Background(), ledgerLoopRequest())
	require.NoError(t, err)
	assert.Equal(t, SummaryUnavailable, res.Summary)
	assert.NotNil(t, res.FounderVerification)
}

func TestRunFailsOnMalformedAnalysis(t *testing.T) {
	f := newStartupFixture(t, replying("not json at all"))
	_, err := f.svc.Run(context.Background(), ledgerLoopRequest())
	assert.ErrorIs(t, err, ErrMalformedOracleResponse)
}

func TestRunUsesDeckForFounderWithoutCV(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	req := ledgerLoopRequest()
	req.Files = req.Files[:1]
	req.Role = "CEO"

	res, err := f.svc.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.FounderVerification)
	assert.Equal(t, "CEO", res.FounderVerification.Role)
}

func TestGetStartupAssemblesProfile(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	profile, err := f.svc.GetStartup(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", profile.StartupID)
	assert.Equal(t, []models.Claim{}, profile.Claims)
	assert.Nil(t, profile.Analysis)

	_, err = f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	profile, err = f.svc.GetStartup(ctx, "ledger-loop")
	require.NoError(t, err)
	assert.Equal(t, "Ledger Loop", profile.Metadata.StartupName)
	assert.Equal(t, "Payments infra for SMBs", profile.Summary)
	assert.NotEmpty(t, profile.Claims)
	assert.NotNil(t, profile.MarketOpportunity)
	assert.NotNil(t, profile.ProductTech)
}

func TestGetSignalsNotFound(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.GetFounderVerification(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.svc.GetTeamInfo(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.svc.GetProductTech(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetTeamInfoAnnotatesRolesWithSector(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	team, err := f.svc.GetTeamInfo(ctx, "ledger-loop")
	require.NoError(t, err)
	require.NotEmpty(t, team.Members)
	for _, m := range team.Members {
		assert.Equal(t, "Key hire for the payments stack.", m.AIAnalysis)
	}

	var rolePrompts int
	for _, req := range f.oracle.calls() {
		if !req.JSON {
			rolePrompts++
			assert.Contains(t, req.Prompt, "Domain: Fintech")
		}
	}
	assert.Equal(t, len(team.Members), rolePrompts)
}

func TestRefreshProductTech(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.RefreshProductTech(ctx, "acme", "  ", nil)
	assert.Error(t, err)

	pt, err := f.svc.RefreshProductTech(ctx, "acme", "PRODUCT\nA scheduling app for clinics with 300 active users.", nil)
	require.NoError(t, err)

	stored, err := f.svc.GetProductTech(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, pt.ProductSummary, stored.ProductSummary)
}

func TestQueryUsesStoredFounder(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.Query(ctx, QueryRequest{UserQuery: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	res, err := f.svc.Query(ctx, QueryRequest{
		Metadata:  models.StartupMetadata{StartupName: "Ledger Loop"},
		UserQuery: "How strong is the founder?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Payments infra for SMBs", res.Summary)

	calls := f.oracle.calls()
	last := calls[len(calls)-1]
	assert.Contains(t, last.Prompt, "User's analysis request: How strong is the founder?")
	assert.Contains(t, last.Prompt, "Founder Verification Data:")
}

func TestIngestContent(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	res, err := f.svc.IngestContent(ctx, "acme", []interface{}{
		map[string]interface{}{"title": "Q3 update", "body": "Revenue grew 40%"},
		"Signed two hospital pilots",
	}, map[string]interface{}{"channel": "email"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 2, f.vectors.Len())
}

func TestAnalysisJobLifecycle(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.CreateAnalysisJob(ctx, CreateAnalysisJobRequest{StartupID: "nobody"})
	assert.ErrorIs(t, err, ErrStartupNotFound)

	_, err = f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	created, err := f.svc.CreateAnalysisJob(ctx, CreateAnalysisJobRequest{StartupID: "ledger-loop"})
	require.NoError(t, err)

	job, err := f.svc.GetJob(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, InvestorQuery("Ledger Loop"), job.Query)

	require.NoError(t, f.svc.ProcessAnalysisJob(ctx, created.JobID))

	job, err = f.svc.GetJob(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)
	assert.Equal(t, "Payments infra for SMBs", job.Result.Summary)
	require.Len(t, job.Steps, 3)
	for _, step := range job.Steps {
		assert.Equal(t, "completed", step.Status, step.Name)
	}
	require.NotNil(t, job.CurrentStep)
	assert.Equal(t, models.StepValidate, *job.CurrentStep)

	_, err = f.svc.GetJob(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestAnalysisJobFailure(t *testing.T) {
	f := newStartupFixture(t, analysisOracle())
	ctx := context.Background()

	_, err := f.svc.Run(ctx, ledgerLoopRequest())
	require.NoError(t, err)

	f.oracle.respond = func(oracle.Request) (string, error) { return "{}", nil }
	created, err := f.svc.CreateAnalysisJob(ctx, CreateAnalysisJobRequest{StartupID: "ledger-loop", Query: "Any red flags?"})
	require.NoError(t, err)

	err = f.svc.ProcessAnalysisJob(ctx, created.JobID)
	assert.ErrorIs(t, err, ErrMalformedOracleResponse)

	job, err := f.svc.GetJob(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "missing required fields")
	assert.Equal(t, "Any red flags?", job.Query)
}
