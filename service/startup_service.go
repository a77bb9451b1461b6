package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/repository"
	"nivesh-ai-backend/signals"
	"nivesh-ai-backend/storage"

	"github.com/google/uuid"
)

// minDeckText is the shortest deck text worth a product/tech pass
const minDeckText = 30

var (
	ErrNoFiles      = errors.New("no files uploaded")
	ErrEmptyQuery   = errors.New("query must be a non-empty string")
	ErrFileNotFound = errors.New("file not found")
)

// StartupService runs the full analysis of an uploaded startup and serves
// the stored signals
type StartupService struct {
	ingestion   *IngestionService
	analysis    *AnalysisService
	productTech *ProductTechService
	team        *TeamService
	signals     repository.SignalStore
	jobRepo     repository.JobStore
	documents   repository.DocumentStore
	storage     storage.Storage
	parser      *docparse.Parser
	now         func() time.Time
}

// StartupServiceOption is a functional option for StartupService
type StartupServiceOption func(*StartupService)

// StartupWithIngestion sets the ingestion service
func StartupWithIngestion(s *IngestionService) StartupServiceOption {
	return func(ss *StartupService) {
		ss.ingestion = s
	}
}

// StartupWithAnalysis sets the analysis service
func StartupWithAnalysis(s *AnalysisService) StartupServiceOption {
	return func(ss *StartupService) {
		ss.analysis = s
	}
}

// StartupWithProductTech sets the product/tech service
func StartupWithProductTech(s *ProductTechService) StartupServiceOption {
	return func(ss *StartupService) {
		ss.productTech = s
	}
}

// StartupWithTeam sets the team service
func StartupWithTeam(s *TeamService) StartupServiceOption {
	return func(ss *StartupService) {
		ss.team = s
	}
}

// StartupWithSignalStore sets where extracted signals are persisted
func StartupWithSignalStore(store repository.SignalStore) StartupServiceOption {
	return func(ss *StartupService) {
		ss.signals = store
	}
}

// StartupWithJobStore sets the analysis job store
func StartupWithJobStore(store repository.JobStore) StartupServiceOption {
	return func(ss *StartupService) {
		ss.jobRepo = store
	}
}

// StartupWithDocumentStore sets where uploads are recorded
func StartupWithDocumentStore(store repository.DocumentStore) StartupServiceOption {
	return func(ss *StartupService) {
		ss.documents = store
	}
}

// StartupWithStorage sets the raw file storage
func StartupWithStorage(s storage.Storage) StartupServiceOption {
	return func(ss *StartupService) {
		ss.storage = s
	}
}

// StartupWithParser sets the document parser
func StartupWithParser(p *docparse.Parser) StartupServiceOption {
	return func(ss *StartupService) {
		ss.parser = p
	}
}

// StartupWithClock overrides the clock used for generated startup ids
func StartupWithClock(now func() time.Time) StartupServiceOption {
	return func(ss *StartupService) {
		ss.now = now
	}
}

// NewStartupService creates a new startup service
func NewStartupService(opts ...StartupServiceOption) *StartupService {
	s := &StartupService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = docparse.NewParser()
	}
	if s.productTech == nil {
		s.productTech = NewProductTechService()
	}
	if s.team == nil {
		s.team = NewTeamService(nil)
	}
	return s
}

// UploadedFile is one file of the analyze form
type UploadedFile struct {
	Field    string // pitchDeck, transcript, email, cv
	Filename string
	MimeType string
	Data     []byte
}

// RunRequest represents one analyze submission
type RunRequest struct {
	Metadata models.StartupMetadata
	Role     string // Founder role for verification, default "Founder"
	Files    []UploadedFile
}

// RunResult is everything produced for the startup
type RunResult struct {
	Analysis            *models.AnalysisResult            `json:"analysis"`
	StartupID           string                            `json:"startupId"`
	FounderVerification *models.FounderVerificationResult `json:"founderVerification,omitempty"`
	TeamInfo            *models.TeamInfo                  `json:"teamInfo,omitempty"`
	Claims              []models.Claim                    `json:"claims"`
	Metadata            models.StartupMetadata            `json:"metadata"`
	Summary             string                            `json:"summary"`
	MarketOpportunity   *models.MarketOpportunityResult   `json:"marketOpportunity,omitempty"`
	ProductTech         *models.ProductTechSignals        `json:"productTech,omitempty"`
}

// Run acquires the uploads, extracts every signal, ingests the documents and
// produces a grounded analysis. Extraction problems are logged and skipped;
// only a failed analysis fails the run.
func (s *StartupService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}
	if s.analysis == nil {
		return nil, errors.New("analysis service not set")
	}

	startupID := req.Metadata.Slug()
	if startupID == "" {
		startupID = fmt.Sprintf("startup-%d", s.now().UnixMilli())
	}
	log.Printf("[ANALYZE] Startup ID: %s (%d files)", startupID, len(req.Files))

	s.save(ctx, repository.KindStartups, startupID, models.StartupRecord{
		ID:        startupID,
		Metadata:  req.Metadata,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	})

	var docs []models.ProcessedFile
	var cvText string
	for _, f := range req.Files {
		processed := s.acquire(ctx, startupID, f)
		if f.Field == models.FieldCV {
			cvText = processed.Text
			continue
		}
		docs = append(docs, processed)
	}

	result := &RunResult{
		StartupID: startupID,
		Metadata:  req.Metadata,
		Claims:    []models.Claim{},
	}

	deckText := ""
	for _, d := range docs {
		if d.Field == models.FieldPitchDeck {
			deckText = d.Text
			break
		}
	}

	// product/tech comes from the first slide deck, whatever field it was sent in
	for _, d := range docs {
		if d.FileType.IsDeck() && len(d.Text) > minDeckText {
			pt := s.productTech.Extract(ctx, d.Text, nil)
			result.ProductTech = &pt
			s.save(ctx, repository.KindProductTech, startupID, pt)
			log.Printf("[ANALYZE] Product/tech signals extracted from %s", d.Filename)
			break
		}
	}

	if strings.TrimSpace(deckText) != "" {
		team := signals.ExtractTeamInfo(deckText)
		result.TeamInfo = &team
		if len(team.Members) > 0 {
			s.save(ctx, repository.KindTeamInfo, startupID, team)
		}
		log.Printf("[ANALYZE] Team info extracted: %d members", team.TotalMembers)
	}

	founderText := cvText
	if strings.TrimSpace(founderText) == "" {
		founderText = deckText
	}
	if strings.TrimSpace(founderText) != "" {
		role := strings.TrimSpace(req.Role)
		if role == "" {
			role = "Founder"
		}
		fv := signals.ExtractFounderSignals(founderText, startupID, role,
			signals.WithSectorHint(req.Metadata.Sector),
			signals.WithFallbackText(deckText),
		)
		result.FounderVerification = &fv
		s.save(ctx, repository.KindFounderVerifications, startupID, fv)
		log.Printf("[ANALYZE] Founder strength score: %.1f (%d red flags)", fv.FounderStrengthScore, len(fv.RedFlags))
	}

	var chunks []models.DocumentChunk
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		chunks = append(chunks, models.DocumentChunk{ID: fmt.Sprint(len(chunks) + 1), Text: d.Text})
	}
	result.Claims = signals.ValidateClaims(signals.ExtractClaims(chunks))
	if result.Claims == nil {
		result.Claims = []models.Claim{}
	}
	s.save(ctx, repository.KindClaims, startupID, result.Claims)
	log.Printf("[ANALYZE] Extracted %d claims", len(result.Claims))

	if input, ok := signals.MarketInputFromClaims(req.Metadata.Sector, result.Claims); ok {
		mo, err := signals.ValidateMarketOpportunity(input)
		if err != nil {
			log.Printf("Warning: [ANALYZE] Market opportunity validation failed: %v", err)
		} else {
			result.MarketOpportunity = &mo
			s.save(ctx, repository.KindMarketOpportunity, startupID, mo)
		}
	} else {
		log.Printf("[ANALYZE] Market opportunity: unsupported sector or missing TAM/SAM/SOM/growth")
	}

	if s.ingestion != nil {
		if _, err := s.ingestion.Ingest(ctx, IngestRequest{
			StartupID: startupID,
			Files:     docs,
			Metadata:  metadataMap(req.Metadata),
		}); err != nil {
			log.Printf("Warning: [ANALYZE] Ingestion failed for %s: %v", startupID, err)
		}
	}

	analysis, err := s.analysis.Analyze(ctx, AnalyzeRequest{
		StartupID: startupID,
		Query:     InvestorQuery(req.Metadata.StartupName),
		Metadata:  req.Metadata,
		Founder:   result.FounderVerification,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze startup %s: %w", startupID, err)
	}
	result.Analysis = analysis
	result.Summary = analysis.Summary
	s.save(ctx, repository.KindAnalysis, startupID, analysis)

	return result, nil
}

// acquire parses one upload and stores its raw bytes. Failures leave the
// text empty.
func (s *StartupService) acquire(ctx context.Context, startupID string, f UploadedFile) models.ProcessedFile {
	fileType := docparse.DetectFileType(f.MimeType, f.Filename)
	processed := models.ProcessedFile{FileType: fileType, Field: f.Field, Filename: f.Filename}

	text, err := s.parser.Parse(ctx, f.Data, fileType, f.Filename)
	if err != nil {
		log.Printf("Warning: [ANALYZE] Could not read %s (%s): %v", f.Filename, fileType, err)
	}
	processed.Text = text

	if doc := s.storeUpload(ctx, startupID, f, fileType); doc != nil {
		processed.SavedFile = doc.StoragePath
	}
	return processed
}

// storeUpload writes the raw bytes once per startup and fingerprint
func (s *StartupService) storeUpload(ctx context.Context, startupID string, f UploadedFile, fileType models.FileType) *models.UploadedDocument {
	if s.storage == nil || len(f.Data) == 0 {
		return nil
	}
	fingerprint := docparse.Fingerprint(f.Data)
	if s.documents != nil {
		if existing, err := s.documents.GetByFingerprint(ctx, startupID, fingerprint); err == nil {
			return existing
		}
	}

	doc := &models.UploadedDocument{
		ID:          uuid.New(),
		StartupID:   startupID,
		Field:       f.Field,
		Filename:    f.Filename,
		MimeType:    f.MimeType,
		FileType:    fileType,
		Size:        int64(len(f.Data)),
		Fingerprint: fingerprint,
	}
	path, err := s.storage.Upload(ctx, startupID, doc.ID, f.Filename, bytes.NewReader(f.Data))
	if err != nil {
		log.Printf("Warning: [ANALYZE] Failed to store %s: %v", f.Filename, err)
		return nil
	}
	doc.StoragePath = path

	if s.documents != nil {
		if err := s.documents.Create(ctx, doc); err != nil {
			log.Printf("Warning: [ANALYZE] Failed to record %s: %v", f.Filename, err)
		}
	}
	return doc
}

// GetStartup assembles the stored profile. Missing pieces are left empty.
func (s *StartupService) GetStartup(ctx context.Context, startupID string) (*models.StartupProfile, error) {
	profile := &models.StartupProfile{StartupID: startupID, Claims: []models.Claim{}}

	var record models.StartupRecord
	if s.load(ctx, repository.KindStartups, startupID, &record) {
		profile.Metadata = record.Metadata
	}
	var claims []models.Claim
	if s.load(ctx, repository.KindClaims, startupID, &claims) && claims != nil {
		profile.Claims = claims
	}
	var analysis models.AnalysisResult
	if s.load(ctx, repository.KindAnalysis, startupID, &analysis) {
		profile.Analysis = &analysis
		profile.Summary = analysis.Summary
	}
	var market models.MarketOpportunityResult
	if s.load(ctx, repository.KindMarketOpportunity, startupID, &market) {
		profile.MarketOpportunity = &market
	}
	var pt models.ProductTechSignals
	if s.load(ctx, repository.KindProductTech, startupID, &pt) {
		profile.ProductTech = &pt
	}
	return profile, nil
}

// GetFounderVerification returns repository.ErrNotFound when none was stored
func (s *StartupService) GetFounderVerification(ctx context.Context, startupID string) (*models.FounderVerificationResult, error) {
	if s.signals == nil {
		return nil, repository.ErrNotFound
	}
	var fv models.FounderVerificationResult
	if err := s.signals.Load(ctx, repository.KindFounderVerifications, startupID, &fv); err != nil {
		return nil, err
	}
	return &fv, nil
}

// GetTeamInfo returns the stored roster with a role assessment per member.
// The stored sector is the domain, "startup" when unknown.
func (s *StartupService) GetTeamInfo(ctx context.Context, startupID string) (*models.TeamInfo, error) {
	if s.signals == nil {
		return nil, repository.ErrNotFound
	}
	var team models.TeamInfo
	if err := s.signals.Load(ctx, repository.KindTeamInfo, startupID, &team); err != nil {
		return nil, err
	}

	domain := defaultDomain
	var record models.StartupRecord
	if s.load(ctx, repository.KindStartups, startupID, &record) && record.Metadata.Sector != "" {
		domain = record.Metadata.Sector
	}

	annotated := s.team.AnnotateRoles(ctx, team, domain)
	return &annotated, nil
}

// GetProductTech returns repository.ErrNotFound when none was stored
func (s *StartupService) GetProductTech(ctx context.Context, startupID string) (*models.ProductTechSignals, error) {
	if s.signals == nil {
		return nil, repository.ErrNotFound
	}
	var pt models.ProductTechSignals
	if err := s.signals.Load(ctx, repository.KindProductTech, startupID, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// RefreshProductTech re-extracts product/tech signals from deck text and
// replaces the stored ones
func (s *StartupService) RefreshProductTech(ctx context.Context, startupID, deckText string, sections []models.SectionChunk) (*models.ProductTechSignals, error) {
	if strings.TrimSpace(deckText) == "" {
		return nil, errors.New("deckText is required")
	}
	pt := s.productTech.Extract(ctx, deckText, sections)
	if s.signals != nil {
		if err := s.signals.Save(ctx, repository.KindProductTech, startupID, pt); err != nil {
			return nil, fmt.Errorf("failed to save product/tech signals: %w", err)
		}
	}
	return &pt, nil
}

// QueryRequest is one chat question about a startup
type QueryRequest struct {
	StartupID string // Optional; defaults to the slug of the startup name
	Metadata  models.StartupMetadata
	UserQuery string
}

// Query answers a free-text question from the stored evidence
func (s *StartupService) Query(ctx context.Context, req QueryRequest) (*models.AnalysisResult, error) {
	if strings.TrimSpace(req.UserQuery) == "" {
		return nil, ErrEmptyQuery
	}
	if s.analysis == nil {
		return nil, errors.New("analysis service not set")
	}
	startupID := req.StartupID
	if startupID == "" {
		startupID = req.Metadata.Slug()
	}

	var founder *models.FounderVerificationResult
	if startupID != "" {
		if fv, err := s.GetFounderVerification(ctx, startupID); err == nil {
			founder = fv
		}
	}

	return s.analysis.Analyze(ctx, AnalyzeRequest{
		StartupID: startupID,
		Query:     req.UserQuery,
		Metadata:  req.Metadata,
		Founder:   founder,
	})
}

// IngestContent flattens structured documents and adds them to the
// startup's evidence
func (s *StartupService) IngestContent(ctx context.Context, startupID string, documents []interface{}, metadata map[string]interface{}) (*IngestResult, error) {
	if s.ingestion == nil {
		return nil, errors.New("ingestion service not set")
	}
	files := make([]models.ProcessedFile, 0, len(documents))
	for _, d := range documents {
		files = append(files, ContentFile(d, SourceUpload))
	}
	return s.ingestion.Ingest(ctx, IngestRequest{StartupID: startupID, Files: files, Metadata: metadata})
}

// GetFile opens a stored upload
func (s *StartupService) GetFile(ctx context.Context, id uuid.UUID) (*models.UploadedDocument, io.ReadCloser, error) {
	if s.documents == nil || s.storage == nil {
		return nil, nil, ErrFileNotFound
	}
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, nil, ErrFileNotFound
	}
	rc, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}
	return doc, rc, nil
}

func (s *StartupService) save(ctx context.Context, kind repository.SignalKind, startupID string, value interface{}) {
	if s.signals == nil {
		return
	}
	if err := s.signals.Save(ctx, kind, startupID, value); err != nil {
		log.Printf("Warning: Failed to save %s for %s: %v", kind, startupID, err)
	}
}

// load reports whether a value was found and decoded
func (s *StartupService) load(ctx context.Context, kind repository.SignalKind, startupID string, dest interface{}) bool {
	if s.signals == nil {
		return false
	}
	if err := s.signals.Load(ctx, kind, startupID, dest); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Warning: Could not load %s for %s: %v", kind, startupID, err)
		}
		return false
	}
	return true
}

// metadataMap turns the form metadata into chunk metadata
func metadataMap(m models.StartupMetadata) map[string]interface{} {
	out := map[string]interface{}{}
	data, err := json.Marshal(m)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}
