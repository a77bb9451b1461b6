package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/oracle"
	"nivesh-ai-backend/repository"
	"nivesh-ai-backend/service"
	"nivesh-ai-backend/storage"
	"nivesh-ai-backend/vectorstore"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{"summary":"Clinic scheduling with traction","topRisks":["Single founder"],"teamAssessment":"Thin","marketOutlook":"Large"}`

const pitchDeck = `CareSlot
OUR TEAM
Meera Iyer - CEO & Founder
Formerly at Practo, 8 years of experience in healthcare.
We have 10k users today.`

type stubOracle struct{}

func (stubOracle) Name() string { return "stub" }

func (stubOracle) Complete(_ context.Context, req oracle.Request) (string, error) {
	if req.JSON {
		return analysisJSON, nil
	}
	return "Drives clinic partnerships.", nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.StartupService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signals, err := repository.NewJSONFileStore(t.TempDir())
	require.NoError(t, err)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	embedder := embedding.NewHashEmbedder(64)
	vectors := vectorstore.NewMemoryStore()
	var o oracle.Oracle = stubOracle{}

	svc := service.NewStartupService(
		service.StartupWithIngestion(service.NewIngestionService(
			service.IngestWithEmbedder(embedder),
			service.IngestWithStore(vectors),
		)),
		service.StartupWithAnalysis(service.NewAnalysisService(
			service.AnalysisWithOracle(o),
			service.AnalysisWithRetriever(service.NewRetriever(embedder, vectors)),
		)),
		service.StartupWithTeam(service.NewTeamService(o)),
		service.StartupWithSignalStore(signals),
		service.StartupWithJobStore(repository.NewMemoryJobStore()),
		service.StartupWithDocumentStore(repository.NewMemoryDocumentStore()),
		service.StartupWithStorage(files),
	)

	jobs := NewJobHandler(svc)
	jobs.process = func(id uuid.UUID) {
		_ = svc.ProcessAnalysisJob(context.Background(), id)
	}

	r := gin.New()
	registerAPI(r.Group("/api"), NewStartupHandler(svc, 1024), jobs, NewFileHandler(svc))
	return r, svc
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func analyzeRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".txt")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyzeWithoutFiles(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, analyzeRequest(t, map[string]string{"startupName": "CareSlot"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "NO_FILES", env.Error.Code)
}

func TestAnalyzeRejectsLargeFiles(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, analyzeRequest(t, nil, map[string][]byte{"pitchDeck": bytes.Repeat([]byte("a"), 2048)}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)
}

func TestAnalyzeThenReadSignals(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, analyzeRequest(t,
		map[string]string{"startupName": "Care Slot", "sector": "Healthtech", "role": "CEO"},
		map[string][]byte{"pitchDeck": []byte(pitchDeck)},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, env.Success)

	var result struct {
		StartupID           string `json:"startupId"`
		Summary             string `json:"summary"`
		FounderVerification struct {
			Role string `json:"role"`
		} `json:"founderVerification"`
		Claims []map[string]interface{} `json:"claims"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "care-slot", result.StartupID)
	assert.Equal(t, "Clinic scheduling with traction", result.Summary)
	assert.Equal(t, "CEO", result.FounderVerification.Role)
	assert.NotEmpty(t, result.Claims)

	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/api/startup/care-slot", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"startupName":"Care Slot"`)

	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/api/founder-verification/care-slot", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"founderStrengthScore"`)

	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/api/team-info/care-slot", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Meera Iyer")
	assert.Contains(t, string(env.Data), "Drives clinic partnerships.")
}

func TestSignalsNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/founder-verification/ghost",
		"/api/team-info/ghost",
		"/api/startup/ghost/product-tech",
	} {
		w, env := do(t, r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "NOT_FOUND", env.Error.Code, path)
	}

	// the profile view always answers
	w, env := do(t, r, httptest.NewRequest(http.MethodGet, "/api/startup/ghost", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestRefreshProductTech(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, jsonRequest(http.MethodPost, "/api/startup/careslot/product-tech", gin.H{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	w, _ = do(t, r, jsonRequest(http.MethodPost, "/api/startup/careslot/product-tech", gin.H{
		"deckText": "PRODUCT\nOnline booking for clinics with reminders over WhatsApp.",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/api/startup/careslot/product-tech", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Online booking for clinics")
}

func TestQueryValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, jsonRequest(http.MethodPost, "/api/rag/query", gin.H{"userQuery": "Who are the competitors?"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	w, _ = do(t, r, jsonRequest(http.MethodPost, "/api/rag/query", gin.H{
		"startupContext": gin.H{"startupName": "CareSlot"},
		"userQuery":      "  ",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, jsonRequest(http.MethodPost, "/api/rag/query", gin.H{
		"startupContext": gin.H{"startupName": "CareSlot"},
		"userQuery":      "Who are the competitors?",
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Clinic scheduling with traction")
}

func TestIngestDocuments(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := do(t, r, jsonRequest(http.MethodPost, "/api/startup/careslot/documents", gin.H{"documents": []string{}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := do(t, r, jsonRequest(http.MethodPost, "/api/startup/careslot/documents", gin.H{
		"documents": []interface{}{"Board update: 40 clinics live", gin.H{"note": "Series A talks"}},
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"chunks":2,"stored":2,"dropped":0}`, string(env.Data))
}

func TestAnalysisJobRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, jsonRequest(http.MethodPost, "/api/startup/ghost/analysis-jobs", gin.H{}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = do(t, r, analyzeRequest(t,
		map[string]string{"startupName": "CareSlot"},
		map[string][]byte{"pitchDeck": []byte(pitchDeck)},
	))
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, jsonRequest(http.MethodPost, "/api/startup/careslot/analysis-jobs", gin.H{"query": "Biggest risk?"}))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var created struct {
		JobID uuid.UUID `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/api/jobs/"+created.JobID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var job struct {
		Status string `json:"status"`
		Query  string `json:"query"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, "completed", job.Status)
	assert.Equal(t, "Biggest risk?", job.Query)

	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/api/jobs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	w, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/api/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFile(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, httptest.NewRequest(http.MethodGet, "/api/files/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/api/files/xyz", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
