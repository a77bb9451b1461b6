package handlers

import (
	"net/http"

	"nivesh-ai-backend/metrics"
	"nivesh-ai-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a gin engine
func NewRouter(startups *service.StartupService, maxFileSize int64) *gin.Engine {
	startupHandler := NewStartupHandler(startups, maxFileSize)
	jobHandler := NewJobHandler(startups)
	fileHandler := NewFileHandler(startups)

	r := gin.Default()
	r.MaxMultipartMemory = maxFileSize
	r.Use(requestMetrics())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerAPI(r.Group("/api"), startupHandler, jobHandler, fileHandler)
	return r
}

func registerAPI(api *gin.RouterGroup, startups *StartupHandler, jobs *JobHandler, files *FileHandler) {
	// Analysis
	api.POST("/analyze", startups.Analyze)
	api.POST("/rag/query", startups.Query)

	// Stored signals
	api.GET("/startup/:startupId", startups.GetStartup)
	api.GET("/founder-verification/:startupId", startups.GetFounderVerification)
	api.GET("/team-info/:startupId", startups.GetTeamInfo)
	api.GET("/startup/:startupId/product-tech", startups.GetProductTech)
	api.POST("/startup/:startupId/product-tech", startups.RefreshProductTech)
	api.POST("/startup/:startupId/documents", startups.IngestDocuments)

	// Job endpoints
	api.POST("/startup/:startupId/analysis-jobs", jobs.CreateAnalysisJob)
	api.GET("/jobs/:id", jobs.GetJobStatus)

	// File endpoints
	api.GET("/files/:id", files.GetFile)
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
