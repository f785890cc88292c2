package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/services"
)

const serviceName = "skillmatch"

// Dependencies are the collaborators the HTTP handlers are wired to
type Dependencies struct {
	Analyzer  services.Analyzer
	Taxonomy  services.TaxonomyAdmin
	Jobs      services.JobManager
	Analytics services.AnalyticsRecorder
	Logger    logrus.FieldLogger
	// MaxRequestBytes limits request bodies; zero disables the limit
	MaxRequestBytes int64
}

// API holds dependencies for API handlers
type API struct {
	analyzer  services.Analyzer
	taxonomy  services.TaxonomyAdmin
	jobs      services.JobManager
	analytics services.AnalyticsRecorder
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewAPI creates a new API handler structure
func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &API{
		analyzer:  deps.Analyzer,
		taxonomy:  deps.Taxonomy,
		jobs:      deps.Jobs,
		analytics: deps.Analytics,
		logger:    logger.WithField("component", "api"),
		now:       time.Now,
	}
}

// SetupRoutes registers middleware and every route of the service
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	apiHandler := NewAPI(deps)

	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(apiHandler.logger))
	router.Use(CORSMiddleware())
	if deps.MaxRequestBytes > 0 {
		router.Use(RequestSizeLimitMiddleware(deps.MaxRequestBytes))
	}

	// General routes
	router.GET("/", apiHandler.RootHandler)
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Analysis routes
	analysisRoutes := router.Group("/analysis")
	{
		analysisRoutes.POST("/", apiHandler.AnalyzeUploadHandler)   // Two .txt uploads
		analysisRoutes.POST("/text", apiHandler.AnalyzeTextHandler) // JSON body
	}
	router.POST("/extract", apiHandler.ExtractHandler)

	// Taxonomy routes
	taxonomyRoutes := router.Group("/taxonomy")
	{
		taxonomyRoutes.GET("", apiHandler.GetTaxonomyHandler)
		taxonomyRoutes.GET("/lookup", apiHandler.LookupSkillHandler)
		taxonomyRoutes.POST("/refresh", apiHandler.RefreshTaxonomyHandler)
	}

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Get job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Get job status by ID
	}

	// Analytics route
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)
}

// RootHandler describes the service and its routes
func (api *API) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     serviceName,
		"description": "Deterministic skill extraction and job/resume matching",
		"endpoints": gin.H{
			"analysis":         "POST /analysis/ (multipart: job_description_file, resume_file)",
			"analysis_text":    "POST /analysis/text",
			"extract":          "POST /extract",
			"taxonomy":         "GET /taxonomy",
			"taxonomy_lookup":  "GET /taxonomy/lookup?term=",
			"taxonomy_refresh": "POST /taxonomy/refresh",
			"jobs":             "GET /jobs, GET /jobs/:jobId, GET /jobs/metrics",
			"analytics":        "GET /analytics",
			"health":           "GET /health",
		},
	})
}

// HealthCheckHandler reports liveness and whether a taxonomy is loaded
func (api *API) HealthCheckHandler(c *gin.Context) {
	stats := api.taxonomy.TaxonomyStats()
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          serviceName,
		"taxonomy_ready":   stats.Entries > 0,
		"taxonomy_entries": stats.Entries,
		"timestamp":        fmt.Sprintf("%d", api.now().Unix()),
	})
}
