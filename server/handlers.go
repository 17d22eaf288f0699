package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llmtestbench/internal/provider"
)

// Handlers contains the HTTP handlers for the benchmark API
type Handlers struct {
	jobManager *JobManager
}

// NewHandlers creates new handlers
func NewHandlers(jobManager *JobManager) *Handlers {
	return &Handlers{
		jobManager: jobManager,
	}
}

// HealthHandler responds to health checks
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

// SystemStatusHandler reports active jobs and which provider credentials
// are present in the environment
func SystemStatusHandler(c *gin.Context, jobManager *JobManager) {
	creds := provider.LoadCredentials()
	var providers []string
	for _, family := range []provider.Family{provider.AWSClaude, provider.OpenAI, provider.Gemini} {
		if creds.Supports(family) {
			switch family {
			case provider.OpenAI:
				providers = append(providers, "openai")
			case provider.Gemini:
				providers = append(providers, "gemini")
			default:
				providers = append(providers, "bedrock")
			}
		}
	}

	c.JSON(http.StatusOK, SystemStatus{
		ActiveJobs: jobManager.GetActiveJobCount(),
		TotalJobs:  len(jobManager.ListJobs()),
		Providers:  providers,
	})
}

// StartBenchmark starts a new benchmark job and returns the job ID
func (h *Handlers) StartBenchmark(c *gin.Context) {
	var request BenchmarkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		AppLogger.Error("StartBenchmark failed to bind JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if request.Config == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "config is required"})
		return
	}

	jobID := h.jobManager.CreateJob(request)
	AppLogger.InfoWithContext(&LogContext{JobID: jobID}, "Created job for asynchronous benchmark")

	go h.jobManager.RunBenchmark(jobID, request)

	c.JSON(http.StatusAccepted, gin.H{
		"jobId":   jobID,
		"message": "Benchmark job started successfully",
		"status":  "started",
		"sse": gin.H{
			"url":     "/api/jobs/" + jobID + "/stream",
			"message": "Connect to SSE endpoint for real-time progress updates",
		},
	})
}

// GetJobStatus returns the current status of a job
func (h *Handlers) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobId")

	job, exists := h.jobManager.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs returns all jobs
func (h *Handlers) ListJobs(c *gin.Context) {
	jobs := h.jobManager.ListJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// CancelJob cancels a running job
func (h *Handlers) CancelJob(c *gin.Context) {
	jobID := c.Param("jobId")

	AppLogger.InfoWithContext(&LogContext{JobID: jobID}, "Received cancellation request for job")

	if h.jobManager.CancelJob(jobID) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Job cancelled successfully",
			"jobId":   jobID,
			"status":  "cancelled",
		})
	} else {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Job not found or not cancellable",
			"jobId":  jobID,
			"status": "not_found",
		})
	}
}

// CleanupJobs removes old jobs
func (h *Handlers) CleanupJobs(c *gin.Context) {
	h.jobManager.CleanupOldJobs()
	c.JSON(http.StatusOK, gin.H{"message": "Old jobs cleaned up"})
}
