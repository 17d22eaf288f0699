package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// SSEHandler handles Server-Sent Events for benchmark progress
type SSEHandler struct {
	jobManager *JobManager
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(jobManager *JobManager) *SSEHandler {
	return &SSEHandler{
		jobManager: jobManager,
	}
}

// StreamJobProgress streams benchmark progress via SSE
func (h *SSEHandler) StreamJobProgress(c *gin.Context) {
	jobID := c.Param("jobId")

	job, exists := h.jobManager.GetJob(jobID)
	if !exists {
		c.JSON(404, gin.H{"error": "Job not found"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Expose-Headers", "Content-Type")

	// Send current state right away
	c.Writer.WriteString(job.ToSSEMessage())
	c.Writer.Flush()

	if job.Status != "running" {
		return
	}

	updateChan := make(chan *Job, 10)
	h.jobManager.RegisterSSEListener(jobID, updateChan)
	defer h.jobManager.UnregisterSSEListener(jobID, updateChan)

	ctx := c.Request.Context()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			AppLogger.InfoWithContext(&LogContext{JobID: jobID}, "SSE connection closed for job")
			return
		case <-ticker.C:
			c.Writer.WriteString("data: {\"type\":\"ping\",\"timestamp\":\"" + time.Now().Format(time.RFC3339) + "\"}\n\n")
			c.Writer.Flush()
		case updatedJob := <-updateChan:
			c.Writer.WriteString(updatedJob.ToSSEMessage())
			c.Writer.Flush()

			if updatedJob.Status != "running" {
				return
			}
		}
	}
}

// StreamSystemStatus streams global system status via SSE
func (h *SSEHandler) StreamSystemStatus(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Expose-Headers", "Content-Type")

	listener := h.jobManager.RegisterSystemStatusListener()
	defer h.jobManager.UnregisterSystemStatusListener(listener)

	AppLogger.Info("System status SSE connection established")

	for {
		select {
		case status, ok := <-listener:
			if !ok {
				AppLogger.Info("System status SSE connection closed")
				return
			}

			statusJSON, err := json.Marshal(status)
			if err != nil {
				AppLogger.Error("Error marshaling system status: %v", err)
				continue
			}

			message := fmt.Sprintf("data: %s\n\n", string(statusJSON))
			if _, err := c.Writer.WriteString(message); err != nil {
				AppLogger.Error("Error writing system status SSE: %v", err)
				return
			}
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			AppLogger.Info("System status SSE connection closed by client")
			return
		}
	}
}
