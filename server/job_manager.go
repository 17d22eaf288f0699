package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"llmtestbench/internal/bench"
	"llmtestbench/internal/config"
	"llmtestbench/internal/provider"
)

// Singleton pattern for JobManager
var (
	jobManagerInstance *JobManager
	jobManagerOnce     sync.Once
)

// Job represents a benchmark job with basic status tracking
type Job struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`   // "running", "completed", "failed", "cancelled"
	Progress    int              `json:"progress"` // 0-100
	Message     string           `json:"message"`
	Result      interface{}      `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Request     BenchmarkRequest `json:"request"`

	cancelFunc context.CancelFunc `json:"-"`
}

// ToJSON converts the job to JSON for SSE streaming
func (job *Job) ToJSON() ([]byte, error) {
	return json.Marshal(job)
}

// ToSSEMessage formats the job as an SSE data frame
func (job *Job) ToSSEMessage() string {
	data, err := job.ToJSON()
	if err != nil {
		AppLogger.ErrorWithContext(&LogContext{JobID: job.ID}, fmt.Sprintf("Failed to marshal job to JSON: %v", err))
		return fmt.Sprintf("data: {\"id\":%q,\"status\":%q,\"error\":\"JSON marshal failed\"}\n\n", job.ID, job.Status)
	}
	return fmt.Sprintf("data: %s\n\n", string(data))
}

// JobManager manages benchmark jobs and their progress listeners
type JobManager struct {
	jobs                  map[string]*Job
	listeners             map[string][]chan *Job
	systemStatusListeners []chan map[string]interface{}
	activeJobCount        int
	hub                   *Hub
	mutex                 sync.RWMutex
}

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:      make(map[string]*Job),
		listeners: make(map[string][]chan *Job),
		hub:       NewHub(),
	}
}

// GetJobManager returns the singleton JobManager instance
func GetJobManager() *JobManager {
	jobManagerOnce.Do(func() {
		jobManagerInstance = NewJobManager()
		AppLogger.Info("Singleton JobManager instance created")
	})
	return jobManagerInstance
}

// Hub returns the WebSocket hub used for progress broadcasts
func (jm *JobManager) Hub() *Hub {
	return jm.hub
}

// CreateJob creates a new job and returns its ID
func (jm *JobManager) CreateJob(request BenchmarkRequest) string {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Status:    "running",
		Progress:  0,
		Message:   "Starting benchmark...",
		CreatedAt: time.Now(),
		Request:   request,
	}

	jm.jobs[jobID] = job
	jm.activeJobCount++
	AppLogger.InfoWithFields("Job created", map[string]interface{}{
		"jobId":      jobID,
		"activeJobs": jm.activeJobCount,
	})

	go jm.broadcastSystemStatus()

	return jobID
}

// GetJob retrieves a job by ID
func (jm *JobManager) GetJob(jobID string) (*Job, bool) {
	jm.mutex.RLock()
	defer jm.mutex.RUnlock()

	job, exists := jm.jobs[jobID]
	return job, exists
}

// SetJobCancel attaches the cancel function CancelJob will invoke
func (jm *JobManager) SetJobCancel(jobID string, cancelFunc context.CancelFunc) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.cancelFunc = cancelFunc
	}
}

// UpdateJobProgress updates job progress and message
func (jm *JobManager) UpdateJobProgress(jobID string, progress int, message string) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.Progress = progress
		job.Message = message
		jm.broadcastUpdate(jobID, job)
	} else {
		AppLogger.ErrorWithContext(&LogContext{JobID: jobID}, "Job not found for progress update")
	}
}

// CompleteJob marks a job as completed with results
func (jm *JobManager) CompleteJob(jobID string, result interface{}) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.Status = "completed"
		job.Progress = 100
		job.Message = "Benchmark completed successfully"
		job.Result = result
		now := time.Now()
		job.CompletedAt = &now

		if jm.activeJobCount > 0 {
			jm.activeJobCount--
		}

		AppLogger.InfoWithFields("Job completed successfully", map[string]interface{}{
			"jobId":      jobID,
			"activeJobs": jm.activeJobCount,
		})

		jm.broadcastUpdate(jobID, job)
		go jm.broadcastSystemStatus()
	} else {
		AppLogger.ErrorWithContext(&LogContext{JobID: jobID}, "Job not found for completion")
	}
}

// FailJob marks a job as failed with an error message
func (jm *JobManager) FailJob(jobID string, errorMsg string) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.Status = "failed"
		job.Message = "Benchmark failed"
		job.Error = errorMsg
		now := time.Now()
		job.CompletedAt = &now

		if jm.activeJobCount > 0 {
			jm.activeJobCount--
		}

		AppLogger.ErrorWithFields("Job failed", map[string]interface{}{
			"jobId": jobID,
			"error": job.Error,
		})

		jm.broadcastUpdate(jobID, job)
		go jm.broadcastSystemStatus()
	} else {
		AppLogger.ErrorWithContext(&LogContext{JobID: jobID}, "Job not found for failure")
	}
}

// CancelJob cancels a running job by cancelling its context
func (jm *JobManager) CancelJob(jobID string) bool {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	job, exists := jm.jobs[jobID]
	if !exists {
		AppLogger.ErrorWithContext(&LogContext{JobID: jobID}, "Job not found for cancellation")
		return false
	}
	if job.Status != "running" || job.cancelFunc == nil {
		AppLogger.Warn("Job %s cannot be cancelled (status: %s)", jobID, job.Status)
		return false
	}

	job.cancelFunc()
	job.Status = "cancelled"
	job.Message = "Job cancelled by user"
	job.Error = "Job cancelled by user"
	now := time.Now()
	job.CompletedAt = &now
	if jm.activeJobCount > 0 {
		jm.activeJobCount--
	}

	AppLogger.InfoWithFields("Job cancelled", map[string]interface{}{
		"jobId":      jobID,
		"activeJobs": jm.activeJobCount,
	})

	jm.broadcastUpdate(jobID, job)
	go jm.broadcastSystemStatus()

	return true
}

// ListJobs returns all jobs
func (jm *JobManager) ListJobs() []*Job {
	jm.mutex.RLock()
	defer jm.mutex.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// CleanupOldJobs removes jobs older than 1 hour
func (jm *JobManager) CleanupOldJobs() {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for id, job := range jm.jobs {
		if job.CreatedAt.Before(cutoff) && job.Status != "running" {
			delete(jm.jobs, id)
		}
	}
}

// GetActiveJobCount returns the number of currently running jobs
func (jm *JobManager) GetActiveJobCount() int {
	jm.mutex.RLock()
	defer jm.mutex.RUnlock()
	return jm.activeJobCount
}

// GetSystemStatus returns the global system status
func (jm *JobManager) GetSystemStatus() map[string]interface{} {
	jm.mutex.RLock()
	defer jm.mutex.RUnlock()
	return jm.systemStatusLocked()
}

func (jm *JobManager) systemStatusLocked() map[string]interface{} {
	return map[string]interface{}{
		"activeJobs": jm.activeJobCount,
		"isBusy":     jm.activeJobCount > 0,
		"totalJobs":  len(jm.jobs),
		"timestamp":  time.Now(),
	}
}

// RegisterSSEListener registers a channel to receive job updates
func (jm *JobManager) RegisterSSEListener(jobID string, updateChan chan *Job) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	jm.listeners[jobID] = append(jm.listeners[jobID], updateChan)
}

// UnregisterSSEListener removes a channel from job updates
func (jm *JobManager) UnregisterSSEListener(jobID string, updateChan chan *Job) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	if listeners, exists := jm.listeners[jobID]; exists {
		for i, ch := range listeners {
			if ch == updateChan {
				jm.listeners[jobID] = append(listeners[:i], listeners[i+1:]...)
				close(updateChan)
				break
			}
		}
		if len(jm.listeners[jobID]) == 0 {
			delete(jm.listeners, jobID)
		}
	}
}

// RegisterSystemStatusListener registers a listener for system status changes
func (jm *JobManager) RegisterSystemStatusListener() chan map[string]interface{} {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	listener := make(chan map[string]interface{}, 10)
	jm.systemStatusListeners = append(jm.systemStatusListeners, listener)

	// Send initial status without blocking the caller
	status := jm.systemStatusLocked()
	go func() { listener <- status }()

	return listener
}

// UnregisterSystemStatusListener removes a system status listener
func (jm *JobManager) UnregisterSystemStatusListener(listener chan map[string]interface{}) {
	jm.mutex.Lock()
	defer jm.mutex.Unlock()

	for i, l := range jm.systemStatusListeners {
		if l == listener {
			jm.systemStatusListeners = append(jm.systemStatusListeners[:i], jm.systemStatusListeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// broadcastUpdate sends job updates to SSE listeners, and the full job to
// WebSocket clients once it reaches a terminal status. Per-call progress
// frames go out through broadcastProgress instead.
// Callers must hold jm.mutex.
func (jm *JobManager) broadcastUpdate(jobID string, job *Job) {
	for _, ch := range jm.listeners[jobID] {
		select {
		case ch <- job:
		default:
			// Channel is full, skip this update
		}
	}

	if job.Status == "running" {
		return
	}
	msg := WebSocketMessage{
		Type:      messageTypeForStatus(job.Status),
		JobID:     jobID,
		Timestamp: time.Now(),
		Data:      job,
	}
	if data, err := json.Marshal(msg); err == nil {
		go jm.hub.BroadcastMessage(data)
	}
}

func messageTypeForStatus(status string) string {
	switch status {
	case "completed":
		return MessageTypeComplete
	case "failed":
		return MessageTypeError
	case "cancelled":
		return MessageTypeCancelled
	default:
		return MessageTypeProgress
	}
}

// broadcastProgress pushes a self-describing per-call progress frame to
// WebSocket clients.
func (jm *JobManager) broadcastProgress(update ProgressUpdate) {
	msg := WebSocketMessage{
		Type:      MessageTypeProgress,
		JobID:     update.JobID,
		Timestamp: time.Now(),
		Data:      update,
	}
	if data, err := json.Marshal(msg); err == nil {
		jm.hub.BroadcastMessage(data)
	}
}

// broadcastSystemStatus sends system status to all listeners and WebSocket
// clients
func (jm *JobManager) broadcastSystemStatus() {
	jm.mutex.RLock()
	status := jm.systemStatusLocked()
	listeners := make([]chan map[string]interface{}, len(jm.systemStatusListeners))
	copy(listeners, jm.systemStatusListeners)
	jm.mutex.RUnlock()

	for _, listener := range listeners {
		select {
		case listener <- status:
		default:
			// Skip if channel is full
		}
	}

	msg := WebSocketMessage{
		Type:      MessageTypeStatus,
		Timestamp: time.Now(),
		Data:      status,
	}
	if data, err := json.Marshal(msg); err == nil {
		jm.hub.BroadcastMessage(data)
	}
}

// RunBenchmark executes the benchmark for a job. Intended to run in its own
// goroutine; all outcomes are reported through the job state.
func (jm *JobManager) RunBenchmark(jobID string, request BenchmarkRequest) {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()
	jm.SetJobCancel(jobID, cancelFunc)

	cfg, err := config.Parse([]byte(request.Config))
	if err != nil {
		jm.FailJob(jobID, fmt.Sprintf("Invalid configuration: %v", err))
		return
	}

	creds := provider.LoadCredentials()

	imagesDir := request.ImagesDir
	if imagesDir == "" {
		imagesDir = "images"
	}

	runner, err := bench.New(cfg, creds, imagesDir)
	if err != nil {
		jm.FailJob(jobID, fmt.Sprintf("Failed to initialize providers: %v", err))
		return
	}

	total, err := runner.TotalCalls()
	if err != nil {
		jm.FailJob(jobID, fmt.Sprintf("Failed to plan benchmark: %v", err))
		return
	}
	if total == 0 {
		jm.FailJob(jobID, "No provider calls to make: check providers, credentials and test cases")
		return
	}

	runner.Logf = func(format string, args ...any) {
		AppLogger.InfoWithContext(&LogContext{JobID: jobID}, fmt.Sprintf(format, args...))
	}
	started := time.Now()
	runner.OnProgress = func(done, total int, label string) {
		progress := done * 100 / total
		if progress > 99 {
			progress = 99
		}
		jm.UpdateJobProgress(jobID, progress, fmt.Sprintf("Completed %d/%d: %s", done, total, label))
		jm.broadcastProgress(ProgressUpdate{
			JobID:          jobID,
			Status:         "running",
			Progress:       progress,
			CurrentStep:    label,
			CompletedCalls: done,
			TotalCalls:     total,
			ElapsedTime:    time.Since(started).Seconds(),
		})
	}

	AppLogger.InfoWithFields("Starting benchmark", map[string]interface{}{
		"jobId":      jobID,
		"providers":  len(cfg.Providers),
		"testCases":  len(cfg.TestCases),
		"totalCalls": total,
	})
	jm.UpdateJobProgress(jobID, 0, fmt.Sprintf("Running %d provider calls...", total))

	results, runErr := runner.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			// CancelJob already transitioned the job; nothing more to report.
			AppLogger.InfoWithContext(&LogContext{JobID: jobID}, "Benchmark stopped after cancellation")
			return
		}
		jm.FailJob(jobID, runErr.Error())
		return
	}

	successful, failed := 0, 0
	for _, tcr := range results {
		for _, r := range tcr.Flatten() {
			if r.OK() {
				successful++
			} else {
				failed++
			}
		}
	}

	jm.CompleteJob(jobID, map[string]interface{}{
		"test_cases": results,
		"summary": map[string]interface{}{
			"total_calls": successful + failed,
			"successful":  successful,
			"failed":      failed,
		},
	})
	AppLogger.InfoWithContext(&LogContext{JobID: jobID}, "Benchmark job completed successfully")
}
