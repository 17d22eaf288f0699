package server

// BenchmarkRequest starts one benchmark run. Config carries the same
// YAML document the CLI reads; ImagesDir points at the directory scanned
// for test cases without an explicit image.
type BenchmarkRequest struct {
	Config    string `json:"config"`
	ImagesDir string `json:"images_dir"`
}

// ErrorResponse is the JSON error envelope returned by the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SystemStatus reports what the server is currently doing
type SystemStatus struct {
	ActiveJobs int      `json:"active_jobs"`
	TotalJobs  int      `json:"total_jobs"`
	Providers  []string `json:"providers"`
}
