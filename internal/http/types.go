package http

import (
	"time"

	"fileforge/internal/formats"
	"fileforge/internal/jobs"
)

// ErrorResponse is the shared error envelope for all API endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}

// JobItem is the wire view of a job record.
type JobItem struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Message      string     `json:"message,omitempty"`
	Filename     string     `json:"filename"`
	Size         int64      `json:"size"`
	InputFormat  string     `json:"inputFormat"`
	OutputFormat string     `json:"outputFormat,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func jobItem(job jobs.Job) JobItem {
	return JobItem{
		ID:           job.ID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		Message:      job.Message,
		Filename:     job.Filename,
		Size:         job.Size,
		InputFormat:  job.InputFormat,
		OutputFormat: job.OutputFormat,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// UploadResponse wraps the job created for an accepted upload, along
// with the conversion menu for its detected format.
type UploadResponse struct {
	Success  bool     `json:"success"`
	Code     string   `json:"code,omitempty"`
	Error    string   `json:"error,omitempty"`
	Job      *JobItem `json:"job,omitempty"`
	Category string   `json:"category,omitempty"`
	Outputs  []string `json:"outputs,omitempty"`
}

// ConvertRequest is the payload for POST /api/convert.
type ConvertRequest struct {
	JobID        string         `json:"jobId"`
	OutputFormat string         `json:"outputFormat"`
	Options      map[string]any `json:"options,omitempty"`
}

// ConvertResponse acknowledges that a conversion was started.
type ConvertResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
	Job     *JobItem `json:"job,omitempty"`
}

// ProgressResponse reports the current state of a conversion.
type ProgressResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
	Job     *JobItem `json:"job,omitempty"`
}

// ListJobsResponse wraps the job listing.
type ListJobsResponse struct {
	Success bool      `json:"success"`
	Code    string    `json:"code,omitempty"`
	Error   string    `json:"error,omitempty"`
	Jobs    []JobItem `json:"jobs"`
}

// FormatsResponse lists the supported conversions, optionally filtered
// by input category.
type FormatsResponse struct {
	Success bool                 `json:"success"`
	Code    string               `json:"code,omitempty"`
	Error   string               `json:"error,omitempty"`
	Formats []formats.Conversion `json:"formats"`
}

// DeleteResponse acknowledges a job deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}
