package jobs

import (
	"time"

	"fileforge/internal/formats"
)

// Job tracks one conversion request from upload through completion or
// failure. InputRef and OutputRef are paths inside the store's data
// directory and are owned exclusively by the store; OutputRef is set
// if and only if the job completed, Error if and only if it failed.
type Job struct {
	ID            string          `json:"id"`
	Status        Status          `json:"status"`
	Progress      int             `json:"progress"`
	Message       string          `json:"message,omitempty"`
	Filename      string          `json:"filename"`
	Size          int64           `json:"size"`
	InputFormat   string          `json:"inputFormat"`
	OutputFormat  string          `json:"outputFormat,omitempty"`
	Options       formats.Options `json:"options,omitempty"`
	InputRef      string          `json:"-"`
	OutputRef     string          `json:"-"`
	OutputArchive bool            `json:"-"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}

// Category returns the converter family of the job's input format.
func (j *Job) Category() formats.Category {
	return formats.CategoryOf(j.InputFormat)
}
