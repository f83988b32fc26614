package jobs

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fileforge/internal/convert"
	"fileforge/internal/formats"
	"fileforge/internal/metrics"
)

// Orchestrator drives the upload -> convert -> download lifecycle on
// top of the Store. Each job gets at most one conversion attempt; the
// Store's BeginConvert transition is the gate that enforces it under
// concurrency.
type Orchestrator struct {
	store     *Store
	converter *convert.Converter
	logger    *slog.Logger

	maxUploadBytes int64
	// Bounds the number of conversions running at once when callers
	// use StartConvert.
	sem chan struct{}
}

// NewOrchestrator wires the orchestrator with its collaborators.
// maxUploadBytes <= 0 disables the upload size ceiling; maxConcurrent
// <= 0 falls back to 4, matching the worker default.
func NewOrchestrator(store *Store, converter *convert.Converter, logger *slog.Logger, maxUploadBytes int64, maxConcurrent int) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:          store,
		converter:      converter,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		sem:            make(chan struct{}, maxConcurrent),
	}
}

// Store exposes the underlying job store for retention and listings.
func (o *Orchestrator) Store() *Store { return o.store }

// Upload validates and durably stores a raw payload, returning the new
// job in the uploaded state. The declared format comes from the
// filename extension; content is not sniffed.
func (o *Orchestrator) Upload(filename string, data []byte) (Job, error) {
	if strings.TrimSpace(filename) == "" {
		return Job{}, &UploadError{Reason: "no filename provided"}
	}
	if len(data) == 0 {
		return Job{}, &UploadError{Reason: "empty file uploaded"}
	}
	if o.maxUploadBytes > 0 && int64(len(data)) > o.maxUploadBytes {
		return Job{}, &UploadError{
			Reason: fmt.Sprintf("file size (%.1fMB) exceeds maximum (%.1fMB)",
				float64(len(data))/(1024*1024), float64(o.maxUploadBytes)/(1024*1024)),
		}
	}

	inputFormat := formats.Normalize(filepath.Ext(filename))
	if !formats.KnownInput(inputFormat) {
		return Job{}, &UploadError{Reason: fmt.Sprintf("unsupported file type: %q", inputFormat)}
	}

	job := o.store.Create(filepath.Base(filename), inputFormat, int64(len(data)))

	ref, err := o.store.SaveInput(job.ID, data)
	if err != nil {
		_ = o.store.Delete(job.ID)
		return Job{}, fmt.Errorf("storing upload: %w", err)
	}

	job, err = o.store.MarkUploaded(job.ID, ref)
	if err != nil {
		return Job{}, err
	}

	metrics.RecordUpload(job.InputFormat, job.Size)
	o.logger.Info("file uploaded",
		"job_id", job.ID,
		"filename", job.Filename,
		"format", job.InputFormat,
		"size", job.Size,
	)
	return job, nil
}

// Convert runs a conversion synchronously: it performs the same
// eligibility checks as StartConvert, then executes the converter
// before returning. The returned job is terminal (completed or
// failed); converter failures are recorded on the job rather than
// returned as an error.
func (o *Orchestrator) Convert(id, outputFormat string, rawOptions map[string]any) (Job, error) {
	job, fn, err := o.begin(id, outputFormat, rawOptions)
	if err != nil {
		return Job{}, err
	}
	return o.execute(job, fn), nil
}

// StartConvert performs the eligibility checks and the atomic
// uploaded -> converting transition, then runs the conversion on a
// bounded background worker. Callers observe completion by polling
// Query.
func (o *Orchestrator) StartConvert(id, outputFormat string, rawOptions map[string]any) (Job, error) {
	job, fn, err := o.begin(id, outputFormat, rawOptions)
	if err != nil {
		return Job{}, err
	}

	go func() {
		o.sem <- struct{}{}
		defer func() { <-o.sem }()
		o.execute(job, fn)
	}()

	return job, nil
}

// begin performs steps (a)-(d) of the convert transition: load,
// state check, option validation, and the atomic switch to converting.
// Validation failures and unsupported pairs leave the job untouched in
// the uploaded state.
func (o *Orchestrator) begin(id, outputFormat string, rawOptions map[string]any) (Job, convert.Func, error) {
	job, err := o.store.Get(id)
	if err != nil {
		return Job{}, nil, err
	}
	if job.Status != StatusUploaded {
		return Job{}, nil, &InvalidStateError{ID: id, Status: job.Status, Op: "convert"}
	}

	opts, err := formats.ValidateOptions(job.InputFormat, outputFormat, rawOptions)
	if err != nil {
		return Job{}, nil, err
	}

	fn, err := o.converter.Dispatch(job.InputFormat, outputFormat)
	if err != nil {
		return Job{}, nil, err
	}

	job, err = o.store.BeginConvert(id, outputFormat, opts)
	if err != nil {
		return Job{}, nil, err
	}
	return job, fn, nil
}

func (o *Orchestrator) execute(job Job, fn convert.Func) Job {
	input, err := o.store.ReadBlob(job.InputRef)
	if err != nil {
		return o.fail(job, fmt.Sprintf("input no longer available: %v", err))
	}

	report := func(percent int, message string) {
		o.store.SetProgress(job.ID, percent, message)
	}

	result, err := fn(input, job.OutputFormat, job.Options, report)
	if err != nil {
		return o.fail(job, err.Error())
	}

	ref, err := o.store.SaveOutput(job.ID, result.Data)
	if err != nil {
		return o.fail(job, fmt.Sprintf("storing output: %v", err))
	}

	done, err := o.store.SetCompleted(job.ID, ref, result.Archive)
	if err != nil {
		// The job reached a terminal state underneath us (e.g. deleted
		// and recreated storage); nothing more to record.
		o.logger.Warn("completion dropped", "job_id", job.ID, "error", err)
		return job
	}

	metrics.RecordConversion(done.InputFormat, done.OutputFormat, true)
	o.logger.Info("conversion complete",
		"job_id", done.ID,
		"input_format", done.InputFormat,
		"output_format", done.OutputFormat,
		"output_bytes", len(result.Data),
	)
	return done
}

func (o *Orchestrator) fail(job Job, reason string) Job {
	failed, err := o.store.SetFailed(job.ID, reason)
	if err != nil {
		o.logger.Warn("failure dropped", "job_id", job.ID, "error", err)
		return job
	}
	metrics.RecordConversion(failed.InputFormat, failed.OutputFormat, false)
	o.logger.Error("conversion failed",
		"job_id", failed.ID,
		"input_format", failed.InputFormat,
		"output_format", failed.OutputFormat,
		"reason", reason,
	)
	return failed
}

// Query returns the job's current state without mutating it.
func (o *Orchestrator) Query(id string) (Job, error) {
	return o.store.Get(id)
}

// List returns all known jobs, newest first.
func (o *Orchestrator) List() []Job {
	return o.store.List()
}

// Download returns the converted payload and a suggested filename for
// a completed job: the original name with its extension swapped to the
// output format tag (plus .zip when the output is an image bundle).
func (o *Orchestrator) Download(id string) ([]byte, string, error) {
	job, err := o.store.Get(id)
	if err != nil {
		return nil, "", err
	}
	if job.Status != StatusCompleted {
		return nil, "", &InvalidStateError{ID: id, Status: job.Status, Op: "download"}
	}

	data, err := o.store.ReadBlob(job.OutputRef)
	if err != nil {
		return nil, "", err
	}
	return data, DownloadFilename(job), nil
}

// Delete removes the job and all of its stored bytes regardless of
// state. A second delete returns ErrNotFound.
func (o *Orchestrator) Delete(id string) error {
	return o.store.Delete(id)
}

// DownloadFilename derives the suggested client-side filename for a
// job's output.
func DownloadFilename(job Job) string {
	base := strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename))
	if base == "" {
		base = job.ID
	}
	name := base + "_converted." + job.OutputFormat
	if job.OutputArchive {
		name += ".zip"
	}
	return name
}
