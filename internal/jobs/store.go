package jobs

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fileforge/internal/formats"
)

// Store maps job identifiers to Job records for the lifetime of the
// process, with payload bytes kept on disk under one directory per
// job. All record mutations happen under a single mutex, which is what
// makes the check-then-set transitions atomic.
type Store struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	dataDir string
}

// NewStore creates a Store rooted at dataDir, creating the directory
// if needed.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		jobs:    make(map[string]*Job),
		dataDir: dataDir,
	}, nil
}

// DataDir returns the root directory holding job payloads.
func (s *Store) DataDir() string { return s.dataDir }

// Create inserts a fresh pending job and returns a copy of it.
func (s *Store) Create(filename, inputFormat string, size int64) Job {
	now := time.Now().UTC()
	job := &Job{
		ID:          uuid.New().String(),
		Status:      StatusPending,
		Filename:    filename,
		Size:        size,
		InputFormat: formats.Normalize(inputFormat),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return *job
}

// Get returns a copy of the job, or ErrNotFound.
func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *job, nil
}

// List returns copies of all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		list = append(list, *job)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

// MarkUploaded records the durably written input payload and moves the
// job from pending to uploaded.
func (s *Store) MarkUploaded(id, inputRef string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	if job.Status != StatusPending {
		return Job{}, &InvalidStateError{ID: id, Status: job.Status, Op: "mark uploaded"}
	}

	job.Status = StatusUploaded
	job.InputRef = inputRef
	job.UpdatedAt = time.Now().UTC()
	return *job, nil
}

// BeginConvert atomically checks that the job is in the uploaded state
// and, if so, moves it to converting with the given target format and
// options. Under concurrent callers exactly one performs the
// transition; the rest observe InvalidStateError.
func (s *Store) BeginConvert(id, outputFormat string, opts formats.Options) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	if job.Status != StatusUploaded {
		return Job{}, &InvalidStateError{ID: id, Status: job.Status, Op: "convert"}
	}

	job.Status = StatusConverting
	job.Progress = 0
	job.Message = "Starting conversion"
	job.OutputFormat = formats.Normalize(outputFormat)
	job.Options = opts
	job.UpdatedAt = time.Now().UTC()
	return *job, nil
}

// SetProgress records an advisory progress update. Updates on terminal
// jobs are dropped, and progress never moves backwards while the job
// is active, so a late or out-of-order callback cannot disturb a
// finished or further-along job.
func (s *Store) SetProgress(id string, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	if message != "" {
		job.Message = message
	}
	job.UpdatedAt = time.Now().UTC()
}

// SetCompleted moves a converting job to completed with its output
// payload reference. Terminal states are sticky: completing an already
// finished job is rejected.
func (s *Store) SetCompleted(id, outputRef string, archive bool) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	if job.Status.Terminal() {
		return Job{}, &InvalidStateError{ID: id, Status: job.Status, Op: "complete"}
	}

	now := time.Now().UTC()
	job.Status = StatusCompleted
	job.Progress = 100
	job.Message = "Conversion complete"
	job.OutputRef = outputRef
	job.OutputArchive = archive
	job.Error = ""
	job.UpdatedAt = now
	job.CompletedAt = &now
	return *job, nil
}

// SetFailed moves a job to failed with the given reason, freezing
// progress at its last value. Like SetCompleted it refuses to touch a
// job that already reached a terminal state.
func (s *Store) SetFailed(id, reason string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	if job.Status.Terminal() {
		return Job{}, &InvalidStateError{ID: id, Status: job.Status, Op: "fail"}
	}

	now := time.Now().UTC()
	job.Status = StatusFailed
	job.Message = "Conversion failed"
	job.Error = reason
	job.OutputRef = ""
	job.UpdatedAt = now
	job.CompletedAt = &now
	return *job, nil
}

// Delete removes the job record and its stored payloads. Deleting an
// unknown id returns ErrNotFound, which callers may treat as success.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return os.RemoveAll(filepath.Join(s.dataDir, id))
}

// SaveInput writes the uploaded payload for a job and returns its
// reference.
func (s *Store) SaveInput(id string, data []byte) (string, error) {
	return s.saveBlob(id, "input", data)
}

// SaveOutput writes the converted payload for a job and returns its
// reference.
func (s *Store) SaveOutput(id string, data []byte) (string, error) {
	return s.saveBlob(id, "output", data)
}

func (s *Store) saveBlob(id, name string, data []byte) (string, error) {
	dir := filepath.Join(s.dataDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadBlob loads a payload previously written by SaveInput/SaveOutput.
// A missing file maps to ErrNotFound since eviction may have removed
// the bytes while the record survived.
func (s *Store) ReadBlob(ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
