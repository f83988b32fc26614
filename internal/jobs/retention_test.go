package jobs

import (
	"errors"
	"testing"
	"time"

	"fileforge/internal/config"
	"fileforge/internal/formats"
)

func TestCleanupExpiredData(t *testing.T) {
	st := newTestStore(t)
	cfg := config.Default()
	cfg.Retention.ExpirySeconds = 3600

	old := uploadedJob(t, st)
	fresh := uploadedJob(t, st)

	// Backdate the first job past the expiry window.
	st.mu.Lock()
	st.jobs[old.ID].CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	st.mu.Unlock()

	stats := CleanupExpiredData(cfg, st)
	if stats.JobsDeleted != 1 {
		t.Fatalf("expected 1 deleted job, got %d", stats.JobsDeleted)
	}
	if _, err := st.Get(old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired job gone, got %v", err)
	}
	if _, err := st.Get(fresh.ID); err != nil {
		t.Fatalf("fresh job must survive cleanup: %v", err)
	}
}

func TestCleanupSkipsConvertingJobs(t *testing.T) {
	st := newTestStore(t)
	cfg := config.Default()
	cfg.Retention.ExpirySeconds = 3600

	job := uploadedJob(t, st)
	if _, err := st.BeginConvert(job.ID, "jpg", formats.Options{}); err != nil {
		t.Fatalf("BeginConvert: %v", err)
	}

	st.mu.Lock()
	st.jobs[job.ID].CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	st.mu.Unlock()

	if stats := CleanupExpiredData(cfg, st); stats.JobsDeleted != 0 {
		t.Fatalf("converting job must not be reaped, deleted %d", stats.JobsDeleted)
	}
	if _, err := st.Get(job.ID); err != nil {
		t.Fatalf("converting job disappeared: %v", err)
	}
}

func TestCleanupDisabledByZeroExpiry(t *testing.T) {
	st := newTestStore(t)
	cfg := config.Default()
	cfg.Retention.ExpirySeconds = 0

	job := uploadedJob(t, st)
	st.mu.Lock()
	st.jobs[job.ID].CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	st.mu.Unlock()

	if stats := CleanupExpiredData(cfg, st); stats.JobsDeleted != 0 {
		t.Fatalf("expected no cleanup with zero expiry, deleted %d", stats.JobsDeleted)
	}
}
