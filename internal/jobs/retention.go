package jobs

import (
	"context"
	"log/slog"
	"time"

	"fileforge/internal/config"
	"fileforge/internal/metrics"
)

// RetentionStats captures the number of jobs deleted by TTL cleanup.
type RetentionStats struct {
	JobsDeleted int64 `json:"jobsDeleted"`
}

// CleanupExpiredData deletes jobs older than the configured expiry,
// along with their stored payloads, so that working storage does not
// grow without bound. Converting jobs are left alone so an in-flight
// conversion never loses its input underneath it.
func CleanupExpiredData(cfg *config.Config, st *Store) RetentionStats {
	var stats RetentionStats
	if cfg.Retention.ExpirySeconds <= 0 {
		return stats
	}

	cutoff := time.Now().UTC().Add(-time.Duration(cfg.Retention.ExpirySeconds) * time.Second)
	for _, job := range st.List() {
		if job.Status == StatusConverting {
			continue
		}
		if job.CreatedAt.After(cutoff) {
			continue
		}
		if err := st.Delete(job.ID); err == nil {
			stats.JobsDeleted++
		}
	}

	metrics.RecordRetentionJobs(stats.JobsDeleted)
	return stats
}

// StartRetentionLoop runs CleanupExpiredData on a ticker until the
// context is cancelled. Callers run it in its own goroutine.
func StartRetentionLoop(ctx context.Context, cfg *config.Config, st *Store, logger *slog.Logger) {
	if !cfg.Retention.Enabled {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	interval := time.Duration(cfg.Retention.CleanupIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats := CleanupExpiredData(cfg, st)
		if stats.JobsDeleted > 0 {
			logger.Info("retention cleanup", "jobs_deleted", stats.JobsDeleted)
		}
	}
}
