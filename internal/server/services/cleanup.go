package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/logging"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cleanup kinds reported in CleanupReport.Kind and metric attributes.
const (
	CleanupCombined    = "combined"
	CleanupExpiredOnly = "expired"
	CleanupUsedOnly    = "used"
)

// TokenStore is the part of ResetTokenService the cleanup scheduler needs.
type TokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteUsed(ctx context.Context) (int64, error)
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
	CountUsed(ctx context.Context) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
}

type cleanupMetrics struct {
	deleted  metric.Int64Counter
	rejected metric.Int64Counter
	duration metric.Float64Histogram
}

func newCleanupMetrics(meter metric.Meter) (*cleanupMetrics, error) {
	deleted, err := meter.Int64Counter("notes_auth.cleanup.deleted",
		metric.WithDescription("Reset tokens removed by cleanup runs."))
	if err != nil {
		return nil, fmt.Errorf("create deleted counter: %w", err)
	}
	rejected, err := meter.Int64Counter("notes_auth.cleanup.rejected",
		metric.WithDescription("Cleanup triggers refused because another run was active."))
	if err != nil {
		return nil, fmt.Errorf("create rejected counter: %w", err)
	}
	duration, err := meter.Float64Histogram("notes_auth.cleanup.duration_ms",
		metric.WithDescription("Wall time of cleanup runs."), metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return &cleanupMetrics{deleted: deleted, rejected: rejected, duration: duration}, nil
}

// TokenCleanupService removes expired and used reset tokens on a fixed
// interval and on demand. At most one run (or stats snapshot) is active at a
// time; a trigger that arrives while one is active fails with
// common.ErrCleanupInProgress instead of waiting.
type TokenCleanupService struct {
	store    TokenStore
	interval time.Duration
	logger   logging.Logger
	metrics  *cleanupMetrics
	now      func() time.Time

	running atomic.Bool

	mu   sync.Mutex
	last *models.CleanupReport
}

func NewTokenCleanupService(store TokenStore, interval time.Duration, meter metric.Meter, logger logging.Logger) (*TokenCleanupService, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: cleanup interval must be positive", common.ErrConfiguration)
	}
	m, err := newCleanupMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &TokenCleanupService{
		store:    store,
		interval: interval,
		logger:   logger.With("module", "token_cleanup"),
		metrics:  m,
		now:      time.Now,
	}, nil
}

// Run fires RunCombinedCleanup every interval until ctx is done. A failed or
// rejected tick is logged and the next tick proceeds as usual.
func (s *TokenCleanupService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "token cleanup scheduler started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "token cleanup scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RunCombinedCleanup(ctx); err != nil {
				s.logger.Error(ctx, "scheduled token cleanup failed", "error", err)
			}
		}
	}
}

// RunCombinedCleanup counts expired and used tokens, then deletes both sets in
// one pass evaluated at a single instant.
func (s *TokenCleanupService) RunCombinedCleanup(ctx context.Context) (int64, error) {
	return s.run(ctx, CleanupCombined, func(ctx context.Context, now time.Time, r *models.CleanupReport) (int64, error) {
		var err error
		if r.ExpiredFound, err = s.store.CountExpired(ctx, now); err != nil {
			return 0, err
		}
		if r.UsedFound, err = s.store.CountUsed(ctx); err != nil {
			return 0, err
		}
		return s.store.DeleteExpiredOrUsed(ctx, now)
	})
}

// RunExpiredOnlyCleanup deletes tokens past their expiry, used or not.
func (s *TokenCleanupService) RunExpiredOnlyCleanup(ctx context.Context) (int64, error) {
	return s.run(ctx, CleanupExpiredOnly, func(ctx context.Context, now time.Time, r *models.CleanupReport) (int64, error) {
		n, err := s.store.DeleteExpired(ctx, now)
		r.ExpiredFound = n
		return n, err
	})
}

// RunUsedOnlyCleanup deletes consumed tokens, expired or not.
func (s *TokenCleanupService) RunUsedOnlyCleanup(ctx context.Context) (int64, error) {
	return s.run(ctx, CleanupUsedOnly, func(ctx context.Context, _ time.Time, r *models.CleanupReport) (int64, error) {
		n, err := s.store.DeleteUsed(ctx)
		r.UsedFound = n
		return n, err
	})
}

// GetStats takes a read-only snapshot of the token table. It holds the same
// lock as the cleanup runs so it never observes one half-way.
func (s *TokenCleanupService) GetStats(ctx context.Context) (models.CleanupStats, error) {
	var stats models.CleanupStats

	if !s.acquire(ctx, "stats") {
		return stats, common.ErrCleanupInProgress
	}
	defer s.running.Store(false)

	now := s.now()
	var err error
	if stats.TotalTokens, err = s.store.CountTotal(ctx); err != nil {
		return models.CleanupStats{}, fmt.Errorf("count tokens: %w", err)
	}
	if stats.ExpiredTokens, err = s.store.CountExpired(ctx, now); err != nil {
		return models.CleanupStats{}, fmt.Errorf("count expired tokens: %w", err)
	}
	if stats.UsedTokens, err = s.store.CountUsed(ctx); err != nil {
		return models.CleanupStats{}, fmt.Errorf("count used tokens: %w", err)
	}
	return stats, nil
}

// LastReport returns the report of the most recent finished run, if any.
func (s *TokenCleanupService) LastReport() (models.CleanupReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return models.CleanupReport{}, false
	}
	return *s.last, true
}

func (s *TokenCleanupService) acquire(ctx context.Context, kind string) bool {
	if s.running.CompareAndSwap(false, true) {
		return true
	}
	s.metrics.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	s.logger.Warn(ctx, "token cleanup rejected, another run is active", "kind", kind)
	return false
}

func (s *TokenCleanupService) run(ctx context.Context, kind string,
	fn func(ctx context.Context, now time.Time, r *models.CleanupReport) (int64, error)) (int64, error) {

	if !s.acquire(ctx, kind) {
		return 0, common.ErrCleanupInProgress
	}
	defer s.running.Store(false)

	start := s.now()
	report := &models.CleanupReport{Kind: kind, StartedAt: start}

	deleted, err := fn(ctx, start, report)
	report.Duration = s.now().Sub(start)

	attrs := metric.WithAttributes(attribute.String("kind", kind))
	s.metrics.duration.Record(ctx, float64(report.Duration)/float64(time.Millisecond), attrs)

	if err != nil {
		s.logger.Error(ctx, "token cleanup failed", "kind", kind, "error", err)
		return 0, fmt.Errorf("%s cleanup: %w", kind, err)
	}

	report.Deleted = deleted
	s.metrics.deleted.Add(ctx, deleted, attrs)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.logger.Info(ctx, "token cleanup finished",
		"kind", kind,
		"expired_found", report.ExpiredFound,
		"used_found", report.UsedFound,
		"deleted", deleted,
		"duration", report.Duration.String())
	return deleted, nil
}
