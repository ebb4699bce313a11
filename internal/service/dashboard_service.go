package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attendly/attendance-api/internal/repository"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type dashboardRepository interface {
	Counts(ctx context.Context, day time.Time) (*repository.DashboardCounts, error)
}

// DashboardSummary is the cached dashboard payload.
type DashboardSummary struct {
	Date        string                     `json:"date"`
	Counts      repository.DashboardCounts `json:"counts"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// DashboardService computes the admin landing page aggregates through a
// short-lived cache.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(repo dashboardRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Summary returns today's dashboard counts; the bool reports a cache hit.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, bool, error) {
	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	key := fmt.Sprintf("dashboard:summary:%s", day.Format("2006-01-02"))

	var cached DashboardSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	counts, err := s.repo.Counts(ctx, day)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute dashboard")
	}
	summary := &DashboardSummary{
		Date:        day.Format("2006-01-02"),
		Counts:      *counts,
		GeneratedAt: now.UTC(),
	}
	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, false, nil
}

// Invalidate drops cached dashboard entries. Called after writes that move
// the counts, such as check-ins and request resolutions.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}
