package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type batchRepository interface {
	ListSections(ctx context.Context, filter models.CohortFilter) ([]models.AcademicBatch, error)
}

// BatchService exposes cohort section lookups. The marking UI hits this on
// every page load, so results go through the cache when one is configured.
type BatchService struct {
	repo      batchRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs the batch service.
func NewBatchService(repo batchRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// SectionListRequest scopes a section lookup to one cohort.
type SectionListRequest struct {
	BatchYear int    `json:"batch_year" validate:"required"`
	Semester  int    `json:"semester" validate:"required"`
	Year      int    `json:"year" validate:"required"`
	Branch    string `json:"branch" validate:"required"`
}

// ListSections returns the active sections for a cohort and reports whether
// the result came from cache.
func (s *BatchService) ListSections(ctx context.Context, req SectionListRequest) ([]models.AcademicBatch, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section filter")
	}

	cacheKey := fmt.Sprintf("sections:%d:%d:%d:%s", req.BatchYear, req.Semester, req.Year, req.Branch)
	if s.cache != nil {
		var cached []models.AcademicBatch
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, true, nil
		}
	}

	sections, err := s.repo.ListSections(ctx, models.CohortFilter{
		BatchYear: req.BatchYear,
		Semester:  req.Semester,
		Year:      req.Year,
		Branch:    req.Branch,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, sections, s.cacheTTL); err != nil {
			s.logger.Warn("section cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return sections, false, nil
}
