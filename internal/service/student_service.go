package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type studentRepository interface {
	ListRoster(ctx context.Context, year int, branch, section string) ([]models.Student, error)
	Search(ctx context.Context, term string) (*models.Student, error)
}

// StudentService serves roster listings and profile search. Students are
// read-only here; the admissions import owns the table.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// RosterRequest identifies one section's roster.
type RosterRequest struct {
	Year    int    `json:"year" validate:"required"`
	Branch  string `json:"branch" validate:"required"`
	Section string `json:"section" validate:"required"`
}

// Roster returns a section's students ordered by hall ticket number.
func (s *StudentService) Roster(ctx context.Context, req RosterRequest) ([]models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster filter")
	}

	cacheKey := fmt.Sprintf("roster:%d:%s:%s", req.Year, req.Branch, req.Section)
	if s.cache != nil {
		var cached []models.Student
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	students, err := s.repo.ListRoster(ctx, req.Year, req.Branch, req.Section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, students, s.cacheTTL); err != nil {
			s.logger.Warn("roster cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return students, nil
}

// Search resolves a free-text query to the single best matching student. Exact
// hall ticket matches win over name substrings.
func (s *StudentService) Search(ctx context.Context, term string) (*models.Student, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search term is required")
	}
	student, err := s.repo.Search(ctx, term)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no matching student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	return student, nil
}
