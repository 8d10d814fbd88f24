package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
)

type catalogRepository interface {
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	FindBatchByID(ctx context.Context, id string) (*models.Batch, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListBatches(ctx context.Context, courseID string) ([]models.Batch, error)
	ListBatchStudents(ctx context.Context, batchID string) ([]models.BatchStudent, error)
}

// CatalogService serves the course and batch catalog backing admissions.
type CatalogService struct {
	repo   catalogRepository
	logger *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(repo catalogRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger}
}

// ListCourses returns the active courses.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// ListBatches returns batches, optionally scoped to one course.
func (s *CatalogService) ListBatches(ctx context.Context, courseID string) ([]models.Batch, error) {
	batches, err := s.repo.ListBatches(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// ListBatchStudents returns the roster for a batch.
func (s *CatalogService) ListBatchStudents(ctx context.Context, batchID string) ([]models.BatchStudent, error) {
	if _, err := s.repo.FindBatchByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	roster, err := s.repo.ListBatchStudents(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch students")
	}
	return roster, nil
}
