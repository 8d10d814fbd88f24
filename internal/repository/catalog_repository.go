package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/primeops/primeops-api/internal/models"
)

// CatalogRepository reads the course and batch reference catalogs.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindCourseByID returns a course by its ID.
func (r *CatalogRepository) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, fee, active, created_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindBatchByID returns a batch by its ID.
func (r *CatalogRepository) FindBatchByID(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, course_id, name, start_date, created_at FROM batches WHERE id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListCourses returns active courses ordered by name.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, fee, active, created_at FROM courses WHERE active = TRUE ORDER BY name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListBatches returns batches, optionally scoped to a course.
func (r *CatalogRepository) ListBatches(ctx context.Context, courseID string) ([]models.Batch, error) {
	query := `SELECT id, course_id, name, start_date, created_at FROM batches`
	var args []interface{}
	if courseID != "" {
		query += " WHERE course_id = $1"
		args = append(args, courseID)
	}
	query += " ORDER BY created_at DESC"
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// ListBatchStudents returns the roster for a batch.
func (r *CatalogRepository) ListBatchStudents(ctx context.Context, batchID string) ([]models.BatchStudent, error) {
	const query = `SELECT id, batch_id, lead_id, admitted_at FROM batch_students WHERE batch_id = $1 ORDER BY admitted_at ASC`
	var roster []models.BatchStudent
	if err := r.db.SelectContext(ctx, &roster, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch roster: %w", err)
	}
	return roster, nil
}
