package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
)

type mockCatalogRepo struct {
	courses []models.Course
	batches []models.Batch
	roster  map[string][]models.BatchStudent
}

func (m *mockCatalogRepo) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	for _, course := range m.courses {
		if course.ID == id {
			copied := course
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalogRepo) FindBatchByID(ctx context.Context, id string) (*models.Batch, error) {
	for _, batch := range m.batches {
		if batch.ID == id {
			copied := batch
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalogRepo) ListCourses(ctx context.Context) ([]models.Course, error) {
	return m.courses, nil
}

func (m *mockCatalogRepo) ListBatches(ctx context.Context, courseID string) ([]models.Batch, error) {
	if courseID == "" {
		return m.batches, nil
	}
	var out []models.Batch
	for _, batch := range m.batches {
		if batch.CourseID == courseID {
			out = append(out, batch)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) ListBatchStudents(ctx context.Context, batchID string) ([]models.BatchStudent, error) {
	return m.roster[batchID], nil
}

func newCatalogServiceForTest() *CatalogService {
	repo := &mockCatalogRepo{
		courses: []models.Course{
			{ID: "course-1", Name: "Graphic Design", Fee: 15000, Active: true},
			{ID: "course-2", Name: "Web Development", Fee: 20000, Active: true},
		},
		batches: []models.Batch{
			{ID: "batch-1", CourseID: "course-1", Name: "GD-Batch-01"},
			{ID: "batch-2", CourseID: "course-2", Name: "WD-Batch-01"},
		},
		roster: map[string][]models.BatchStudent{
			"batch-1": {{ID: "bs-1", BatchID: "batch-1", LeadID: "lead-1", AdmittedAt: time.Now()}},
		},
	}
	return NewCatalogService(repo, nil)
}

func TestListBatchesByCourse(t *testing.T) {
	svc := newCatalogServiceForTest()

	all, err := svc.ListBatches(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.ListBatches(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "GD-Batch-01", scoped[0].Name)
}

func TestListBatchStudents(t *testing.T) {
	svc := newCatalogServiceForTest()

	roster, err := svc.ListBatchStudents(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "lead-1", roster[0].LeadID)
}

func TestListBatchStudentsUnknownBatch(t *testing.T) {
	svc := newCatalogServiceForTest()

	_, err := svc.ListBatchStudents(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
