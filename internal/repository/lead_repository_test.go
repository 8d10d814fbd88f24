package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/primeops/primeops-api/internal/models"
)

func newLeadRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLeadRepositoryNextLeadID(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO lead_sequences")).
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(7))

	id, err := repo.NextLeadID(context.Background(), 2026)
	require.NoError(t, err)
	require.Equal(t, "LEAD-2026-0007", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lead := &models.Lead{LeadID: "LEAD-2026-0001", Name: "Prospect", Source: models.SourceManual}
	require.NoError(t, repo.Create(context.Background(), lead))
	require.NotEmpty(t, lead.ID)
	require.Equal(t, models.LeadStatusAssigned, lead.Status)
	require.False(t, lead.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryFindDuplicateSince(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	since := time.Now().AddDate(0, 0, -180)

	phone := "01711000000"
	email := "Someone@Example.com"
	rows := sqlmock.NewRows([]string{"id", "lead_id", "name", "phone", "email", "interested_course", "source", "status",
		"assigned_to", "assigned_by", "counseling_at", "admitted_at", "admitted_to_course", "admitted_to_batch",
		"next_follow_up_date", "created_at", "updated_at"}).
		AddRow("lead-1", "LEAD-2026-0001", "Prospect", phone, "someone@example.com", nil, models.SourceMeta, models.LeadStatusAssigned,
			nil, nil, nil, nil, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at >= $1 AND (phone = $2 OR email = $3)")).
		WithArgs(since, phone, "someone@example.com").
		WillReturnRows(rows)

	found, err := repo.FindDuplicateSince(context.Background(), &phone, &email, since)
	require.NoError(t, err)
	require.Equal(t, "lead-1", found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryFindDuplicateSinceNoContacts(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	empty := ""
	_, err := repo.FindDuplicateSince(context.Background(), &empty, nil, time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryAssign(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET assigned_to = $2, assigned_by = $3, status = $4, updated_at = $5 WHERE id = $1")).
		WithArgs("lead-1", "adm-1", "admin-1", models.LeadStatusAssigned, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Assign(context.Background(), "lead-1", "adm-1", "admin-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryApplyTransitionCommitsAll(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lead_follow_ups")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO batch_students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	now := time.Now().UTC()
	lead := &models.Lead{ID: "lead-1", Status: models.LeadStatusAdmitted}
	followUp := &models.FollowUp{LeadID: "lead-1", Note: "admitted", NotedAt: now, NotedBy: "adm-1"}
	roster := &models.BatchStudent{BatchID: "batch-1", LeadID: "lead-1", AdmittedAt: now}

	require.NoError(t, repo.ApplyTransition(context.Background(), lead, followUp, roster))
	require.NotEmpty(t, followUp.ID)
	require.NotEmpty(t, roster.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryApplyTransitionRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET status")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	lead := &models.Lead{ID: "lead-1", Status: models.LeadStatusCounseling}
	err := repo.ApplyTransition(context.Background(), lead, nil, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryListBuildsFilters(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	rows := sqlmock.NewRows([]string{"id", "lead_id", "name", "phone", "email", "interested_course", "source", "status",
		"assigned_to", "assigned_by", "counseling_at", "admitted_at", "admitted_to_course", "admitted_to_batch",
		"next_follow_up_date", "created_at", "updated_at",
		"assigned_to_id", "assigned_to_name", "assigned_to_email",
		"assigned_by_id", "assigned_by_name", "assigned_by_email"}).
		AddRow("lead-1", "LEAD-2026-0001", "Prospect", nil, nil, nil, models.SourceMeta, models.LeadStatusCounseling,
			"adm-1", "admin-1", nil, nil, nil, nil, nil, time.Now(), time.Now(),
			"adm-1", "Admission One", "adm1@example.com", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("l.status = $1 AND l.assigned_to = $2")).
		WithArgs(models.LeadStatusCounseling, "adm-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads l")).
		WithArgs(models.LeadStatusCounseling, "adm-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	details, total, err := repo.List(context.Background(), models.LeadFilter{
		Status:     models.LeadStatusCounseling,
		AssignedTo: "adm-1",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].AssignedToUser)
	require.Equal(t, "Admission One", details[0].AssignedToUser.Name)
	require.Nil(t, details[0].AssignedByUser)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryListFollowUpsOrder(t *testing.T) {
	db, mock, cleanup := newLeadRepoMock(t)
	defer cleanup()

	repo := NewLeadRepository(db)
	first := time.Now().Add(-time.Hour)
	second := time.Now()
	rows := sqlmock.NewRows([]string{"id", "lead_id", "note", "noted_at", "noted_by", "by_id", "by_name", "by_email"}).
		AddRow("fu-1", "lead-1", "first call", first, "adm-1", "adm-1", "Admission One", "adm1@example.com").
		AddRow("fu-2", "lead-1", "second call", second, "adm-1", "adm-1", "Admission One", "adm1@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("FROM lead_follow_ups f")).
		WithArgs("lead-1").
		WillReturnRows(rows)

	history, err := repo.ListFollowUps(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "first call", history[0].Note)
	require.Equal(t, "Admission One", history[1].By.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
