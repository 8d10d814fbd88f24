package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/primeops/primeops-api/internal/models"
)

// LeadRepository handles persistence of leads and their follow-up history.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs the repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// NextLeadID reserves the next sequence number for the given calendar year and
// composes the human-readable identifier. The per-year counter row is bumped
// with a single atomic upsert, so concurrent creations cannot collide.
func (r *LeadRepository) NextLeadID(ctx context.Context, year int) (string, error) {
	const query = `INSERT INTO lead_sequences (year, last_seq) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_seq = lead_sequences.last_seq + 1
        RETURNING last_seq`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, year); err != nil {
		return "", fmt.Errorf("reserve lead sequence: %w", err)
	}
	return fmt.Sprintf("LEAD-%d-%04d", year, seq), nil
}

// Create persists a new lead record.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = models.LeadStatusAssigned
	}
	const query = `INSERT INTO leads (id, lead_id, name, phone, email, interested_course, source, status,
        assigned_to, assigned_by, counseling_at, admitted_at, admitted_to_course, admitted_to_batch,
        next_follow_up_date, created_at, updated_at)
        VALUES (:id, :lead_id, :name, :phone, :email, :interested_course, :source, :status,
        :assigned_to, :assigned_by, :counseling_at, :admitted_at, :admitted_to_course, :admitted_to_batch,
        :next_follow_up_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// FindByID returns a lead by its opaque identifier.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	const query = `SELECT id, lead_id, name, phone, email, interested_course, source, status,
        assigned_to, assigned_by, counseling_at, admitted_at, admitted_to_course, admitted_to_batch,
        next_follow_up_date, created_at, updated_at FROM leads WHERE id = $1`
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		return nil, err
	}
	return &lead, nil
}

type leadRow struct {
	models.Lead
	AssignedToID    *string `db:"assigned_to_id"`
	AssignedToName  *string `db:"assigned_to_name"`
	AssignedToEmail *string `db:"assigned_to_email"`
	AssignedByID    *string `db:"assigned_by_id"`
	AssignedByName  *string `db:"assigned_by_name"`
	AssignedByEmail *string `db:"assigned_by_email"`
}

func (row leadRow) detail() models.LeadDetail {
	detail := models.LeadDetail{Lead: row.Lead, FollowUps: []models.FollowUpDetail{}}
	if row.AssignedToID != nil {
		detail.AssignedToUser = &models.UserRef{ID: *row.AssignedToID, Name: deref(row.AssignedToName), Email: deref(row.AssignedToEmail)}
	}
	if row.AssignedByID != nil {
		detail.AssignedByUser = &models.UserRef{ID: *row.AssignedByID, Name: deref(row.AssignedByName), Email: deref(row.AssignedByEmail)}
	}
	return detail
}

const leadDetailColumns = `l.id, l.lead_id, l.name, l.phone, l.email, l.interested_course, l.source, l.status,
        l.assigned_to, l.assigned_by, l.counseling_at, l.admitted_at, l.admitted_to_course, l.admitted_to_batch,
        l.next_follow_up_date, l.created_at, l.updated_at,
        ta.id AS assigned_to_id, ta.full_name AS assigned_to_name, ta.email AS assigned_to_email,
        tb.id AS assigned_by_id, tb.full_name AS assigned_by_name, tb.email AS assigned_by_email`

const leadDetailJoins = ` FROM leads l
        LEFT JOIN users ta ON ta.id = l.assigned_to
        LEFT JOIN users tb ON tb.id = l.assigned_by`

// FindDetailByID returns a lead with resolved assignment projections.
func (r *LeadRepository) FindDetailByID(ctx context.Context, id string) (*models.LeadDetail, error) {
	query := "SELECT " + leadDetailColumns + leadDetailJoins + " WHERE l.id = $1"
	var row leadRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	detail := row.detail()
	return &detail, nil
}

// List returns leads filtered by the provided criteria.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("l.assigned_to = $%d", len(args)+1))
		args = append(args, filter.AssignedTo)
	}
	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("l.source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(l.name ILIKE $%d OR l.lead_id ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s%s%s ORDER BY l.created_at DESC LIMIT %d OFFSET %d",
		leadDetailColumns, leadDetailJoins, clause, size, offset)

	var rows []leadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM leads l" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	details := make([]models.LeadDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, total, nil
}

// FindDuplicateSince returns a lead created at or after the cutoff whose phone
// or e-mail matches one of the provided values. Absent contact values never
// match; a lead with no phone cannot collide with another phoneless lead.
func (r *LeadRepository) FindDuplicateSince(ctx context.Context, phone, email *string, since time.Time) (*models.Lead, error) {
	var matches []string
	args := []interface{}{since}
	if phone != nil && *phone != "" {
		matches = append(matches, fmt.Sprintf("phone = $%d", len(args)+1))
		args = append(args, *phone)
	}
	if email != nil && *email != "" {
		matches = append(matches, fmt.Sprintf("email = $%d", len(args)+1))
		args = append(args, strings.ToLower(*email))
	}
	if len(matches) == 0 {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT id, lead_id, name, phone, email, interested_course, source, status,
        assigned_to, assigned_by, counseling_at, admitted_at, admitted_to_course, admitted_to_batch,
        next_follow_up_date, created_at, updated_at FROM leads
        WHERE created_at >= $1 AND (%s) LIMIT 1`, strings.Join(matches, " OR "))

	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, args...); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Assign sets the admission owner and resets the pipeline stage.
func (r *LeadRepository) Assign(ctx context.Context, id, assignedTo, assignedBy string) error {
	const query = `UPDATE leads SET assigned_to = $2, assigned_by = $3, status = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, assignedTo, assignedBy, models.LeadStatusAssigned, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign lead: %w", err)
	}
	return nil
}

// ApplyTransition persists the outcome of a validated status transition. The
// lead update, the optional follow-up append and the optional batch roster
// entry are committed in one transaction. The roster insert is a no-op when
// the lead is already a member of the batch.
func (r *LeadRepository) ApplyTransition(ctx context.Context, lead *models.Lead, followUp *models.FollowUp, roster *models.BatchStudent) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lead.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE leads SET status = :status, interested_course = :interested_course,
        counseling_at = :counseling_at, admitted_at = :admitted_at,
        admitted_to_course = :admitted_to_course, admitted_to_batch = :admitted_to_batch,
        next_follow_up_date = :next_follow_up_date, updated_at = :updated_at
        WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateQuery, lead); err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	if followUp != nil {
		if followUp.ID == "" {
			followUp.ID = uuid.NewString()
		}
		const followUpQuery = `INSERT INTO lead_follow_ups (id, lead_id, note, noted_at, noted_by)
            VALUES (:id, :lead_id, :note, :noted_at, :noted_by)`
		if _, err = tx.NamedExecContext(ctx, followUpQuery, followUp); err != nil {
			return fmt.Errorf("append follow up: %w", err)
		}
	}

	if roster != nil {
		if roster.ID == "" {
			roster.ID = uuid.NewString()
		}
		const rosterQuery = `INSERT INTO batch_students (id, batch_id, lead_id, admitted_at)
            VALUES ($1, $2, $3, $4) ON CONFLICT (batch_id, lead_id) DO NOTHING`
		if _, err = tx.ExecContext(ctx, rosterQuery, roster.ID, roster.BatchID, roster.LeadID, roster.AdmittedAt); err != nil {
			return fmt.Errorf("append batch roster: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

type followUpRow struct {
	models.FollowUp
	ByID    *string `db:"by_id"`
	ByName  *string `db:"by_name"`
	ByEmail *string `db:"by_email"`
}

// ListFollowUps returns the append-only history for a lead in chronological
// order, with each author resolved to a display-safe projection.
func (r *LeadRepository) ListFollowUps(ctx context.Context, leadID string) ([]models.FollowUpDetail, error) {
	const query = `SELECT f.id, f.lead_id, f.note, f.noted_at, f.noted_by,
        u.id AS by_id, u.full_name AS by_name, u.email AS by_email
        FROM lead_follow_ups f
        LEFT JOIN users u ON u.id = f.noted_by
        WHERE f.lead_id = $1 ORDER BY f.noted_at ASC, f.id ASC`
	var rows []followUpRow
	if err := r.db.SelectContext(ctx, &rows, query, leadID); err != nil {
		return nil, fmt.Errorf("list follow ups: %w", err)
	}
	details := make([]models.FollowUpDetail, 0, len(rows))
	for _, row := range rows {
		detail := models.FollowUpDetail{FollowUp: row.FollowUp}
		if row.ByID != nil {
			detail.By = models.UserRef{ID: *row.ByID, Name: deref(row.ByName), Email: deref(row.ByEmail)}
		}
		details = append(details, detail)
	}
	return details, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
