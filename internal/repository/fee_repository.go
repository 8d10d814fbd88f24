package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/primeops/primeops-api/internal/models"
)

// FeeRepository handles persistence of admission fee submissions.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// Create persists a new fee submission.
func (r *FeeRepository) Create(ctx context.Context, fee *models.AdmissionFee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = now
	}
	fee.UpdatedAt = now
	if fee.Status == "" {
		fee.Status = models.FeeStatusPending
	}
	const query = `INSERT INTO admission_fees (id, lead_id, course_name, amount, method, payment_date, note, status, submitted_by, created_at, updated_at)
        VALUES (:id, :lead_id, :course_name, :amount, :method, :payment_date, :note, :status, :submitted_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// FindByID returns a fee by its ID.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.AdmissionFee, error) {
	const query = `SELECT id, lead_id, course_name, amount, method, payment_date, note, status, submitted_by, decided_by, created_at, updated_at
        FROM admission_fees WHERE id = $1`
	var fee models.AdmissionFee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// FindDetailByID returns a fee with lead context.
func (r *FeeRepository) FindDetailByID(ctx context.Context, id string) (*models.FeeDetail, error) {
	const query = `SELECT f.id, f.lead_id, f.course_name, f.amount, f.method, f.payment_date, f.note, f.status, f.submitted_by, f.decided_by, f.created_at, f.updated_at,
        l.lead_id AS lead_ref, l.name AS lead_name, l.status AS lead_status
        FROM admission_fees f
        LEFT JOIN leads l ON l.id = f.lead_id
        WHERE f.id = $1`
	var detail models.FeeDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns fee submissions filtered by the provided criteria.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("f.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.SubmittedBy != "" {
		conditions = append(conditions, fmt.Sprintf("f.submitted_by = $%d", len(args)+1))
		args = append(args, filter.SubmittedBy)
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

	query := fmt.Sprintf(`SELECT f.id, f.lead_id, f.course_name, f.amount, f.method, f.payment_date, f.note, f.status, f.submitted_by, f.decided_by, f.created_at, f.updated_at,
        l.lead_id AS lead_ref, l.name AS lead_name, l.status AS lead_status
        FROM admission_fees f
        LEFT JOIN leads l ON l.id = f.lead_id%s ORDER BY f.created_at DESC LIMIT %d OFFSET %d`, clause, size, offset)

	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fees: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM admission_fees f" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fees: %w", err)
	}
	return fees, total, nil
}

// Approve moves a pending fee to Approved and books the matching income row
// in one transaction. A booking failure rolls the status change back, so the
// fee stays Pending and the approval can be retried. The insert is keyed by
// the unique (ref_type, ref_id) pair; a fee whose income already exists is
// absorbed without a second row. It reports whether the fee moved and whether
// an income row was written.
func (r *FeeRepository) Approve(ctx context.Context, id, decidedBy string, income *models.Income) (moved bool, booked bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("begin approve: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const decideQuery = `UPDATE admission_fees SET status = $2, decided_by = $3, updated_at = $4 WHERE id = $1 AND status = $5`
	result, err := tx.ExecContext(ctx, decideQuery, id, models.FeeStatusApproved, decidedBy, time.Now().UTC(), models.FeeStatusPending)
	if err != nil {
		return false, false, fmt.Errorf("approve fee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("approve fee rows: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return false, false, nil
	}

	if income.ID == "" {
		income.ID = uuid.NewString()
	}
	if income.CreatedAt.IsZero() {
		income.CreatedAt = time.Now().UTC()
	}
	income.RefType = models.IncomeRefAdmissionFee
	const bookQuery = `INSERT INTO incomes (id, date, source, amount, ref_type, ref_id, added_by, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (ref_type, ref_id) WHERE ref_id IS NOT NULL DO NOTHING`
	booking, err := tx.ExecContext(ctx, bookQuery, income.ID, income.Date, income.Source, income.Amount,
		income.RefType, income.RefID, income.AddedBy, income.Note, income.CreatedAt)
	if err != nil {
		return false, false, fmt.Errorf("book fee income: %w", err)
	}
	inserted, err := booking.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("book fee income rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, false, fmt.Errorf("commit approve: %w", err)
	}
	return true, inserted > 0, nil
}

// Decide moves a pending fee to a terminal status. It reports whether a row
// was updated; a fee that already left Pending is never touched again.
func (r *FeeRepository) Decide(ctx context.Context, id string, status models.FeeStatus, decidedBy string) (bool, error) {
	const query = `UPDATE admission_fees SET status = $2, decided_by = $3, updated_at = $4 WHERE id = $1 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, id, status, decidedBy, time.Now().UTC(), models.FeeStatusPending)
	if err != nil {
		return false, fmt.Errorf("decide fee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide fee rows: %w", err)
	}
	return affected > 0, nil
}
