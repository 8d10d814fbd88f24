package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/primeops/primeops-api/internal/models"
)

// IncomeRepository handles the income and expense ledgers.
type IncomeRepository struct {
	db *sqlx.DB
}

// NewIncomeRepository constructs the repository.
func NewIncomeRepository(db *sqlx.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// Create persists a manual income entry. Fee-linked income is booked inside
// the approval transaction in FeeRepository instead.
func (r *IncomeRepository) Create(ctx context.Context, income *models.Income) error {
	if income.ID == "" {
		income.ID = uuid.NewString()
	}
	if income.CreatedAt.IsZero() {
		income.CreatedAt = time.Now().UTC()
	}
	if income.RefType == "" {
		income.RefType = models.IncomeRefManual
	}
	const query = `INSERT INTO incomes (id, date, source, amount, ref_type, ref_id, added_by, note, created_at)
        VALUES (:id, :date, :source, :amount, :ref_type, :ref_id, :added_by, :note, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, income); err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	return nil
}

// ListIncome returns ledger entries newest first.
func (r *IncomeRepository) ListIncome(ctx context.Context) ([]models.Income, error) {
	const query = `SELECT id, date, source, amount, ref_type, ref_id, added_by, note, created_at
        FROM incomes ORDER BY date DESC`
	var rows []models.Income
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	return rows, nil
}

// CreateExpense persists a cost entry.
func (r *IncomeRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO expenses (id, date, purpose, amount, added_by, note, created_at)
        VALUES (:id, :date, :purpose, :amount, :added_by, :note, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// ListExpense returns cost entries newest first.
func (r *IncomeRepository) ListExpense(ctx context.Context) ([]models.Expense, error) {
	const query = `SELECT id, date, purpose, amount, added_by, note, created_at
        FROM expenses ORDER BY date DESC`
	var rows []models.Expense
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list expense: %w", err)
	}
	return rows, nil
}

// DeleteExpense removes a cost entry, reporting whether it existed.
func (r *IncomeRepository) DeleteExpense(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense rows: %w", err)
	}
	return affected > 0, nil
}

// IncomeSeries returns income totals bucketed by day within the window.
func (r *IncomeRepository) IncomeSeries(ctx context.Context, from, to time.Time) ([]models.DailyAmount, error) {
	const query = `SELECT to_char(date, 'YYYY-MM-DD') AS day, SUM(amount) AS amount
        FROM incomes WHERE date >= $1 AND date <= $2 GROUP BY day ORDER BY day ASC`
	var series []models.DailyAmount
	if err := r.db.SelectContext(ctx, &series, query, from, to); err != nil {
		return nil, fmt.Errorf("income series: %w", err)
	}
	return series, nil
}

// ExpenseSeries returns expense totals bucketed by day within the window.
func (r *IncomeRepository) ExpenseSeries(ctx context.Context, from, to time.Time) ([]models.DailyAmount, error) {
	const query = `SELECT to_char(date, 'YYYY-MM-DD') AS day, SUM(amount) AS amount
        FROM expenses WHERE date >= $1 AND date <= $2 GROUP BY day ORDER BY day ASC`
	var series []models.DailyAmount
	if err := r.db.SelectContext(ctx, &series, query, from, to); err != nil {
		return nil, fmt.Errorf("expense series: %w", err)
	}
	return series, nil
}
