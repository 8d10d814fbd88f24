package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
)

type mockLedgerRepo struct {
	incomes      []models.Income
	expenses     []models.Expense
	incomeByDay  []models.DailyAmount
	expenseByDay []models.DailyAmount

	lastFrom time.Time
	lastTo   time.Time
}

func (m *mockLedgerRepo) Create(ctx context.Context, income *models.Income) error {
	m.incomes = append(m.incomes, *income)
	return nil
}

func (m *mockLedgerRepo) ListIncome(ctx context.Context) ([]models.Income, error) {
	return m.incomes, nil
}

func (m *mockLedgerRepo) CreateExpense(ctx context.Context, expense *models.Expense) error {
	m.expenses = append(m.expenses, *expense)
	return nil
}

func (m *mockLedgerRepo) ListExpense(ctx context.Context) ([]models.Expense, error) {
	return m.expenses, nil
}

func (m *mockLedgerRepo) DeleteExpense(ctx context.Context, id string) (bool, error) {
	for i, expense := range m.expenses {
		if expense.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLedgerRepo) IncomeSeries(ctx context.Context, from, to time.Time) ([]models.DailyAmount, error) {
	m.lastFrom, m.lastTo = from, to
	return m.incomeByDay, nil
}

func (m *mockLedgerRepo) ExpenseSeries(ctx context.Context, from, to time.Time) ([]models.DailyAmount, error) {
	return m.expenseByDay, nil
}

func newFinanceServiceForTest(repo *mockLedgerRepo) *FinanceService {
	svc := NewFinanceService(repo, nil, time.Minute, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestAddIncomeManualEntry(t *testing.T) {
	repo := &mockLedgerRepo{}
	svc := newFinanceServiceForTest(repo)

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	amount := 2500.0
	income, err := svc.AddIncome(context.Background(), &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}, AddIncomeRequest{
		Date:   &date,
		Source: "Workshop",
		Amount: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, models.IncomeRefManual, income.RefType)
	assert.Nil(t, income.RefID)
	assert.Equal(t, "acc-1", income.AddedBy)
	require.Len(t, repo.incomes, 1)
}

func TestAddIncomeValidation(t *testing.T) {
	svc := newFinanceServiceForTest(&mockLedgerRepo{})

	_, err := svc.AddIncome(context.Background(), &models.JWTClaims{UserID: "acc-1"}, AddIncomeRequest{Source: "Workshop"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAddExpenseValidation(t *testing.T) {
	svc := newFinanceServiceForTest(&mockLedgerRepo{})

	_, err := svc.AddExpense(context.Background(), &models.JWTClaims{UserID: "acc-1"}, AddExpenseRequest{Purpose: "Rent"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteExpenseNotFound(t *testing.T) {
	svc := newFinanceServiceForTest(&mockLedgerRepo{})

	err := svc.DeleteExpense(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSummaryTotalsAndProfit(t *testing.T) {
	repo := &mockLedgerRepo{
		incomeByDay: []models.DailyAmount{
			{Date: "2026-03-01", Amount: 15000},
			{Date: "2026-03-03", Amount: 5000},
		},
		expenseByDay: []models.DailyAmount{
			{Date: "2026-03-02", Amount: 7000},
		},
	}
	svc := newFinanceServiceForTest(repo)

	summary, err := svc.Summary(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, summary.TotalIncome)
	assert.Equal(t, 7000.0, summary.TotalExpense)
	assert.Equal(t, 13000.0, summary.Profit)
}

func TestSummaryDefaultWindowIsYearToDate(t *testing.T) {
	repo := &mockLedgerRepo{}
	svc := newFinanceServiceForTest(repo)

	_, err := svc.Summary(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), repo.lastFrom)
	assert.Equal(t, time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC), repo.lastTo)
}

func TestSummaryExplicitWindow(t *testing.T) {
	repo := &mockLedgerRepo{}
	svc := newFinanceServiceForTest(repo)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_, err := svc.Summary(context.Background(), &from, &to)
	require.NoError(t, err)
	assert.Equal(t, from, repo.lastFrom)
	assert.Equal(t, to, repo.lastTo)
}

func TestExportSummaryCSV(t *testing.T) {
	repo := &mockLedgerRepo{
		incomeByDay:  []models.DailyAmount{{Date: "2026-03-01", Amount: 15000}},
		expenseByDay: []models.DailyAmount{{Date: "2026-03-01", Amount: 4000}, {Date: "2026-03-02", Amount: 1000}},
	}
	svc := newFinanceServiceForTest(repo)

	payload, contentType, err := svc.ExportSummary(context.Background(), nil, nil, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Date")
	assert.Contains(t, lines[1], "2026-03-01")
	assert.Contains(t, lines[1], "15000.00")
	assert.Contains(t, lines[2], "2026-03-02")
	assert.Contains(t, lines[3], "Total")
	assert.Contains(t, lines[3], "5000.00")
}

func TestExportSummaryUnknownFormat(t *testing.T) {
	svc := newFinanceServiceForTest(&mockLedgerRepo{})

	_, _, err := svc.ExportSummary(context.Background(), nil, nil, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
