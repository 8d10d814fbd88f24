package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
	"github.com/primeops/primeops-api/pkg/export"
)

type ledgerRepository interface {
	Create(ctx context.Context, income *models.Income) error
	ListIncome(ctx context.Context) ([]models.Income, error)
	CreateExpense(ctx context.Context, expense *models.Expense) error
	ListExpense(ctx context.Context) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id string) (bool, error)
	IncomeSeries(ctx context.Context, from, to time.Time) ([]models.DailyAmount, error)
	ExpenseSeries(ctx context.Context, from, to time.Time) ([]models.DailyAmount, error)
}

// AddIncomeRequest describes a manual ledger entry.
type AddIncomeRequest struct {
	Date   *time.Time `json:"date" validate:"required"`
	Source string     `json:"source" validate:"required"`
	Amount *float64   `json:"amount" validate:"required"`
	Note   string     `json:"note"`
}

// AddExpenseRequest describes a cost entry.
type AddExpenseRequest struct {
	Date    *time.Time `json:"date" validate:"required"`
	Purpose string     `json:"purpose" validate:"required"`
	Amount  *float64   `json:"amount" validate:"required"`
	Note    string     `json:"note"`
}

// FinanceService exposes the consolidated income/expense ledger and the
// reporting summary.
type FinanceService struct {
	repo       ledgerRepository
	cache      *CacheService
	summaryTTL time.Duration
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewFinanceService constructs FinanceService.
func NewFinanceService(repo ledgerRepository, cache *CacheService, summaryTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaryTTL <= 0 {
		summaryTTL = 5 * time.Minute
	}
	return &FinanceService{
		repo:       repo,
		cache:      cache,
		summaryTTL: summaryTTL,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AddIncome records a manual income entry.
func (s *FinanceService) AddIncome(ctx context.Context, actor *models.JWTClaims, req AddIncomeRequest) (*models.Income, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date, source, amount required")
	}
	income := &models.Income{
		Date:    req.Date.UTC(),
		Source:  req.Source,
		Amount:  *req.Amount,
		RefType: models.IncomeRefManual,
		AddedBy: actor.UserID,
		Note:    req.Note,
	}
	if err := s.repo.Create(ctx, income); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create income")
	}
	s.invalidateSummary(ctx)
	return income, nil
}

// ListIncome returns the income ledger.
func (s *FinanceService) ListIncome(ctx context.Context) ([]models.Income, error) {
	rows, err := s.repo.ListIncome(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list income")
	}
	return rows, nil
}

// AddExpense records a cost entry.
func (s *FinanceService) AddExpense(ctx context.Context, actor *models.JWTClaims, req AddExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date, purpose, amount required")
	}
	expense := &models.Expense{
		Date:    req.Date.UTC(),
		Purpose: req.Purpose,
		Amount:  *req.Amount,
		AddedBy: actor.UserID,
		Note:    req.Note,
	}
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expense")
	}
	s.invalidateSummary(ctx)
	return expense, nil
}

// ListExpense returns the expense ledger.
func (s *FinanceService) ListExpense(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.repo.ListExpense(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expense")
	}
	return rows, nil
}

// DeleteExpense removes a cost entry.
func (s *FinanceService) DeleteExpense(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteExpense(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete expense")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "expense not found")
	}
	s.invalidateSummary(ctx)
	return nil
}

// Summary aggregates the ledgers over the window, defaulting to the current
// calendar year to date.
func (s *FinanceService) Summary(ctx context.Context, from, to *time.Time) (*models.FinanceSummary, error) {
	now := s.now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := now
	if from != nil {
		start = from.UTC()
	}
	if to != nil {
		end = to.UTC()
	}

	cacheKey := fmt.Sprintf("finance:summary:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if s.cache != nil {
		var cached models.FinanceSummary
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	incomeSeries, err := s.repo.IncomeSeries(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate income")
	}
	expenseSeries, err := s.repo.ExpenseSeries(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate expense")
	}

	summary := &models.FinanceSummary{
		From:          start,
		To:            end,
		IncomeSeries:  incomeSeries,
		ExpenseSeries: expenseSeries,
	}
	for _, point := range incomeSeries {
		summary.TotalIncome += point.Amount
	}
	for _, point := range expenseSeries {
		summary.TotalExpense += point.Amount
	}
	summary.Profit = summary.TotalIncome - summary.TotalExpense

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, summary, s.summaryTTL)
	}
	return summary, nil
}

// ExportSummary renders the summary as a downloadable CSV or PDF table.
func (s *FinanceService) ExportSummary(ctx context.Context, from, to *time.Time, format string) ([]byte, string, error) {
	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{Headers: []string{"Date", "Income", "Expense"}}
	income := map[string]float64{}
	for _, point := range summary.IncomeSeries {
		income[point.Date] = point.Amount
	}
	expense := map[string]float64{}
	for _, point := range summary.ExpenseSeries {
		expense[point.Date] = point.Amount
	}
	for _, day := range mergedDays(summary.IncomeSeries, summary.ExpenseSeries) {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    day,
			"Income":  formatAmount(income[day]),
			"Expense": formatAmount(expense[day]),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Date":    "Total",
		"Income":  formatAmount(summary.TotalIncome),
		"Expense": formatAmount(summary.TotalExpense),
	})

	switch format {
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Financial Summary")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
	}
}

func (s *FinanceService) invalidateSummary(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "finance:*")
	}
}

// mergedDays returns the sorted union of the day keys in both series. Each
// series is already sorted, so a two-pointer merge keeps the order.
func mergedDays(income, expense []models.DailyAmount) []string {
	var days []string
	i, j := 0, 0
	for i < len(income) || j < len(expense) {
		switch {
		case j >= len(expense) || (i < len(income) && income[i].Date < expense[j].Date):
			days = append(days, income[i].Date)
			i++
		case i >= len(income) || expense[j].Date < income[i].Date:
			days = append(days, expense[j].Date)
			j++
		default:
			days = append(days, income[i].Date)
			i++
			j++
		}
	}
	return days
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
