package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/primeops/primeops-api/internal/models"
	"github.com/primeops/primeops-api/internal/service"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
	"github.com/primeops/primeops-api/pkg/response"
)

// AccountingHandler exposes fee review and the finance ledger.
type AccountingHandler struct {
	fees    *service.FeeService
	finance *service.FinanceService
}

// NewAccountingHandler constructs AccountingHandler.
func NewAccountingHandler(fees *service.FeeService, finance *service.FinanceService) *AccountingHandler {
	return &AccountingHandler{fees: fees, finance: finance}
}

// ListFees godoc
// @Summary List fee submissions for review
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /accounting/fees [get]
func (h *AccountingHandler) ListFees(c *gin.Context) {
	filter := feeFilterFromQuery(c)
	fees, pagination, err := h.fees.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, pagination)
}

// ApproveFee godoc
// @Summary Approve a pending fee and record the income
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /accounting/fees/{id}/approve [patch]
func (h *AccountingHandler) ApproveFee(c *gin.Context) {
	fee, err := h.fees.Approve(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// RejectFee godoc
// @Summary Reject a pending fee
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /accounting/fees/{id}/reject [patch]
func (h *AccountingHandler) RejectFee(c *gin.Context) {
	fee, err := h.fees.Reject(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// AddIncome godoc
// @Summary Record a manual income entry
// @Tags Accounting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AddIncomeRequest true "Income payload"
// @Success 201 {object} response.Envelope
// @Router /accounting/income [post]
func (h *AccountingHandler) AddIncome(c *gin.Context) {
	var req service.AddIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	income, err := h.finance.AddIncome(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, income)
}

// ListIncome godoc
// @Summary List the income ledger
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /accounting/income [get]
func (h *AccountingHandler) ListIncome(c *gin.Context) {
	rows, err := h.finance.ListIncome(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// AddExpense godoc
// @Summary Record an expense entry
// @Tags Accounting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AddExpenseRequest true "Expense payload"
// @Success 201 {object} response.Envelope
// @Router /accounting/expense [post]
func (h *AccountingHandler) AddExpense(c *gin.Context) {
	var req service.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	expense, err := h.finance.AddExpense(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, expense)
}

// ListExpense godoc
// @Summary List the expense ledger
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /accounting/expense [get]
func (h *AccountingHandler) ListExpense(c *gin.Context) {
	rows, err := h.finance.ListExpense(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// DeleteExpense godoc
// @Summary Delete an expense entry
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204
// @Router /accounting/expense/{id} [delete]
func (h *AccountingHandler) DeleteExpense(c *gin.Context) {
	if err := h.finance.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Financial summary over a date window
// @Tags Accounting
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /accounting/summary [get]
func (h *AccountingHandler) Summary(c *gin.Context) {
	from, to, err := summaryWindow(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.finance.Summary(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportSummary godoc
// @Summary Export the financial summary
// @Tags Accounting
// @Produce octet-stream
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /accounting/summary/export [get]
func (h *AccountingHandler) ExportSummary(c *gin.Context) {
	from, to, err := summaryWindow(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.finance.ExportSummary(c.Request.Context(), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "financial-summary." + format
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

func feeFilterFromQuery(c *gin.Context) models.FeeFilter {
	var filter models.FeeFilter
	filter.Status = models.FeeStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

func summaryWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD")
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD")
		}
		to = &parsed
	}
	return from, to, nil
}
