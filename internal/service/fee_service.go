package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
)

type feeRepository interface {
	Create(ctx context.Context, fee *models.AdmissionFee) error
	FindByID(ctx context.Context, id string) (*models.AdmissionFee, error)
	FindDetailByID(ctx context.Context, id string) (*models.FeeDetail, error)
	List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error)
	Decide(ctx context.Context, id string, status models.FeeStatus, decidedBy string) (bool, error)
	Approve(ctx context.Context, id, decidedBy string, income *models.Income) (bool, bool, error)
}

type leadReader interface {
	FindByID(ctx context.Context, id string) (*models.Lead, error)
}

// SubmitFeeRequest describes a fee submission for an admitted lead.
type SubmitFeeRequest struct {
	LeadID      string     `json:"lead_id" validate:"required"`
	CourseName  string     `json:"course_name" validate:"required"`
	Amount      *float64   `json:"amount" validate:"required"`
	Method      string     `json:"method" validate:"required"`
	PaymentDate *time.Time `json:"payment_date" validate:"required"`
	Note        string     `json:"note"`
}

// FeeService gates fee submission and handles the accountant decision with
// exactly-once income recognition.
type FeeService struct {
	repo      feeRepository
	leads     leadReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs FeeService.
func NewFeeService(repo feeRepository, leads leadReader, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, leads: leads, validator: validate, logger: logger}
}

// Submit creates a pending fee for a lead the caller owns. Only the assigned
// admission member may submit, and only once the lead is Admitted.
func (s *FeeService) Submit(ctx context.Context, actor *models.JWTClaims, req SubmitFeeRequest) (*models.FeeDetail, error) {
	if actor.Role != models.RoleAdmission {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admission only")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing required fields")
	}
	method := models.PaymentMethod(req.Method)
	if !method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown payment method %q", req.Method))
	}

	lead, err := s.leads.FindByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	if lead.AssignedTo == nil || *lead.AssignedTo != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot submit fee for unassigned lead")
	}
	if lead.Status != models.LeadStatusAdmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "lead must be Admitted")
	}

	fee := &models.AdmissionFee{
		LeadID:      lead.ID,
		CourseName:  req.CourseName,
		Amount:      *req.Amount,
		Method:      method,
		PaymentDate: req.PaymentDate.UTC(),
		Note:        req.Note,
		Status:      models.FeeStatusPending,
		SubmittedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee")
	}

	detail, err := s.repo.FindDetailByID(ctx, fee.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee detail")
	}
	return detail, nil
}

// List returns fee submissions scoped to the caller: admission users see
// their own, accountants and management see all.
func (s *FeeService) List(ctx context.Context, actor *models.JWTClaims, filter models.FeeFilter) ([]models.FeeDetail, *models.Pagination, error) {
	switch {
	case actor.Role == models.RoleAdmission:
		filter.SubmittedBy = actor.UserID
	case actor.Role == models.RoleAccountant, actor.Role.IsManagement():
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed")
	}

	fees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return fees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Approve moves a pending fee to Approved and books the matching income
// ledger entry in one repository transaction: if booking fails the fee stays
// Pending and the approval can be retried. The booking is keyed by the fee
// reference, so a repeated or concurrent approval can never produce a second
// income row.
func (s *FeeService) Approve(ctx context.Context, actor *models.JWTClaims, feeID string) (*models.FeeDetail, error) {
	fee, err := s.loadFee(ctx, feeID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindDetailByID(ctx, feeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee detail")
	}

	income := &models.Income{
		Date:    fee.PaymentDate,
		Source:  "Admission Fee",
		Amount:  fee.Amount,
		RefType: models.IncomeRefAdmissionFee,
		RefID:   &fee.ID,
		AddedBy: actor.UserID,
		Note:    fmt.Sprintf("%s %s", existing.LeadRef, fee.CourseName),
	}
	moved, booked, err := s.repo.Approve(ctx, feeID, actor.UserID, income)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve fee")
	}
	if !moved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("fee already %s", fee.Status))
	}
	if !booked {
		s.logger.Info("income already booked for fee", zap.String("fee_id", feeID))
	}

	detail, err := s.repo.FindDetailByID(ctx, feeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee detail")
	}
	return detail, nil
}

// Reject moves a pending fee to Rejected. No income is ever booked and an
// already-decided fee cannot be rejected.
func (s *FeeService) Reject(ctx context.Context, actor *models.JWTClaims, feeID string) (*models.FeeDetail, error) {
	fee, err := s.loadFee(ctx, feeID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Decide(ctx, feeID, models.FeeStatusRejected, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject fee")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("fee already %s", fee.Status))
	}

	detail, err := s.repo.FindDetailByID(ctx, feeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee detail")
	}
	return detail, nil
}

func (s *FeeService) loadFee(ctx context.Context, feeID string) (*models.AdmissionFee, error) {
	fee, err := s.repo.FindByID(ctx, feeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}
	return fee, nil
}
