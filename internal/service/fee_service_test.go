package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
)

type mockFeeRepo struct {
	fees      map[string]models.AdmissionFee
	booked    map[string]models.Income
	bookCalls int
	bookErr   error
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.AdmissionFee) error {
	if m.fees == nil {
		m.fees = make(map[string]models.AdmissionFee)
	}
	if fee.ID == "" {
		fee.ID = fmt.Sprintf("fee-%d", len(m.fees)+1)
	}
	m.fees[fee.ID] = *fee
	return nil
}

func (m *mockFeeRepo) FindByID(ctx context.Context, id string) (*models.AdmissionFee, error) {
	if fee, ok := m.fees[id]; ok {
		copied := fee
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) FindDetailByID(ctx context.Context, id string) (*models.FeeDetail, error) {
	if fee, ok := m.fees[id]; ok {
		return &models.FeeDetail{AdmissionFee: fee, LeadRef: "LEAD-2026-0001", LeadName: "Prospect"}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	var out []models.FeeDetail
	for _, fee := range m.fees {
		if filter.SubmittedBy != "" && fee.SubmittedBy != filter.SubmittedBy {
			continue
		}
		out = append(out, models.FeeDetail{AdmissionFee: fee})
	}
	return out, len(out), nil
}

// Decide mirrors the guarded update: only a Pending fee moves.
func (m *mockFeeRepo) Decide(ctx context.Context, id string, status models.FeeStatus, decidedBy string) (bool, error) {
	fee, ok := m.fees[id]
	if !ok || fee.Status != models.FeeStatusPending {
		return false, nil
	}
	fee.Status = status
	fee.DecidedBy = &decidedBy
	m.fees[id] = fee
	return true, nil
}

// Approve mirrors the transactional decide-and-book: a booking failure rolls
// everything back and the fee stays Pending, while a duplicate booking is
// absorbed without a second income row.
func (m *mockFeeRepo) Approve(ctx context.Context, id, decidedBy string, income *models.Income) (bool, bool, error) {
	fee, ok := m.fees[id]
	if !ok || fee.Status != models.FeeStatusPending {
		return false, false, nil
	}
	m.bookCalls++
	if m.bookErr != nil {
		return false, false, m.bookErr
	}
	if m.booked == nil {
		m.booked = make(map[string]models.Income)
	}
	key := string(models.IncomeRefAdmissionFee) + ":" + *income.RefID
	wrote := false
	if _, exists := m.booked[key]; !exists {
		m.booked[key] = *income
		wrote = true
	}
	fee.Status = models.FeeStatusApproved
	fee.DecidedBy = &decidedBy
	m.fees[id] = fee
	return true, wrote, nil
}

func newFeeServiceForTest(admittedLeadOwner string) (*FeeService, *mockFeeRepo, *mockLeadRepo) {
	leadRepo := &mockLeadRepo{}
	lead := seedLead(leadRepo, models.LeadStatusAdmitted, admittedLeadOwner)
	_ = lead
	feeRepo := &mockFeeRepo{}
	return NewFeeService(feeRepo, leadRepo, nil, nil), feeRepo, leadRepo
}

func submitRequest() SubmitFeeRequest {
	amount := 15000.0
	paid := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	return SubmitFeeRequest{
		LeadID:      "lead-1",
		CourseName:  "Graphic Design",
		Amount:      &amount,
		Method:      "Bkash",
		PaymentDate: &paid,
	}
}

func TestSubmitFeeHappyPath(t *testing.T) {
	svc, _, _ := newFeeServiceForTest("adm-1")

	detail, err := svc.Submit(context.Background(), admissionActor("adm-1"), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPending, detail.Status)
	assert.Equal(t, "adm-1", detail.SubmittedBy)
	assert.Equal(t, models.PaymentMethod("Bkash"), detail.Method)
}

func TestSubmitFeeAdmissionOnly(t *testing.T) {
	svc, _, _ := newFeeServiceForTest("adm-1")

	_, err := svc.Submit(context.Background(), &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}, submitRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSubmitFeeOwnershipEnforced(t *testing.T) {
	svc, _, _ := newFeeServiceForTest("adm-1")

	_, err := svc.Submit(context.Background(), admissionActor("adm-2"), submitRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSubmitFeeRequiresAdmittedLead(t *testing.T) {
	svc, _, leadRepo := newFeeServiceForTest("adm-1")
	lead := leadRepo.leads["lead-1"]
	lead.Status = models.LeadStatusCounseling
	leadRepo.leads["lead-1"] = lead

	_, err := svc.Submit(context.Background(), admissionActor("adm-1"), submitRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Admitted")
}

func TestSubmitFeeUnknownMethod(t *testing.T) {
	svc, _, _ := newFeeServiceForTest("adm-1")
	req := submitRequest()
	req.Method = "Paypal"

	_, err := svc.Submit(context.Background(), admissionActor("adm-1"), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitFeeMissingFields(t *testing.T) {
	svc, _, _ := newFeeServiceForTest("adm-1")

	_, err := svc.Submit(context.Background(), admissionActor("adm-1"), SubmitFeeRequest{LeadID: "lead-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApproveBooksIncomeOnce(t *testing.T) {
	svc, feeRepo, _ := newFeeServiceForTest("adm-1")
	accountant := &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}

	detail, err := svc.Submit(context.Background(), admissionActor("adm-1"), submitRequest())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), accountant, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusApproved, approved.Status)
	assert.Len(t, feeRepo.booked, 1)

	income := feeRepo.booked[string(models.IncomeRefAdmissionFee)+":"+detail.ID]
	assert.Equal(t, "Admission Fee", income.Source)
	assert.Equal(t, 15000.0, income.Amount)
	assert.Equal(t, "acc-1", income.AddedBy)
	assert.Equal(t, "LEAD-2026-0001 Graphic Design", income.Note)

	// A second approval hits the guarded update and errors without booking.
	_, err = svc.Approve(context.Background(), accountant, detail.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "already Approved")
	assert.Len(t, feeRepo.booked, 1)

	stored := feeRepo.fees[detail.ID]
	require.NotNil(t, stored.DecidedBy)
	assert.Equal(t, "acc-1", *stored.DecidedBy)
}

func TestApproveRetriesAfterBookingFailure(t *testing.T) {
	svc, feeRepo, _ := newFeeServiceForTest("adm-1")
	accountant := &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}

	detail, err := svc.Submit(context.Background(), admissionActor("adm-1"), submitRequest())
	require.NoError(t, err)

	// The decide and the income insert share one transaction, so a booking
	// failure leaves the fee Pending instead of Approved-without-income.
	feeRepo.bookErr = errors.New("ledger unavailable")
	_, err = svc.Approve(context.Background(), accountant, detail.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.FeeStatusPending, feeRepo.fees[detail.ID].Status)
	assert.Empty(t, feeRepo.booked)

	feeRepo.bookErr = nil
	approved, err := svc.Approve(context.Background(), accountant, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusApproved, approved.Status)
	assert.Len(t, feeRepo.booked, 1)
}

func TestRejectNeverBooksIncome(t *testing.T) {
	svc, feeRepo, _ := newFeeServiceForTest("adm-1")
	accountant := &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}

	detail, err := svc.Submit(context.Background(), admissionActor("adm-1"), submitRequest())
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), accountant, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusRejected, rejected.Status)
	assert.Empty(t, feeRepo.booked)

	// Rejected is terminal: approval afterwards is refused.
	_, err = svc.Approve(context.Background(), accountant, detail.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Empty(t, feeRepo.booked)
}

func TestApproveUnknownFee(t *testing.T) {
	svc, _, _ := newFeeServiceForTest("adm-1")
	_, err := svc.Approve(context.Background(), &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFeeListScoping(t *testing.T) {
	svc, feeRepo, _ := newFeeServiceForTest("adm-1")
	feeRepo.fees = map[string]models.AdmissionFee{
		"fee-1": {ID: "fee-1", SubmittedBy: "adm-1", Status: models.FeeStatusPending},
		"fee-2": {ID: "fee-2", SubmittedBy: "adm-2", Status: models.FeeStatusPending},
	}

	own, _, err := svc.List(context.Background(), admissionActor("adm-1"), models.FeeFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, _, err := svc.List(context.Background(), &models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant}, models.FeeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, _, err = svc.List(context.Background(), &models.JWTClaims{UserID: "mkt-1", Role: models.RoleDigitalMarketing}, models.FeeFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
