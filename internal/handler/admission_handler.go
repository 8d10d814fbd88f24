package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primeops/primeops-api/internal/service"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
	"github.com/primeops/primeops-api/pkg/response"
)

// AdmissionHandler exposes the admission pipeline endpoints.
type AdmissionHandler struct {
	leads *service.LeadService
	fees  *service.FeeService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(leads *service.LeadService, fees *service.FeeService) *AdmissionHandler {
	return &AdmissionHandler{leads: leads, fees: fees}
}

// ListLeads godoc
// @Summary List leads visible to the caller
// @Tags Admission
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name, phone or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admission/leads [get]
func (h *AdmissionHandler) ListLeads(c *gin.Context) {
	filter := leadFilterFromQuery(c)
	leads, pagination, err := h.leads.ListForActor(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, pagination)
}

// UpdateStatus godoc
// @Summary Move a lead through the pipeline
// @Tags Admission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lead ID"
// @Param payload body service.TransitionRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Router /admission/leads/{id}/status [patch]
func (h *AdmissionHandler) UpdateStatus(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lead, err := h.leads.Transition(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// SubmitFee godoc
// @Summary Submit an admission fee for an admitted lead
// @Tags Admission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SubmitFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Router /admission/fees [post]
func (h *AdmissionHandler) SubmitFee(c *gin.Context) {
	var req service.SubmitFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// ListFees godoc
// @Summary List fee submissions visible to the caller
// @Tags Admission
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admission/fees [get]
func (h *AdmissionHandler) ListFees(c *gin.Context) {
	filter := feeFilterFromQuery(c)
	fees, pagination, err := h.fees.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, pagination)
}
