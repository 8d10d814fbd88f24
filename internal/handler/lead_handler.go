package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/primeops/primeops-api/internal/models"
	"github.com/primeops/primeops-api/internal/service"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
	"github.com/primeops/primeops-api/pkg/response"
)

// LeadHandler exposes lead intake and assignment endpoints.
type LeadHandler struct {
	leads *service.LeadService
}

// NewLeadHandler constructs LeadHandler.
func NewLeadHandler(leads *service.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// Create godoc
// @Summary Create a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateLeadRequest true "Lead payload"
// @Success 201 {object} response.Envelope
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lead, err := h.leads.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lead)
}

// BulkImport godoc
// @Summary Bulk import leads from CSV
// @Tags Leads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file with Name, Phone, Email, InterestedCourse, Source columns"
// @Success 200 {object} response.Envelope
// @Router /leads/bulk [post]
func (h *LeadHandler) BulkImport(c *gin.Context) {
	csvText, err := readCSVPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.leads.BulkImport(c.Request.Context(), claimsFromContext(c), csvText)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List leads
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param assignedTo query string false "Filter by assigned user"
// @Param source query string false "Filter by source"
// @Param search query string false "Search by name, phone or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	filter := leadFilterFromQuery(c)
	leads, pagination, err := h.leads.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, pagination)
}

// Assign godoc
// @Summary Assign a lead to an admission member
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lead ID"
// @Param payload body service.AssignLeadRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /leads/{id}/assign [post]
// @Router /leads/{id}/assign [patch]
func (h *LeadHandler) Assign(c *gin.Context) {
	var req service.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lead, err := h.leads.Assign(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

func leadFilterFromQuery(c *gin.Context) models.LeadFilter {
	var filter models.LeadFilter
	filter.Status = models.LeadStatus(c.Query("status"))
	filter.AssignedTo = c.Query("assignedTo")
	filter.Source = models.LeadSource(c.Query("source"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// readCSVPayload accepts either a multipart "file" field or a raw text body.
func readCSVPayload(c *gin.Context) (string, error) {
	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file")
		}
		defer opened.Close()
		payload, err := io.ReadAll(opened)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file")
		}
		return string(payload), nil
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read request body")
	}
	if len(strings.TrimSpace(string(payload))) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty csv payload")
	}
	return string(payload), nil
}
