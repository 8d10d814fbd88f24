package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primeops/primeops-api/internal/service"
	"github.com/primeops/primeops-api/pkg/response"
)

// CatalogHandler exposes the course and batch catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCourses godoc
// @Summary List active courses
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// ListBatches godoc
// @Summary List batches
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *CatalogHandler) ListBatches(c *gin.Context) {
	batches, err := h.catalog.ListBatches(c.Request.Context(), c.Query("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// ListBatchStudents godoc
// @Summary List the roster for a batch
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/students [get]
func (h *CatalogHandler) ListBatchStudents(c *gin.Context) {
	roster, err := h.catalog.ListBatchStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}
