package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	exportapp "github.com/gescom/backend/internal/application/export"
)

// ExportHandler handles CSV export API endpoints
type ExportHandler struct {
	BaseHandler
	exportService *exportapp.Service
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *exportapp.Service) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// RegisterRoutes registers export routes on the given group
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export/:entity", h.Export)
}

// Export handles GET /export/:entity. The entity may carry a .csv suffix,
// which is stripped before lookup.
func (h *ExportHandler) Export(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entity := strings.TrimSuffix(c.Param("entity"), ".csv")

	data, err := h.exportService.Export(c.Request.Context(), tenantID, entity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entity+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
