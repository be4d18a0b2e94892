package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/services"
)

// SettlementHandler handles the daily cash settlements
type SettlementHandler struct {
	settlementService *services.SettlementService
	exportService     *services.ExportService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlementService *services.SettlementService, exportService *services.ExportService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService, exportService: exportService}
}

// Today recomputes and shows today's settlement
func (h *SettlementHandler) Today(c *gin.Context) {
	settlement, err := h.settlementService.Today(c.Request.Context())
	if err != nil {
		fail(c, err, "/", true)
		return
	}
	render(c, "liquidacion.html", "Liquidación", gin.H{"settlement": settlement})
}

// Range lists settlements between ?desde= and ?hasta=, filling empty days
func (h *SettlementHandler) Range(c *gin.Context) {
	from, err := optionalDay(c.Query("desde"))
	if err != nil {
		badRequest(c, err.Error(), "/liquidaciones")
		return
	}
	to, err := optionalDay(c.Query("hasta"))
	if err != nil {
		badRequest(c, err.Error(), "/liquidaciones")
		return
	}

	report, err := h.settlementService.Range(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err, "/liquidaciones", true)
		return
	}
	render(c, "liquidaciones.html", "Liquidaciones", gin.H{
		"report": report,
		"desde":  localday.Format(report.From),
		"hasta":  localday.Format(report.To),
	})
}

// Export downloads the settlements range as csv, xlsx or pdf
func (h *SettlementHandler) Export(c *gin.Context) {
	export, err := h.exportService.Settlements(c.Request.Context(),
		c.Query("desde"), c.Query("hasta"), c.DefaultQuery("formato", services.FormatCSV))
	if err != nil {
		fail(c, err, "/liquidaciones", true)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

func optionalDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return localday.Parse(raw)
}
