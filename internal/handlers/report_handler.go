package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/services"
)

// ReportHandler handles the day-detail and profit reports
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DayPayments lists the payments received on /:fecha
func (h *ReportHandler) DayPayments(c *gin.Context) {
	day, err := localday.Parse(c.Param("fecha"))
	if err != nil {
		badRequest(c, err.Error(), "/liquidaciones")
		return
	}
	report, err := h.reportService.DayPayments(c.Request.Context(), day)
	if err != nil {
		fail(c, err, "/liquidaciones", true)
		return
	}
	render(c, "detalle_abonos.html", "Detalle de abonos", gin.H{"report": report})
}

// DayLoans lists the loans disbursed on /:fecha
func (h *ReportHandler) DayLoans(c *gin.Context) {
	day, err := localday.Parse(c.Param("fecha"))
	if err != nil {
		badRequest(c, err.Error(), "/liquidaciones")
		return
	}
	report, err := h.reportService.DayLoans(c.Request.Context(), day)
	if err != nil {
		fail(c, err, "/liquidaciones", true)
		return
	}
	render(c, "detalle_prestamos.html", "Detalle de préstamos", gin.H{"report": report})
}

// DayMovements lists the journal lines of /:tipo on /:fecha
func (h *ReportHandler) DayMovements(c *gin.Context) {
	day, err := localday.Parse(c.Param("fecha"))
	if err != nil {
		badRequest(c, err.Error(), "/liquidaciones")
		return
	}
	report, err := h.reportService.DayMovements(c.Request.Context(), c.Param("tipo"), day)
	if err != nil {
		fail(c, err, "/liquidaciones", true)
		return
	}
	render(c, "movimientos.html", report.Label, gin.H{"report": report})
}

// MonthlyProfit shows the interest earned on this month's loans
func (h *ReportHandler) MonthlyProfit(c *gin.Context) {
	profit, err := h.reportService.MonthlyProfit(c.Request.Context())
	if err != nil {
		fail(c, err, "/", true)
		return
	}
	render(c, "ganancias.html", "Ganancias del mes", gin.H{"profit": profit})
}
