package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/services"
)

const auditPerPage = 50

// AuditHandler handles the audit trail
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Index lists audit entries, newest first. ?entidad= narrows to one entity.
func (h *AuditHandler) Index(c *gin.Context) {
	query := listQuery(c, auditPerPage)
	if entity := c.Query("entidad"); entity != "" {
		query.Filters["entity"] = entity
	}

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		fail(c, err, "/", true)
		return
	}

	data := gin.H{
		"logs":  logs,
		"total": total,
		"page":  query.Page,
	}
	if query.Page > 1 {
		data["prev"] = query.Page - 1
	}
	if int64(query.Page*query.PerPage) < total {
		data["next"] = query.Page + 1
	}
	render(c, "auditoria.html", "Auditoría", data)
}
