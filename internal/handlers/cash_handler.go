package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/middleware"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/services"
	"github.com/sjperalta/creditos-api/internal/web"
)

// CashHandler handles manual cash-register entries
type CashHandler struct {
	cashService *services.CashService
}

// NewCashHandler creates a new cash handler
func NewCashHandler(cashService *services.CashService) *CashHandler {
	return &CashHandler{cashService: cashService}
}

type movementRequest struct {
	Amount      string `form:"monto" json:"amount"`
	Description string `form:"descripcion" json:"description"`
}

// Register records an entrada, salida or gasto
func (h *CashHandler) Register(c *gin.Context) {
	var req movementRequest
	if err := bind(c, "movement", &req); err != nil {
		badRequest(c, "Datos del movimiento inválidos", "/")
		return
	}

	result, err := h.cashService.Register(c.Request.Context(), middleware.Actor(c), c.Param("tipo"), req.Amount, req.Description)
	if err != nil {
		fail(c, err, "/", true)
		return
	}
	msg := fmt.Sprintf("%s de %s registrada. Caja: %s",
		models.MovementLabel(result.Movement.Type), web.Money(result.Movement.Amount), web.Money(result.Settlement.Balance))
	done(c, http.StatusCreated, gin.H{"result": result}, msg, "/")
}
