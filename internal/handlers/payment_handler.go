package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/middleware"
	"github.com/sjperalta/creditos-api/internal/services"
	"github.com/sjperalta/creditos-api/internal/web"
)

// PaymentHandler handles abonos
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type paymentRequest struct {
	Code   string `form:"codigo" json:"code"`
	Amount string `form:"monto" json:"amount"`
}

// Record applies a payment to a client's current loan
func (h *PaymentHandler) Record(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}
	var req paymentRequest
	if err := bind(c, "payment", &req); err != nil {
		badRequest(c, "Datos del abono inválidos", "/")
		return
	}

	result, err := h.paymentService.Record(c.Request.Context(), middleware.Actor(c), id, req.Amount)
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	done(c, http.StatusCreated, gin.H{"result": result}, paymentMessage(result), "/")
}

// RecordByCode applies a payment to the active client holding a code
func (h *PaymentHandler) RecordByCode(c *gin.Context) {
	var req paymentRequest
	if err := bind(c, "payment", &req); err != nil {
		badRequest(c, "Datos del abono inválidos", "/")
		return
	}

	result, err := h.paymentService.RecordByCode(c.Request.Context(), middleware.Actor(c), req.Code, req.Amount)
	if err != nil {
		fail(c, err, "/", true)
		return
	}
	done(c, http.StatusCreated, gin.H{"result": result}, paymentMessage(result), "/")
}

func paymentMessage(r *services.PaymentResult) string {
	msg := fmt.Sprintf("Abono de %s registrado para %s", web.Money(r.Payment.Amount), r.Client.Name)
	if r.InterestApplied {
		msg += " (se aplicó el interés mensual)"
	}
	if r.Client.Cancelled {
		return msg + ". Préstamo pagado, cliente cancelado"
	}
	return msg + ". Saldo: " + web.Money(r.Loan.Balance)
}

// Delete reverses a payment and rebuilds the settlements since its day
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de abono inválido", "/")
		return
	}

	result, err := h.paymentService.Delete(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	msg := fmt.Sprintf("Abono de %s eliminado. Liquidaciones recalculadas desde %s",
		web.Money(result.Payment.Amount), localday.Format(result.Day))
	done(c, http.StatusOK, gin.H{"result": result}, msg, fmt.Sprintf("/historial_abonos/%d", result.Client.ID))
}

// History lists a client's payments with the balance each left
func (h *PaymentHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}

	history, err := h.paymentService.History(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	render(c, "historial.html", "Historial de abonos", gin.H{"history": history})
}
