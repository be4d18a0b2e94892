package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/middleware"
	"github.com/sjperalta/creditos-api/internal/services"
	"github.com/sjperalta/creditos-api/internal/web"
)

const clientsPerPage = 200

// ClientHandler handles the client book
type ClientHandler struct {
	clientService *services.ClientService
	loanService   *services.LoanService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *services.ClientService, loanService *services.LoanService) *ClientHandler {
	return &ClientHandler{clientService: clientService, loanService: loanService}
}

// Index lists active clients with the dashboard summary
func (h *ClientHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	query := listQuery(c, clientsPerPage)

	clients, total, err := h.clientService.List(ctx, query)
	if err != nil {
		fail(c, err, "/liquidacion", true)
		return
	}
	summary, err := h.clientService.Summary(ctx)
	if err != nil {
		fail(c, err, "/liquidacion", true)
		return
	}

	render(c, "index.html", "Clientes", gin.H{
		"clients": clients,
		"total":   total,
		"page":    query.Page,
		"search":  query.Search,
		"summary": summary,
	})
}

// Cancelled lists cancelled clients, most recently touched first
func (h *ClientHandler) Cancelled(c *gin.Context) {
	query := listQuery(c, clientsPerPage)
	clients, total, err := h.clientService.ListCancelled(c.Request.Context(), query)
	if err != nil {
		fail(c, err, "/", true)
		return
	}
	render(c, "cancelados.html", "Clientes cancelados", gin.H{
		"clients": clients,
		"total":   total,
		"page":    query.Page,
		"search":  query.Search,
	})
}

// NewForm shows the new-client form with a suggested free code
func (h *ClientHandler) NewForm(c *gin.Context) {
	code, err := h.clientService.SuggestCode(c.Request.Context())
	if err != nil {
		fail(c, err, "/", true)
		return
	}
	render(c, "nuevo_cliente.html", "Nuevo cliente", gin.H{"code": code})
}

// Create registers a client and its optional first loan
func (h *ClientHandler) Create(c *gin.Context) {
	var in services.ClientInput
	if err := bind(c, "client", &in); err != nil {
		badRequest(c, "Datos del cliente inválidos", "/nuevo_cliente")
		return
	}

	result, err := h.clientService.Create(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		fail(c, err, "/nuevo_cliente", true)
		return
	}

	verb := "registrado"
	if result.Renewed {
		verb = "renovado"
	}
	msg := fmt.Sprintf("Cliente %s (%s) %s", result.Client.Name, result.Client.Code, verb)
	if result.Loan != nil {
		msg += fmt.Sprintf(" con préstamo de %s", web.Money(result.Loan.Amount))
	}
	done(c, http.StatusCreated, gin.H{"result": result}, msg, "/")
}

// Cancel cancels a client and writes off its balance
func (h *ClientHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}

	client, err := h.clientService.Cancel(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	done(c, http.StatusOK, gin.H{"client": client}, fmt.Sprintf("Cliente %s eliminado", client.Name), "/")
}

// Reactivate returns a cancelled client to the active book
func (h *ClientHandler) Reactivate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/clientes_cancelados")
		return
	}

	client, err := h.clientService.Reactivate(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, err, "/clientes_cancelados", false)
		return
	}
	done(c, http.StatusOK, gin.H{"client": client}, fmt.Sprintf("Cliente %s reactivado", client.Name), "/")
}

type orderRequest struct {
	Order string `form:"orden" json:"order"`
}

// UpdateOrder moves a client within the display order
func (h *ClientHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}
	var req orderRequest
	if err := bind(c, "client", &req); err != nil {
		badRequest(c, "Orden inválido", "/")
		return
	}
	order, err := strconv.Atoi(req.Order)
	if err != nil {
		badRequest(c, "El orden debe ser un número", "/")
		return
	}

	client, err := h.clientService.UpdateOrder(c.Request.Context(), middleware.Actor(c), id, order)
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	done(c, http.StatusOK, gin.H{"client": client},
		fmt.Sprintf("Cliente %s movido a la posición %d", client.Name, client.DisplayOrder), "/")
}

type grantRequest struct {
	Amount       string `form:"monto" json:"amount"`
	InterestRate string `form:"interes" json:"interest_rate"`
	TermDays     int    `form:"plazo" json:"term_days"`
	Frequency    string `form:"frecuencia" json:"frequency"`
}

// GrantLoan disburses a new loan to a client whose previous loan is paid
func (h *ClientHandler) GrantLoan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}
	var req grantRequest
	if err := bind(c, "loan", &req); err != nil {
		badRequest(c, "Datos del préstamo inválidos", "/")
		return
	}

	result, err := h.loanService.Grant(c.Request.Context(), middleware.Actor(c), id, services.LoanInput{
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		TermDays:     req.TermDays,
		Frequency:    req.Frequency,
	})
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	done(c, http.StatusCreated, gin.H{"result": result},
		fmt.Sprintf("Préstamo de %s otorgado a %s", web.Money(result.Loan.Amount), result.Client.Name), "/")
}

// EditLoan shows the terms of the client's current loan
func (h *ClientHandler) EditLoan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}

	edit, err := h.loanService.Current(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "/", false)
		return
	}
	render(c, "editar_prestamo.html", "Editar préstamo", gin.H{
		"client":       edit.Client,
		"loan":         edit.Loan,
		"has_payments": edit.HasPayments,
	})
}

// UpdateLoan changes the terms of the client's current loan
func (h *ClientHandler) UpdateLoan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "ID de cliente inválido", "/")
		return
	}
	back := fmt.Sprintf("/editar_prestamo/%d", id)
	var req grantRequest
	if err := bind(c, "loan", &req); err != nil {
		badRequest(c, "Datos del préstamo inválidos", back)
		return
	}

	result, err := h.loanService.Update(c.Request.Context(), middleware.Actor(c), id, services.LoanInput{
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		TermDays:     req.TermDays,
		Frequency:    req.Frequency,
	})
	if err != nil {
		fail(c, err, back, false)
		return
	}
	done(c, http.StatusOK, gin.H{"result": result},
		fmt.Sprintf("Préstamo de %s actualizado. Saldo: %s", result.Client.Name, web.Money(result.Loan.Balance)), "/")
}
