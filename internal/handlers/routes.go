package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/middleware"
)

// RegisterRoutes mounts every page and action. Everything except health and
// the login pages requires a session signed with secret.
func (h *Handlers) RegisterRoutes(router gin.IRouter, secret string) {
	// Public
	router.GET("/health", h.Health.Index)
	router.GET(middleware.LoginPath, h.Auth.LoginForm)
	router.POST(middleware.LoginPath, h.Auth.Login)
	router.GET("/logout", h.Auth.Logout)

	protected := router.Group("")
	protected.Use(middleware.Auth(secret))
	{
		// Clients
		protected.GET("/", h.Client.Index)
		protected.GET("/nuevo_cliente", h.Client.NewForm)
		protected.POST("/nuevo_cliente", h.Client.Create)
		protected.GET("/clientes_cancelados", h.Client.Cancelled)
		protected.POST("/eliminar_cliente/:id", h.Client.Cancel)
		protected.POST("/reactivar_cliente/:id", h.Client.Reactivate)
		protected.POST("/actualizar_orden/:id", h.Client.UpdateOrder)
		protected.POST("/otorgar_prestamo/:id", h.Client.GrantLoan)
		protected.GET("/editar_prestamo/:id", h.Client.EditLoan)
		protected.POST("/editar_prestamo/:id", h.Client.UpdateLoan)

		// Payments
		protected.POST("/abonar/:id", h.Payment.Record)
		protected.POST("/registrar_abono_por_codigo", h.Payment.RecordByCode)
		protected.POST("/eliminar_abono/:id", h.Payment.Delete)
		protected.GET("/historial_abonos/:id", h.Payment.History)

		// Cash register
		protected.POST("/caja/:tipo", h.Cash.Register)

		// Settlements
		protected.GET("/liquidacion", h.Settlement.Today)
		protected.GET("/liquidaciones", h.Settlement.Range)
		protected.GET("/liquidaciones/exportar", h.Settlement.Export)

		// Reports
		protected.GET("/detalle_abonos/:fecha", h.Report.DayPayments)
		protected.GET("/detalle_prestamos/:fecha", h.Report.DayLoans)
		protected.GET("/movimientos/:tipo/:fecha", h.Report.DayMovements)
		protected.GET("/ganancias_mes", h.Report.MonthlyProfit)

		protected.GET("/auditoria", h.Audit.Index)
	}
}
