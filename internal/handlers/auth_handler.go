package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/jobs"
	"github.com/sjperalta/creditos-api/internal/middleware"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/services"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"gorm.io/gorm"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *gorm.DB
	worker *jobs.Worker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, worker *jobs.Worker) *HealthHandler {
	return &HealthHandler{db: db, worker: worker}
}

// Index reports database reachability and background job statistics
func (h *HealthHandler) Index(c *gin.Context) {
	status, code := "ok", http.StatusOK
	dbStatus := "ok"

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger.Warn("Health check: database unreachable", "error", err)
		status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "unreachable"
	}

	body := gin.H{
		"status":   status,
		"service":  "creditos-api",
		"database": dbStatus,
		"time":     time.Now().UTC(),
	}
	if h.worker != nil {
		body["jobs"] = h.worker.GetStats()
	}
	c.JSON(code, body)
}

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	auth   services.Authenticator
	audit  *services.AuditService
	maxAge int
	secure bool
}

// NewAuthHandler creates a new auth handler. Sessions last sessionHours; the
// cookie is marked Secure when secure is set.
func NewAuthHandler(auth services.Authenticator, audit *services.AuditService, sessionHours int, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		audit:  audit,
		maxAge: sessionHours * 3600,
		secure: secure,
	}
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// LoginForm shows the sign-in page
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title":    "Ingresar",
		"flash":    middleware.PopFlash(c),
		"error":    "",
		"username": "",
	})
}

// Login checks the credentials and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, http.StatusBadRequest, "Usuario y contraseña son requeridos", req.Username)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrInactiveAccount) {
			logger.Warn("Failed login", "username", req.Username, "ip", c.ClientIP())
			h.loginFailed(c, http.StatusUnauthorized, err.Error(), req.Username)
			return
		}
		fail(c, err, middleware.LoginPath, true)
		return
	}

	middleware.SetSession(c, result.Token, h.maxAge, h.secure)

	actor := middleware.Actor(c)
	actor.UserID = result.User.ID
	if err := h.audit.Log(c.Request.Context(), actor, models.AuditLogin, "User", result.User.ID, "Inicio de sesión"); err != nil {
		logger.Warn("Failed to audit login", "error", err)
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, result)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) loginFailed(c *gin.Context, status int, msg, username string) {
	if middleware.WantsJSON(c) {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.HTML(status, "login.html", gin.H{
		"title":    "Ingresar",
		"error":    msg,
		"username": username,
	})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}
