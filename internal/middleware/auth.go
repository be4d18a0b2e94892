package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/creditos-api/internal/models"
)

// SessionCookie holds the signed session token
const SessionCookie = "session"

// LoginPath is where anonymous browsers are sent
const LoginPath = "/login"

// Claims represents the JWT claims structure
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth returns a middleware that validates the session cookie. Browsers
// without a valid session are redirected to the login form; JSON clients get 401.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			// API clients may send the same token as a bearer header
			tokenString = bearerToken(c.GetHeader("Authorization"))
		}
		if tokenString == "" {
			reject(c, "Sesión requerida")
			return
		}

		claims, err := validateToken(tokenString, secret)
		if err != nil {
			ClearSession(c)
			reject(c, err.Error())
			return
		}

		// Store claims in context for handlers to use
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("claims", claims)

		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func reject(c *gin.Context, msg string) {
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
	c.Abort()
}

// validateToken parses and validates a JWT token string
func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("sesión expirada")
		}
		return nil, errors.New("sesión inválida")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("sesión inválida")
	}

	return claims, nil
}

// SetSession stores the session token in an HttpOnly cookie
func SetSession(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

// ClearSession removes the session cookie
func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get("userID")
	if !exists {
		return 0
	}
	return userID.(uint)
}

// GetUsername extracts the username from the Gin context
func GetUsername(c *gin.Context) string {
	username, exists := c.Get("username")
	if !exists {
		return ""
	}
	return username.(string)
}

// Actor describes the signed-in operator for the audit trail
func Actor(c *gin.Context) models.Actor {
	return models.Actor{
		UserID:    GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// WantsJSON reports whether the client asked for a JSON response instead of a page
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "fetch" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
