package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  7,
		"username": "caja",
		"exp":      expires.Unix(),
		"iat":      time.Now().Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Auth(testSecret))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})
	return r
}

func TestAuth_ValidSessionCookie(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed(t, testSecret, time.Now().Add(time.Hour))})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"username":"caja"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuth_AnonymousBrowserIsRedirected(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
}

func TestAuth_AnonymousJSONGets401(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"wrong secret", signed(t, "other", time.Now().Add(time.Hour)), "sesión inválida"},
		{"expired", signed(t, testSecret, time.Now().Add(-time.Hour)), "sesión expirada"},
		{"garbage", "not-a-token", "sesión inválida"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter()
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Requested-With", "fetch")
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.token})
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.msg)
		})
	}
}

func TestAuth_BearerHeader(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, testSecret, time.Now().Add(time.Hour)))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFlash_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/", nil)
	SetFlash(c, FlashSuccess, "Abono registrado: $ 5.000")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])

	msg := PopFlash(c2)
	require.NotNil(t, msg)
	assert.Equal(t, FlashSuccess, msg.Level)
	assert.Equal(t, "Abono registrado: $ 5.000", msg.Text)
	assert.Contains(t, w2.Header().Get("Set-Cookie"), "flash=;")
}
