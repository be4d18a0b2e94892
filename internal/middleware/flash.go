package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// Flash levels
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "danger"
)

// FlashMessage is a one-shot notice shown on the next rendered page
type FlashMessage struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// SetFlash queues a message for the next page view
func SetFlash(c *gin.Context, level, text string) {
	raw, err := json.Marshal(FlashMessage{Level: level, Text: text})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", false, true)
}

// PopFlash returns the pending message, if any, and clears it
func PopFlash(c *gin.Context) *FlashMessage {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msg FlashMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	return &msg
}
