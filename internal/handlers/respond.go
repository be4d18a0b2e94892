package handlers

import (
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/creditos-api/internal/middleware"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/internal/services"
	"github.com/sjperalta/creditos-api/pkg/logger"
)

const genericFailure = "No se pudo completar la operación"

// render answers a read with JSON for API callers and with a page otherwise.
// payload is sent as is; page data is merged over it.
func render(c *gin.Context, tmpl, title string, payload gin.H) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, payload)
		return
	}
	data := gin.H{
		"title": title,
		"user":  middleware.GetUsername(c),
		"flash": middleware.PopFlash(c),
	}
	for k, v := range payload {
		data[k] = v
	}
	c.HTML(http.StatusOK, tmpl, data)
}

// done answers a successful mutation: the payload as JSON, or a flash and a redirect.
func done(c *gin.Context, status int, payload gin.H, msg, back string) {
	if middleware.WantsJSON(c) {
		payload["message"] = msg
		c.JSON(status, payload)
		return
	}
	middleware.SetFlash(c, middleware.FlashSuccess, msg)
	c.Redirect(http.StatusSeeOther, back)
}

// fail maps a service error to a response. Validation errors go back to the
// form with their message. A missing record becomes a warning when
// flashMissing is set and a 404 page otherwise. Anything else is logged and
// reported without leaking details.
func fail(c *gin.Context, err error, back string, flashMissing bool) {
	jsonMode := middleware.WantsJSON(c)

	switch {
	case services.IsValidation(err):
		if jsonMode {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		middleware.SetFlash(c, middleware.FlashWarning, err.Error())
		c.Redirect(http.StatusSeeOther, back)

	case services.IsNotFound(err):
		if jsonMode {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if flashMissing {
			middleware.SetFlash(c, middleware.FlashWarning, err.Error())
			c.Redirect(http.StatusSeeOther, back)
			return
		}
		notFoundPage(c, err.Error())

	default:
		logger.Error("Request failed",
			"request_id", middleware.GetRequestID(c),
			"path", c.Request.URL.Path,
			"error", err,
		)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("request_id", middleware.GetRequestID(c))
				hub.CaptureException(err)
			})
		}
		_ = c.Error(err)
		if jsonMode {
			c.JSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
			return
		}
		middleware.SetFlash(c, middleware.FlashError, genericFailure)
		c.Redirect(http.StatusSeeOther, back)
	}
}

// badRequest rejects malformed path or query input before any service call.
func badRequest(c *gin.Context, msg, back string) {
	fail(c, &services.ValidationError{Msg: msg}, back, true)
}

func notFoundPage(c *gin.Context, msg string) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"title":   "No encontrado",
		"message": msg,
		"user":    middleware.GetUsername(c),
	})
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// listQuery builds a paged listing query from ?q= and ?page=.
func listQuery(c *gin.Context, perPage int) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Search = c.Query("q")
	query.PerPage = perPage
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	return query
}
