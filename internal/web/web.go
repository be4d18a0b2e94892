// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page with the helper functions bound to loc.
func Templates(loc *time.Location) (*template.Template, error) {
	return template.New("").Funcs(Funcs(loc)).ParseFS(files, "templates/*.html")
}

// Funcs returns the template helpers. Timestamps are shown in loc.
func Funcs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"money": Money,
		"date":  localday.Format,
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("2006-01-02 15:04")
		},
		"lastPayment": func(t *time.Time) string {
			if t == nil {
				return "-"
			}
			return t.In(loc).Format("2006-01-02")
		},
		"movementLabel": models.MovementLabel,
		"frequencies":   models.Frequencies,
		"negative":      func(d decimal.Decimal) bool { return d.IsNegative() },
	}
}

// Money formats an amount with dot thousands and, when there are cents, a decimal comma.
func Money(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	f := d.InexactFloat64()
	format := "#.###,"
	if !d.Equal(d.Truncate(0)) {
		format = "#.###,##"
	}
	return sign + "$ " + humanize.FormatFloat(format, f)
}
