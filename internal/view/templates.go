package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Principal   *shared.Principal
	Data        any
}

var printer = message.NewPrinter(language.English)

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"money":  FormatMoney,
		"number": FormatNumber,
		"add":    func(a, b int) int { return a + b },
		"sub":    func(a, b int) int { return a - b },
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a named template and writes it with the given status.
// The template is executed into a buffer first so a failing template never
// leaves a half written page behind.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf strings.Builder
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(buf.String()))
	return err
}

// FormatMoney renders an amount with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Round(2)
	whole := fixed.Truncate(0)
	frac := fixed.Sub(whole).Abs().StringFixed(2)
	sign := ""
	if fixed.IsNegative() && whole.IsZero() {
		sign = "-"
	}
	return sign + printer.Sprintf("%d", whole.IntPart()) + strings.TrimPrefix(frac, "0")
}

// FormatNumber renders an integer with thousands separators.
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}
