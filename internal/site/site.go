// Package site serves the ACME Bank demo application that both workshop
// test suites run against.
//
// Two login page variants are available:
//   - "/" is the original login page
//   - "/index_v2.html" is a restyled variant with the same element IDs,
//     so element assertions keep passing while visual checkpoints differ
//
// Submitting the login form lands on the main page, which carries a
// branch-closing countdown (a deliberately dynamic text region), the
// account menu, and a table of recent transactions with status pills.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// closingHour is the hour (24h clock) the nearest branch closes.
const closingHour = 17

// MenuItems are the account menu entries on the main page, in render order.
var MenuItems = []string{
	"Card Types",
	"Credit Cards",
	"Debit Cards",
	"Lending",
	"Loans",
	"Mortgages",
}

// transaction is one row of the recent-transactions table.
type transaction struct {
	Status      string
	Date        string
	Description string
	Category    string
	Amount      string
}

var transactions = []transaction{
	{"Complete", "Today 1:52pm", "Starbucks coffee", "Restaurant / Cafe", "+ 1,250.00 USD"},
	{"Pending", "Today 1:46pm", "Stripe payment", "Business income", "+ 952.23 USD"},
	{"Declined", "Yesterday 8:20am", "MailChimp", "Software", "- 320.00 USD"},
	{"Complete", "Yesterday 7:14am", "Shopify product", "Shopping", "+ 17.99 USD"},
	{"Pending", "Jan 25th 5:02pm", "Ebay marketplace", "Ecommerce", "- 244.00 USD"},
}

// renderer adapts html/template to echo's Renderer interface.
type renderer struct {
	templates *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// New builds the demo site server.
//
// The returned echo instance is not started; callers run it with
// e.Start(addr) or hand it to a test environment.
func New() (*echo.Echo, error) {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &renderer{templates: templates}

	e.Use(echoMiddleware.Recover())

	e.GET("/", loginPage("login.html"))
	e.GET("/index_v2.html", loginPage("login_v2.html"))
	e.POST("/app", mainPage)

	return e, nil
}

// loginPage renders one of the two login variants.
func loginPage(tmpl string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, tmpl, nil)
	}
}

// mainPage renders the post-login page. Credentials are not checked; the
// demo site accepts any login, same as the hosted original.
func mainPage(c echo.Context) error {
	data := map[string]interface{}{
		"Username":     c.FormValue("username"),
		"Countdown":    ClosingCountdown(time.Now()),
		"MenuItems":    MenuItems,
		"Transactions": transactions,
	}
	return c.Render(http.StatusOK, "main.html", data)
}

// ClosingCountdown formats the time remaining until the nearest branch
// closes, e.g. "2h 15m 30s". After closing time it counts down to the
// next day's closing.
func ClosingCountdown(now time.Time) string {
	closing := time.Date(now.Year(), now.Month(), now.Day(), closingHour, 0, 0, 0, now.Location())
	if !closing.After(now) {
		closing = closing.AddDate(0, 0, 1)
	}

	remaining := closing.Sub(now).Round(time.Second)
	h := int(remaining.Hours())
	m := int(remaining.Minutes()) % 60
	s := int(remaining.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
