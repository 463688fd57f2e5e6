// Package web provides the embedded web UI for the calculator.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/rpnkit/rpnkit/pkg/config"
	"github.com/rpnkit/rpnkit/pkg/funcs"
	"github.com/rpnkit/rpnkit/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store     *store.Store
	variables map[string]float64 // presets loaded into every new session
	funcMap   template.FuncMap
}

// New creates a new web UI handler.
func New(st *store.Store, cfg config.Config) *Handler {
	return &Handler{
		store:     st,
		variables: cfg.Variables,
		funcMap: template.FuncMap{
			"plural": plural,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, data interface{}) error {
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.calculator)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type calculatorContent struct {
	SessionID string
	Variables []variableView
	Functions []functionView
	Examples  []string
}

type variableView struct {
	Name string
	Kind string
	Text string
}

type functionView struct {
	Name  string
	Arity int
}

// pageExamples are the sample expressions offered on the page.
var pageExamples = []string{
	"4 + 4 * 2 / (1 - 5)",
	"2^3^2",
	"x = 10; x^2",
	"sin(pi/2) + cos(0)",
	"4! - 3!",
}

// --- Page Handlers ---

// calculator renders the single-page calculator. The backing session id
// travels in the query string; a missing or expired session gets replaced by
// a fresh one via redirect.
func (h *Handler) calculator(c *fiber.Ctx) error {
	var rec *store.Record
	if id := c.Query("session"); id != "" {
		if found, err := h.store.Get(id); err == nil {
			rec = found
		}
	}
	if rec == nil {
		rec = h.store.Create()
		env := rec.Session.Environment()
		for name, v := range h.variables {
			env.SetFloat(name, v)
		}
		return c.Redirect("/ui?session=" + rec.ID)
	}

	vars := rec.Session.Environment().Snapshot()
	varViews := make([]variableView, 0, len(vars))
	for name, v := range vars {
		varViews = append(varViews, variableView{
			Name: name,
			Kind: v.Kind().String(),
			Text: v.String(),
		})
	}
	sort.Slice(varViews, func(i, j int) bool {
		return varViews[i].Name < varViews[j].Name
	})

	names := funcs.Names()
	fnViews := make([]functionView, 0, len(names))
	for _, name := range names {
		if fn, ok := funcs.Lookup(name); ok {
			fnViews = append(fnViews, functionView{Name: name, Arity: fn.Arity})
		}
	}

	return h.render(c, "calculator.html", calculatorContent{
		SessionID: rec.ID,
		Variables: varViews,
		Functions: fnViews,
		Examples:  pageExamples,
	})
}

// --- Template Helpers ---

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
