package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/desertthunder/wordcount/internal/formatter"
	"github.com/desertthunder/wordcount/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

// page is the data passed to every template.
type page struct {
	Title   string
	Status  int
	URL     string
	Errors  []string
	JobID   string
	Result  *models.Result
	Words   []models.WordCount
	Formats []formatter.Format
}

func parseTemplates() (*template.Template, error) {
	t, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

// render executes the named template into a buffer so a template error still yields a clean 500.
func (a *App) render(w http.ResponseWriter, status int, name string, data page) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("failed to render template", "template", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError answers with {"error": [...]} for JSON clients and the error page otherwise.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, status int, messages ...string) {
	if wantsJSON(r) {
		writeJSON(w, status, errorBody(messages...))
		return
	}
	a.render(w, status, "error.html", page{
		Title:  http.StatusText(status),
		Status: status,
		Errors: messages,
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func errorBody(messages ...string) map[string][]string {
	return map[string][]string{"error": messages}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
