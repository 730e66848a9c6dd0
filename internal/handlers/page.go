package handlers

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
)

type PageHandler struct {
	logger    arbor.ILogger
	templates *template.Template
}

func NewPageHandler(logger arbor.ILogger) *PageHandler {
	pagesDir := findPagesDir()

	templates, err := template.ParseGlob(filepath.Join(pagesDir, "*.html"))
	if err != nil {
		logger.Warn().
			Err(err).
			Str("dir", pagesDir).
			Msg("No page templates loaded, UI routes will return errors")
	}

	return &PageHandler{
		logger:    logger,
		templates: templates,
	}
}

// findPagesDir locates the pages directory
func findPagesDir() string {
	dirs := []string{
		"./pages",  // Running from project root
		"../pages", // Running from bin/
		".",        // Current directory (for deployed bin/)
	}

	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err == nil {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// ServePage creates a handler function for serving a specific page template
func (h *PageHandler) ServePage(templateName string, pageName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.templates == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := map[string]interface{}{
			"Page": pageName,
		}

		if err := h.templates.ExecuteTemplate(w, templateName, data); err != nil {
			h.logger.Error().
				Err(err).
				Str("template", templateName).
				Msg("Failed to render page")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// StaticFileHandler serves static files (CSS, JS, images)
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	pagesDir := findPagesDir()
	staticDir := filepath.Join(pagesDir, "static")

	path := strings.TrimPrefix(r.URL.Path, "/static/")

	fullPath, ok := ResolveWithin(staticDir, path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
