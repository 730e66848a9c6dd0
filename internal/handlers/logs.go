package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
	"github.com/Esysc/ansible-ws-logging/internal/models"
)

// LogsHandler exposes the catalog and file content over REST, alongside
// the WebSocket channel.
type LogsHandler struct {
	logger  arbor.ILogger
	catalog interfaces.CatalogService
	content interfaces.ContentService
	logsDir string
}

func NewLogsHandler(catalog interfaces.CatalogService, content interfaces.ContentService, logsDir string, logger arbor.ILogger) *LogsHandler {
	return &LogsHandler{
		logger:  logger,
		catalog: catalog,
		content: content,
		logsDir: logsDir,
	}
}

// ListHandler returns the current catalog, most recent first.
// GET /api/logs
func (h *LogsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.catalog.List())
}

// ContentHandler returns the full content of one file.
// GET /api/logs/{name}
func (h *LogsHandler) ContentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/logs/")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Missing file name")
		return
	}

	path, ok := ResolveWithin(h.logsDir, name)
	if !ok {
		h.logger.Warn().Str("name", name).Msg("Rejected file request outside watched directory")
		WriteError(w, http.StatusBadRequest, "Invalid file path")
		return
	}

	WriteJSON(w, http.StatusOK, models.ContentMessage{
		Name:    name,
		Content: h.content.Read(path),
	})
}
