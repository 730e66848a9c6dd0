package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/common"
)

// APIHandler serves the small system endpoints next to the log API.
type APIHandler struct {
	logger arbor.ILogger
}

func NewAPIHandler(logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		logger: logger,
	}
}

// VersionHandler reports the build identity of the running viewer.
// GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"service": "logview",
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// HealthHandler is the liveness check.
// GET /api/health
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "logview",
	})
}

// NotFoundHandler answers unmatched /api/ paths in the same error shape
// the log endpoints use.
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("path", r.URL.Path).Msg("Unknown API endpoint")
	WriteError(w, http.StatusNotFound, "Unknown endpoint: "+r.URL.Path)
}
