package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"
)

func TestStaticFileHandlerRejectsTraversal(t *testing.T) {
	h := &PageHandler{logger: arbor.NewLogger()}

	req := httptest.NewRequest("GET", "/static/app.js", nil)
	req.URL.Path = "/static/../../etc/passwd"
	rec := httptest.NewRecorder()
	h.StaticFileHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
