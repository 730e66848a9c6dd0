package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/models"
	"github.com/Esysc/ansible-ws-logging/internal/services/catalog"
	"github.com/Esysc/ansible-ws-logging/internal/services/content"
)

func newTestLogsHandler(t *testing.T) (*LogsHandler, string) {
	t.Helper()
	dir := t.TempDir()
	logger := arbor.NewLogger()
	h := NewLogsHandler(
		catalog.NewService(dir, logger),
		content.NewService(logger),
		dir,
		logger,
	)
	return h, dir
}

func TestListHandlerReturnsCatalog(t *testing.T) {
	h, dir := newTestLogsHandler(t)
	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte("line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ListHandler(rec, httptest.NewRequest("GET", "/api/logs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var entries []models.FileListEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding catalog: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "app.log" {
		t.Errorf("catalog = %+v, want one entry app.log", entries)
	}
}

func TestContentHandlerReturnsFile(t *testing.T) {
	h, dir := newTestLogsHandler(t)
	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ContentHandler(rec, httptest.NewRequest("GET", "/api/logs/app.log", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var msg models.ContentMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decoding content: %v", err)
	}
	if msg.Name != "app.log" || msg.Content != "hello\n" {
		t.Errorf("content = %+v", msg)
	}
}

func TestContentHandlerRejectsTraversal(t *testing.T) {
	h, _ := newTestLogsHandler(t)

	// Build the request with the traversal preserved in the path, as it
	// arrives after the mux decoded ..%2F..%2F sequences.
	req := httptest.NewRequest("GET", "/api/logs/name", nil)
	req.URL.Path = "/api/logs/../../etc/passwd"
	rec := httptest.NewRecorder()
	h.ContentHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Invalid file path") {
		t.Errorf("body = %q, want the invalid path error", rec.Body.String())
	}
}

func TestContentHandlerRejectsEmptyName(t *testing.T) {
	h, _ := newTestLogsHandler(t)

	rec := httptest.NewRecorder()
	h.ContentHandler(rec, httptest.NewRequest("GET", "/api/logs/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
