package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

func TestConfigHandler_Get(t *testing.T) {
	setupMockHistory(t)
	cfg := &config.Config{Editor: config.EditorConfig{Defaults: editor.DefaultSettings()}}
	handler := NewConfigHandler(cfg)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var resp ConfigResponse
	parseJSONResponse(t, recorder, &resp)

	if len(resp.PageSizes) != len(layout.PageSizes) {
		t.Fatalf("expected %d page sizes, got %d", len(layout.PageSizes), len(resp.PageSizes))
	}
	a4 := resp.PageSizes[0]
	if a4.Name != layout.PageA4 || a4.Width != 21 || a4.Height != 29.7 {
		t.Errorf("first page size = %+v, want A4 21x29.7", a4)
	}
	if last := resp.PageSizes[len(resp.PageSizes)-1]; !last.Custom {
		t.Errorf("last page size should be custom, got %+v", last)
	}
	if diff := cmp.Diff(editor.DefaultSettings(), resp.Defaults); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"image/jpeg", "image/png", "image/webp"}, resp.UploadTypes); diff != "" {
		t.Errorf("upload types (-want +got):\n%s", diff)
	}
	if !resp.HistoryEnabled || resp.HistoryBackend != "mock" {
		t.Errorf("history backend = %q enabled=%v", resp.HistoryBackend, resp.HistoryEnabled)
	}
}

func TestConfigHandler_Get_NoHistory(t *testing.T) {
	database.ResetForTesting()
	handler := NewConfigHandler(&config.Config{})

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	var resp ConfigResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.HistoryEnabled {
		t.Error("history should be disabled without a backend")
	}
}
