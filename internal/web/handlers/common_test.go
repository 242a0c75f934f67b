package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		data       any
		wantBody   string
	}{
		{"OK with map", http.StatusOK, map[string]string{"status": "ok"}, "{\"status\":\"ok\"}\n"},
		{"Created with empty map", http.StatusCreated, map[string]string{}, "{}\n"},
		{"NoContent with nil", http.StatusNoContent, nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.statusCode, tc.data)

			assertStatusCode(t, recorder, tc.statusCode)
			if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got '%s'", ct)
			}
			if recorder.Body.String() != tc.wantBody {
				t.Errorf("expected body %q, got %q", tc.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondError(recorder, http.StatusBadRequest, "something went wrong")

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "something went wrong")
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	HealthCheck(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", result["status"])
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Copies int `json:"copies"`
	}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"copies": 4}`))
	if err := decodeJSON(req, &dst); err != nil || dst.Copies != 4 {
		t.Errorf("decodeJSON() = %v, copies %d", err, dst.Copies)
	}

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(""))
	if err := decodeJSON(req, &dst); err != nil {
		t.Errorf("empty body should not fail: %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"copies": "four"}`))
	if err := decodeJSON(req, &dst); err == nil {
		t.Error("expected an error for a mistyped field")
	}
}

func TestIntParam(t *testing.T) {
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"slotId": "12", "bad": "x"})

	if n, ok := intParam(req, "slotId"); !ok || n != 12 {
		t.Errorf("intParam(slotId) = %d, %v", n, ok)
	}
	if _, ok := intParam(req, "bad"); ok {
		t.Error("expected failure for a non-numeric parameter")
	}
	if _, ok := intParam(req, "missing"); ok {
		t.Error("expected failure for a missing parameter")
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("a\nb\r\nc"); got != "abc" {
		t.Errorf("sanitizeForLog() = %q, want %q", got, "abc")
	}
}
