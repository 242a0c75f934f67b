package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOwnerManager_CookieRoundTrip(t *testing.T) {
	om := NewOwnerManager("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ownerCookieName, Value: om.CookieValue("owner-1")})

	id, ok := om.OwnerFromRequest(req)
	if !ok || id != "owner-1" {
		t.Errorf("OwnerFromRequest() = %q, %v; want owner-1, true", id, ok)
	}
}

func TestOwnerManager_RejectsForgedCookie(t *testing.T) {
	om := NewOwnerManager("test-secret")
	other := NewOwnerManager("other-secret")

	tests := []struct {
		name  string
		value string
	}{
		{"wrong secret", other.CookieValue("owner-1")},
		{"tampered id", "owner-2." + strings.SplitN(om.CookieValue("owner-1"), ".", 2)[1]},
		{"no signature", "owner-1"},
		{"empty id", "." + om.sign("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: ownerCookieName, Value: tt.value})
			if id, ok := om.OwnerFromRequest(req); ok {
				t.Errorf("accepted forged cookie, owner %q", id)
			}
		})
	}
}

func TestWithOwner_IssuesCookie(t *testing.T) {
	om := NewOwnerManager("test-secret")

	var seen string
	handler := WithOwner(om)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OwnerFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected an owner id in the context")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ownerCookieName {
		t.Fatalf("expected one owner cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("owner cookie should be HttpOnly")
	}

	// A second request carrying the cookie keeps the same owner and gets no new cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	first := seen
	handler.ServeHTTP(rec, req)

	if seen != first {
		t.Errorf("owner changed from %q to %q", first, seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie reissued for a valid owner")
	}
}

func TestOwnerFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := OwnerFromContext(req.Context()); id != "" {
		t.Errorf("expected empty owner, got %q", id)
	}
}
