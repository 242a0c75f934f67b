package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/constants"
)

const (
	ownerCookieName = "photo_sheet_owner"
	devOwnerSecret  = "photo-sheet-dev-secret-change-in-production"
)

type contextKey string

const ownerContextKey contextKey = "owner"

// OwnerManager issues and verifies the anonymous owner cookie that scopes
// history entries to one browser.
type OwnerManager struct {
	secret []byte
	secure bool
}

// NewOwnerManager creates an owner manager. An empty secret falls back to a
// development secret.
func NewOwnerManager(secret string) *OwnerManager {
	if secret == "" {
		secret = devOwnerSecret
	}
	return &OwnerManager{secret: []byte(secret)}
}

// SetSecure marks issued cookies as HTTPS-only.
func (om *OwnerManager) SetSecure(secure bool) {
	om.secure = secure
}

// sign creates an HMAC signature for data
func (om *OwnerManager) sign(data string) string {
	h := hmac.New(sha256.New, om.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// verify checks an HMAC signature
func (om *OwnerManager) verify(data, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(om.sign(data)))
}

// CookieValue returns the signed cookie value for an owner id.
func (om *OwnerManager) CookieValue(ownerID string) string {
	return ownerID + "." + om.sign(ownerID)
}

// OwnerFromRequest returns the owner id carried by a validly signed cookie.
func (om *OwnerManager) OwnerFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(ownerCookieName)
	if err != nil {
		return "", false
	}
	id, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok || id == "" || !om.verify(id, sig) {
		return "", false
	}
	return id, true
}

// setCookie writes the owner cookie
func (om *OwnerManager) setCookie(w http.ResponseWriter, ownerID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ownerCookieName,
		Value:    om.CookieValue(ownerID),
		Path:     "/",
		HttpOnly: true,
		Secure:   om.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(constants.OwnerCookieMaxAge.Seconds()),
	})
}

// WithOwner is middleware that puts the request's owner id in the context,
// issuing a new cookie when the request has none or a forged one.
func WithOwner(om *OwnerManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, ok := om.OwnerFromRequest(r)
			if !ok {
				ownerID = uuid.NewString()
				om.setCookie(w, ownerID)
			}
			next.ServeHTTP(w, r.WithContext(SetOwnerInContext(r.Context(), ownerID)))
		})
	}
}

// OwnerFromContext retrieves the owner id from the request context
func OwnerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerContextKey).(string)
	return id
}

// SetOwnerInContext adds an owner id to the context.
// This is primarily for testing - use WithOwner middleware in production.
func SetOwnerInContext(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerContextKey, ownerID)
}
