// Package csrf provides CSRF protection using the double-submit cookie pattern.
//
// The call back form carries the cookie token in a hidden field and the
// POST handler compares the two. The same token also identifies the
// browser's form instance, so a visitor keeps one form across requests.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// CookieName is the name of the CSRF token cookie.
	CookieName = "csrf_token"

	// FormFieldName is the name of the CSRF token form field.
	FormFieldName = "csrf_token"

	// TokenLength is the number of random bytes for the token (32 bytes = 256 bits).
	TokenLength = 32

	// CookieMaxAge is the lifetime of the CSRF cookie in seconds. It matches
	// the default form instance TTL.
	CookieMaxAge = 3600
)

// =============================================================================
// Token Generation
// =============================================================================

// GenerateToken generates a cryptographically secure random token.
//
// The token is 32 bytes of random data, base64 URL-encoded.
// This produces a 43-character string.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MustGenerateToken generates a token or panics.
// Use this only during application startup or in contexts where
// crypto/rand failure would be catastrophic anyway.
func MustGenerateToken() string {
	token, err := GenerateToken()
	if err != nil {
		panic("csrf: failed to generate token: " + err.Error())
	}
	return token
}

// =============================================================================
// Token Validation
// =============================================================================

// ValidateToken compares the cookie token with the form token.
//
// Uses constant-time comparison to prevent timing attacks.
// Returns true if tokens match, false otherwise.
func ValidateToken(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

// ValidateRequest validates the CSRF token from a request.
//
// It reads the token from:
// - Cookie: the csrf_token cookie
// - Form: the csrf_token form field (requires ParseForm to be called first)
//
// Returns true if the tokens match, false otherwise.
func ValidateRequest(r *http.Request) bool {
	// Get token from cookie
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}

	// Get token from form
	formToken := r.FormValue(FormFieldName)

	return ValidateToken(cookie.Value, formToken)
}

// =============================================================================
// Cookie Management
// =============================================================================

// SetCookie sets the CSRF token cookie on the response.
// Secure should be true in production.
func SetCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetTokenFromRequest retrieves the CSRF token from the request cookie.
// Returns empty string if cookie doesn't exist.
func GetTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// =============================================================================
// Handler Helpers
// =============================================================================

// EnsureToken ensures a CSRF token exists for the request.
// If a valid token cookie exists, it returns that token.
// Otherwise, it generates a new token, sets the cookie, and returns it.
//
// This is the main function handlers should use on GET requests.
func EnsureToken(w http.ResponseWriter, r *http.Request, isSecure bool) string {
	if existing := GetTokenFromRequest(r); existing != "" {
		return existing
	}

	token := MustGenerateToken()
	SetCookie(w, token, isSecure)
	return token
}
