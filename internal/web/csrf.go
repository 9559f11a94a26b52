package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

// csrfCookie holds the token the form must echo back (double-submit).
const csrfCookie = "csrf_token"

// csrfToken returns the request's CSRF token, issuing a new cookie when the
// request has none. It returns "" when CSRF protection is disabled.
func (s *Server) csrfToken(w http.ResponseWriter, r *http.Request) string {
	if !s.cfg.Security.CSRFEnabled {
		return ""
	}
	if c, err := r.Cookie(csrfCookie); err == nil && c.Value != "" {
		return c.Value
	}

	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// checkCSRF compares the submitted token with the cookie.
// Call it after the form has been parsed.
func (s *Server) checkCSRF(r *http.Request) *FieldError {
	if !s.cfg.Security.CSRFEnabled {
		return nil
	}
	c, err := r.Cookie(csrfCookie)
	submitted := r.FormValue(fieldCSRF)
	switch {
	case err != nil || c.Value == "" || submitted == "":
		return &FieldError{Field: fieldCSRF, Message: "The CSRF token is missing."}
	case subtle.ConstantTimeCompare([]byte(c.Value), []byte(submitted)) != 1:
		return &FieldError{Field: fieldCSRF, Message: "The CSRF tokens do not match."}
	}
	return nil
}
