package auth

import (
	"net/http"
	"time"
)

// CookieName is the session cookie carrying the admin token.
const CookieName = "son_admin"

// CookieJar is where a login or logout writes the session cookie.
type CookieJar interface {
	SetSessionCookie(token string, maxAge time.Duration)
	ClearSessionCookie()
}

// ResponseCookieJar writes Set-Cookie headers to an HTTP response.
type ResponseCookieJar struct {
	w      http.ResponseWriter
	secure bool
}

// NewResponseCookieJar returns a jar for w. secure must be true in production.
func NewResponseCookieJar(w http.ResponseWriter, secure bool) *ResponseCookieJar {
	return &ResponseCookieJar{w: w, secure: secure}
}

func (j *ResponseCookieJar) SetSessionCookie(token string, maxAge time.Duration) {
	http.SetCookie(j.w, NewSessionCookie(token, maxAge, j.secure))
}

func (j *ResponseCookieJar) ClearSessionCookie() {
	http.SetCookie(j.w, NewSessionCookie("", 0, j.secure))
}

// NewSessionCookie builds the son_admin cookie: HttpOnly, SameSite=Lax,
// Path=/, Secure when secure is set. A non-positive maxAge produces an
// expired, empty cookie (Max-Age=0).
func NewSessionCookie(token string, maxAge time.Duration, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	if maxAge <= 0 {
		c.Value = ""
		c.MaxAge = -1 // serialized as Max-Age=0
		c.Expires = time.Unix(0, 0)
		return c
	}

	c.MaxAge = int(maxAge.Seconds())
	return c
}

// ReadSessionCookie returns the session token sent with r, or "" when absent.
func ReadSessionCookie(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
