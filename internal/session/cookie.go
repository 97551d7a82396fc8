package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const cookieName = "broadcasts_session"

// Cookies reads and writes the session cookie. The cookie value is the session
// id plus an HMAC-SHA256 signature derived from the configured secret, so a
// client that tampers with its id (or fabricates one) is treated as having no
// session at all.
type Cookies struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

func NewCookies(secret string, maxAge time.Duration, secure bool) *Cookies {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cookies{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
	}
}

func (c *Cookies) sign(sessionId string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionId))
	return hex.EncodeToString(mac.Sum(nil))
}

// Set issues the session cookie carrying the given id
func (c *Cookies) Set(res http.ResponseWriter, sessionId string) {
	http.SetCookie(res, &http.Cookie{
		Name:     cookieName,
		Value:    sessionId + "." + c.sign(sessionId),
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie
func (c *Cookies) Clear(res http.ResponseWriter) {
	http.SetCookie(res, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read extracts and verifies the session id from the request's cookie,
// returning "" if the cookie is missing, malformed, or carries a bad signature
func (c *Cookies) Read(req *http.Request) string {
	cookie, err := req.Cookie(cookieName)
	if err != nil {
		return ""
	}
	sessionId, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok || sessionId == "" {
		return ""
	}
	if !hmac.Equal([]byte(signature), []byte(c.sign(sessionId))) {
		return ""
	}
	return sessionId
}
