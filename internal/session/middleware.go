package session

import (
	"context"
	"net/http"
)

type contextKey int

const sessionIdKey contextKey = 0

// IdFromContext returns the session id established for the current request, or
// "" if the request didn't pass through the session middleware
func IdFromContext(ctx context.Context) string {
	sessionId, _ := ctx.Value(sessionIdKey).(string)
	return sessionId
}

// ContextWithId returns a context carrying the given session id, as the
// middleware would establish it
func ContextWithId(ctx context.Context, sessionId string) context.Context {
	return context.WithValue(ctx, sessionIdKey, sessionId)
}

// Middleware resolves a session for every request: if the request carries a
// validly-signed cookie naming a live session, that session is used; otherwise
// a fresh unauthenticated session is created and its cookie issued. Handlers
// downstream can therefore assume a session always exists.
func Middleware(store *Store, cookies *Cookies) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			sessionId := cookies.Read(req)
			if sessionId == "" || store.Get(sessionId) == nil {
				sessionId = store.Create()
				cookies.Set(res, sessionId)
			}
			next.ServeHTTP(res, req.WithContext(ContextWithId(req.Context(), sessionId)))
		})
	}
}
