package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie is the cookie that carries a browser's session id.
const SessionCookie = "eld_session"

// sessionMaxAge keeps the cookie for 30 days.
const sessionMaxAge = 30 * 24 * 60 * 60

type sessionKey struct{}

// NewSessionHandler returns a middleware that makes sure every request has a
// session id. A missing or malformed eld_session cookie is replaced with a
// fresh UUID, which is set on the response.
func NewSessionHandler(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessionFromCookie(r)
			if !ok {
				id = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id.String(),
					Path:     "/",
					MaxAge:   sessionMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// WithSessionID returns a copy of ctx carrying id.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionID returns the session id placed in ctx by NewSessionHandler.
func SessionID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey{}).(uuid.UUID)
	return id, ok
}

func sessionFromCookie(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
