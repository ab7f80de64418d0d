package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
)

type authContextKey string

const tokenContextKey authContextKey = "auth.token"

// MessageSignInRequired is flashed when a protected page is opened without a token.
const MessageSignInRequired = "Please sign in to continue."

// TokenReader looks up the access token held for a session.
type TokenReader interface {
	Get(ctx context.Context, sid string) (string, bool, error)
}

// Tokens resolves the session's access token once per request and attaches
// it to the context. Lookup failures are logged and treated as signed out.
// Requires Session.
func Tokens(store TokenReader) func(http.Handler) http.Handler {
	if store == nil {
		panic("token store is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			token, found, err := store.Get(r.Context(), sess.ID())
			if err != nil {
				observability.FromContext(r.Context()).Error("token lookup failed", zap.Error(err))
				found = false
			}
			if !found {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromContext returns the access token attached by Tokens.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

// RequireToken sends sessions without a token to the login route. htmx
// requests receive 401 with HX-Redirect so the client navigates itself.
func RequireToken() func(http.Handler) http.Handler {
	loginPath := nav.Login.Path(0)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := TokenFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			observability.FromContext(r.Context()).Info("protected route without token", zap.String("path", r.URL.Path))
			if sess, ok := SessionFromContext(r.Context()); ok {
				sess.SetFlash("info", MessageSignInRequired)
			}
			if IsHTMXRequest(r.Context()) {
				w.Header().Set("HX-Redirect", loginPath)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
		})
	}
}
