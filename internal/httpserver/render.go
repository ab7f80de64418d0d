package httpserver

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	custommw "github.com/Antony-Mwangi/CORN-CAST/internal/httpserver/middleware"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
	"github.com/Antony-Mwangi/CORN-CAST/internal/tokenstore"
	"github.com/Antony-Mwangi/CORN-CAST/internal/views"
)

// MessageSessionLost is flashed when the backend rejects a stored token.
const MessageSessionLost = "Your session has ended. Please sign in again."

type handlers struct {
	backend backend.Service
	tokens  tokenstore.Store
	flow    *login.Flow
	nav     *nav.Navigator
	home    views.HomeContent
}

// render wraps body in the layout and writes it with status.
func (h *handlers) render(w http.ResponseWriter, r *http.Request, route nav.Route, title string, body templ.Component, status int) {
	chrome := views.Chrome{
		Title:     title,
		Active:    route,
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
	}
	_, chrome.Authenticated = custommw.TokenFromContext(r.Context())
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if chrome.Authenticated {
			chrome.Email = sess.Email()
		}
		if f := sess.PopFlash(); f != nil {
			chrome.Flash = &views.Flash{Kind: f.Kind, Message: f.Message}
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	page := views.Layout(chrome, body)
	// htmx swaps aimed at the main region only need its contents.
	if info := custommw.HTMXInfoFromContext(r.Context()); info.IsHTMX && !info.IsBoosted && info.Target == views.MainID {
		page = views.Main(chrome, body)
	}
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

// renderError shows a standalone error page for a failed backend call.
func (h *handlers) renderError(w http.ResponseWriter, r *http.Request, route nav.Route, err error) {
	status := backend.StatusFor(err)
	heading := "Something went wrong"
	if status == http.StatusNotFound {
		heading = "Not found"
	}
	h.render(w, r, route, heading, views.ErrorPage(heading, login.FailureMessage(err)), status)
}

// follow raises ev from route. The guard is evaluated against the token store
// as it is after the handler's own writes.
func (h *handlers) follow(w http.ResponseWriter, r *http.Request, from nav.Route, ev nav.Event, id int64) {
	authenticated := false
	if sid := h.sessionID(r); sid != "" {
		_, found, err := h.tokens.Get(r.Context(), sid)
		authenticated = err == nil && found
	}
	if _, err := h.nav.Follow(w, r, nav.Transition{From: from, Event: ev, Authenticated: authenticated, ID: id}); err != nil {
		observability.FromContext(r.Context()).Error("navigation failed", zap.Error(err))
		nav.Goto(w, r, nav.Home.Path(0))
	}
}

// sessionLost clears the token and sends the browser back to login when the
// backend rejected it. It reports whether it handled err.
func (h *handlers) sessionLost(w http.ResponseWriter, r *http.Request, from nav.Route, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	logger := observability.FromContext(r.Context())
	logger.Info("backend rejected stored token", zap.String("route", from.String()))
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if clearErr := h.tokens.Clear(r.Context(), sess.ID()); clearErr != nil {
			logger.Error("token clear failed", zap.Error(clearErr))
		}
		sess.SetFlash("info", MessageSessionLost)
	}
	if _, navErr := h.nav.Follow(w, r, nav.Transition{From: from, Event: nav.SessionLost}); navErr != nil {
		nav.Goto(w, r, nav.Login.Path(0))
	}
	return true
}

func (h *handlers) token(r *http.Request) string {
	token, _ := custommw.TokenFromContext(r.Context())
	return token
}

func (h *handlers) sessionID(r *http.Request) string {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		return sess.ID()
	}
	return ""
}
