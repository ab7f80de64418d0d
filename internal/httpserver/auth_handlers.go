package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	custommw "github.com/Antony-Mwangi/CORN-CAST/internal/httpserver/middleware"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
	"github.com/Antony-Mwangi/CORN-CAST/internal/views"
)

const (
	messageBadForm   = "The form could not be read. Please try again."
	messageLoggedOut = "You have been signed out."
)

// LoginForm renders the sign-in form. Signed-in sessions go straight to the
// dashboard unless ?force=1 asks for the form anyway.
func (h *handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := custommw.TokenFromContext(r.Context()); ok && !forceLogin(r) {
		h.follow(w, r, nav.Home, nav.OpenDashboard, 0)
		return
	}
	q := r.URL.Query()
	data := views.LoginPageData{
		Email:      strings.TrimSpace(q.Get("email")),
		Message:    messageForQuery(q),
		CSRFToken:  custommw.CSRFTokenFromContext(r.Context()),
		Submitting: h.flow.Status(h.sessionID(r)) == login.Submitting,
	}
	h.render(w, r, nav.Login, "Sign in", views.LoginPage(data), http.StatusOK)
}

// LoginSubmit forwards the credentials exactly as entered. Success stores the
// token and navigates to the dashboard; failure re-renders the form with the
// message inline and never navigates.
func (h *handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, views.LoginPageData{Error: messageBadForm}, http.StatusBadRequest)
		return
	}

	creds := backend.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	sess, _ := custommw.SessionFromContext(r.Context())
	outcome := h.flow.Submit(r.Context(), sess.ID(), creds)
	if outcome.State != login.Success {
		h.renderLogin(w, r, views.LoginPageData{Email: creds.Email, Error: outcome.Message}, outcome.HTTPStatus())
		return
	}

	sess.SetEmail(creds.Email)
	h.follow(w, r, nav.Login, outcome.Event, 0)
}

func (h *handlers) renderLogin(w http.ResponseWriter, r *http.Request, data views.LoginPageData, status int) {
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	h.render(w, r, nav.Login, "Sign in", views.LoginPage(data), status)
}

// RegisterForm renders the registration form.
func (h *handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, views.RegisterPageData{}, http.StatusOK)
}

// RegisterSubmit creates the account and sends the user to sign in.
func (h *handlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, views.RegisterPageData{Error: messageBadForm}, http.StatusBadRequest)
		return
	}

	reg := backend.Registration{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password2"),
	}
	outcome := h.flow.Register(r.Context(), reg)
	if outcome.State != login.Success {
		h.renderRegister(w, r, views.RegisterPageData{
			Username: reg.Username,
			Email:    reg.Email,
			Error:    outcome.Message,
		}, outcome.HTTPStatus())
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetFlash("success", outcome.Message)
	}
	h.follow(w, r, nav.Register, outcome.Event, 0)
}

func (h *handlers) renderRegister(w http.ResponseWriter, r *http.Request, data views.RegisterPageData, status int) {
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	h.render(w, r, nav.Register, "Create an account", views.RegisterPage(data), status)
}

// Logout clears the token, drops the session cookie and opens the sign-in
// page with a signed-out notice. The notice travels in the query because the
// session carrying flashes is gone.
func (h *handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if err := h.tokens.Clear(r.Context(), sess.ID()); err != nil {
			observability.FromContext(r.Context()).Error("token clear failed", zap.Error(err))
		}
		sess.Destroy()
	}
	if _, err := h.nav.Follow(w, r, nav.Transition{
		From:  nav.Dashboard,
		Event: nav.LoggedOut,
		Query: url.Values{"status": {"logged_out"}},
	}); err != nil {
		observability.FromContext(r.Context()).Error("navigation failed", zap.Error(err))
		nav.Goto(w, r, nav.Home.Path(0))
	}
}

func messageForQuery(q url.Values) string {
	switch q.Get("status") {
	case "logged_out":
		return messageLoggedOut
	default:
		return ""
	}
}

func forceLogin(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("force"))) {
	case "1", "true", "yes", "force":
		return true
	default:
		return false
	}
}
