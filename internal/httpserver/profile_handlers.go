package httpserver

import (
	"net/http"
	"strings"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	custommw "github.com/Antony-Mwangi/CORN-CAST/internal/httpserver/middleware"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/views"
)

const messageProfileUpdated = "Profile updated."

// ProfileForm shows the signed-in user's details.
func (h *handlers) ProfileForm(w http.ResponseWriter, r *http.Request) {
	profile, err := h.backend.Profile(r.Context(), h.token(r))
	if err != nil {
		if h.sessionLost(w, r, nav.Profile, err) {
			return
		}
		h.renderError(w, r, nav.Profile, err)
		return
	}
	h.renderProfile(w, r, views.ProfilePageData{
		Username: profile.Username,
		Email:    profile.Email,
	}, http.StatusOK)
}

// ProfileSubmit saves the edited details and reloads the profile page.
func (h *handlers) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderProfile(w, r, views.ProfilePageData{Error: messageBadForm}, http.StatusBadRequest)
		return
	}
	upd := backend.ProfileUpdate{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}
	profile, err := h.backend.UpdateProfile(r.Context(), h.token(r), upd)
	if err != nil {
		if h.sessionLost(w, r, nav.Profile, err) {
			return
		}
		h.renderProfile(w, r, views.ProfilePageData{
			Username: upd.Username,
			Email:    upd.Email,
			Error:    login.FailureMessage(err),
		}, backend.StatusFor(err))
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if profile.Email != "" {
			sess.SetEmail(profile.Email)
		}
		sess.SetFlash("success", messageProfileUpdated)
	}
	h.follow(w, r, nav.Profile, nav.OpenProfile, 0)
}

func (h *handlers) renderProfile(w http.ResponseWriter, r *http.Request, data views.ProfilePageData, status int) {
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	h.render(w, r, nav.Profile, "Profile", views.ProfilePage(data), status)
}
