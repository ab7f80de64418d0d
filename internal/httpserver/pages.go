package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	custommw "github.com/Antony-Mwangi/CORN-CAST/internal/httpserver/middleware"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
	"github.com/Antony-Mwangi/CORN-CAST/internal/views"
)

// Home renders the landing page.
func (h *handlers) Home(w http.ResponseWriter, r *http.Request) {
	_, authenticated := custommw.TokenFromContext(r.Context())
	h.render(w, r, nav.Home, "", views.HomePage(h.home, authenticated), http.StatusOK)
}

// Dashboard loads the profile and history in parallel. A panel that fails is
// reported inline; a rejected token cancels the other panel and leaves the page.
func (h *handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := h.token(r)

	var (
		profile    backend.Profile
		history    []backend.Prediction
		profileErr error
		historyErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, profileErr = h.backend.Profile(gctx, token)
		return unauthorizedOnly(profileErr)
	})
	g.Go(func() error {
		history, historyErr = h.backend.PredictionHistory(gctx, token)
		return unauthorizedOnly(historyErr)
	})
	if err := g.Wait(); err != nil {
		h.sessionLost(w, r, nav.Dashboard, err)
		return
	}

	data := views.DashboardData{Predictions: history}
	if profileErr == nil {
		data.Profile = &profile
	}
	logger := observability.FromContext(ctx)
	for _, err := range []error{profileErr, historyErr} {
		if err == nil {
			continue
		}
		logger.Warn("dashboard panel failed", zap.Error(err))
		data.Errors = append(data.Errors, login.FailureMessage(err))
	}

	status := http.StatusOK
	if profileErr != nil && historyErr != nil {
		status = backend.StatusFor(profileErr)
	}
	h.render(w, r, nav.Dashboard, "Dashboard", views.DashboardPage(data), status)
}

// unauthorizedOnly lets a rejected token cancel the sibling panel. Other
// failures stay local to their panel.
func unauthorizedOnly(err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		return err
	}
	return nil
}
