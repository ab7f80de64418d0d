package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	custommw "github.com/Antony-Mwangi/CORN-CAST/internal/httpserver/middleware"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
	"github.com/Antony-Mwangi/CORN-CAST/internal/tokenstore"
	"github.com/Antony-Mwangi/CORN-CAST/internal/views"
	"github.com/Antony-Mwangi/CORN-CAST/public"
)

const (
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultHandlerTimeout = 60 * time.Second
)

// Config holds runtime options for the web HTTP server.
type Config struct {
	Address        string
	Logger         *zap.Logger
	Backend        backend.Service
	Tokens         tokenstore.Store
	Sessions       custommw.SessionStore
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("httpserver: backend is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("httpserver: token store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session store is required")
	}
	home, err := views.LoadHome()
	if err != nil {
		return nil, err
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	handlerTimeout := durationOr(cfg.HandlerTimeout, defaultHandlerTimeout)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(cfg.Logger))
	router.Use(observability.RequestLogger())
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(handlerTimeout))

	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	router.Get("/healthz", healthz)

	h := &handlers{
		backend: cfg.Backend,
		tokens:  cfg.Tokens,
		flow:    login.NewFlow(cfg.Backend, cfg.Tokens),
		nav:     nav.NewNavigator(nil),
		home:    home,
	}
	mountRoutes(router, h, cfg.Sessions, cfg.Tokens)

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout: durationOr(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  durationOr(cfg.IdleTimeout, defaultIdleTimeout),
	}, nil
}

func mountRoutes(router chi.Router, h *handlers, sessions custommw.SessionStore, tokens tokenstore.Store) {
	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.Session(sessions))
		r.Use(custommw.CSRF(custommw.CSRFConfig{}))
		r.Use(custommw.Tokens(tokens))

		r.Get(nav.Home.Pattern(), h.Home)
		r.Get(nav.Login.Pattern(), h.LoginForm)
		r.Post(nav.Login.Pattern(), h.LoginSubmit)
		r.Get(nav.Register.Pattern(), h.RegisterForm)
		r.Post(nav.Register.Pattern(), h.RegisterSubmit)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.NoStore())
			r.Use(custommw.RequireToken())

			r.Get(nav.Dashboard.Pattern(), h.Dashboard)
			r.Get(nav.Profile.Pattern(), h.ProfileForm)
			r.Post(nav.Profile.Pattern(), h.ProfileSubmit)
			r.Get(nav.NewPrediction.Pattern(), h.PredictionForm)
			r.Post(nav.NewPrediction.Pattern(), h.PredictionSubmit)
			r.Get(nav.PredictionDetail.Pattern(), h.PredictionDetail)
			r.Post(nav.PredictionDetail.Pattern()+"/delete", h.PredictionDelete)
			r.Get(nav.EditPrediction.Pattern(), h.PredictionEditForm)
			r.Post(nav.EditPrediction.Pattern(), h.PredictionEditSubmit)
		})
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
