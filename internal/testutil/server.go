package testutil

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	"github.com/Antony-Mwangi/CORN-CAST/internal/httpserver"
	"github.com/Antony-Mwangi/CORN-CAST/internal/session"
	"github.com/Antony-Mwangi/CORN-CAST/internal/tokenstore"
)

// SessionCookieName is the cookie used by servers built with NewServer.
const SessionCookieName = "corncast_session"

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBackend wires a custom backend implementation.
func WithBackend(svc backend.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Backend = svc
	}
}

// WithTokenStore overrides the token store.
func WithTokenStore(store tokenstore.Store) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Tokens = store
	}
}

// WithLogger routes server logs to logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// NewServer constructs an httptest server running the web stack with an
// in-memory token store and a static backend.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		CookieName: SessionCookieName,
		HashKey:    []byte("0123456789abcdef0123456789abcdef"),
		BlockKey:   []byte("fedcba9876543210fedcba9876543210"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cfg := httpserver.Config{
		Address:        ":0",
		Logger:         zap.NewNop(),
		Backend:        backend.NewStaticService(nil),
		Tokens:         tokenstore.NewMemory(tokenstore.Config{TTL: time.Hour}),
		Sessions:       sessions,
		HandlerTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("httpserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = cfg.Tokens.Close() })
	return ts
}

// Browser is a cookie-keeping client that does not follow redirects.
type Browser struct {
	t      testing.TB
	base   string
	Client *http.Client
}

// NewBrowser returns a Browser bound to ts.
func NewBrowser(t testing.TB, ts *httptest.Server) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Browser{t: t, base: ts.URL, Client: client}
}

// Get fetches path.
func (b *Browser) Get(path string) *http.Response {
	b.t.Helper()
	return b.do(http.MethodGet, path, nil, nil)
}

// GetHTMX fetches path as an htmx request.
func (b *Browser) GetHTMX(path string) *http.Response {
	b.t.Helper()
	return b.do(http.MethodGet, path, nil, http.Header{"HX-Request": {"true"}})
}

// GetFragment fetches path as an htmx request that swaps into the element
// with the given id.
func (b *Browser) GetFragment(path, target string) *http.Response {
	b.t.Helper()
	return b.do(http.MethodGet, path, nil, http.Header{"HX-Request": {"true"}, "HX-Target": {target}})
}

// Post submits form to path, adding the CSRF token issued to this browser.
func (b *Browser) Post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", b.CSRFToken())
	}
	return b.do(http.MethodPost, path, form, nil)
}

// PostRaw submits form without adding a CSRF token.
func (b *Browser) PostRaw(path string, form url.Values) *http.Response {
	b.t.Helper()
	return b.do(http.MethodPost, path, form, nil)
}

// CSRFToken loads the login page and returns the token embedded in its form.
func (b *Browser) CSRFToken() string {
	b.t.Helper()
	resp := b.Get("/login?force=1")
	doc := ReadDocument(b.t, resp)
	token, _ := doc.Find(`#login-form input[name="csrf_token"]`).Attr("value")
	if token == "" {
		b.t.Fatalf("no csrf token on login page")
	}
	return token
}

// SessionCookie returns the session cookie currently held by the jar.
func (b *Browser) SessionCookie() *http.Cookie {
	u, _ := url.Parse(b.base)
	for _, c := range b.Client.Jar.Cookies(u) {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func (b *Browser) do(method, path string, form url.Values, header http.Header) *http.Response {
	b.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	b.t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
