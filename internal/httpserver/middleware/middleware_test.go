package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	appsession "github.com/Antony-Mwangi/CORN-CAST/internal/session"
)

type sessionTestClock struct {
	now time.Time
}

func (c *sessionTestClock) Now() time.Time {
	return c.now
}

func newSessionStoreForTest(t *testing.T, clock *sessionTestClock) *appsession.Manager {
	t.Helper()
	store, err := appsession.NewManager(appsession.Config{
		CookieName:  "test_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		BlockKey:    []byte("abcdefghijklmnopqrstuvwxyzABCDEF"),
		IdleTimeout: 5 * time.Minute,
		Lifetime:    time.Hour,
		Now:         clock.Now,
	})
	if err != nil {
		t.Fatalf("session manager init: %v", err)
	}
	return store
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionMiddlewareLifecycle(t *testing.T) {
	clock := &sessionTestClock{now: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStoreForTest(t, clock)

	var ids []string
	handler := Session(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatalf("session missing in context")
		}
		ids = append(ids, sess.ID())
		sess.SetEmail("a@b.com")
		w.WriteHeader(http.StatusOK)
	}))

	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := findCookie(rr1, "test_session")
	if cookie == nil {
		t.Fatalf("expected session cookie to be written before headers were sent")
	}

	clock.now = clock.now.Add(time.Minute)
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)
	if len(ids) != 2 || ids[0] != ids[1] {
		t.Fatalf("expected session id to persist, got %v", ids)
	}

	clock.now = clock.now.Add(10 * time.Minute)
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(findCookie(rr2, "test_session"))
	handler.ServeHTTP(httptest.NewRecorder(), req3)
	if len(ids) != 3 || ids[2] == ids[1] {
		t.Fatalf("expected a fresh session after idle expiry, got %v", ids)
	}
}

func TestSessionMiddlewareSavesWhenHandlerWritesNothing(t *testing.T) {
	clock := &sessionTestClock{now: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	handler := Session(newSessionStoreForTest(t, clock))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if findCookie(rr, "test_session") == nil {
		t.Fatalf("expected session cookie")
	}
}

func TestCSRFMiddleware(t *testing.T) {
	clock := &sessionTestClock{now: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStoreForTest(t, clock)

	var issued string
	handler := Session(store)(CSRF(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued = CSRFTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rr.Code != http.StatusOK || issued == "" {
		t.Fatalf("expected token to be issued on GET, code=%d", rr.Code)
	}
	cookie := findCookie(rr, "test_session")

	post := func(body string, header string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("email=a", ""); code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", code)
	}
	if code := post("csrf_token=wrong", ""); code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong token, got %d", code)
	}
	if code := post(url.Values{"csrf_token": {issued}}.Encode(), ""); code != http.StatusOK {
		t.Fatalf("expected 200 with form token, got %d", code)
	}
	if code := post("", issued); code != http.StatusOK {
		t.Fatalf("expected 200 with header token, got %d", code)
	}
}

type fakeTokens map[string]string

func (f fakeTokens) Get(_ context.Context, sid string) (string, bool, error) {
	if sid == "broken" {
		return "", false, errors.New("store down")
	}
	tok, ok := f[sid]
	return tok, ok, nil
}

func TestRequireToken(t *testing.T) {
	clock := &sessionTestClock{now: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStoreForTest(t, clock)
	tokens := fakeTokens{}

	var sid string
	handler := Session(store)(HTMX()(Tokens(tokens)(RequireToken()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := TokenFromContext(r.Context())
		if !ok || token != "tok123" {
			t.Fatalf("expected token in context")
		}
		w.WriteHeader(http.StatusOK)
	})))))
	capture := Session(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		sid = sess.ID()
	}))

	rr := httptest.NewRecorder()
	capture.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := findCookie(rr, "test_session")

	t.Run("missing token redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if location := rec.Header().Get("Location"); location != "/login" {
			t.Fatalf("expected redirect to /login, got %s", location)
		}
	})

	t.Run("htmx unauthorized returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("HX-Request", "true")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if rec.Header().Get("HX-Redirect") != "/login" {
			t.Fatalf("expected HX-Redirect header to /login")
		}
	})

	t.Run("stored token passes through", func(t *testing.T) {
		tokens[sid] = "tok123"
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestNoStoreMiddleware(t *testing.T) {
	handler := NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected Cache-Control: %s", got)
	}
	if got := rr.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("unexpected Pragma: %s", got)
	}
}

func TestHTMXMiddlewareReadsHeaders(t *testing.T) {
	var got HTMXInfo
	handler := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = HTMXInfoFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Boosted", "true")
	req.Header.Set("HX-Target", "main")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !got.IsHTMX || !got.IsBoosted || got.Target != "main" {
		t.Fatalf("unexpected htmx info: %+v", got)
	}
	if rr.Header().Get("Vary") != "HX-Request" {
		t.Fatalf("expected Vary header, got %q", rr.Header().Get("Vary"))
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil))
	if got != (HTMXInfo{}) {
		t.Fatalf("expected zero info for plain request, got %+v", got)
	}
}
