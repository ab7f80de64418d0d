package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	"github.com/Antony-Mwangi/CORN-CAST/internal/httpserver"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/testutil"
	"github.com/Antony-Mwangi/CORN-CAST/internal/tokenstore"
)

// recordingStore remembers the session ids it has written for.
type recordingStore struct {
	tokenstore.Store

	mu   sync.Mutex
	sids []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: tokenstore.NewMemory(tokenstore.Config{})}
}

func (s *recordingStore) Begin(ctx context.Context, sid string) (tokenstore.Attempt, error) {
	s.mu.Lock()
	s.sids = append(s.sids, sid)
	s.mu.Unlock()
	return s.Store.Begin(ctx, sid)
}

func (s *recordingStore) lastSession(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sids, "no login attempt reached the token store")
	return s.sids[len(s.sids)-1]
}

func (s *recordingStore) token(t *testing.T) (string, bool) {
	t.Helper()
	token, found, err := s.Get(context.Background(), s.lastSession(t))
	require.NoError(t, err)
	return token, found
}

func newAPIClient(t *testing.T, handler http.Handler, timeout time.Duration) *backend.Client {
	t.Helper()
	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)
	client, err := backend.New(api.URL, backend.WithTimeout(timeout))
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginSuccessStoresTokenAndOpensDashboard(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
		authz    []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		mu.Lock()
		received = append(received, creds.Email+":"+creds.Password)
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"access": "tok123"})
	})
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authz = append(authz, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"username": "amina", "email": "a@b.com", "welcome_message": "Welcome amina"})
	})
	mux.HandleFunc("/api/predictions/history/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	store := newRecordingStore()
	ts := testutil.NewServer(t,
		testutil.WithBackend(newAPIClient(t, mux, 2*time.Second)),
		testutil.WithTokenStore(store),
	)
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	token, found := store.token(t)
	require.True(t, found)
	assert.Equal(t, "tok123", token)
	assert.Equal(t, []string{"a@b.com:secret"}, received)

	resp = browser.Get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store, max-age=0", resp.Header.Get("Cache-Control"))
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, "Welcome amina", testutil.Text(doc, "#greeting"))
	assert.Equal(t, 1, doc.Find("#history-empty").Length())
	assert.Equal(t, 1, doc.Find("#logout-form").Length())
	assert.Equal(t, []string{"Bearer tok123"}, authz)
}

func TestLoginRejectedStaysOnLoginWithInlineError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})

	store := newRecordingStore()
	ts := testutil.NewServer(t,
		testutil.WithBackend(newAPIClient(t, mux, 2*time.Second)),
		testutil.WithTokenStore(store),
	)
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))

	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, "Invalid credentials", testutil.Text(doc, "#login-error"))
	email, _ := doc.Find(`#login-form input[name="email"]`).Attr("value")
	assert.Equal(t, "a@b.com", email)
	assert.Equal(t, 0, doc.Find(`#login-form input[name="password"][value="wrong"]`).Length())

	_, found := store.token(t)
	assert.False(t, found)

	resp = browser.Get("/dashboard")
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginTimeoutShowsNetworkMessage(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	store := newRecordingStore()
	ts := testutil.NewServer(t,
		testutil.WithBackend(newAPIClient(t, slow, 50*time.Millisecond)),
		testutil.WithTokenStore(store),
	)
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, login.MessageTimeout, testutil.Text(doc, "#login-error"))
	assert.Equal(t, 1, doc.Find("#login-form").Length())

	_, found := store.token(t)
	assert.False(t, found)
}

func TestLoginUnreachableBackend(t *testing.T) {
	api := httptest.NewServer(http.NotFoundHandler())
	addr := api.URL
	api.Close()
	client, err := backend.New(addr, backend.WithTimeout(time.Second))
	require.NoError(t, err)

	ts := testutil.NewServer(t, testutil.WithBackend(client))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, login.MessageUnreachable, testutil.Text(doc, "#login-error"))
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	ts := testutil.NewServer(t)
	browser := testutil.NewBrowser(t, ts)

	for _, path := range []string{"/dashboard", "/profile", "/predictions/new", "/predictions/1"} {
		resp := browser.Get(path)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp := browser.GetHTMX("/dashboard")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("HX-Redirect"))

	resp = browser.Get("/login")
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, "Please sign in to continue.", testutil.Text(doc, "#flash"))
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	ts := testutil.NewServer(t, testutil.WithBackend(backend.NewStaticService(map[string]string{"a@b.com": "secret"})))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Get("/")
	resp.Body.Close()
	resp = browser.PostRaw("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHTMXLoginRedirectsWithHeader(t *testing.T) {
	ts := testutil.NewServer(t, testutil.WithBackend(backend.NewStaticService(map[string]string{"a@b.com": "secret"})))
	browser := testutil.NewBrowser(t, ts)
	token := browser.CSRFToken()

	form := url.Values{"email": {"a@b.com"}, "password": {"secret"}, "csrf_token": {token}}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	resp, err := browser.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("HX-Redirect"))
}

func TestSignedInLoginPageRedirectsUnlessForced(t *testing.T) {
	ts := testutil.NewServer(t, testutil.WithBackend(backend.NewStaticService(map[string]string{"a@b.com": "secret"})))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = browser.Get("/login")
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = browser.Get("/login?force=1")
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, doc.Find("#login-form").Length())
}

func TestLogoutClearsToken(t *testing.T) {
	store := newRecordingStore()
	ts := testutil.NewServer(t,
		testutil.WithBackend(backend.NewStaticService(map[string]string{"a@b.com": "secret"})),
		testutil.WithTokenStore(store),
	)
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()
	_, found := store.token(t)
	require.True(t, found)

	resp = browser.Post("/logout", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?status=logged_out", resp.Header.Get("Location"))

	_, found = store.token(t)
	assert.False(t, found)

	resp = browser.Get("/login?status=logged_out")
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, "You have been signed out.", testutil.Text(doc, "#login-message"))
	assert.Equal(t, 0, doc.Find("#logout-form").Length())

	resp = browser.Get("/dashboard")
	resp.Body.Close()
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDashboardSessionLostOnRejectedToken(t *testing.T) {
	svc := backend.NewStaticService(map[string]string{"a@b.com": "secret"})
	store := newRecordingStore()
	ts := testutil.NewServer(t, testutil.WithBackend(svc), testutil.WithTokenStore(store))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	svc.RemoveAccount("a@b.com")

	resp = browser.Get("/dashboard")
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, found := store.token(t)
	assert.False(t, found)

	resp = browser.Get("/login")
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, httpserver.MessageSessionLost, testutil.Text(doc, "#flash"))
}

func TestDashboardRejectedTokenCancelsOtherPanel(t *testing.T) {
	historyStarted := make(chan struct{})
	historyCancelled := make(chan bool, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "tok123"})
	})
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-historyStarted:
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
	})
	mux.HandleFunc("/api/predictions/history/", func(w http.ResponseWriter, r *http.Request) {
		close(historyStarted)
		select {
		case <-r.Context().Done():
			historyCancelled <- true
		case <-time.After(3 * time.Second):
			historyCancelled <- false
			writeJSON(w, http.StatusOK, []any{})
		}
	})

	ts := testutil.NewServer(t, testutil.WithBackend(newAPIClient(t, mux, 5*time.Second)))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()

	start := time.Now()
	resp = browser.Get("/dashboard")
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, <-historyCancelled, "history request kept running after the token was rejected")
}

func TestDashboardShowsPanelErrorsInline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "tok123"})
	})
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"username": "amina", "email": "a@b.com"})
	})
	mux.HandleFunc("/api/predictions/history/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "History unavailable"})
	})

	ts := testutil.NewServer(t, testutil.WithBackend(newAPIClient(t, mux, 2*time.Second)))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()

	resp = browser.Get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, "History unavailable", testutil.Text(doc, "#dashboard-error-0"))
	assert.Contains(t, doc.Find("#greeting").Text(), "amina")
}

func TestPredictionLifecycle(t *testing.T) {
	svc := backend.NewStaticService(map[string]string{"a@b.com": "secret"})
	ts := testutil.NewServer(t, testutil.WithBackend(svc))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()

	t.Run("invalid readings are reported per field", func(t *testing.T) {
		resp := browser.Post("/predictions/new", url.Values{
			"rainfall":    {"abc"},
			"temperature": {"24"},
			"nitrogen":    {"40"},
			"phosphorus":  {"20"},
			"potassium":   {"30"},
			"ph":          {"15"},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		doc := testutil.ReadDocument(t, resp)
		assert.Equal(t, "Enter a number.", testutil.Text(doc, "#rainfall-error"))
		assert.Equal(t, "pH must be between 0 and 14.", testutil.Text(doc, "#ph-error"))
		value, _ := doc.Find(`input[name="temperature"]`).Attr("value")
		assert.Equal(t, "24", value)
	})

	var detailPath string
	t.Run("valid readings open the detail page", func(t *testing.T) {
		resp := browser.Post("/predictions/new", url.Values{
			"rainfall":     {"800"},
			"temperature":  {"24.5"},
			"nitrogen":     {"40"},
			"phosphorus":   {"20"},
			"potassium":    {"30"},
			"ph":           {"6.2"},
			"seed_variety": {"H614"},
		})
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		detailPath = resp.Header.Get("Location")
		assert.Equal(t, "/predictions/1", detailPath)

		resp = browser.Get(detailPath)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		doc := testutil.ReadDocument(t, resp)
		assert.Equal(t, 1, doc.Find("#prediction-yield").Length())
		assert.Equal(t, 1, doc.Find("#delete-prediction").Length())

		resp = browser.Get("/dashboard")
		doc = testutil.ReadDocument(t, resp)
		assert.Equal(t, 1, doc.Find(`.prediction-row[data-id="1"]`).Length())
	})

	t.Run("edit saves the new readings", func(t *testing.T) {
		resp := browser.Get(detailPath + "/edit")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		doc := testutil.ReadDocument(t, resp)
		action, _ := doc.Find("#prediction-form").Attr("action")
		assert.Equal(t, "/predictions/1/edit", action)
		rainfall, _ := doc.Find("#rainfall").Attr("value")
		assert.Equal(t, "800", rainfall)
		variety, _ := doc.Find("#seed_variety").Attr("value")
		assert.Equal(t, "H614", variety)

		edited := url.Values{
			"rainfall":     {"950"},
			"temperature":  {"24.5"},
			"nitrogen":     {"40"},
			"phosphorus":   {"20"},
			"potassium":    {"30"},
			"ph":           {"6.8"},
			"seed_variety": {"H614"},
		}
		bad := url.Values{}
		for k, v := range edited {
			bad[k] = v
		}
		bad.Set("ph", "20")
		resp = browser.Post(detailPath+"/edit", bad)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		doc = testutil.ReadDocument(t, resp)
		assert.Equal(t, "pH must be between 0 and 14.", testutil.Text(doc, "#ph-error"))
		action, _ = doc.Find("#prediction-form").Attr("action")
		assert.Equal(t, "/predictions/1/edit", action)

		resp = browser.Post(detailPath+"/edit", edited)
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, detailPath, resp.Header.Get("Location"))

		resp = browser.Get(detailPath)
		doc = testutil.ReadDocument(t, resp)
		assert.Equal(t, "Prediction updated.", testutil.Text(doc, "#flash"))
		assert.Contains(t, doc.Find(".readings").Text(), "950.0 mm")
		assert.Contains(t, doc.Find(".readings").Text(), "6.8")

		resp = browser.Get("/predictions/99/edit")
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown and malformed ids are not found", func(t *testing.T) {
		for _, path := range []string{"/predictions/99", "/predictions/abc"} {
			resp := browser.Get(path)
			resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		}
	})

	t.Run("delete returns to the dashboard", func(t *testing.T) {
		resp := browser.Post(detailPath+"/delete", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

		resp = browser.Get("/dashboard")
		doc := testutil.ReadDocument(t, resp)
		assert.Equal(t, "Prediction deleted.", testutil.Text(doc, "#flash"))
		assert.Equal(t, 1, doc.Find("#history-empty").Length())
	})
}

func TestFragmentRequestRendersMainOnly(t *testing.T) {
	ts := testutil.NewServer(t, testutil.WithBackend(backend.NewStaticService(nil)))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.GetFragment("/login", "main")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, 0, doc.Find("#main-nav").Length())
	assert.Equal(t, 0, doc.Find("title").Length())
	assert.Equal(t, 1, doc.Find("#login-form").Length())

	resp = browser.GetFragment("/login", "sidebar")
	doc = testutil.ReadDocument(t, resp)
	assert.Equal(t, 1, doc.Find("#main-nav").Length())
}

func TestRegisterThenSignIn(t *testing.T) {
	ts := testutil.NewServer(t, testutil.WithBackend(backend.NewStaticService(nil)))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/register", url.Values{
		"username":  {"amina"},
		"email":     {"a@b.com"},
		"password":  {"secret"},
		"password2": {"secret"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = browser.Get("/login")
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, login.MessageRegistered, testutil.Text(doc, "#flash"))

	resp = browser.Post("/register", url.Values{"username": {"amina"}, "email": {"a@b.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	doc = testutil.ReadDocument(t, resp)
	assert.Contains(t, doc.Find("#register-error").Text(), "already exists")

	resp = browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestProfileUpdate(t *testing.T) {
	ts := testutil.NewServer(t, testutil.WithBackend(backend.NewStaticService(map[string]string{"a@b.com": "secret"})))
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	resp.Body.Close()

	resp = browser.Get("/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ReadDocument(t, resp)
	email, _ := doc.Find(`#profile-form input[name="email"]`).Attr("value")
	assert.Equal(t, "a@b.com", email)

	resp = browser.Post("/profile", url.Values{"username": {"farmer"}})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	resp = browser.Get("/profile")
	doc = testutil.ReadDocument(t, resp)
	assert.Equal(t, "Profile updated.", testutil.Text(doc, "#flash"))
	name, _ := doc.Find(`#profile-form input[name="username"]`).Attr("value")
	assert.Equal(t, "farmer", name)
}

func TestHomeAndHealthz(t *testing.T) {
	ts := testutil.NewServer(t)
	browser := testutil.NewBrowser(t, ts)

	resp := browser.Get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ReadDocument(t, resp)
	assert.Equal(t, 1, doc.Find("#open-login").Length())
	assert.Equal(t, 1, doc.Find("#open-register").Length())
	assert.Equal(t, 0, doc.Find("#open-dashboard").Length())

	resp = browser.Get("/healthz")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = browser.Get("/public/static/app.css")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := httpserver.New(httpserver.Config{})
	require.Error(t, err)
}
