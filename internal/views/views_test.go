package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestLoginPageEscapesAndKeepsEmail(t *testing.T) {
	t.Parallel()

	doc := render(t, LoginPage(LoginPageData{
		Email:     `a@b.com"><script>`,
		Error:     "<b>Invalid credentials</b>",
		CSRFToken: "csrf-123",
	}))

	require.Equal(t, `a@b.com"><script>`, doc.Find("#email").AttrOr("value", ""))
	require.Equal(t, "", doc.Find("#password").AttrOr("value", ""))
	require.Equal(t, "<b>Invalid credentials</b>", doc.Find("#login-error").Text())
	require.Equal(t, 0, doc.Find("script").Length())
	require.Equal(t, "csrf-123", doc.Find(`input[name="csrf_token"]`).AttrOr("value", ""))
}

func TestLayoutNavigationDependsOnAuth(t *testing.T) {
	t.Parallel()

	guest := render(t, Layout(Chrome{Title: "Sign in", Active: nav.Login}, templ.Raw(`<p id="body">body</p>`)))
	require.Equal(t, "Sign in · CORN-CAST", guest.Find("title").Text())
	require.Equal(t, "/login", guest.Find("#main-nav a.active").AttrOr("href", ""))
	require.Equal(t, 0, guest.Find("#logout-form").Length())

	member := render(t, Layout(Chrome{
		Active:        nav.Dashboard,
		Authenticated: true,
		Email:         "a@b.com",
		CSRFToken:     "tok",
		Flash:         &Flash{Kind: "success", Message: "Saved"},
	}, templ.Raw(`<p id="body">body</p>`)))
	require.Equal(t, 1, member.Find("#logout-form").Length())
	require.Equal(t, "Saved", member.Find("#flash").Text())
	require.Equal(t, "flash flash-success", member.Find("#flash").AttrOr("class", ""))
	require.Equal(t, "a@b.com", member.Find("#logout-form .account").Text())
	require.Equal(t, "body", member.Find("main#main #body").Text())
	require.Equal(t, "/dashboard", member.Find("#main-nav a.active").AttrOr("href", ""))
}

func TestMainRendersOnlyFlashAndBody(t *testing.T) {
	t.Parallel()

	doc := render(t, Main(Chrome{
		Authenticated: true,
		Flash:         &Flash{Kind: "info", Message: "Hello"},
	}, templ.Raw(`<p id="body">body</p>`)))
	require.Equal(t, 0, doc.Find("#main-nav").Length())
	require.Equal(t, 0, doc.Find("title").Length())
	require.Equal(t, "Hello", doc.Find("#flash").Text())
	require.Equal(t, "body", doc.Find("#body").Text())

	doc = render(t, Main(Chrome{}, templ.Raw(`<p id="body">body</p>`)))
	require.Equal(t, 0, doc.Find("#flash").Length())
}

func TestLoginPageNotices(t *testing.T) {
	t.Parallel()

	doc := render(t, LoginPage(LoginPageData{Message: "You have been signed out."}))
	require.Equal(t, "You have been signed out.", doc.Find("#login-message").Text())
	require.Equal(t, 0, doc.Find("#login-pending").Length())
	require.Equal(t, 0, doc.Find("#login-error").Length())

	doc = render(t, LoginPage(LoginPageData{Submitting: true}))
	require.Equal(t, 0, doc.Find("#login-message").Length())
	require.Equal(t, 1, doc.Find("#login-pending").Length())
}

func TestHomePageRendersMarkdownAndTriggers(t *testing.T) {
	t.Parallel()

	content, err := LoadHome()
	require.NoError(t, err)
	require.Equal(t, "Maize yield forecasts", content.Title)

	doc := render(t, HomePage(content, false))
	require.Equal(t, "/login", doc.Find("#open-login").AttrOr("href", ""))
	require.Equal(t, "/register", doc.Find("#open-register").AttrOr("href", ""))
	require.Equal(t, 0, doc.Find("#open-dashboard").Length())
	require.Equal(t, "How it works", doc.Find("article h2").Text())

	doc = render(t, HomePage(content, true))
	require.Equal(t, "/dashboard", doc.Find("#open-dashboard").AttrOr("href", ""))
}

func TestParseContentSanitisesBody(t *testing.T) {
	t.Parallel()

	content, err := ParseContent("---\ntitle: Hello\n---\n\n# Hi\n\n<script>alert(1)</script>\n")
	require.NoError(t, err)
	require.Equal(t, "Hello", content.Title)
	require.Equal(t, "Sign in", content.LoginLabel)
	require.NotContains(t, content.BodyHTML, "<script>")

	_, err = ParseContent("---\ntitle: [unterminated\n---\nbody")
	require.Error(t, err)
}

func TestDashboardPageRendersHistoryAndErrors(t *testing.T) {
	t.Parallel()

	yield := 6.2
	doc := render(t, DashboardPage(DashboardData{
		Profile: &backend.Profile{Username: "amina", WelcomeMessage: "Welcome amina"},
		Predictions: []backend.Prediction{
			{ID: 2, Rainfall: 1200, PH: 6.5, YieldPrediction: &yield, CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
			{ID: 1},
		},
		Errors: []string{"The prediction service did not respond in time. Please try again."},
	}))

	require.Equal(t, "Welcome amina", doc.Find("#greeting").Text())
	require.Equal(t, 2, doc.Find(".prediction-row").Length())
	first := doc.Find(".prediction-row").First()
	require.Equal(t, "6.20 t/ha", first.Find(".yield").Text())
	require.Contains(t, first.Text(), "1,200.0")
	require.Equal(t, "/predictions/2", first.Find("a").AttrOr("href", ""))
	require.Equal(t, "Pending", doc.Find(".prediction-row").Last().Find(".yield").Text())
	require.Equal(t, 1, doc.Find(".inline-error").Length())
}

func TestDashboardPageEmptyState(t *testing.T) {
	t.Parallel()

	doc := render(t, DashboardPage(DashboardData{}))
	require.Equal(t, "Welcome", doc.Find("#greeting").Text())
	require.Equal(t, 1, doc.Find("#history-empty").Length())
}

func TestPredictionPages(t *testing.T) {
	t.Parallel()

	form := render(t, PredictionFormPage(PredictionFormData{
		Values:      map[string]string{"rainfall": "abc", "ph": "6.5"},
		FieldErrors: map[string]string{"rainfall": "Enter a number."},
	}))
	require.Equal(t, "abc", form.Find("#rainfall").AttrOr("value", ""))
	require.Equal(t, "Enter a number.", form.Find("#rainfall-error").Text())
	require.Equal(t, len(PredictionFields)+1, form.Find("#prediction-form label").Length())
	require.Equal(t, "/predictions/new", form.Find("#prediction-form").AttrOr("action", ""))
	require.Equal(t, "New prediction", form.Find("h1").Text())
	require.Equal(t, "decimal", form.Find("#ph").AttrOr("inputmode", ""))

	edit := render(t, PredictionFormPage(PredictionFormData{
		ID:     7,
		Values: map[string]string{"rainfall": "800", "seed_variety": "H614"},
	}))
	require.Equal(t, "/predictions/7/edit", edit.Find("#prediction-form").AttrOr("action", ""))
	require.Equal(t, "Edit prediction", edit.Find("h1").Text())
	require.Equal(t, "800", edit.Find("#rainfall").AttrOr("value", ""))
	require.Equal(t, "H614", edit.Find("#seed_variety").AttrOr("value", ""))
	require.Equal(t, 0, edit.Find(".inline-error").Length())

	yield := 4.75
	detail := render(t, PredictionDetailPage(PredictionDetailData{
		Prediction: backend.Prediction{ID: 9, YieldPrediction: &yield, Recommendations: []string{"Apply lime"}},
		CSRFToken:  "tok",
	}))
	require.Equal(t, "4.75 t/ha", detail.Find("#prediction-yield").Text())
	require.Equal(t, "/predictions/9/delete", detail.Find("#delete-prediction").AttrOr("action", ""))
	require.Equal(t, "/predictions/9/edit", detail.Find("#edit-prediction").AttrOr("href", ""))
	require.Equal(t, "Prediction #9", detail.Find("h1").Text())
	require.Equal(t, "Apply lime", strings.TrimSpace(detail.Find("#recommendations li").Text()))
}

func TestNumberFormatting(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1,234.50", Number(1234.5, 2))
	require.Equal(t, "Pending", Yield(nil))
	require.Equal(t, "-", Date(time.Time{}))
}
