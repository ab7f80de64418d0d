// Package views renders the server-side HTML pages as templ components.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"strconv"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
)

const siteName = "CORN-CAST"

// MainID is the id of the element holding the page body. htmx requests that
// target it receive Main instead of the whole document.
const MainID = "main"

// Flash is a one-shot notice rendered above the page body.
type Flash struct {
	Kind    string
	Message string
}

// Chrome carries the per-request data shared by every page.
type Chrome struct {
	Title         string
	Active        nav.Route
	Authenticated bool
	Email         string
	CSRFToken     string
	Flash         *Flash
}

type navLink struct {
	route nav.Route
	label string
}

var (
	guestLinks  = []navLink{{nav.Home, "Home"}, {nav.Login, "Sign in"}, {nav.Register, "Create account"}}
	memberLinks = []navLink{{nav.Home, "Home"}, {nav.Dashboard, "Dashboard"}, {nav.NewPrediction, "New prediction"}, {nav.Profile, "Profile"}}
)

func navLinks(authenticated bool) []navLink {
	if authenticated {
		return memberLinks
	}
	return guestLinks
}

func pageTitle(title string) string {
	if title == "" {
		return siteName
	}
	return title + " · " + siteName
}

// LoginPageData feeds the sign-in form. Password is never echoed back.
type LoginPageData struct {
	Email      string
	Error      string
	Message    string
	CSRFToken  string
	Submitting bool
}

// RegisterPageData feeds the registration form.
type RegisterPageData struct {
	Username  string
	Email     string
	Error     string
	CSRFToken string
}

// DashboardData feeds the dashboard. Errors holds per-panel failures that
// are rendered inline while the rest of the page still shows.
type DashboardData struct {
	Profile     *backend.Profile
	Predictions []backend.Prediction
	Errors      []string
}

func greeting(p *backend.Profile) string {
	switch {
	case p == nil:
		return "Welcome"
	case p.WelcomeMessage != "":
		return p.WelcomeMessage
	case p.Username != "":
		return "Welcome, " + p.Username
	default:
		return "Welcome"
	}
}

// ProfilePageData feeds the profile form.
type ProfilePageData struct {
	Username  string
	Email     string
	Error     string
	CSRFToken string
}

// PredictionField describes one numeric input on the prediction form.
type PredictionField struct {
	Name  string
	Label string
	Unit  string
}

// PredictionFields lists the numeric readings in form order.
var PredictionFields = []PredictionField{
	{Name: "rainfall", Label: "Rainfall", Unit: "mm"},
	{Name: "temperature", Label: "Temperature", Unit: "°C"},
	{Name: "nitrogen", Label: "Nitrogen", Unit: "kg/ha"},
	{Name: "phosphorus", Label: "Phosphorus", Unit: "kg/ha"},
	{Name: "potassium", Label: "Potassium", Unit: "kg/ha"},
	{Name: "ph", Label: "Soil pH", Unit: ""},
}

func fieldLabel(f PredictionField) string {
	if f.Unit == "" {
		return f.Label
	}
	return f.Label + " (" + f.Unit + ")"
}

// PredictionFormData feeds the prediction form. A zero ID creates a new
// prediction; otherwise the form edits that one. Values keeps what the user
// typed so a rejected submission can be corrected in place.
type PredictionFormData struct {
	ID          int64
	Values      map[string]string
	FieldErrors map[string]string
	Error       string
	CSRFToken   string
}

func (d PredictionFormData) action() string {
	if d.ID != 0 {
		return nav.EditPrediction.Path(d.ID)
	}
	return nav.NewPrediction.Path(0)
}

func (d PredictionFormData) heading() string {
	if d.ID != 0 {
		return "Edit prediction"
	}
	return "New prediction"
}

func (d PredictionFormData) submitLabel() string {
	if d.ID != 0 {
		return "Save prediction"
	}
	return "Predict yield"
}

// PredictionDetailData feeds the prediction detail page.
type PredictionDetailData struct {
	Prediction backend.Prediction
	CSRFToken  string
}

type reading struct {
	label string
	value string
}

func readings(p backend.Prediction) []reading {
	values := map[string]float64{
		"rainfall":    p.Rainfall,
		"temperature": p.Temperature,
		"nitrogen":    p.Nitrogen,
		"phosphorus":  p.Phosphorus,
		"potassium":   p.Potassium,
		"ph":          p.PH,
	}
	out := make([]reading, 0, len(PredictionFields))
	for _, f := range PredictionFields {
		value := Number(values[f.Name], 1)
		if f.Unit != "" {
			value += " " + f.Unit
		}
		out = append(out, reading{label: f.Label, value: value})
	}
	return out
}

func deletePath(id int64) string {
	return nav.PredictionDetail.Path(id) + "/delete"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
