// Package nav defines the application's screens and the events that move a
// browser between them.
package nav

import (
	"strconv"
	"strings"
)

// Route identifies a screen.
type Route int

const (
	Home Route = iota
	Login
	Register
	Dashboard
	Profile
	NewPrediction
	PredictionDetail
	EditPrediction
)

var routeNames = map[Route]string{
	Home:             "home",
	Login:            "login",
	Register:         "register",
	Dashboard:        "dashboard",
	Profile:          "profile",
	NewPrediction:    "new_prediction",
	PredictionDetail: "prediction_detail",
	EditPrediction:   "edit_prediction",
}

var routePaths = map[Route]string{
	Home:             "/",
	Login:            "/login",
	Register:         "/register",
	Dashboard:        "/dashboard",
	Profile:          "/profile",
	NewPrediction:    "/predictions/new",
	PredictionDetail: "/predictions/{id}",
	EditPrediction:   "/predictions/{id}/edit",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "route(" + strconv.Itoa(int(r)) + ")"
}

// Pattern returns the chi route pattern serving r.
func (r Route) Pattern() string {
	return routePaths[r]
}

// Path returns the concrete URL path for r. id fills the {id} segment of the
// prediction routes and is ignored elsewhere.
func (r Route) Path(id int64) string {
	p := routePaths[r]
	if p == "" {
		return "/"
	}
	return strings.Replace(p, "{id}", strconv.FormatInt(id, 10), 1)
}

// RequiresAuth reports whether r may only be shown to sessions holding a token.
func (r Route) RequiresAuth() bool {
	switch r {
	case Dashboard, Profile, NewPrediction, PredictionDetail, EditPrediction:
		return true
	default:
		return false
	}
}

// Valid reports whether r is a known route.
func (r Route) Valid() bool {
	_, ok := routeNames[r]
	return ok
}
