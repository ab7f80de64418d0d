package nav

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event is not accepted on a route.
var ErrInvalidTransition = errors.New("nav: invalid transition")

// Event is a navigation trigger raised by a view.
type Event int

const (
	OpenHome Event = iota
	OpenLogin
	OpenRegister
	LoginSucceeded
	RegisterSucceeded
	OpenDashboard
	OpenProfile
	OpenNewPrediction
	OpenPrediction
	PredictionCreated
	PredictionDeleted
	OpenEditPrediction
	PredictionUpdated
	LoggedOut
	SessionLost
)

var eventNames = map[Event]string{
	OpenHome:           "open_home",
	OpenLogin:          "open_login",
	OpenRegister:       "open_register",
	LoginSucceeded:     "login_succeeded",
	RegisterSucceeded:  "register_succeeded",
	OpenDashboard:      "open_dashboard",
	OpenProfile:        "open_profile",
	OpenNewPrediction:  "open_new_prediction",
	OpenPrediction:     "open_prediction",
	PredictionCreated:  "prediction_created",
	PredictionDeleted:  "prediction_deleted",
	OpenEditPrediction: "open_edit_prediction",
	PredictionUpdated:  "prediction_updated",
	LoggedOut:          "logged_out",
	SessionLost:        "session_lost",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Events accepted on every route.
var globalTransitions = map[Event]Route{
	OpenHome:    Home,
	LoggedOut:   Login,
	SessionLost: Login,
}

// Events accepted on the authenticated screens.
var memberTransitions = map[Event]Route{
	OpenDashboard:     Dashboard,
	OpenProfile:       Profile,
	OpenNewPrediction: NewPrediction,
	OpenPrediction:    PredictionDetail,
}

var routeTransitions = map[Route]map[Event]Route{
	Home: {
		OpenLogin:     Login,
		OpenRegister:  Register,
		OpenDashboard: Dashboard,
	},
	Login: {
		OpenLogin:      Login,
		OpenRegister:   Register,
		LoginSucceeded: Dashboard,
	},
	Register: {
		OpenLogin:         Login,
		OpenRegister:      Register,
		RegisterSucceeded: Login,
	},
	Dashboard: memberTransitions,
	Profile:   memberTransitions,
	NewPrediction: merge(memberTransitions, map[Event]Route{
		PredictionCreated: PredictionDetail,
	}),
	PredictionDetail: merge(memberTransitions, map[Event]Route{
		PredictionDeleted:  Dashboard,
		OpenEditPrediction: EditPrediction,
		PredictionUpdated:  PredictionDetail,
	}),
	EditPrediction: merge(memberTransitions, map[Event]Route{
		PredictionUpdated: PredictionDetail,
	}),
}

// Machine resolves navigation events into routes.
type Machine struct {
	table map[Route]map[Event]Route
}

// NewMachine returns the application's navigation machine.
func NewMachine() *Machine {
	return &Machine{table: routeTransitions}
}

// Next returns the route reached from `from` on ev. Routes that require a
// token resolve to Login when authenticated is false.
func (m *Machine) Next(from Route, ev Event, authenticated bool) (Route, error) {
	to, ok := globalTransitions[ev]
	if !ok {
		to, ok = m.table[from][ev]
	}
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
	}
	return Guard(to, authenticated), nil
}

// Guard redirects protected routes to Login for anonymous sessions.
func Guard(to Route, authenticated bool) Route {
	if to.RequiresAuth() && !authenticated {
		return Login
	}
	return to
}

func merge(base, extra map[Event]Route) map[Event]Route {
	out := make(map[Event]Route, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
