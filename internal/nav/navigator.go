package nav

import (
	"net/http"
	"net/url"
	"strings"
)

// Transition describes one navigation request raised by a view.
type Transition struct {
	From          Route
	Event         Event
	Authenticated bool
	// ID selects the prediction for the prediction routes.
	ID int64
	// Query is appended to the target path, e.g. to carry a notice.
	Query url.Values
}

// Navigator turns transitions into browser redirects.
type Navigator struct {
	machine *Machine
}

// NewNavigator wires a navigator around m (the default machine when nil).
func NewNavigator(m *Machine) *Navigator {
	if m == nil {
		m = NewMachine()
	}
	return &Navigator{machine: m}
}

// Follow resolves t and redirects the browser to the resulting route. Nothing
// is written when the transition is invalid.
func (n *Navigator) Follow(w http.ResponseWriter, r *http.Request, t Transition) (Route, error) {
	to, err := n.machine.Next(t.From, t.Event, t.Authenticated)
	if err != nil {
		return t.From, err
	}
	target := to.Path(t.ID)
	if len(t.Query) > 0 {
		target += "?" + t.Query.Encode()
	}
	Goto(w, r, target)
	return to, nil
}

// Goto redirects to target. htmx requests receive HX-Redirect with 204 so the
// client performs a full navigation; other requests receive 303 See Other.
func Goto(w http.ResponseWriter, r *http.Request, target string) {
	if strings.EqualFold(r.Header.Get("HX-Request"), "true") {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
