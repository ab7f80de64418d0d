package nav

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	cases := []struct {
		name   string
		from   Route
		event  Event
		authed bool
		want   Route
	}{
		{name: "home to login", from: Home, event: OpenLogin, want: Login},
		{name: "home to register", from: Home, event: OpenRegister, want: Register},
		{name: "login success", from: Login, event: LoginSucceeded, authed: true, want: Dashboard},
		{name: "register success", from: Register, event: RegisterSucceeded, want: Login},
		{name: "dashboard to profile", from: Dashboard, event: OpenProfile, authed: true, want: Profile},
		{name: "prediction created", from: NewPrediction, event: PredictionCreated, authed: true, want: PredictionDetail},
		{name: "prediction deleted", from: PredictionDetail, event: PredictionDeleted, authed: true, want: Dashboard},
		{name: "detail to edit", from: PredictionDetail, event: OpenEditPrediction, authed: true, want: EditPrediction},
		{name: "prediction updated", from: EditPrediction, event: PredictionUpdated, authed: true, want: PredictionDetail},
		{name: "prediction updated in place", from: PredictionDetail, event: PredictionUpdated, authed: true, want: PredictionDetail},
		{name: "guard on edit", from: PredictionDetail, event: OpenEditPrediction, authed: false, want: Login},
		{name: "logout from anywhere", from: Profile, event: LoggedOut, want: Login},
		{name: "session lost", from: Dashboard, event: SessionLost, want: Login},
		{name: "guard on dashboard", from: Home, event: OpenDashboard, authed: false, want: Login},
		{name: "guard on login success without token", from: Login, event: LoginSucceeded, authed: false, want: Login},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Next(tc.from, tc.event, tc.authed)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMachineRejectsUnknownPairs(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	from, err := m.Next(Home, PredictionCreated, true)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, Home, from)

	_, err = m.Next(Login, OpenProfile, true)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.Next(Dashboard, PredictionUpdated, true)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRoutePaths(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/", Home.Path(0))
	require.Equal(t, "/dashboard", Dashboard.Path(0))
	require.Equal(t, "/predictions/42", PredictionDetail.Path(42))
	require.Equal(t, "/predictions/{id}", PredictionDetail.Pattern())
	require.Equal(t, "/predictions/42/edit", EditPrediction.Path(42))
	require.True(t, EditPrediction.RequiresAuth())
	require.True(t, Profile.RequiresAuth())
	require.False(t, Login.RequiresAuth())
	require.False(t, Route(99).Valid())
	require.Equal(t, "dashboard", Dashboard.String())
}

func TestNavigatorFollowRedirects(t *testing.T) {
	t.Parallel()

	n := NewNavigator(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	to, err := n.Follow(rec, req, Transition{From: Login, Event: LoginSucceeded, Authenticated: true})
	require.NoError(t, err)
	require.Equal(t, Dashboard, to)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/predictions/new", nil)
	req.Header.Set("HX-Request", "true")
	_, err = n.Follow(rec, req, Transition{From: NewPrediction, Event: PredictionCreated, Authenticated: true, ID: 7})
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "/predictions/7", rec.Header().Get("HX-Redirect"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	_, err = n.Follow(rec, req, Transition{From: Dashboard, Event: LoggedOut, Query: url.Values{"status": {"logged_out"}}})
	require.NoError(t, err)
	require.Equal(t, "/login?status=logged_out", rec.Header().Get("Location"))
}

func TestNavigatorFollowInvalidWritesNothing(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := NewNavigator(nil).Follow(rec, req, Transition{From: Home, Event: PredictionDeleted})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, rec.Header().Get("Location"))
}
