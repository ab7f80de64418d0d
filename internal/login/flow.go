// Package login drives the sign-in and registration forms: one backend call
// per submission, with the outcome mapped to a view state, a visible message
// and a navigation target.
package login

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
	"github.com/Antony-Mwangi/CORN-CAST/internal/tokenstore"
)

const meterName = "github.com/Antony-Mwangi/CORN-CAST/internal/login"

// ErrSuperseded reports that a later submission from the same session won the token slot.
var ErrSuperseded = errors.New("login: superseded by a newer attempt")

// Messages shown to the user.
const (
	MessageUnreachable = "We could not reach the prediction service. Please try again."
	MessageTimeout     = "The prediction service did not respond in time. Please try again."
	MessageUnexpected  = "Something went wrong. Please try again."
	MessageSuperseded  = "A newer sign-in attempt replaced this one."
	MessageRegistered  = "Account created. Please sign in."
)

// State is the form's view state.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one submission.
type Outcome struct {
	State State
	// Event is the navigation trigger to raise; only meaningful on Success.
	Event   nav.Event
	Message string
	Err     error
	// AttemptID correlates log lines for one submission.
	AttemptID string
}

// HTTPStatus picks the response status used when the form is re-rendered.
func (o Outcome) HTTPStatus() int {
	switch {
	case o.State != Failed:
		return http.StatusOK
	case errors.Is(o.Err, ErrSuperseded):
		return http.StatusConflict
	default:
		return backend.StatusFor(o.Err)
	}
}

// Authenticator is the backend surface the flow needs.
type Authenticator interface {
	Login(ctx context.Context, creds backend.Credentials) (backend.TokenPair, error)
	Register(ctx context.Context, reg backend.Registration) (backend.Account, error)
}

// Flow runs login and registration submissions.
type Flow struct {
	auth   Authenticator
	tokens tokenstore.Store
	group  singleflight.Group

	mu       sync.Mutex
	inflight map[string]int
	flights  map[string]*flightWaiters

	attempts metric.Int64Counter
	latency  metric.Float64Histogram
}

// Option customises a Flow.
type Option func(*flowOptions)

type flowOptions struct {
	meter metric.Meter
}

// WithMeter records login metrics on m instead of the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *flowOptions) {
		o.meter = m
	}
}

// NewFlow wires a flow against the backend and the token store.
func NewFlow(auth Authenticator, tokens tokenstore.Store, opts ...Option) *Flow {
	if auth == nil {
		panic("login: authenticator is required")
	}
	if tokens == nil {
		panic("login: token store is required")
	}
	var o flowOptions
	for _, opt := range opts {
		opt(&o)
	}
	meter := o.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}

	f := &Flow{
		auth:     auth,
		tokens:   tokens,
		inflight: make(map[string]int),
		flights:  make(map[string]*flightWaiters),
	}
	// Instrument errors leave the field nil; record skips nil instruments.
	f.attempts, _ = meter.Int64Counter(
		"login.attempts",
		metric.WithDescription("Login submissions by outcome"),
	)
	f.latency, _ = meter.Float64Histogram(
		"login.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Time from submission to outcome in milliseconds"),
	)
	return f
}

// Status reports Submitting while a login for sid is in flight, Idle otherwise.
func (f *Flow) Status(sid string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inflight[sid] > 0 {
		return Submitting
	}
	return Idle
}

// Submit sends creds to the backend exactly as entered. On success the token
// is stored for sid and the outcome carries LoginSucceeded. Failures never
// touch the token slot.
func (f *Flow) Submit(ctx context.Context, sid string, creds backend.Credentials) Outcome {
	start := time.Now()
	out := f.submit(ctx, sid, creds)
	f.record(ctx, out, time.Since(start))
	return out
}

func (f *Flow) submit(ctx context.Context, sid string, creds backend.Credentials) Outcome {
	attemptID := uuid.NewString()
	logger := observability.FromContext(ctx).With(zap.String("attempt_id", attemptID))

	f.enter(sid)
	defer f.leave(sid)

	// Joining before Begin means an identical submission that reserves a later
	// attempt is always visible to this one when its own write is refused.
	key := flightKey(sid, creds)
	waiters := f.join(key)
	settled := false
	settle := func() {
		if !settled {
			settled = true
			f.settle(key, waiters)
		}
	}
	defer settle()

	attempt, err := f.tokens.Begin(ctx, sid)
	if err != nil {
		logger.Error("login attempt could not be reserved", zap.Error(err))
		return Outcome{State: Failed, Message: MessageUnexpected, Err: err, AttemptID: attemptID}
	}

	// The shared call outlives any single caller; the backend client applies
	// its own per-request deadline.
	flightCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		return f.auth.Login(flightCtx, creds)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := &backend.NetworkError{Op: "login", Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded), Err: ctx.Err()}
		logger.Info("login abandoned", zap.Error(err))
		return Outcome{State: Failed, Message: FailureMessage(err), Err: err, AttemptID: attemptID}
	}
	if res.Err != nil {
		logger.Info("login rejected", zap.Error(res.Err), zap.Bool("shared", res.Shared))
		return Outcome{State: Failed, Message: FailureMessage(res.Err), Err: res.Err, AttemptID: attemptID}
	}
	pair := res.Val.(backend.TokenPair)
	shared := res.Shared

	applied, err := f.tokens.Set(ctx, sid, attempt, pair.Access)
	settle()
	if err != nil {
		logger.Error("token could not be stored", zap.Error(err))
		return Outcome{State: Failed, Message: MessageUnexpected, Err: err, AttemptID: attemptID}
	}
	if !applied {
		// A later identical submission may still be writing the same token.
		select {
		case <-waiters.done:
		case <-ctx.Done():
		}
		current, ok, getErr := f.tokens.Get(ctx, sid)
		if getErr != nil || !ok || current != pair.Access {
			logger.Info("login superseded", zap.Uint64("attempt", uint64(attempt)))
			return Outcome{State: Failed, Message: MessageSuperseded, Err: ErrSuperseded, AttemptID: attemptID}
		}
	}

	logger.Info("login succeeded", zap.String("user_id", subject(pair.Access)), zap.Bool("shared", shared))
	return Outcome{State: Success, Event: nav.LoginSucceeded, AttemptID: attemptID}
}

// Register creates an account. Success raises RegisterSucceeded and carries
// the confirmation notice; no token is stored.
func (f *Flow) Register(ctx context.Context, reg backend.Registration) Outcome {
	attemptID := uuid.NewString()
	logger := observability.FromContext(ctx).With(zap.String("attempt_id", attemptID))

	if _, err := f.auth.Register(ctx, reg); err != nil {
		logger.Info("registration rejected", zap.Error(err))
		return Outcome{State: Failed, Message: FailureMessage(err), Err: err, AttemptID: attemptID}
	}
	logger.Info("registration succeeded")
	return Outcome{State: Success, Event: nav.RegisterSucceeded, Message: MessageRegistered, AttemptID: attemptID}
}

// FailureMessage maps a backend error to the text shown next to the form.
func FailureMessage(err error) string {
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case backend.IsTimeout(err):
		return MessageTimeout
	case backend.IsNetwork(err):
		return MessageUnreachable
	default:
		return MessageUnexpected
	}
}

func (f *Flow) enter(sid string) {
	f.mu.Lock()
	f.inflight[sid]++
	f.mu.Unlock()
}

func (f *Flow) record(ctx context.Context, out Outcome, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcomeLabel(out)))
	if f.attempts != nil {
		f.attempts.Add(ctx, 1, attrs)
	}
	if f.latency != nil {
		f.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
}

func outcomeLabel(out Outcome) string {
	var apiErr *backend.APIError
	switch {
	case out.State == Success:
		return "success"
	case errors.Is(out.Err, ErrSuperseded):
		return "superseded"
	case errors.As(out.Err, &apiErr):
		return "rejected"
	case backend.IsNetwork(out.Err):
		return "network"
	default:
		return "error"
	}
}

// flightWaiters counts the submissions sharing one flight key that have not
// yet written their token. done closes when the count reaches zero.
type flightWaiters struct {
	pending int
	done    chan struct{}
}

func (f *Flow) join(key string) *flightWaiters {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.flights[key]
	if !ok {
		w = &flightWaiters{done: make(chan struct{})}
		f.flights[key] = w
	}
	w.pending++
	return w
}

func (f *Flow) settle(key string, w *flightWaiters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.pending--
	if w.pending > 0 {
		return
	}
	close(w.done)
	if f.flights[key] == w {
		delete(f.flights, key)
	}
}

func (f *Flow) leave(sid string) {
	f.mu.Lock()
	f.inflight[sid]--
	if f.inflight[sid] <= 0 {
		delete(f.inflight, sid)
	}
	f.mu.Unlock()
}

// flightKey collapses identical submissions from one session. The password is
// hashed so it is not retained as a map key.
func flightKey(sid string, creds backend.Credentials) string {
	sum := sha256.Sum256([]byte(sid + "\x00" + creds.Email + "\x00" + creds.Password))
	return hex.EncodeToString(sum[:])
}

// subject reads the account id claim for log correlation. The token is not
// verified here; the backend is the only authority on it.
func subject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"user_id", "sub"} {
		switch v := claims[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
