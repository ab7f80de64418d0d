package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	custommw "github.com/Antony-Mwangi/CORN-CAST/internal/httpserver/middleware"
	"github.com/Antony-Mwangi/CORN-CAST/internal/login"
	"github.com/Antony-Mwangi/CORN-CAST/internal/nav"
	"github.com/Antony-Mwangi/CORN-CAST/internal/views"
)

const (
	messageEnterNumber        = "Enter a number."
	messagePHRange            = "pH must be between 0 and 14."
	messageFixFields          = "Please correct the highlighted fields."
	messagePredictionGone     = "Prediction deleted."
	messagePredictionSaved    = "Prediction updated."
	messagePredictionNotFound = "That prediction could not be found."
)

// PredictionForm renders an empty prediction form.
func (h *handlers) PredictionForm(w http.ResponseWriter, r *http.Request) {
	h.renderPredictionForm(w, r, views.PredictionFormData{}, http.StatusOK)
}

// PredictionSubmit validates the readings, creates the prediction and opens
// its detail page.
func (h *handlers) PredictionSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPredictionForm(w, r, views.PredictionFormData{Error: messageBadForm}, http.StatusBadRequest)
		return
	}

	values := predictionFormValues(r)
	in, fieldErrors := parsePredictionInput(values)
	if len(fieldErrors) > 0 {
		h.renderPredictionForm(w, r, views.PredictionFormData{
			Values:      values,
			FieldErrors: fieldErrors,
			Error:       messageFixFields,
		}, http.StatusBadRequest)
		return
	}

	created, err := h.backend.CreatePrediction(r.Context(), h.token(r), in)
	if err != nil {
		if h.sessionLost(w, r, nav.NewPrediction, err) {
			return
		}
		h.renderPredictionForm(w, r, views.PredictionFormData{
			Values: values,
			Error:  login.FailureMessage(err),
		}, backend.StatusFor(err))
		return
	}
	h.follow(w, r, nav.NewPrediction, nav.PredictionCreated, created.ID)
}

// PredictionEditForm renders the form pre-filled with a stored prediction.
func (h *handlers) PredictionEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := predictionID(r)
	if !ok {
		h.render(w, r, nav.EditPrediction, "Not found", views.ErrorPage("Not found", messagePredictionNotFound), http.StatusNotFound)
		return
	}
	p, err := h.backend.Prediction(r.Context(), h.token(r), id)
	if err != nil {
		if h.sessionLost(w, r, nav.EditPrediction, err) {
			return
		}
		h.renderError(w, r, nav.EditPrediction, err)
		return
	}
	h.renderPredictionForm(w, r, views.PredictionFormData{ID: id, Values: predictionValues(p)}, http.StatusOK)
}

// PredictionEditSubmit validates the edited readings, saves them and returns
// to the detail page.
func (h *handlers) PredictionEditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := predictionID(r)
	if !ok {
		h.render(w, r, nav.EditPrediction, "Not found", views.ErrorPage("Not found", messagePredictionNotFound), http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderPredictionForm(w, r, views.PredictionFormData{ID: id, Error: messageBadForm}, http.StatusBadRequest)
		return
	}

	values := predictionFormValues(r)
	in, fieldErrors := parsePredictionInput(values)
	if len(fieldErrors) > 0 {
		h.renderPredictionForm(w, r, views.PredictionFormData{
			ID:          id,
			Values:      values,
			FieldErrors: fieldErrors,
			Error:       messageFixFields,
		}, http.StatusBadRequest)
		return
	}

	updated, err := h.backend.UpdatePrediction(r.Context(), h.token(r), id, in)
	if err != nil {
		if h.sessionLost(w, r, nav.EditPrediction, err) {
			return
		}
		h.renderPredictionForm(w, r, views.PredictionFormData{
			ID:     id,
			Values: values,
			Error:  login.FailureMessage(err),
		}, backend.StatusFor(err))
		return
	}
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetFlash("success", messagePredictionSaved)
	}
	if updated.ID != 0 {
		id = updated.ID
	}
	h.follow(w, r, nav.EditPrediction, nav.PredictionUpdated, id)
}

// PredictionDetail shows one stored prediction.
func (h *handlers) PredictionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := predictionID(r)
	if !ok {
		h.render(w, r, nav.PredictionDetail, "Not found", views.ErrorPage("Not found", messagePredictionNotFound), http.StatusNotFound)
		return
	}
	p, err := h.backend.Prediction(r.Context(), h.token(r), id)
	if err != nil {
		if h.sessionLost(w, r, nav.PredictionDetail, err) {
			return
		}
		h.renderError(w, r, nav.PredictionDetail, err)
		return
	}
	h.render(w, r, nav.PredictionDetail, "Prediction #"+strconv.FormatInt(p.ID, 10), views.PredictionDetailPage(views.PredictionDetailData{
		Prediction: p,
		CSRFToken:  custommw.CSRFTokenFromContext(r.Context()),
	}), http.StatusOK)
}

// PredictionDelete removes a prediction and returns to the dashboard.
func (h *handlers) PredictionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := predictionID(r)
	if !ok {
		h.render(w, r, nav.PredictionDetail, "Not found", views.ErrorPage("Not found", messagePredictionNotFound), http.StatusNotFound)
		return
	}
	if err := h.backend.DeletePrediction(r.Context(), h.token(r), id); err != nil {
		if h.sessionLost(w, r, nav.PredictionDetail, err) {
			return
		}
		h.renderError(w, r, nav.PredictionDetail, err)
		return
	}
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetFlash("success", messagePredictionGone)
	}
	h.follow(w, r, nav.PredictionDetail, nav.PredictionDeleted, 0)
}

func (h *handlers) renderPredictionForm(w http.ResponseWriter, r *http.Request, data views.PredictionFormData, status int) {
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	route, title := nav.NewPrediction, "New prediction"
	if data.ID != 0 {
		route, title = nav.EditPrediction, "Edit prediction #"+strconv.FormatInt(data.ID, 10)
	}
	h.render(w, r, route, title, views.PredictionFormPage(data), status)
}

// predictionFormValues collects the submitted readings as typed, trimmed.
func predictionFormValues(r *http.Request) map[string]string {
	values := map[string]string{"seed_variety": strings.TrimSpace(r.PostFormValue("seed_variety"))}
	for _, f := range views.PredictionFields {
		values[f.Name] = strings.TrimSpace(r.PostFormValue(f.Name))
	}
	return values
}

// predictionValues renders a stored prediction back into form values.
func predictionValues(p backend.Prediction) map[string]string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]string{
		"rainfall":     format(p.Rainfall),
		"temperature":  format(p.Temperature),
		"nitrogen":     format(p.Nitrogen),
		"phosphorus":   format(p.Phosphorus),
		"potassium":    format(p.Potassium),
		"ph":           format(p.PH),
		"seed_variety": p.SeedVariety,
	}
}

func predictionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePredictionInput converts the submitted strings. It returns one message
// per field that could not be used.
func parsePredictionInput(values map[string]string) (backend.PredictionInput, map[string]string) {
	errs := map[string]string{}
	parsed := make(map[string]float64, len(views.PredictionFields))
	for _, f := range views.PredictionFields {
		v, err := strconv.ParseFloat(values[f.Name], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs[f.Name] = messageEnterNumber
			continue
		}
		parsed[f.Name] = v
	}
	if ph, ok := parsed["ph"]; ok && (ph < 0 || ph > 14) {
		errs["ph"] = messagePHRange
	}
	if len(errs) > 0 {
		return backend.PredictionInput{}, errs
	}
	return backend.PredictionInput{
		Rainfall:    parsed["rainfall"],
		Temperature: parsed["temperature"],
		Nitrogen:    parsed["nitrogen"],
		Phosphorus:  parsed["phosphorus"],
		Potassium:   parsed["potassium"],
		PH:          parsed["ph"],
		SeedVariety: values["seed_variety"],
	}, nil
}
