package backend

import (
	"context"
	"fmt"
	"time"
)

const (
	predictionCreatePath  = "/api/predictions/create/"
	predictionHistoryPath = "/api/predictions/history/"
)

// PredictionInput holds the agronomic readings submitted for a yield estimate.
type PredictionInput struct {
	Rainfall    float64 `json:"rainfall"`
	Temperature float64 `json:"temperature"`
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	PH          float64 `json:"ph"`
	SeedVariety string  `json:"seed_variety,omitempty"`
}

// Prediction is a stored estimate as returned by the backend.
type Prediction struct {
	ID              int64     `json:"id"`
	Rainfall        float64   `json:"rainfall"`
	Temperature     float64   `json:"temperature"`
	Nitrogen        float64   `json:"nitrogen"`
	Phosphorus      float64   `json:"phosphorus"`
	Potassium       float64   `json:"potassium"`
	PH              float64   `json:"ph"`
	SeedVariety     string    `json:"seed_variety,omitempty"`
	YieldPrediction *float64  `json:"yield_prediction"`
	Recommendations []string  `json:"recommendations,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreatePrediction submits readings and returns the stored prediction.
func (c *Client) CreatePrediction(ctx context.Context, token string, in PredictionInput) (Prediction, error) {
	var p Prediction
	if err := c.Post(ctx, predictionCreatePath, in, token, &p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// PredictionHistory lists the caller's predictions, newest first.
func (c *Client) PredictionHistory(ctx context.Context, token string) ([]Prediction, error) {
	var list []Prediction
	if err := c.Get(ctx, predictionHistoryPath, token, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Prediction fetches a single prediction owned by the caller.
func (c *Client) Prediction(ctx context.Context, token string, id int64) (Prediction, error) {
	var p Prediction
	if err := c.Get(ctx, predictionPath(id, ""), token, &p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// UpdatePrediction replaces the readings of a prediction owned by the caller
// and returns the re-scored result.
func (c *Client) UpdatePrediction(ctx context.Context, token string, id int64, in PredictionInput) (Prediction, error) {
	var p Prediction
	if err := c.Put(ctx, predictionPath(id, "update/"), in, token, &p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// DeletePrediction removes a prediction owned by the caller.
func (c *Client) DeletePrediction(ctx context.Context, token string, id int64) error {
	return c.Delete(ctx, predictionPath(id, "delete/"), token)
}

func predictionPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/predictions/%d/%s", id, suffix)
}
