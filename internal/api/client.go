package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/curatorlab/gallerize/internal/catalog"
)

// Client talks to the predictor backend. All four endpoints share one
// base origin and one HTTP client.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base origin,
// e.g. "http://localhost:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoadImages fetches the full catalog metadata from GET /api/images.
func (c *Client) LoadImages(ctx context.Context) ([]catalog.Item, error) {
	const op = "load images"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/images", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}

	var items []catalog.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &ValidationError{Op: op, Err: err}
	}

	return items, nil
}

// PredictRequest carries the rated subset and the weight vector. Target
// values are parallel to ImageIDs: 1 for like, 0 for dislike.
type PredictRequest struct {
	ImageIDs  []int   `json:"image_ids"`
	Target    []int   `json:"target"`
	Embedding float64 `json:"embedding"`
	Color     float64 `json:"color"`
	Abstract  float64 `json:"abstract"`
	Noisy     float64 `json:"noisy"`
	Paint     float64 `json:"paint"`
}

// PredictResponse is the backend's answer to a predict call. NewID is
// optional and informational only.
type PredictResponse struct {
	PredictedIDs []int  `json:"predicted_ids"`
	SessionID    string `json:"session_id"`
	NewID        *int   `json:"new_id,omitempty"`
}

// Predict submits rated ids to POST /predict and returns the predicted
// subset and session id. A success body without a predicted_ids array or
// session id is a ValidationError.
func (c *Client) Predict(ctx context.Context, preq PredictRequest) (*PredictResponse, error) {
	const op = "predict"

	var presp PredictResponse
	if err := c.postJSON(ctx, op, "/predict", preq, &presp); err != nil {
		return nil, err
	}

	if presp.PredictedIDs == nil {
		return nil, &ValidationError{Op: op, Field: "predicted_ids"}
	}
	if presp.SessionID == "" {
		return nil, &ValidationError{Op: op, Field: "session_id"}
	}

	return &presp, nil
}

// FeedbackRequest carries the operator's verdict on every item of the
// predicted set. Keys are image ids rendered as strings, matching the
// backend's wire format.
type FeedbackRequest struct {
	PredictionSessionID string         `json:"prediction_session_id"`
	Feedback            map[string]int `json:"feedback"`
}

type feedbackResponse struct {
	Message string `json:"message"`
}

// Feedback closes a prediction round via POST /feedback and returns the
// backend's acknowledgement message.
func (c *Client) Feedback(ctx context.Context, freq FeedbackRequest) (string, error) {
	var fresp feedbackResponse
	if err := c.postJSON(ctx, "feedback", "/feedback", freq, &fresp); err != nil {
		return "", err
	}
	return fresp.Message, nil
}

// FetchAsset downloads the raw image bytes for the given asset path,
// e.g. "/images/13947.jpg".
func (c *Client) FetchAsset(ctx context.Context, path string) ([]byte, error) {
	const op = "fetch asset"

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	return data, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ValidationError{Op: op, Err: err}
	}

	return nil
}
