// Package session drives the two-phase prediction protocol: submit the
// rated subset, receive a predicted subset, collect feedback on it, and
// close the round. At most one session is open at a time, and a single
// in-flight guard rules out ambiguous concurrent submissions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/curatorlab/gallerize/internal/api"
	"github.com/curatorlab/gallerize/internal/catalog"
	"github.com/curatorlab/gallerize/internal/profile"
	"github.com/curatorlab/gallerize/internal/ratings"
)

// State is the orchestrator's protocol position.
type State int

const (
	// Idle: no round open, ratings collect against the current catalog.
	Idle State = iota
	// AwaitingPrediction: predict call outstanding.
	AwaitingPrediction
	// RatingPredicted: a session is open, the predicted subset is displayed.
	RatingPredicted
	// AwaitingFeedback: feedback call outstanding.
	AwaitingFeedback
)

func (s State) String() string {
	switch s {
	case AwaitingPrediction:
		return "awaiting prediction"
	case RatingPredicted:
		return "rating predicted"
	case AwaitingFeedback:
		return "awaiting feedback"
	default:
		return "idle"
	}
}

// Backend is the predictor boundary the orchestrator drives.
type Backend interface {
	LoadImages(ctx context.Context) ([]catalog.Item, error)
	Predict(ctx context.Context, req api.PredictRequest) (*api.PredictResponse, error)
	Feedback(ctx context.Context, req api.FeedbackRequest) (string, error)
}

// StatusFunc receives operator-facing status messages.
type StatusFunc func(msg string)

// ConfirmFunc asks the operator whether to submit despite unrated items.
type ConfirmFunc func(unrated int) bool

// Config wires an orchestrator. Backend is required; everything else
// has a usable default.
type Config struct {
	Backend Backend

	// Dispatch posts a completion handler to the owning event loop.
	// Defaults to immediate execution, which is only safe single-threaded.
	Dispatch func(func())

	Status  StatusFunc
	Confirm ConfirmFunc
	Weights profile.Weights

	// OnDisplayChanged fires whenever the displayed set is replaced
	// wholesale (catalog load or prediction), so the view can rebuild.
	OnDisplayChanged func(items []catalog.Item)

	// OnRoundClosed fires after a successful feedback call with the
	// feedback that was sent.
	OnRoundClosed func(sessionID string, feedback map[int]ratings.Rating, weights profile.Weights)

	// Rand shuffles the displayed set on catalog load. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
}

// Orchestrator owns the catalog, the displayed set, the rating store
// and the open session. All methods must be called from the owning
// event loop; network completions re-enter through Dispatch.
type Orchestrator struct {
	backend  Backend
	dispatch func(func())
	status   StatusFunc
	confirm  ConfirmFunc
	weights  profile.Weights
	rng      *rand.Rand

	onDisplayChanged func([]catalog.Item)
	onRoundClosed    func(string, map[int]ratings.Rating, profile.Weights)

	state     State
	inFlight  bool
	catalog   *catalog.Catalog
	displayed []catalog.Item
	ratings   *ratings.Store
	sessionID string
	newID     *int
}

// New creates an orchestrator in Idle state with an empty catalog.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		backend:          cfg.Backend,
		dispatch:         cfg.Dispatch,
		status:           cfg.Status,
		confirm:          cfg.Confirm,
		weights:          cfg.Weights,
		rng:              cfg.Rand,
		onDisplayChanged: cfg.OnDisplayChanged,
		onRoundClosed:    cfg.OnRoundClosed,
		catalog:          catalog.New(nil),
		ratings:          ratings.NewStore(),
	}
	if o.dispatch == nil {
		o.dispatch = func(f func()) { f() }
	}
	if o.status == nil {
		o.status = func(string) {}
	}
	if o.confirm == nil {
		o.confirm = func(int) bool { return true }
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// State returns the protocol position.
func (o *Orchestrator) State() State {
	return o.state
}

// SessionID returns the open session id, empty when no round is open.
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// NewID returns the optional new_id carried by the last prediction.
func (o *Orchestrator) NewID() (int, bool) {
	if o.newID == nil {
		return 0, false
	}
	return *o.newID, true
}

// Displayed returns a copy of the current displayed set.
func (o *Orchestrator) Displayed() []catalog.Item {
	out := make([]catalog.Item, len(o.displayed))
	copy(out, o.displayed)
	return out
}

// Ratings exposes the rating store for the current generation.
func (o *Orchestrator) Ratings() *ratings.Store {
	return o.ratings
}

// Weights returns the weight vector sent with the next prediction.
func (o *Orchestrator) Weights() profile.Weights {
	return o.weights
}

// SetWeights replaces the weight vector.
func (o *Orchestrator) SetWeights(w profile.Weights) {
	o.weights = w
}

// SetRating assigns a rating to an item. It reports whether the value
// changed; a repeated identical rating is a no-op.
func (o *Orchestrator) SetRating(id int, r ratings.Rating) bool {
	return o.ratings.Set(id, r)
}

// LoadCatalog starts a fresh generation: fetch the full catalog, shuffle
// it for display and reset all ratings. Any open session is abandoned on
// success. On failure nothing is touched.
func (o *Orchestrator) LoadCatalog(ctx context.Context) {
	if o.inFlight {
		o.status("A submission is already in progress.")
		return
	}
	o.inFlight = true
	o.status("Loading image references...")

	go func() {
		items, err := o.backend.LoadImages(ctx)
		o.dispatch(func() { o.finishLoad(items, err) })
	}()
}

func (o *Orchestrator) finishLoad(items []catalog.Item, err error) {
	o.inFlight = false
	if err != nil {
		slog.Error("Catalog load failed", "error", err)
		o.status("Failed to load images: " + describe(err))
		return
	}

	o.catalog = catalog.New(items)
	o.displayed = o.catalog.Shuffled(o.rng)
	o.ratings.Reset(itemIDs(o.displayed))
	o.sessionID = ""
	o.newID = nil
	o.state = Idle

	slog.Info("Catalog loaded", "items", o.catalog.Len())
	o.notifyDisplayChanged()
	o.status(fmt.Sprintf("Loaded %d image references.", len(o.displayed)))
}

// SubmitRatings collects every rated item and requests a prediction.
// With nothing rated it aborts locally; with unrated items present it
// asks the operator to confirm first.
func (o *Orchestrator) SubmitRatings(ctx context.Context) {
	if o.inFlight {
		o.status("A submission is already in progress.")
		return
	}
	if o.state != Idle {
		o.status("A prediction round is already open; submit feedback to close it.")
		return
	}

	ids, targets := o.ratings.Rated()
	if len(ids) == 0 {
		o.status("No rated images to submit.")
		return
	}

	if unrated := o.ratings.Aggregate().Unrated; unrated > 0 && !o.confirm(unrated) {
		o.status("Submission cancelled.")
		return
	}

	req := api.PredictRequest{
		ImageIDs:  ids,
		Target:    targets,
		Embedding: o.weights.Embedding,
		Color:     o.weights.Color,
		Abstract:  o.weights.Abstract,
		Noisy:     o.weights.Noisy,
		Paint:     o.weights.Paint,
	}

	o.inFlight = true
	o.state = AwaitingPrediction
	o.status("Submitting ratings and requesting prediction...")
	slog.Info("Submitting ratings", "rated", len(ids))

	go func() {
		resp, err := o.backend.Predict(ctx, req)
		o.dispatch(func() { o.finishPredict(resp, err) })
	}()
}

func (o *Orchestrator) finishPredict(resp *api.PredictResponse, err error) {
	o.inFlight = false
	if err != nil {
		o.state = Idle
		slog.Error("Prediction failed", "error", err)
		o.status("Prediction failed: " + describe(err))
		return
	}

	o.displayed = o.catalog.Subset(resp.PredictedIDs)
	o.ratings.Reset(itemIDs(o.displayed))
	o.sessionID = resp.SessionID
	o.newID = resp.NewID
	o.state = RatingPredicted

	slog.Info("Prediction received", "session_id", resp.SessionID, "predicted", len(o.displayed))
	o.notifyDisplayChanged()
	o.status(fmt.Sprintf("Prediction received. Showing %d images; rate them and submit feedback.", len(o.displayed)))
}

// SubmitFeedback sends the operator's verdict on every displayed item
// and closes the round. Calling it without an open session is a local
// error; no network call is made.
func (o *Orchestrator) SubmitFeedback(ctx context.Context) {
	if o.inFlight {
		o.status("A submission is already in progress.")
		return
	}
	if o.state != RatingPredicted || o.sessionID == "" {
		o.status("No active prediction session to submit feedback for.")
		return
	}

	feedback := make(map[string]int, len(o.displayed))
	snapshot := make(map[int]ratings.Rating, len(o.displayed))
	for _, item := range o.displayed {
		r := o.ratings.Get(item.ID)
		feedback[fmt.Sprintf("%d", item.ID)] = int(r)
		snapshot[item.ID] = r
	}

	req := api.FeedbackRequest{
		PredictionSessionID: o.sessionID,
		Feedback:            feedback,
	}

	o.inFlight = true
	o.state = AwaitingFeedback
	o.status("Submitting feedback on predicted images...")
	slog.Info("Submitting feedback", "session_id", o.sessionID, "items", len(feedback))

	go func() {
		msg, err := o.backend.Feedback(ctx, req)
		o.dispatch(func() { o.finishFeedback(ctx, msg, snapshot, err) })
	}()
}

func (o *Orchestrator) finishFeedback(ctx context.Context, msg string, snapshot map[int]ratings.Rating, err error) {
	o.inFlight = false
	if err != nil {
		// Session stays open so the operator can retry.
		o.state = RatingPredicted
		slog.Error("Feedback submission failed", "error", err)
		o.status("Feedback submission failed: " + describe(err))
		return
	}

	closed := o.sessionID
	o.sessionID = ""
	o.newID = nil
	o.state = Idle

	slog.Info("Session closed", "session_id", closed)
	if o.onRoundClosed != nil {
		o.onRoundClosed(closed, snapshot, o.weights)
	}
	if msg == "" {
		msg = "Feedback submitted."
	}
	o.status(msg)

	// Close the loop with a fresh generation.
	o.LoadCatalog(ctx)
}

func (o *Orchestrator) notifyDisplayChanged() {
	if o.onDisplayChanged != nil {
		o.onDisplayChanged(o.Displayed())
	}
}

func itemIDs(items []catalog.Item) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// describe words an error for the status line, distinguishing malformed
// responses from transport failures.
func describe(err error) string {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		return "invalid server response: " + verr.Error()
	}
	var nerr *api.NetworkError
	if errors.As(err, &nerr) {
		return nerr.Error()
	}
	return err.Error()
}
