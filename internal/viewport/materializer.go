// Package viewport implements lazy asset materialization: each displayed
// item gets an independent state machine that fetches and decodes its
// image only once the item comes within a pre-fetch margin of the
// visible window.
package viewport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	// Formats the backend is known to serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/curatorlab/gallerize/internal/catalog"
)

// State is the lifecycle of one item's asset.
type State int

const (
	// Pending: item registered, asset not requested yet.
	Pending State = iota
	// Loading: fetch issued, completion not yet dispatched.
	Loading
	// Loaded: decoded with non-zero dimensions. Terminal.
	Loaded
	// Failed: fetch or decode failure, or zero-dimension decode. Terminal.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "failed"
	}
}

// AssetFetcher retrieves raw image bytes for an asset path.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, path string) ([]byte, error)
}

// Materializer drives the asset lifecycle for a single item. It is owned
// by the event loop: OnVisible and the dispatched completion both run
// there, so no locking is needed. Fetches are not cancelled when the
// item leaves the window; they complete and transition normally.
type Materializer struct {
	item     catalog.Item
	fetcher  AssetFetcher
	dispatch func(func())

	state  State
	width  int
	height int
	err    error
}

// NewMaterializer registers an item in Pending state. Completions are
// delivered through dispatch so they run on the owning event loop.
func NewMaterializer(item catalog.Item, fetcher AssetFetcher, dispatch func(func())) *Materializer {
	return &Materializer{
		item:     item,
		fetcher:  fetcher,
		dispatch: dispatch,
		state:    Pending,
	}
}

// Item returns the item this materializer loads.
func (m *Materializer) Item() catalog.Item {
	return m.item
}

// State returns the current lifecycle state.
func (m *Materializer) State() State {
	return m.state
}

// Dimensions returns the decoded intrinsic dimensions. Only meaningful
// in Loaded state.
func (m *Materializer) Dimensions() (width, height int) {
	return m.width, m.height
}

// Err returns the failure reason in Failed state, nil otherwise.
func (m *Materializer) Err() error {
	return m.err
}

// Terminal reports whether the materializer reached Loaded or Failed.
// Terminal materializers are never revisited, even if the item leaves
// and re-enters the window.
func (m *Materializer) Terminal() bool {
	return m.state == Loaded || m.state == Failed
}

// OnVisible is the visibility-enter signal. The first signal moves the
// item from Pending to Loading and issues the fetch; later signals are
// no-ops.
func (m *Materializer) OnVisible(ctx context.Context) {
	if m.state != Pending {
		return
	}
	m.state = Loading
	slog.Debug("Loading asset", "id", m.item.ID, "path", m.item.Path)

	go func() {
		data, err := m.fetcher.FetchAsset(ctx, m.item.Path)
		m.dispatch(func() {
			m.complete(data, err)
		})
	}()
}

func (m *Materializer) complete(data []byte, err error) {
	if m.state != Loading {
		return
	}

	if err != nil {
		m.fail(fmt.Errorf("failed to fetch asset: %w", err))
		return
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		m.fail(fmt.Errorf("failed to decode asset: %w", err))
		return
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		m.fail(fmt.Errorf("asset decoded to zero dimensions (%dx%d)", cfg.Width, cfg.Height))
		return
	}

	m.state = Loaded
	m.width = cfg.Width
	m.height = cfg.Height
	slog.Debug("Asset loaded", "id", m.item.ID, "format", format, "width", cfg.Width, "height", cfg.Height)
}

func (m *Materializer) fail(err error) {
	m.state = Failed
	m.err = err
	slog.Warn("Asset failed", "id", m.item.ID, "path", m.item.Path, "error", err)
}
