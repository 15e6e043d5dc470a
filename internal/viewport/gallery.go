package viewport

import (
	"context"

	"github.com/curatorlab/gallerize/internal/catalog"
)

// Gallery owns the materializers of one generation and the window over
// the currently visible sequence. Re-rendering (after a filter change)
// reuses existing materializers so items already Loaded or Failed are
// never fetched again; a generation change drops them all.
type Gallery struct {
	fetcher  AssetFetcher
	dispatch func(func())
	window   *Window
	mats     map[int]*Materializer
}

// NewGallery creates a gallery with the given window geometry.
func NewGallery(fetcher AssetFetcher, dispatch func(func()), windowSize, margin int) *Gallery {
	return &Gallery{
		fetcher:  fetcher,
		dispatch: dispatch,
		window:   NewWindow(windowSize, margin),
		mats:     make(map[int]*Materializer),
	}
}

// Reset starts a new generation: every materializer is discarded and
// the given items are registered Pending.
func (g *Gallery) Reset(items []catalog.Item) {
	g.mats = make(map[int]*Materializer, len(items))
	for _, item := range items {
		g.mats[item.ID] = NewMaterializer(item, g.fetcher, g.dispatch)
	}
}

// Render rebuilds the visible sequence from the given items, attaching
// the existing materializer for each and creating one for items not yet
// registered, then re-signals the window.
func (g *Gallery) Render(ctx context.Context, visible []catalog.Item) {
	seq := make([]*Materializer, 0, len(visible))
	for _, item := range visible {
		m, ok := g.mats[item.ID]
		if !ok {
			m = NewMaterializer(item, g.fetcher, g.dispatch)
			g.mats[item.ID] = m
		}
		seq = append(seq, m)
	}
	g.window.SetSequence(ctx, seq)
}

// Scroll moves the window over the visible sequence.
func (g *Gallery) Scroll(ctx context.Context, offset int) {
	g.window.Scroll(ctx, offset)
}

// Window exposes the gallery's window.
func (g *Gallery) Window() *Window {
	return g.window
}

// Materializer returns the materializer for an item id, nil if the item
// is not registered in this generation.
func (g *Gallery) Materializer(id int) *Materializer {
	return g.mats[id]
}

// StateCounts tallies materializer states across the generation, for
// the status line.
func (g *Gallery) StateCounts() map[State]int {
	counts := make(map[State]int, 4)
	for _, m := range g.mats {
		counts[m.State()]++
	}
	return counts
}
