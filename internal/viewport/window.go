package viewport

import "context"

// Window is a push-based visibility signal source over an ordered
// sequence of materializers. It stands in for a browser viewport: items
// inside the window, plus a margin on both sides, receive the
// visibility-enter signal. The margin is the pre-fetch distance that
// masks load latency.
type Window struct {
	size   int
	margin int
	offset int
	seq    []*Materializer
}

// NewWindow creates a window showing size items at a time, signalling
// items up to margin positions outside it.
func NewWindow(size, margin int) *Window {
	if size < 1 {
		size = 1
	}
	if margin < 0 {
		margin = 0
	}
	return &Window{size: size, margin: margin}
}

// SetSequence replaces the visible sequence after a re-render (filter
// change or generation change) and re-signals the current window.
// Terminal materializers in the new sequence are left alone.
func (w *Window) SetSequence(ctx context.Context, seq []*Materializer) {
	w.seq = seq
	if w.offset > len(seq)-1 {
		w.offset = 0
	}
	w.notify(ctx)
}

// Scroll moves the window to the given offset and signals any items
// that entered it.
func (w *Window) Scroll(ctx context.Context, offset int) {
	if offset < 0 {
		offset = 0
	}
	if max := len(w.seq) - w.size; offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	w.offset = offset
	w.notify(ctx)
}

// Offset returns the current window position.
func (w *Window) Offset() int {
	return w.offset
}

// Visible returns the materializers inside the window proper, without
// the margin.
func (w *Window) Visible() []*Materializer {
	lo, hi := w.offset, w.offset+w.size
	if hi > len(w.seq) {
		hi = len(w.seq)
	}
	if lo > hi {
		lo = hi
	}
	return w.seq[lo:hi]
}

func (w *Window) notify(ctx context.Context) {
	lo := w.offset - w.margin
	if lo < 0 {
		lo = 0
	}
	hi := w.offset + w.size + w.margin
	if hi > len(w.seq) {
		hi = len(w.seq)
	}
	for i := lo; i < hi; i++ {
		w.seq[i].OnVisible(ctx)
	}
}
