package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/curatorlab/gallerize/internal/api"
	"github.com/curatorlab/gallerize/internal/catalog"
	"github.com/curatorlab/gallerize/internal/history"
	"github.com/curatorlab/gallerize/internal/profile"
	"github.com/curatorlab/gallerize/internal/ratings"
	"github.com/curatorlab/gallerize/internal/session"
	"github.com/curatorlab/gallerize/internal/viewport"
	"github.com/spf13/cobra"
)

const defaultAPIBase = "http://localhost:8000"

func newBrowseCmd() *cobra.Command {
	var (
		apiBase     string
		weightsPath string
		historyPath string
		windowSize  int
		margin      int
		weights     = profile.Default()
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and rate the image catalog interactively",
		Long: `Starts an interactive rating session against the prediction backend.

The catalog is loaded from GET /api/images and shown as a scrollable
window; images are fetched lazily as the window approaches them. Rate
items with like/dislike, then submit to receive a predicted subset,
rate that subset, and submit feedback to close the round.`,
		Example: `  # Browse against a local backend
  gallerize browse

  # Custom backend and weights profile
  gallerize browse --api http://art.example.com:8000 --weights profile.yaml

  # Record closed rounds for later export
  gallerize browse --history rounds.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("api") {
				if env := os.Getenv("GALLERIZE_API_BASE"); env != "" {
					apiBase = env
				}
			}

			if weightsPath != "" {
				loaded, err := profile.Load(weightsPath)
				if err != nil {
					return err
				}
				// Individual weight flags still override the profile file.
				applyWeightFlags(cmd, &loaded)
				weights = loaded
			}

			var recorder *history.Recorder
			if historyPath != "" {
				recorder = history.NewRecorder(historyPath)
			}

			b := &browser{
				client:   api.NewClient(apiBase),
				events:   make(chan func(), 256),
				lines:    make(chan string),
				out:      cmd.OutOrStdout(),
				recorder: recorder,
				mode:     ratings.FilterAll,
			}
			b.gallery = viewport.NewGallery(b.client, b.dispatch, windowSize, margin)

			return b.run(cmd.Context(), weights)
		},
	}

	cmd.Flags().StringVar(&apiBase, "api", defaultAPIBase, "Base URL of the prediction backend (or GALLERIZE_API_BASE)")
	cmd.Flags().StringVar(&weightsPath, "weights", "", "Path to a YAML weights profile")
	cmd.Flags().StringVar(&historyPath, "history", "", "Append closed rounds to this JSONL log")
	cmd.Flags().IntVar(&windowSize, "window", 12, "Number of items visible at once")
	cmd.Flags().IntVar(&margin, "margin", 4, "Pre-fetch distance beyond the window")
	cmd.Flags().Float64Var(&weights.Embedding, "embedding", weights.Embedding, "Embedding weight")
	cmd.Flags().Float64Var(&weights.Color, "color", weights.Color, "Color weight")
	cmd.Flags().Float64Var(&weights.Abstract, "abstract", weights.Abstract, "Abstract weight")
	cmd.Flags().Float64Var(&weights.Noisy, "noisy", weights.Noisy, "Noisy weight")
	cmd.Flags().Float64Var(&weights.Paint, "paint", weights.Paint, "Paint weight")

	return cmd
}

func applyWeightFlags(cmd *cobra.Command, w *profile.Weights) {
	for name, dst := range map[string]*float64{
		"embedding": &w.Embedding,
		"color":     &w.Color,
		"abstract":  &w.Abstract,
		"noisy":     &w.Noisy,
		"paint":     &w.Paint,
	} {
		if cmd.Flags().Changed(name) {
			if v, err := cmd.Flags().GetFloat64(name); err == nil {
				*dst = v
			}
		}
	}
}

// browser is the single-threaded event loop tying the orchestrator, the
// filter and the lazy-loading gallery together. All state mutations run
// on the loop goroutine: user commands and dispatched network
// completions are processed one at a time.
type browser struct {
	client   *api.Client
	gallery  *viewport.Gallery
	orch     *session.Orchestrator
	recorder *history.Recorder

	events chan func()
	lines  chan string
	out    io.Writer
	mode   ratings.FilterMode
}

func (b *browser) dispatch(f func()) {
	b.events <- f
}

func (b *browser) printf(format string, args ...any) {
	fmt.Fprintf(b.out, format+"\n", args...)
}

func (b *browser) run(ctx context.Context, weights profile.Weights) error {
	b.orch = session.New(session.Config{
		Backend:  b.client,
		Dispatch: b.dispatch,
		Weights:  weights,
		Status: func(msg string) {
			b.printf("%s", msg)
		},
		Confirm: func(unrated int) bool {
			b.printf("There are %d unrated images. Submit anyway? [y/N]", unrated)
			line, ok := <-b.lines
			if !ok {
				return false
			}
			answer := strings.ToLower(strings.TrimSpace(line))
			return answer == "y" || answer == "yes"
		},
		OnDisplayChanged: func(items []catalog.Item) {
			b.gallery.Reset(items)
			b.render(ctx)
		},
		OnRoundClosed: func(sessionID string, feedback map[int]ratings.Rating, w profile.Weights) {
			if b.recorder == nil {
				return
			}
			if err := b.recorder.Record(history.NewRound(sessionID, feedback, w)); err != nil {
				b.printf("Failed to record round: %v", err)
			}
		},
	})

	// Reader goroutine: the loop owns all state, stdin only feeds it.
	go func() {
		defer close(b.lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			b.lines <- scanner.Text()
		}
	}()

	b.orch.LoadCatalog(ctx)
	b.printf("Type 'help' for commands.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-b.events:
			f()
		case line, ok := <-b.lines:
			if !ok {
				return nil
			}
			if quit := b.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle processes one operator command. It reports whether the loop
// should exit.
func (b *browser) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd := fields[0]; cmd {
	case "quit", "exit":
		return true

	case "help":
		b.printHelp()

	case "show":
		b.render(ctx)

	case "like", "dislike", "clear":
		if len(fields) != 2 {
			b.printf("Usage: %s <id>", cmd)
			return false
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			b.printf("Invalid id %q", fields[1])
			return false
		}
		b.rate(ctx, id, cmd)

	case "filter":
		if len(fields) != 2 {
			b.printf("Current filter: %s", b.mode)
			return false
		}
		mode, err := ratings.ParseFilterMode(fields[1])
		if err != nil {
			b.printf("%v", err)
			return false
		}
		b.mode = mode
		b.render(ctx)

	case "scroll":
		if len(fields) != 2 {
			b.printf("Usage: scroll <offset>")
			return false
		}
		offset, err := strconv.Atoi(fields[1])
		if err != nil {
			b.printf("Invalid offset %q", fields[1])
			return false
		}
		b.gallery.Scroll(ctx, offset)
		b.render(ctx)

	case "stats":
		b.printStats()

	case "weights":
		w := b.orch.Weights()
		b.printf("embedding=%.2f color=%.2f abstract=%.2f noisy=%.2f paint=%.2f",
			w.Embedding, w.Color, w.Abstract, w.Noisy, w.Paint)

	case "submit":
		b.orch.SubmitRatings(ctx)

	case "feedback":
		b.orch.SubmitFeedback(ctx)

	case "reload":
		b.orch.LoadCatalog(ctx)

	default:
		b.printf("Unknown command %q; type 'help'", cmd)
	}

	return false
}

func (b *browser) rate(ctx context.Context, id int, verb string) {
	var r ratings.Rating
	switch verb {
	case "like":
		r = ratings.Like
	case "dislike":
		r = ratings.Dislike
	default:
		r = ratings.Unrated
	}

	if !b.orch.SetRating(id, r) {
		return
	}
	b.printStats()
	// A rating change can move the item out of the active filter.
	if b.mode != ratings.FilterAll {
		b.render(ctx)
	}
}

// render recomputes the visible sequence from the current filter and
// re-attaches the window; items already loaded or failed are not
// fetched again.
func (b *browser) render(ctx context.Context) {
	visible := ratings.Visible(b.orch.Displayed(), b.orch.Ratings(), b.mode)
	b.gallery.Render(ctx, visible)

	if len(visible) == 0 {
		b.printf("No images to display with filter %q.", b.mode)
		return
	}

	offset := b.gallery.Window().Offset()
	b.printf("Showing %d of %d images (filter: %s, window at %d)",
		len(b.gallery.Window().Visible()), len(visible), b.mode, offset)
	for i, m := range b.gallery.Window().Visible() {
		item := m.Item()
		marker := b.ratingMarker(item.ID)
		b.printf("  %3d. [%s] id=%d %s (%s)", offset+i+1, marker, item.ID, item.Name, m.State())
	}
}

func (b *browser) ratingMarker(id int) string {
	switch b.orch.Ratings().Get(id) {
	case ratings.Like:
		return "+"
	case ratings.Dislike:
		return "-"
	default:
		return " "
	}
}

func (b *browser) printStats() {
	counts := b.orch.Ratings().Aggregate()
	line := fmt.Sprintf("Images: %d | Liked: %d | Disliked: %d | Unrated: %d",
		len(b.orch.Displayed()), counts.Liked, counts.Disliked, counts.Unrated)
	if id, ok := b.orch.NewID(); ok {
		line += fmt.Sprintf(" | Latest new ID: %d", id)
	}
	if b.orch.SessionID() != "" {
		line += fmt.Sprintf(" | Session: %s", b.orch.SessionID())
	}
	states := b.gallery.StateCounts()
	line += fmt.Sprintf(" | Assets: %d loaded, %d failed",
		states[viewport.Loaded], states[viewport.Failed])
	b.printf("%s", line)
}

func (b *browser) printHelp() {
	b.printf(`Commands:
  show               redraw the current window
  scroll <offset>    move the window (images load as they come near)
  like <id>          rate an image up
  dislike <id>       rate an image down
  clear <id>         reset an image to unrated
  filter <mode>      all | liked | disliked | unrated
  stats              rating counts for the displayed set
  weights            show the prediction weight vector
  submit             submit ratings, receive the predicted subset
  feedback           submit feedback on the predicted subset
  reload             abandon the round and load a fresh catalog
  quit               exit`)
}
