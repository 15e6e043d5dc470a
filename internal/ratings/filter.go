package ratings

import (
	"fmt"
	"strings"

	"github.com/curatorlab/gallerize/internal/catalog"
)

// FilterMode selects which subsequence of the displayed set is visible.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterLiked
	FilterDisliked
	FilterUnrated
)

func (m FilterMode) String() string {
	switch m {
	case FilterLiked:
		return "liked"
	case FilterDisliked:
		return "disliked"
	case FilterUnrated:
		return "unrated"
	default:
		return "all"
	}
}

// ParseFilterMode parses an operator-supplied filter name.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return FilterAll, nil
	case "liked":
		return FilterLiked, nil
	case "disliked":
		return FilterDisliked, nil
	case "unrated":
		return FilterUnrated, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, liked, disliked or unrated)", s)
}

// Visible returns the subsequence of displayed whose rating matches the
// filter mode, preserving displayed order. It never mutates its inputs.
func Visible(displayed []catalog.Item, store *Store, mode FilterMode) []catalog.Item {
	out := make([]catalog.Item, 0, len(displayed))
	for _, item := range displayed {
		switch mode {
		case FilterAll:
			out = append(out, item)
		case FilterLiked:
			if store.Get(item.ID) == Like {
				out = append(out, item)
			}
		case FilterDisliked:
			if store.Get(item.ID) == Dislike {
				out = append(out, item)
			}
		case FilterUnrated:
			if store.Get(item.ID) == Unrated {
				out = append(out, item)
			}
		}
	}
	return out
}
