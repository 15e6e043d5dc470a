package ratings

import "sort"

// Rating is the tri-state preference attached to an item. The numeric
// values are the wire values the backend expects.
type Rating int

const (
	Dislike Rating = 0
	Like    Rating = 1
	Unrated Rating = -1
)

func (r Rating) String() string {
	switch r {
	case Like:
		return "liked"
	case Dislike:
		return "disliked"
	default:
		return "unrated"
	}
}

// Counts aggregates the ratings of the current displayed set.
type Counts struct {
	Liked    int
	Disliked int
	Unrated  int
}

// Store maps item ids to ratings for the current generation. It is
// replaced wholesale (via Reset) whenever the displayed set changes
// identity; entries never leak across generations.
type Store struct {
	prefs map[int]Rating
}

func NewStore() *Store {
	return &Store{prefs: make(map[int]Rating)}
}

// Reset discards all prior entries and marks every given id Unrated.
func (s *Store) Reset(ids []int) {
	s.prefs = make(map[int]Rating, len(ids))
	for _, id := range ids {
		s.prefs[id] = Unrated
	}
}

// Set assigns a rating to an id, creating the entry if it does not
// exist. It reports whether the stored value actually changed, so
// callers can skip recomputing anything on a repeated identical rating.
func (s *Store) Set(id int, r Rating) bool {
	if prev, ok := s.prefs[id]; ok && prev == r {
		return false
	}
	s.prefs[id] = r
	return true
}

// Get returns the rating for an id, Unrated if unknown.
func (s *Store) Get(id int) Rating {
	if r, ok := s.prefs[id]; ok {
		return r
	}
	return Unrated
}

// Len returns the number of tracked ids.
func (s *Store) Len() int {
	return len(s.prefs)
}

// IDs returns all tracked ids in ascending order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.prefs))
	for id := range s.prefs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Aggregate counts the ratings over all tracked ids.
func (s *Store) Aggregate() Counts {
	var c Counts
	for _, r := range s.prefs {
		switch r {
		case Like:
			c.Liked++
		case Dislike:
			c.Disliked++
		default:
			c.Unrated++
		}
	}
	return c
}

// Rated returns the ids carrying a Like or Dislike, in ascending id
// order, with the parallel wire targets (1 for like, 0 for dislike).
func (s *Store) Rated() (ids []int, targets []int) {
	for id, r := range s.prefs {
		if r != Unrated {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	targets = make([]int, len(ids))
	for i, id := range ids {
		targets[i] = int(s.prefs[id])
	}
	return ids, targets
}
