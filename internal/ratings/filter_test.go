package ratings

import (
	"reflect"
	"testing"

	"github.com/curatorlab/gallerize/internal/catalog"
)

func testItems(ids ...int) []catalog.Item {
	items := make([]catalog.Item, len(ids))
	for i, id := range ids {
		items[i] = catalog.Item{ID: id}
	}
	return items
}

func TestVisible(t *testing.T) {
	displayed := testItems(5, 1, 3, 2, 4)
	s := NewStore()
	s.Reset([]int{5, 1, 3, 2, 4})
	s.Set(1, Like)
	s.Set(3, Like)
	s.Set(2, Dislike)

	tests := []struct {
		name string
		mode FilterMode
		want []catalog.Item
	}{
		{name: "all keeps order and membership", mode: FilterAll, want: testItems(5, 1, 3, 2, 4)},
		{name: "liked subsequence in displayed order", mode: FilterLiked, want: testItems(1, 3)},
		{name: "disliked subsequence", mode: FilterDisliked, want: testItems(2)},
		{name: "unrated subsequence", mode: FilterUnrated, want: testItems(5, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(displayed, s, tt.mode)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVisibleDoesNotMutateInputs(t *testing.T) {
	displayed := testItems(1, 2, 3)
	s := NewStore()
	s.Reset([]int{1, 2, 3})
	s.Set(2, Like)

	before := make([]catalog.Item, len(displayed))
	copy(before, displayed)

	_ = Visible(displayed, s, FilterLiked)

	if !reflect.DeepEqual(displayed, before) {
		t.Error("Expected displayed set to be unchanged")
	}
	if s.Get(1) != Unrated || s.Get(2) != Like || s.Get(3) != Unrated {
		t.Error("Expected rating store to be unchanged")
	}
}

func TestVisibleAllIgnoresRatings(t *testing.T) {
	displayed := testItems(3, 1, 2)
	s := NewStore()
	s.Reset([]int{3, 1, 2})
	s.Set(3, Dislike)
	s.Set(1, Like)

	got := Visible(displayed, s, FilterAll)
	if !reflect.DeepEqual(got, displayed) {
		t.Errorf("Expected all-mode to return the displayed set unchanged, got %v", got)
	}
}

func TestParseFilterMode(t *testing.T) {
	tests := []struct {
		in      string
		want    FilterMode
		wantErr bool
	}{
		{in: "all", want: FilterAll},
		{in: "Liked", want: FilterLiked},
		{in: "disliked", want: FilterDisliked},
		{in: "unrated", want: FilterUnrated},
		{in: "", want: FilterAll},
		{in: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilterMode(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
