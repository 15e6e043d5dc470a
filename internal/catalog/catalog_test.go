package catalog

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestSubsetPreservesCatalogOrder(t *testing.T) {
	c := New([]Item{
		{ID: 1, Name: "a.jpg", Path: "/images/a.jpg"},
		{ID: 2, Name: "b.jpg", Path: "/images/b.jpg"},
		{ID: 3, Name: "c.jpg", Path: "/images/c.jpg"},
		{ID: 4, Name: "d.jpg", Path: "/images/d.jpg"},
	})

	tests := []struct {
		name string
		ids  []int
		want []int
	}{
		{name: "reversed request comes back in catalog order", ids: []int{4, 2, 1}, want: []int{1, 2, 4}},
		{name: "unknown ids are skipped", ids: []int{3, 99}, want: []int{3}},
		{name: "duplicates collapse", ids: []int{2, 2, 2}, want: []int{2}},
		{name: "empty request", ids: nil, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Subset(tt.ids)
			gotIDs := make([]int, len(got))
			for i, item := range got {
				gotIDs[i] = item.ID
			}
			if !reflect.DeepEqual(gotIDs, tt.want) {
				t.Errorf("Expected ids %v, got %v", tt.want, gotIDs)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	items := []Item{{ID: 1}, {ID: 2}}
	c := New(items)

	items[0].ID = 99

	if _, ok := c.Get(1); !ok {
		t.Error("Expected catalog to be unaffected by mutation of the input slice")
	}
}

func TestShuffledKeepsCatalogIntact(t *testing.T) {
	items := []Item{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	c := New(items)

	rng := rand.New(rand.NewSource(1))
	shuffled := c.Shuffled(rng)

	if len(shuffled) != c.Len() {
		t.Fatalf("Expected %d items, got %d", c.Len(), len(shuffled))
	}

	seen := make(map[int]bool, len(shuffled))
	for _, item := range shuffled {
		seen[item.ID] = true
	}
	for _, item := range items {
		if !seen[item.ID] {
			t.Errorf("Expected shuffle to keep item %d", item.ID)
		}
	}

	// The catalog's own order is canonical and must not move.
	got := c.Items()
	for i, item := range items {
		if got[i].ID != item.ID {
			t.Fatalf("Expected catalog order to be unchanged, got %v", got)
		}
	}
}

func TestGet(t *testing.T) {
	c := New([]Item{{ID: 7, Name: "x.png", Path: "/images/x.png"}})

	item, ok := c.Get(7)
	if !ok {
		t.Fatal("Expected to find item 7")
	}
	if item.Name != "x.png" {
		t.Errorf("Expected name x.png, got %s", item.Name)
	}

	if _, ok := c.Get(8); ok {
		t.Error("Expected id 8 to be absent")
	}
}
