package catalog

import "math/rand"

// Item is a single image reference in the catalog. Items are immutable
// once created; a new generation replaces the whole catalog instead of
// patching items in place.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Catalog holds the full known item set for the current generation.
type Catalog struct {
	items []Item
	byID  map[int]Item
}

// New builds a catalog from the given items, preserving their order as
// the catalog's canonical insertion order.
func New(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, len(items)),
		byID:  make(map[int]Item, len(items)),
	}
	copy(c.items, items)
	for _, item := range c.items {
		c.byID[item.ID] = item
	}
	return c
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns a copy of all items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks up an item by id.
func (c *Catalog) Get(id int) (Item, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// Subset returns the items whose ids appear in the given list, in the
// catalog's own insertion order. Unknown ids are skipped.
func (c *Catalog) Subset(ids []int) []Item {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]Item, 0, len(want))
	for _, item := range c.items {
		if _, ok := want[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Shuffled returns all items in a random order for display. The catalog's
// own order is untouched; Subset still uses insertion order.
func (c *Catalog) Shuffled(rng *rand.Rand) []Item {
	out := c.Items()
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
