package replay

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Collection is a client-side bookmark list that supports optimistic
// mutations: apply locally first, then either commit the server's row or
// roll back to the exact pre-mutation state. Items are always exposed in
// canonical order, timestamp ascending with creation time as tiebreak.
type Collection struct {
	mu    sync.Mutex
	items []Bookmark
}

// NewCollection builds a collection from a server listing.
func NewCollection(initial []Bookmark) *Collection {
	c := &Collection{items: append([]Bookmark(nil), initial...)}
	c.sortLocked()
	return c
}

// Items returns a sorted copy of the current state.
func (c *Collection) Items() []Bookmark {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Bookmark(nil), c.items...)
}

// Len returns the number of bookmarks.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Pending is one in-flight optimistic mutation. Exactly one of Commit or
// Rollback must be called.
type Pending struct {
	c        *Collection
	snapshot []Bookmark
	tempID   string
	done     bool
}

// TempID is the placeholder id of an optimistically added bookmark, empty
// for update/remove mutations.
func (p *Pending) TempID() string { return p.tempID }

// Rollback restores the collection to its exact pre-mutation state.
func (p *Pending) Rollback() {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	p.c.items = p.snapshot
}

// Commit reconciles the optimistic state with the server's row. For adds,
// the placeholder is replaced by the server bookmark; for updates the row is
// overwritten; a nil bookmark just finalizes the mutation (removes).
func (p *Pending) Commit(server *Bookmark) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	if server == nil {
		return
	}

	replaced := false
	for i := range p.c.items {
		if p.c.items[i].ID == p.tempID || p.c.items[i].ID == server.ID {
			p.c.items[i] = *server
			replaced = true
			break
		}
	}
	if !replaced {
		p.c.items = append(p.c.items, *server)
	}
	p.c.sortLocked()
}

// Add inserts a placeholder bookmark immediately. The placeholder carries a
// generated id until Commit swaps in the server row.
func (c *Collection) Add(sessionID string, timestampMs int64, label string, category *string) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &Pending{
		c:        c,
		snapshot: append([]Bookmark(nil), c.items...),
		tempID:   "tmp-" + uuid.New().String(),
	}
	c.items = append(c.items, Bookmark{
		ID:          p.tempID,
		SessionID:   sessionID,
		TimestampMs: timestampMs,
		Label:       label,
		Category:    category,
		CreatedAt:   time.Now(),
	})
	c.sortLocked()
	return p
}

// Update patches a bookmark's label/category locally.
func (c *Collection) Update(id string, label, category *string) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &Pending{c: c, snapshot: append([]Bookmark(nil), c.items...)}
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if label != nil {
			c.items[i].Label = *label
		}
		if category != nil {
			c.items[i].Category = category
		}
		break
	}
	return p
}

// Remove deletes a bookmark locally.
func (c *Collection) Remove(id string) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &Pending{c: c, snapshot: append([]Bookmark(nil), c.items...)}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	return p
}

// Replace swaps the whole collection for a fresh server listing.
func (c *Collection) Replace(items []Bookmark) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]Bookmark(nil), items...)
	c.sortLocked()
}

func (c *Collection) sortLocked() {
	sort.SliceStable(c.items, func(i, j int) bool {
		if c.items[i].TimestampMs != c.items[j].TimestampMs {
			return c.items[i].TimestampMs < c.items[j].TimestampMs
		}
		return c.items[i].CreatedAt.Before(c.items[j].CreatedAt)
	})
}
