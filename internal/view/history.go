package view

import (
	"sync"

	"github.com/google/uuid"
)

// Traversal records how an entry was reached.
type Traversal int

const (
	Push Traversal = iota
	BackForward
)

type NavEntry struct {
	Key        uuid.UUID
	URL        string
	Traversal  Traversal
	Restorable bool
}

// History is a linear navigation stack with a movable current position.
// Pushing discards every entry ahead of the current one.
type History struct {
	mu      sync.Mutex
	entries []NavEntry
	index   int
}

func NewHistory() *History {
	return &History{index: -1}
}

func (h *History) Navigate(url string) NavEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := NavEntry{Key: uuid.New(), URL: url, Traversal: Push}
	h.entries = append(h.entries[:h.index+1], e)
	h.index = len(h.entries) - 1
	return e
}

func (h *History) Back() (NavEntry, bool) {
	return h.move(-1)
}

func (h *History) Forward() (NavEntry, bool) {
	return h.move(1)
}

func (h *History) move(delta int) (NavEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		return NavEntry{}, false
	}
	h.index = next
	e := h.entries[next]
	e.Traversal = BackForward
	return e, true
}

func (h *History) Current() (NavEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 {
		return NavEntry{}, false
	}
	return h.entries[h.index], true
}

// MarkRestorable flags the entry so that returning to it may reuse its
// snapshot.
func (h *History) MarkRestorable(key uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.entries {
		if h.entries[i].Key == key {
			h.entries[i].Restorable = true
			return
		}
	}
}
