package view

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alphabot-ai/slashboard/internal/model"
)

const DefaultSnapshotEntries = 64

type Snapshot struct {
	EntryKey uuid.UUID
	URL      string
	Viewer   model.ViewerID
	Store    *Store
	Scroll   int
}

type snapshotKey struct {
	url    string
	viewer model.ViewerID
}

// SnapshotCache holds the most recently used snapshots, keyed by URL and
// viewer. Stores are immutable so snapshots are shared, not copied.
type SnapshotCache struct {
	entries *lru.Cache[snapshotKey, Snapshot]
}

func NewSnapshotCache(size int) (*SnapshotCache, error) {
	if size <= 0 {
		size = DefaultSnapshotEntries
	}
	c, err := lru.New[snapshotKey, Snapshot](size)
	if err != nil {
		return nil, err
	}
	return &SnapshotCache{entries: c}, nil
}

func (c *SnapshotCache) Put(s Snapshot) {
	c.entries.Add(snapshotKey{url: s.URL, viewer: s.Viewer}, s)
}

func (c *SnapshotCache) Get(url string, viewer model.ViewerID) (Snapshot, bool) {
	return c.entries.Get(snapshotKey{url: url, viewer: viewer})
}

// Purge drops every snapshot, e.g. after the viewer signs out.
func (c *SnapshotCache) Purge() {
	c.entries.Purge()
}

func (c *SnapshotCache) Len() int {
	return c.entries.Len()
}
