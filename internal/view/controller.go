package view

import (
	"context"
	"errors"
	"sync"

	"github.com/alphabot-ai/slashboard/internal/model"
)

type State int

const (
	Fresh State = iota
	Loading
	Ready
	Restoring
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Restoring:
		return "restoring"
	}
	return "unknown"
}

// ErrNotReady is returned by operations that need a loaded page.
var ErrNotReady = errors.New("view not ready")

type ControllerOption func(*Controller)

// WithOnChange registers a callback invoked after every state transition,
// outside the controller lock.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// Controller drives one list view: it decides between restoring a snapshot
// and fetching, and keeps the store current as pages and patches arrive.
type Controller struct {
	session  *Session
	onChange func(State)

	mu      sync.Mutex
	state   State
	entry   NavEntry
	viewer  model.ViewerID
	store   *Store
	scroll  int
	err     error
	gen     uint64
	cancel  context.CancelFunc
	pending []State

	loads sync.WaitGroup
}

func NewController(session *Session, opts ...ControllerOption) *Controller {
	c := &Controller{session: session, store: NewStore(true)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount shows entry for viewer. The snapshot is reused only when the entry
// was reached by back/forward, was loaded before, and belongs to the same
// viewer; every other case fetches.
func (c *Controller) Mount(entry NavEntry, viewer model.ViewerID) {
	c.mu.Lock()
	c.entry = entry
	c.viewer = viewer
	c.err = nil
	if snap, ok := c.restorable(); ok {
		c.supersede()
		c.transition(Restoring)
		c.store = snap.Store
		c.scroll = snap.Scroll
		c.transition(Ready)
		c.session.Logger.Debug("restored snapshot", "url", entry.URL, "items", snap.Store.Len())
		c.unlockAndNotify()
		return
	}
	c.scroll = 0
	c.startLoad()
	c.unlockAndNotify()
}

// Update reacts to a change of URL or viewer by fetching from scratch.
// Unchanged dependencies are a no-op.
func (c *Controller) Update(entry NavEntry, viewer model.ViewerID) {
	c.mu.Lock()
	if entry.URL == c.entry.URL && viewer == c.viewer && c.state != Fresh {
		c.mu.Unlock()
		return
	}
	c.entry = entry
	c.viewer = viewer
	c.err = nil
	c.scroll = 0
	c.startLoad()
	c.unlockAndNotify()
}

func (c *Controller) restorable() (Snapshot, bool) {
	if c.entry.Traversal != BackForward || !c.entry.Restorable {
		return Snapshot{}, false
	}
	snap, ok := c.session.Cache.Get(c.entry.URL, c.viewer)
	if !ok || snap.Viewer != c.viewer || snap.Store == nil {
		return Snapshot{}, false
	}
	return snap, true
}

// supersede invalidates any in-flight load. Callers hold c.mu.
func (c *Controller) supersede() uint64 {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	return c.gen
}

// startLoad fetches the first page of the current entry. Callers hold c.mu.
func (c *Controller) startLoad() {
	gen := c.supersede()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.store = NewStore(keysetURL(c.entry.URL))
	c.transition(Loading)

	req := LoadRequest{URL: c.entry.URL}
	c.loads.Add(1)
	go func() {
		defer c.loads.Done()
		page, err := c.session.Loader.Load(ctx, req)
		c.finishLoad(gen, page, err)
	}()
}

func (c *Controller) finishLoad(gen uint64, page model.Page, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.session.Logger.Debug("discarded superseded load", "generation", gen)
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if err != nil {
		c.err = err
		c.transition(Ready)
		c.session.Logger.Warn("load failed", "url", c.entry.URL, "err", err)
		c.unlockAndNotify()
		return
	}
	c.store = c.store.Replace(page)
	c.transition(Ready)
	c.save()
	c.session.History.MarkRestorable(c.entry.Key)
	c.entry.Restorable = true
	c.unlockAndNotify()
}

// LoadMore appends the next page at the bottom. It does nothing once the
// collection is exhausted.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return ErrNotReady
	}
	if c.store.EndOfItems() {
		c.mu.Unlock()
		return nil
	}
	gen := c.gen
	req := LoadRequest{URL: c.entry.URL}
	if c.store.Keyset() {
		req.Cursor = c.store.Cursor()
	} else {
		req.Offset = c.store.Offset()
	}
	c.mu.Unlock()

	page, err := c.session.Loader.Load(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	if err != nil {
		c.err = err
		return err
	}
	c.err = nil
	c.store = c.store.Merge(page, Append)
	c.save()
	return nil
}

// ShowMoreReplies loads the next page of replies under parentID.
func (c *Controller) ShowMoreReplies(ctx context.Context, parentID int64) error {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return ErrNotReady
	}
	if !c.store.Has(parentID) {
		c.mu.Unlock()
		return nil
	}
	gen := c.gen
	cursor, offset := c.store.ChildWatermarks(parentID)
	req := LoadRequest{URL: c.entry.URL, ParentID: &parentID}
	if c.store.Keyset() {
		req.Cursor = cursor
	} else {
		req.Offset = offset
	}
	c.mu.Unlock()

	page, err := c.session.Loader.Load(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	if err != nil {
		c.err = err
		return err
	}
	c.store = c.store.AppendChildren(parentID, page, Append)
	c.save()
	return nil
}

// Apply folds a mutation result into the store.
func (c *Controller) Apply(p model.Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = c.store.Patch(p)
	c.save()
}

// Insert shows a freshly created item at the top of its level.
func (c *Controller) Insert(item model.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = c.store.Insert(item, Prepend)
	c.save()
}

func (c *Controller) SetScroll(y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll = y
}

// Unmount saves the latest snapshot and abandons any in-flight load.
func (c *Controller) Unmount() {
	c.mu.Lock()
	c.save()
	c.supersede()
	c.transition(Fresh)
	c.unlockAndNotify()
}

// Wait blocks until every load started so far has returned.
func (c *Controller) Wait() {
	c.loads.Wait()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Store() *Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

func (c *Controller) Scroll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Entry() NavEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry
}

// save records a snapshot of the ready view. Callers hold c.mu.
func (c *Controller) save() {
	if c.state != Ready {
		return
	}
	c.session.Cache.Put(Snapshot{
		EntryKey: c.entry.Key,
		URL:      c.entry.URL,
		Viewer:   c.viewer,
		Store:    c.store,
		Scroll:   c.scroll,
	})
}

func (c *Controller) transition(s State) {
	c.state = s
	c.pending = append(c.pending, s)
}

func (c *Controller) unlockAndNotify() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	if c.onChange == nil {
		return
	}
	for _, s := range pending {
		c.onChange(s)
	}
}
