package view

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/slashboard/internal/model"
)

type fakeLoader struct {
	mu      sync.Mutex
	calls   []LoadRequest
	gates   map[string]chan struct{}
	respond func(LoadRequest) (model.Page, error)
}

func (l *fakeLoader) Load(ctx context.Context, req LoadRequest) (model.Page, error) {
	l.mu.Lock()
	l.calls = append(l.calls, req)
	gate := l.gates[req.URL]
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return l.respond(req)
}

func (l *fakeLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *fakeLoader) lastCall() LoadRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[len(l.calls)-1]
}

// pagedPosts serves posts 10..1 five at a time, by cursor or by offset.
func pagedPosts(req LoadRequest) (model.Page, error) {
	start := int64(10)
	if req.Cursor > 0 {
		start = req.Cursor - 1
	} else if req.Offset > 0 {
		start = 10 - int64(req.Offset)
	}
	var items []model.Item
	for id := start; id > 0 && len(items) < 5; id-- {
		items = append(items, post(id))
	}
	return model.Page{Items: items, EndOfItems: start <= 5}, nil
}

func newTestSession(t *testing.T, loader Loader) *Session {
	t.Helper()
	s, err := NewSession(loader, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func mountAndWait(c *Controller, entry NavEntry, viewer model.ViewerID) {
	c.Mount(entry, viewer)
	c.Wait()
}

func TestMountLoadsAndSnapshots(t *testing.T) {
	loader := &fakeLoader{respond: pagedPosts}
	session := newTestSession(t, loader)
	var states []State
	c := NewController(session, WithOnChange(func(s State) { states = append(states, s) }))

	entry := session.History.Navigate("/api/boards/golang/posts")
	mountAndWait(c, entry, 7)

	assert.Equal(t, Ready, c.State())
	assert.Equal(t, []int64{10, 9, 8, 7, 6}, topIDs(c.Store()))
	assert.Equal(t, []State{Loading, Ready}, states)

	snap, ok := session.Cache.Get(entry.URL, 7)
	require.True(t, ok)
	assert.Equal(t, entry.Key, snap.EntryKey)
	cur, _ := session.History.Current()
	assert.True(t, cur.Restorable)
}

func TestBackRestoresSnapshot(t *testing.T) {
	loader := &fakeLoader{respond: pagedPosts}
	session := newTestSession(t, loader)
	c := NewController(session)

	a := session.History.Navigate("/api/boards/golang/posts")
	mountAndWait(c, a, 7)
	require.NoError(t, c.LoadMore(context.Background()))
	c.SetScroll(480)
	saved := c.Store()
	c.Unmount()

	b := session.History.Navigate("/api/boards/rust/posts")
	mountAndWait(c, b, 7)
	calls := loader.callCount()

	back, ok := session.History.Back()
	require.True(t, ok)
	assert.Equal(t, BackForward, back.Traversal)
	assert.True(t, back.Restorable)

	var states []State
	c.onChange = func(s State) { states = append(states, s) }
	c.Mount(back, 7)

	assert.Equal(t, Ready, c.State())
	assert.Same(t, saved, c.Store())
	assert.Equal(t, 480, c.Scroll())
	assert.Equal(t, calls, loader.callCount(), "restoration must not fetch")
	assert.Equal(t, []State{Restoring, Ready}, states)
}

func TestRestorationGating(t *testing.T) {
	tests := []struct {
		name   string
		entry  func(h *History, loaded NavEntry) NavEntry
		viewer model.ViewerID
	}{
		{
			name: "push to the same url",
			entry: func(h *History, loaded NavEntry) NavEntry {
				return h.Navigate(loaded.URL)
			},
			viewer: 7,
		},
		{
			name: "back with another viewer",
			entry: func(h *History, loaded NavEntry) NavEntry {
				e, _ := h.Back()
				return e
			},
			viewer: 8,
		},
		{
			name: "back to an entry never marked restorable",
			entry: func(h *History, loaded NavEntry) NavEntry {
				e, _ := h.Back()
				e.Restorable = false
				return e
			},
			viewer: 7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{respond: pagedPosts}
			session := newTestSession(t, loader)
			c := NewController(session)

			loaded := session.History.Navigate("/api/boards/golang/posts")
			mountAndWait(c, loaded, 7)
			c.Unmount()
			mountAndWait(c, session.History.Navigate("/api/boards/rust/posts"), 7)
			calls := loader.callCount()

			entry := tt.entry(session.History, loaded)
			var states []State
			c.onChange = func(s State) { states = append(states, s) }
			mountAndWait(c, entry, tt.viewer)

			assert.Equal(t, calls+1, loader.callCount())
			assert.Equal(t, []State{Loading, Ready}, states)
		})
	}
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	loader := &fakeLoader{
		gates: map[string]chan struct{}{"/slow": gate},
		respond: func(req LoadRequest) (model.Page, error) {
			if req.URL == "/slow" {
				return page(true, post(1)), nil
			}
			return page(true, post(2)), nil
		},
	}
	session := newTestSession(t, loader)
	c := NewController(session)

	c.Mount(session.History.Navigate("/slow"), 7)
	c.Update(session.History.Navigate("/fast"), 7)

	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, time.Millisecond)
	close(gate)
	c.Wait()

	assert.Equal(t, Ready, c.State())
	assert.Equal(t, []int64{2}, topIDs(c.Store()))
	assert.Equal(t, "/fast", c.Entry().URL)
	_, ok := session.Cache.Get("/slow", 7)
	assert.False(t, ok)
}

func TestUpdateWithSameDepsIsNoop(t *testing.T) {
	loader := &fakeLoader{respond: pagedPosts}
	session := newTestSession(t, loader)
	c := NewController(session)

	entry := session.History.Navigate("/api/boards/golang/posts")
	mountAndWait(c, entry, 7)
	c.Update(entry, 7)
	c.Wait()
	assert.Equal(t, 1, loader.callCount())

	c.Update(entry, 9)
	c.Wait()
	assert.Equal(t, 2, loader.callCount())
}

func TestLoadMore(t *testing.T) {
	t.Run("keyset", func(t *testing.T) {
		loader := &fakeLoader{respond: pagedPosts}
		c := NewController(newTestSession(t, loader))
		mountAndWait(c, NavEntry{URL: "/api/boards/golang/posts?sort=new"}, 0)

		require.NoError(t, c.LoadMore(context.Background()))
		assert.Equal(t, int64(6), loader.lastCall().Cursor)
		assert.Equal(t, []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, topIDs(c.Store()))
		assert.True(t, c.Store().EndOfItems())

		require.NoError(t, c.LoadMore(context.Background()))
		assert.Equal(t, 2, loader.callCount(), "an exhausted collection is not fetched again")
	})

	t.Run("offset", func(t *testing.T) {
		loader := &fakeLoader{respond: pagedPosts}
		c := NewController(newTestSession(t, loader))
		mountAndWait(c, NavEntry{URL: "/api/boards/golang/posts?sort=top"}, 0)

		require.NoError(t, c.LoadMore(context.Background()))
		assert.Equal(t, 5, loader.lastCall().Offset)
		assert.Zero(t, loader.lastCall().Cursor)
	})

	t.Run("failure keeps the store", func(t *testing.T) {
		boom := errors.New("503")
		loader := &fakeLoader{respond: pagedPosts}
		c := NewController(newTestSession(t, loader))
		mountAndWait(c, NavEntry{URL: "/api/boards/golang/posts"}, 0)
		before := c.Store()

		loader.respond = func(LoadRequest) (model.Page, error) { return model.Page{}, boom }
		err := c.LoadMore(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, c.Err(), boom)
		assert.Same(t, before, c.Store())
	})

	t.Run("not ready", func(t *testing.T) {
		c := NewController(newTestSession(t, &fakeLoader{respond: pagedPosts}))
		assert.ErrorIs(t, c.LoadMore(context.Background()), ErrNotReady)
	})
}

func TestShowMoreReplies(t *testing.T) {
	loader := &fakeLoader{respond: func(req LoadRequest) (model.Page, error) {
		if req.ParentID != nil {
			return page(true, reply(3, *req.ParentID)), nil
		}
		root := reply(1, 100, reply(2, 1))
		root.HasMoreChildren = true
		return page(true, root), nil
	}}
	c := NewController(newTestSession(t, loader))
	mountAndWait(c, NavEntry{URL: "/api/posts/100/comments"}, 0)

	require.NoError(t, c.ShowMoreReplies(context.Background(), 1))
	req := loader.lastCall()
	require.NotNil(t, req.ParentID)
	assert.Equal(t, int64(1), *req.ParentID)
	assert.Equal(t, int64(2), req.Cursor)

	root, ok := c.Store().Get(1)
	require.True(t, ok)
	require.Len(t, root.Children, 2)
	assert.Equal(t, int64(3), root.Children[1].ID)
	assert.False(t, root.HasMoreChildren)
}

func TestApplyAndInsertUpdateSnapshot(t *testing.T) {
	loader := &fakeLoader{respond: pagedPosts}
	session := newTestSession(t, loader)
	c := NewController(session)
	entry := session.History.Navigate("/api/boards/golang/posts")
	mountAndWait(c, entry, 7)

	score, up := 42, model.Up
	c.Apply(model.Patch{ID: 10, Score: &score, Vote: &up})
	c.Insert(post(11))

	got, _ := c.Store().Get(10)
	assert.Equal(t, 42, got.Score)
	assert.Equal(t, model.Up, got.Vote)
	assert.Equal(t, int64(11), topIDs(c.Store())[0])

	snap, ok := session.Cache.Get(entry.URL, 7)
	require.True(t, ok)
	assert.Same(t, c.Store(), snap.Store)
}

func TestHistoryNavigation(t *testing.T) {
	h := NewHistory()
	_, ok := h.Back()
	assert.False(t, ok)

	a := h.Navigate("/a")
	h.Navigate("/b")
	back, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, a.Key, back.Key)

	h.Navigate("/c")
	_, ok = h.Forward()
	assert.False(t, ok, "navigating drops forward entries")

	h.MarkRestorable(a.Key)
	first, _ := h.Back()
	assert.True(t, first.Restorable)
	assert.Equal(t, BackForward, first.Traversal)
}
