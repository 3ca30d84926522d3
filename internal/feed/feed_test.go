package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

// memSource is an in-memory Source that records every storage call.
type memSource struct {
	mu        sync.Mutex
	items     []model.Item
	votes     map[int64]model.Direction
	listErr   error
	childErr  error
	queries   []store.ItemQuery
	voteCalls [][]int64
}

func (m *memSource) ListItems(ctx context.Context, q store.ItemQuery) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.listErr != nil {
		return nil, m.listErr
	}
	if q.Parent != nil && m.childErr != nil {
		return nil, m.childErr
	}

	var level []model.Item
	for _, it := range m.items {
		if !sameParent(it.ParentID, q.Parent) {
			continue
		}
		if !q.Since.IsZero() && it.CreatedAt.Before(q.Since) {
			continue
		}
		if q.Cursor > 0 && it.ID >= q.Cursor {
			continue
		}
		level = append(level, it)
	}
	sort.Slice(level, func(i, j int) bool {
		if q.Sort == model.SortTop && level[i].Score != level[j].Score {
			return level[i].Score > level[j].Score
		}
		return level[i].ID > level[j].ID
	})
	if q.Offset >= len(level) {
		return []model.Item{}, nil
	}
	level = level[q.Offset:]
	if len(level) > q.Limit {
		level = level[:q.Limit]
	}
	out := make([]model.Item, len(level))
	for i, it := range level {
		it.HasMoreChildren = m.hasChildren(it.ID)
		out[i] = it
	}
	return out, nil
}

func (m *memSource) hasChildren(id int64) bool {
	for _, it := range m.items {
		if it.ParentID != nil && *it.ParentID == id {
			return true
		}
	}
	return false
}

func (m *memSource) VotesFor(ctx context.Context, accountID int64, ids []int64) (map[int64]model.Direction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voteCalls = append(m.voteCalls, append([]int64(nil), ids...))
	out := map[int64]model.Direction{}
	for _, id := range ids {
		if d, ok := m.votes[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func comment(id int64, parent int64) model.Item {
	it := model.Item{
		ID:        id,
		Kind:      model.KindComment,
		CreatedAt: time.Unix(1_700_000_000+id, 0),
		Content:   model.CommentContent{PostID: 1},
	}
	if parent != 0 {
		it.ParentID = &parent
	}
	return it
}

func flatSource(n int) *memSource {
	src := &memSource{}
	for i := 1; i <= n; i++ {
		src.items = append(src.items, model.Item{ID: int64(i), Kind: model.KindPost, Score: i % 3})
	}
	return src
}

func pageIDs(p model.Page) []int64 {
	var ids []int64
	for _, it := range p.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

var board = model.CollectionRef{Kind: model.CollectionBoard, Slug: "golang"}
var thread = model.CollectionRef{Kind: model.CollectionThread, ID: 1}

func TestFetchKeysetScenario(t *testing.T) {
	src := flatSource(10)
	f := NewFetcher(src, Limits{})
	ctx := context.Background()

	first, err := f.Fetch(ctx, Request{Collection: board, Sort: model.SortNew, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 9, 8, 7, 6}, pageIDs(first))
	assert.False(t, first.EndOfItems)

	second, err := f.Fetch(ctx, Request{Collection: board, Sort: model.SortNew, Cursor: 6, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, pageIDs(second))
	assert.True(t, second.EndOfItems)

	for _, q := range src.queries {
		assert.Equal(t, 6, q.Limit, "storage is always asked for one extra row")
	}
}

func TestFetchSentinelExactness(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		limit  int
		want   int
		wantEO bool
	}{
		{"exactly limit", 5, 5, 5, true},
		{"limit plus one", 6, 5, 5, false},
		{"fewer", 3, 5, 3, true},
		{"empty", 0, 5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(flatSource(tt.rows), Limits{})
			page, err := f.Fetch(context.Background(), Request{Collection: board, Limit: tt.limit})
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.want)
			assert.Equal(t, tt.wantEO, page.EndOfItems)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestFetchCoercesInputs(t *testing.T) {
	src := flatSource(3)
	f := NewFetcher(src, Limits{Default: 10, Max: 20})
	ctx := context.Background()

	_, err := f.Fetch(ctx, Request{Collection: board, Sort: "bogus", Window: "fortnight", Content: "videos", Limit: 0})
	require.NoError(t, err)
	_, err = f.Fetch(ctx, Request{Collection: board, Limit: 1000})
	require.NoError(t, err)
	_, err = f.Fetch(ctx, Request{Collection: board, Limit: -4})
	require.NoError(t, err)

	require.Len(t, src.queries, 3)
	assert.Equal(t, model.SortNew, src.queries[0].Sort)
	assert.True(t, src.queries[0].Since.IsZero())
	assert.Equal(t, model.ContentAll, src.queries[0].Content)
	assert.Equal(t, 11, src.queries[0].Limit)
	assert.Equal(t, 21, src.queries[1].Limit)
	assert.Equal(t, 11, src.queries[2].Limit)
}

func TestFetchPaginationMode(t *testing.T) {
	src := flatSource(10)
	f := NewFetcher(src, Limits{})
	ctx := context.Background()

	_, err := f.Fetch(ctx, Request{Collection: board, Sort: model.SortTop, Cursor: 7, Offset: 4, Limit: 3})
	require.NoError(t, err)
	_, err = f.Fetch(ctx, Request{Collection: board, Sort: model.SortNew, Cursor: 7, Offset: 4, Limit: 3})
	require.NoError(t, err)

	assert.Zero(t, src.queries[0].Cursor)
	assert.Equal(t, 4, src.queries[0].Offset)
	assert.Equal(t, int64(7), src.queries[1].Cursor)
	assert.Zero(t, src.queries[1].Offset)
}

func TestFetchWindowOnlyBoundsTopLevel(t *testing.T) {
	src := &memSource{items: []model.Item{comment(1, 0), comment(2, 1)}}
	f := NewFetcher(src, Limits{})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := f.Fetch(ctx, Request{Collection: board, Window: model.WindowDay})
	require.NoError(t, err)
	parent := int64(1)
	_, err = f.Fetch(ctx, Request{Collection: thread, Parent: &parent, Window: model.WindowDay})
	require.NoError(t, err)

	assert.Equal(t, now.Add(-24*time.Hour), src.queries[0].Since)
	assert.True(t, src.queries[1].Since.IsZero())
}

func TestFetchWrapsStorageErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	f := NewFetcher(&memSource{listErr: cause}, Limits{})

	page, err := f.Fetch(context.Background(), Request{Collection: board})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, page.Items)
}

func TestAsRetrievalKeepsNotFound(t *testing.T) {
	assert.NoError(t, AsRetrieval(nil))
	assert.ErrorIs(t, AsRetrieval(store.ErrNotFound), store.ErrNotFound)
	assert.NotErrorIs(t, AsRetrieval(store.ErrNotFound), ErrRetrieval)

	err := AsRetrieval(errors.New("database is closed"))
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.Equal(t, err, AsRetrieval(err), "already classified errors pass through")
}

func TestResolveAnonymousSkipsStorage(t *testing.T) {
	src := &memSource{votes: map[int64]model.Direction{1: model.Up}}
	r := NewVoteResolver(src)

	votes, err := r.Resolve(context.Background(), model.Anonymous, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]model.Direction{1: model.None, 2: model.None, 3: model.None}, votes)
	assert.Empty(t, src.voteCalls)

	votes, err = r.Resolve(context.Background(), 42, nil)
	require.NoError(t, err)
	assert.Empty(t, votes)
	assert.Empty(t, src.voteCalls)
}

func TestResolveIsTotal(t *testing.T) {
	src := &memSource{votes: map[int64]model.Direction{1: model.Up, 3: model.Down}}
	r := NewVoteResolver(src)

	votes, err := r.Resolve(context.Background(), 42, []int64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, map[int64]model.Direction{1: model.Up, 2: model.None, 3: model.Down, 4: model.None}, votes)
	assert.Len(t, src.voteCalls, 1)
}

func treeSource() *memSource {
	// 1 -> 2 -> 3 -> 4, plus 5 at the root with no replies.
	return &memSource{
		items: []model.Item{comment(1, 0), comment(2, 1), comment(3, 2), comment(4, 3), comment(5, 0)},
		votes: map[int64]model.Direction{2: model.Up, 5: model.Down},
	}
}

func TestAssembleDepthAtMostTwo(t *testing.T) {
	src := treeSource()
	a := NewAssembler(NewFetcher(src, Limits{}), NewVoteResolver(src))

	page, err := a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread})
	require.NoError(t, err)
	require.Equal(t, []int64{5, 1}, pageIDs(page))

	leaf := page.Items[0]
	assert.Empty(t, leaf.Children)
	assert.False(t, leaf.HasMoreChildren)

	root := page.Items[1]
	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, int64(2), child.ID)
	assert.Empty(t, child.Children)
	assert.True(t, child.HasMoreChildren)
	assert.False(t, root.HasMoreChildren)
}

func TestAssembleScopedContinuesDeeper(t *testing.T) {
	src := treeSource()
	a := NewAssembler(NewFetcher(src, Limits{}), NewVoteResolver(src))

	parent := int64(2)
	page, err := a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread, Parent: &parent})
	require.NoError(t, err)
	require.Equal(t, []int64{3}, pageIDs(page))
	require.Len(t, page.Items[0].Children, 1)
	assert.Equal(t, int64(4), page.Items[0].Children[0].ID)
	assert.False(t, page.Items[0].Children[0].HasMoreChildren)

	missing := int64(99)
	page, err = a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread, Parent: &missing})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.True(t, page.EndOfItems)
}

func TestAssembleSingleOverlayForBothLevels(t *testing.T) {
	src := treeSource()
	a := NewAssembler(NewFetcher(src, Limits{}), NewVoteResolver(src))

	page, err := a.Assemble(context.Background(), 7, Request{Collection: thread})
	require.NoError(t, err)

	require.Len(t, src.voteCalls, 1)
	assert.ElementsMatch(t, []int64{5, 1, 2}, src.voteCalls[0])
	assert.Equal(t, model.Down, page.Items[0].Vote)
	assert.Equal(t, model.None, page.Items[1].Vote)
	assert.Equal(t, model.Up, page.Items[1].Children[0].Vote)
}

func TestAssembleChildFailureAbortsPage(t *testing.T) {
	src := treeSource()
	src.childErr = errors.New("timeout")
	a := NewAssembler(NewFetcher(src, Limits{}), NewVoteResolver(src))

	page, err := a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread})
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.Empty(t, page.Items)
}

func TestAssembleRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	src := treeSource()
	a := NewAssembler(NewFetcher(src, Limits{}), NewVoteResolver(src))
	a.tracer = tp.Tracer("test")

	_, err := a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread})
	require.NoError(t, err)

	src.childErr = errors.New("timeout")
	_, err = a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "feed.Assemble", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("items", 3))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "fetch children", spans[1].Status().Description)
}

func TestAssembleChildPageSize(t *testing.T) {
	src := &memSource{items: []model.Item{comment(1, 0)}}
	for id := int64(2); id <= 12; id++ {
		src.items = append(src.items, comment(id, 1))
	}
	a := NewAssembler(NewFetcher(src, Limits{Default: 10, Child: 3}), NewVoteResolver(src))

	page, err := a.Assemble(context.Background(), model.Anonymous, Request{Collection: thread})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Len(t, page.Items[0].Children, 3)
	assert.True(t, page.Items[0].HasMoreChildren)
}

func TestServiceFlatPages(t *testing.T) {
	src := flatSource(4)
	src.votes = map[int64]model.Direction{4: model.Up}
	svc := NewService(src, Limits{}, nil)
	ctx := context.Background()

	page, err := svc.FetchPage(ctx, 9, Request{Collection: board})
	require.NoError(t, err)
	assert.Equal(t, model.Up, page.Items[0].Vote)
	assert.Empty(t, page.Items[0].Children)
	require.Len(t, src.voteCalls, 1)

	_, err = svc.FetchPage(ctx, 9, Request{Collection: model.CollectionRef{Kind: model.CollectionBoards}})
	require.NoError(t, err)
	assert.Len(t, src.voteCalls, 1, "the board directory carries no votes")
}

func TestServiceFetchChildren(t *testing.T) {
	src := treeSource()
	svc := NewService(src, Limits{}, nil)

	page, err := svc.FetchChildren(context.Background(), model.Anonymous, Request{Collection: thread}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, pageIDs(page))
	require.Len(t, page.Items[0].Children, 1)
}

func TestRequestQueryRoundTrip(t *testing.T) {
	parent := int64(3)
	req := Request{
		Collection: thread,
		Parent:     &parent,
		Sort:       model.SortTop,
		Window:     model.WindowWeek,
		Content:    model.ContentComments,
		Offset:     20,
		Limit:      10,
	}
	got := RequestFromQuery(thread, req.Values())
	assert.Equal(t, req, got)
}
