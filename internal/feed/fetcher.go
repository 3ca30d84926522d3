// Package feed serves bounded pages of boards, threads and profiles with
// the viewer's votes overlaid.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

// ErrRetrieval wraps any storage failure on the read path. A failed fetch
// never yields a partial page.
var ErrRetrieval = errors.New("retrieval failed")

// AsRetrieval classifies a read-path lookup error. A missing row stays
// store.ErrNotFound; every other failure is retryable.
func AsRetrieval(err error) error {
	if err == nil || errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrRetrieval) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRetrieval, err)
}

const (
	DefaultPageSize      = 25
	MaxPageSize          = 100
	DefaultChildPageSize = 5
	DefaultParallelism   = 8
)

type Limits struct {
	Default     int
	Max         int
	Child       int
	Parallelism int
}

func (l Limits) withDefaults() Limits {
	if l.Max <= 0 {
		l.Max = MaxPageSize
	}
	if l.Default <= 0 || l.Default > l.Max {
		l.Default = min(DefaultPageSize, l.Max)
	}
	if l.Child <= 0 || l.Child >= l.Default {
		l.Child = min(DefaultChildPageSize, l.Default)
	}
	if l.Parallelism <= 0 {
		l.Parallelism = DefaultParallelism
	}
	return l
}

// Request describes one page of one level of a collection. Sort, Window
// and Content are coerced to their defaults when unrecognised.
type Request struct {
	Collection model.CollectionRef
	Parent     *int64
	Sort       model.SortKey
	Window     model.Window
	Content    model.ContentFilter
	Cursor     int64
	Offset     int
	Limit      int
}

type Fetcher struct {
	items  store.ItemReader
	limits Limits
	now    func() time.Time
}

func NewFetcher(items store.ItemReader, limits Limits) *Fetcher {
	return &Fetcher{items: items, limits: limits.withDefaults(), now: time.Now}
}

func (f *Fetcher) clamp(limit int) int {
	if limit <= 0 {
		return f.limits.Default
	}
	if limit > f.limits.Max {
		return f.limits.Max
	}
	return limit
}

// Fetch reads one page. Storage is asked for one row more than the page
// holds; the extra row only decides EndOfItems and is never returned.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (model.Page, error) {
	limit := f.clamp(req.Limit)
	sort := model.ParseSort(string(req.Sort))
	q := store.ItemQuery{
		Collection: req.Collection,
		Parent:     req.Parent,
		Sort:       sort,
		Content:    model.ParseContentFilter(string(req.Content)),
		Limit:      limit + 1,
	}
	if sort.Keyset() && req.Cursor > 0 {
		q.Cursor = req.Cursor
	} else if req.Offset > 0 {
		q.Offset = req.Offset
	}
	if req.Parent == nil {
		if d := model.ParseWindow(string(req.Window)).Duration(); d > 0 {
			q.Since = f.now().Add(-d)
		}
	}

	kind := string(req.Collection.Kind)
	start := time.Now()
	items, err := f.items.ListItems(ctx, q)
	pageFetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		pageFetchesTotal.WithLabelValues(kind, "error").Inc()
		return model.Page{}, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	page := model.Page{Items: items, EndOfItems: len(items) <= limit}
	if !page.EndOfItems {
		page.Items = items[:limit]
		pageFetchesTotal.WithLabelValues(kind, "more").Inc()
	} else {
		pageFetchesTotal.WithLabelValues(kind, "end").Inc()
	}
	if page.Items == nil {
		page.Items = []model.Item{}
	}
	return page, nil
}
