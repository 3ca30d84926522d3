package view

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/alphabot-ai/slashboard/internal/model"
)

// LoadRequest asks for one page of the collection behind URL. ParentID
// scopes the request to the replies of one node.
type LoadRequest struct {
	URL      string
	Cursor   int64
	Offset   int
	ParentID *int64
}

type Loader interface {
	Load(ctx context.Context, req LoadRequest) (model.Page, error)
}

// Session is the client-side state shared by every controller of one
// user: how to load pages, where snapshots live, and the navigation stack.
type Session struct {
	Loader  Loader
	Cache   *SnapshotCache
	History *History
	Logger  *slog.Logger
}

func NewSession(loader Loader, cacheSize int, logger *slog.Logger) (*Session, error) {
	cache, err := NewSnapshotCache(cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Loader:  loader,
		Cache:   cache,
		History: NewHistory(),
		Logger:  logger,
	}, nil
}

// keysetURL reports whether the sort named in the URL pages by cursor.
func keysetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return model.DefaultSort.Keyset()
	}
	return model.ParseSort(u.Query().Get("sort")).Keyset()
}
