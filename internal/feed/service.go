package feed

import (
	"context"
	"log/slog"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

// Source is the storage the read path needs.
type Source interface {
	store.ItemReader
	store.VoteReader
}

// Service is the read boundary used by the HTTP layer.
type Service struct {
	fetcher   *Fetcher
	votes     *VoteResolver
	assembler *Assembler
	logger    *slog.Logger
}

func NewService(src Source, limits Limits, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	fetcher := NewFetcher(src, limits)
	votes := NewVoteResolver(src)
	return &Service{
		fetcher:   fetcher,
		votes:     votes,
		assembler: NewAssembler(fetcher, votes),
		logger:    logger,
	}
}

// FetchPage returns a tree page for threads and a flat page otherwise.
func (s *Service) FetchPage(ctx context.Context, viewer model.ViewerID, req Request) (model.Page, error) {
	var (
		page model.Page
		err  error
	)
	if req.Collection.Tree() {
		page, err = s.assembler.Assemble(ctx, viewer, req)
	} else {
		page, err = s.flat(ctx, viewer, req)
	}
	if err != nil {
		s.logger.Error("fetch page failed",
			"collection", req.Collection.Kind,
			"id", req.Collection.ID,
			"slug", req.Collection.Slug,
			"err", err)
		return model.Page{}, err
	}
	return page, nil
}

// FetchChildren pages through the replies of one node. A node that does not
// exist simply has no children.
func (s *Service) FetchChildren(ctx context.Context, viewer model.ViewerID, req Request, parentID int64) (model.Page, error) {
	req.Collection.Kind = model.CollectionThread
	req.Parent = &parentID
	return s.FetchPage(ctx, viewer, req)
}

// Overlay sets the viewer's vote on items fetched outside of a page, such as
// a single post or a freshly created comment.
func (s *Service) Overlay(ctx context.Context, viewer model.ViewerID, items []model.Item) error {
	page := model.Page{Items: items}
	votes, err := s.votes.Resolve(ctx, viewer, page.IDs())
	if err != nil {
		return err
	}
	applyVotes(items, votes)
	return nil
}

func (s *Service) flat(ctx context.Context, viewer model.ViewerID, req Request) (model.Page, error) {
	page, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return model.Page{}, err
	}
	if !req.Collection.Votable() {
		return page, nil
	}
	votes, err := s.votes.Resolve(ctx, viewer, page.IDs())
	if err != nil {
		return model.Page{}, err
	}
	applyVotes(page.Items, votes)
	return page, nil
}
