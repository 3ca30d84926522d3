package feed

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/alphabot-ai/slashboard/internal/model"
)

// Assembler builds two levels of a comment tree per call: one page of
// nodes, and the first page of children under each of them. Anything
// deeper is left to HasMoreChildren and a later scoped call.
type Assembler struct {
	fetcher *Fetcher
	votes   *VoteResolver
	tracer  trace.Tracer
}

func NewAssembler(fetcher *Fetcher, votes *VoteResolver) *Assembler {
	return &Assembler{fetcher: fetcher, votes: votes, tracer: tracer}
}

func (a *Assembler) Assemble(ctx context.Context, viewer model.ViewerID, req Request) (model.Page, error) {
	attrs := []attribute.KeyValue{
		attribute.String("collection", string(req.Collection.Kind)),
		attribute.Int64("collection_id", req.Collection.ID),
		attribute.Bool("scoped", req.Parent != nil),
	}
	ctx, span := a.tracer.Start(ctx, "feed.Assemble", trace.WithAttributes(attrs...))
	defer span.End()

	page, err := a.fetcher.Fetch(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch level")
		return model.Page{}, err
	}

	limits := a.fetcher.limits
	children := make([]model.Page, len(page.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limits.Parallelism)
	for i, it := range page.Items {
		parent := it.ID
		g.Go(func() error {
			child, err := a.fetcher.Fetch(gctx, Request{
				Collection: req.Collection,
				Parent:     &parent,
				Sort:       req.Sort,
				Limit:      limits.Child,
			})
			if err != nil {
				return err
			}
			children[i] = child
			return nil
		})
	}
	treeChildFetches.Observe(float64(len(page.Items)))
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch children")
		return model.Page{}, err
	}

	for i := range page.Items {
		page.Items[i].Children = children[i].Items
		page.Items[i].HasMoreChildren = !children[i].EndOfItems
	}

	ids := page.IDs()
	span.SetAttributes(attribute.Int("items", len(ids)))
	votes, err := a.votes.Resolve(ctx, viewer, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve votes")
		return model.Page{}, err
	}
	applyVotes(page.Items, votes)
	return page, nil
}
