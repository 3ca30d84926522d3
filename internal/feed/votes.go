package feed

import (
	"context"
	"fmt"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

type VoteResolver struct {
	votes store.VoteReader
}

func NewVoteResolver(votes store.VoteReader) *VoteResolver {
	return &VoteResolver{votes: votes}
}

// Resolve returns a direction for every id. Anonymous viewers and empty id
// sets never reach storage.
func (r *VoteResolver) Resolve(ctx context.Context, viewer model.ViewerID, ids []int64) (map[int64]model.Direction, error) {
	out := make(map[int64]model.Direction, len(ids))
	if len(ids) == 0 {
		voteLookupsTotal.WithLabelValues("empty").Inc()
		return out, nil
	}
	if viewer.IsAnonymous() {
		voteLookupsTotal.WithLabelValues("anonymous").Inc()
		for _, id := range ids {
			out[id] = model.None
		}
		return out, nil
	}

	voteLookupsTotal.WithLabelValues("batched").Inc()
	found, err := r.votes.VotesFor(ctx, int64(viewer), ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	for _, id := range ids {
		out[id] = found[id]
	}
	return out, nil
}

func applyVotes(items []model.Item, votes map[int64]model.Direction) {
	for i := range items {
		items[i].Vote = votes[items[i].ID]
		applyVotes(items[i].Children, votes)
	}
}
