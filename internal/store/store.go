package store

import (
	"context"
	"errors"
	"time"

	"github.com/alphabot-ai/slashboard/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrDuplicateName = errors.New("duplicate name")
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrInvalidParent = errors.New("invalid parent")
)

// ItemQuery selects one level of siblings from a collection. Cursor and
// Offset are applied as given; callers pick one of them.
type ItemQuery struct {
	Collection model.CollectionRef
	// Parent scopes a thread query to the direct children of one comment.
	// Nil selects the thread roots.
	Parent  *int64
	Sort    model.SortKey
	Content model.ContentFilter
	// Since bounds created_at from below. Zero means unbounded.
	Since  time.Time
	Cursor int64
	Offset int
	Limit  int
}

type NewPost struct {
	BoardID   int64
	AccountID int64
	Title     string
	URL       string
	Body      string
	CreatedAt time.Time
}

type NewComment struct {
	PostID    int64
	ParentID  *int64
	AccountID int64
	Body      string
	CreatedAt time.Time
}

type Store interface {
	BoardStore
	ItemStore
	VoteStore
	AccountStore
	AuthStore
	Close() error
}

type ItemReader interface {
	ListItems(ctx context.Context, q ItemQuery) ([]model.Item, error)
}

type VoteReader interface {
	// VotesFor returns the viewer's non-zero votes among ids. Items the
	// viewer never voted on are absent from the map.
	VotesFor(ctx context.Context, accountID int64, ids []int64) (map[int64]model.Direction, error)
}

type BoardStore interface {
	CreateBoard(ctx context.Context, board *model.Board) (int64, error)
	GetBoardBySlug(ctx context.Context, slug string) (model.Board, error)
}

type ItemStore interface {
	ItemReader
	GetItem(ctx context.Context, id int64) (model.Item, error)
	CreatePost(ctx context.Context, post NewPost) (int64, error)
	CreateComment(ctx context.Context, comment NewComment) (int64, error)
	SoftDelete(ctx context.Context, id, accountID int64) error
}

type VoteStore interface {
	VoteReader
	// CastVote records the account's vote and returns the item's new score.
	// A None direction clears an existing vote.
	CastVote(ctx context.Context, accountID, itemID int64, dir model.Direction) (int, error)
}

type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account, key *model.AccountKey) (accountID, keyID int64, err error)
	GetAccount(ctx context.Context, id int64) (model.Account, error)
	FindAccountKey(ctx context.Context, alg, publicKey string) (model.AccountKey, *model.Account, error)
}

type AuthStore interface {
	CreateChallenge(ctx context.Context, c model.Challenge) error
	ConsumeChallenge(ctx context.Context, challenge string) (model.Challenge, error)
	CreateToken(ctx context.Context, token model.Token) error
	GetToken(ctx context.Context, token string) (model.Token, error)
}
