package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

type boardRow struct {
	ID          int64          `db:"id"`
	Slug        string         `db:"slug"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	CreatedAt   int64          `db:"created_at"`
	PostCount   int            `db:"post_count"`
}

func (r boardRow) board() model.Board {
	return model.Board{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description.String,
		CreatedAt:   time.Unix(r.CreatedAt, 0).UTC(),
	}
}

func (s *Store) CreateBoard(ctx context.Context, board *model.Board) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO boards (slug, title, description, created_at)
VALUES (?, ?, ?, ?)
`, board.Slug, board.Title, nullIfEmpty(board.Description), board.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrDuplicateSlug
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetBoardBySlug(ctx context.Context, slug string) (model.Board, error) {
	var r boardRow
	err := s.db.GetContext(ctx, &r, `
SELECT id, slug, title, description, created_at, 0 AS post_count
FROM boards
WHERE slug = ?
`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Board{}, store.ErrNotFound
		}
		return model.Board{}, err
	}
	return r.board(), nil
}

// listBoards serves the board directory. A board's score is its number of
// live posts.
func (s *Store) listBoards(ctx context.Context, q store.ItemQuery) ([]model.Item, error) {
	query := `
SELECT b.id, b.slug, b.title, b.description, b.created_at,
	(SELECT COUNT(*) FROM items i WHERE i.board_id = b.id AND i.kind = 'post' AND i.deleted = 0) AS post_count
FROM boards b
WHERE 1=1`
	var args []any
	if !q.Since.IsZero() {
		query += " AND b.created_at >= ?"
		args = append(args, q.Since.Unix())
	}
	if q.Cursor > 0 {
		query += " AND b.id < ?"
		args = append(args, q.Cursor)
	}
	query += orderBy(q.Sort, "post_count", "b.id")
	query += " LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	var rows []boardRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	items := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, model.Item{
			ID:        r.ID,
			Kind:      model.KindBoard,
			CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
			Score:     r.PostCount,
			Content: model.BoardContent{
				Slug:        r.Slug,
				Title:       r.Title,
				Description: r.Description.String,
			},
		})
	}
	return items, nil
}
