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

const selectItems = `
SELECT i.id, i.kind, b.slug AS board_slug, i.post_id, i.parent_id, i.title, i.url, i.body,
	i.score, i.deleted, i.created_at, i.account_id, a.display_name AS author_name,
	EXISTS(SELECT 1 FROM items c WHERE c.parent_id = i.id) AS has_children
FROM items i
LEFT JOIN boards b ON b.id = i.board_id
LEFT JOIN accounts a ON a.id = i.account_id`

type itemRow struct {
	ID          int64          `db:"id"`
	Kind        string         `db:"kind"`
	BoardSlug   sql.NullString `db:"board_slug"`
	PostID      sql.NullInt64  `db:"post_id"`
	ParentID    sql.NullInt64  `db:"parent_id"`
	Title       sql.NullString `db:"title"`
	URL         sql.NullString `db:"url"`
	Body        sql.NullString `db:"body"`
	Score       int            `db:"score"`
	Deleted     bool           `db:"deleted"`
	CreatedAt   int64          `db:"created_at"`
	AccountID   int64          `db:"account_id"`
	AuthorName  sql.NullString `db:"author_name"`
	HasChildren bool           `db:"has_children"`
}

func (r itemRow) item() model.Item {
	it := model.Item{
		ID:         r.ID,
		Kind:       model.Kind(r.Kind),
		CreatedAt:  time.Unix(r.CreatedAt, 0).UTC(),
		Score:      r.Score,
		AuthorID:   r.AccountID,
		AuthorName: r.AuthorName.String,
	}
	switch it.Kind {
	case model.KindPost:
		it.Content = model.PostContent{
			Title:     r.Title.String,
			URL:       r.URL.String,
			Body:      r.Body.String,
			BoardSlug: r.BoardSlug.String,
		}
	case model.KindComment:
		it.Content = model.CommentContent{Body: r.Body.String, PostID: r.PostID.Int64}
		if r.ParentID.Valid {
			parent := r.ParentID.Int64
			it.ParentID = &parent
		}
	}
	// Deleted rows keep their text in the table; no read path returns it.
	if r.Deleted {
		it = it.Redact()
	}
	return it
}

func (s *Store) ListItems(ctx context.Context, q store.ItemQuery) ([]model.Item, error) {
	if q.Collection.Kind == model.CollectionBoards {
		return s.listBoards(ctx, q)
	}

	query := selectItems + "\nWHERE 1=1"
	var args []any
	switch q.Collection.Kind {
	case model.CollectionBoard:
		query += " AND i.kind = 'post' AND b.slug = ?"
		args = append(args, q.Collection.Slug)
	case model.CollectionThread:
		query += " AND i.kind = 'comment' AND i.post_id = ?"
		args = append(args, q.Collection.ID)
		if q.Parent != nil {
			query += " AND i.parent_id = ?"
			args = append(args, *q.Parent)
		} else {
			query += " AND i.parent_id IS NULL"
		}
	case model.CollectionProfile:
		query += " AND i.account_id = ? AND i.deleted = 0"
		args = append(args, q.Collection.ID)
		switch q.Content {
		case model.ContentPosts:
			query += " AND i.kind = 'post'"
		case model.ContentComments:
			query += " AND i.kind = 'comment'"
		}
	default:
		return nil, fmt.Errorf("unknown collection kind %q", q.Collection.Kind)
	}
	if !q.Since.IsZero() {
		query += " AND i.created_at >= ?"
		args = append(args, q.Since.Unix())
	}
	if q.Cursor > 0 {
		query += " AND i.id < ?"
		args = append(args, q.Cursor)
	}
	query += orderBy(q.Sort, "i.score", "i.id")
	query += " LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		it := r.item()
		if q.Collection.Tree() {
			it.HasMoreChildren = r.HasChildren
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (model.Item, error) {
	var r itemRow
	if err := s.db.GetContext(ctx, &r, selectItems+"\nWHERE i.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, store.ErrNotFound
		}
		return model.Item{}, err
	}
	return r.item(), nil
}

func (s *Store) CreatePost(ctx context.Context, post store.NewPost) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO items (kind, board_id, title, url, body, created_at, account_id)
VALUES ('post', ?, ?, ?, ?, ?, ?)
`, post.BoardID, post.Title, nullIfEmpty(post.URL), nullIfEmpty(post.Body), post.CreatedAt.Unix(), post.AccountID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) CreateComment(ctx context.Context, comment store.NewComment) (id int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var boardID int64
	err = tx.GetContext(ctx, &boardID, `SELECT board_id FROM items WHERE id = ? AND kind = 'post'`, comment.PostID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if comment.ParentID != nil {
		var postID int64
		err = tx.GetContext(ctx, &postID, `SELECT post_id FROM items WHERE id = ? AND kind = 'comment'`, *comment.ParentID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && postID != comment.PostID) {
			return 0, store.ErrInvalidParent
		}
		if err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO items (kind, board_id, post_id, parent_id, body, created_at, account_id)
VALUES ('comment', ?, ?, ?, ?, ?, ?)
`, boardID, comment.PostID, nullableInt(comment.ParentID), comment.Body, comment.CreatedAt.Unix(), comment.AccountID)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// SoftDelete flags the item as deleted. Only its author may delete it.
func (s *Store) SoftDelete(ctx context.Context, id, accountID int64) error {
	var author int64
	err := s.db.GetContext(ctx, &author, `SELECT account_id FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	if author != accountID {
		return store.ErrForbidden
	}
	_, err = s.db.ExecContext(ctx, `UPDATE items SET deleted = 1 WHERE id = ?`, id)
	return err
}

func orderBy(sort model.SortKey, scoreCol, idCol string) string {
	if sort == model.SortTop {
		return fmt.Sprintf(" ORDER BY %s DESC, %s DESC", scoreCol, idCol)
	}
	return fmt.Sprintf(" ORDER BY %s DESC", idCol)
}
