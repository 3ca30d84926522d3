package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

type voteRow struct {
	ItemID    int64 `db:"item_id"`
	Direction int8  `db:"direction"`
}

func (s *Store) VotesFor(ctx context.Context, accountID int64, ids []int64) (map[int64]model.Direction, error) {
	votes := make(map[int64]model.Direction, len(ids))
	if len(ids) == 0 {
		return votes, nil
	}
	query, args, err := sqlx.In(`SELECT item_id, direction FROM votes WHERE account_id = ? AND item_id IN (?)`, accountID, ids)
	if err != nil {
		return nil, err
	}
	var rows []voteRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("votes for account %d: %w", accountID, err)
	}
	for _, r := range rows {
		votes[r.ItemID] = model.Direction(r.Direction)
	}
	return votes, nil
}

func (s *Store) CastVote(ctx context.Context, accountID, itemID int64, dir model.Direction) (score int, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var author int64
	err = tx.GetContext(ctx, &author, `SELECT account_id FROM items WHERE id = ?`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var previous int8
	err = tx.GetContext(ctx, &previous, `SELECT direction FROM votes WHERE account_id = ? AND item_id = ?`, accountID, itemID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if dir == model.None {
		_, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE account_id = ? AND item_id = ?`, accountID, itemID)
	} else {
		_, err = tx.ExecContext(ctx, `
INSERT INTO votes (account_id, item_id, direction, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(account_id, item_id) DO UPDATE SET direction = excluded.direction
`, accountID, itemID, int8(dir), time.Now().Unix())
	}
	if err != nil {
		return 0, err
	}

	delta := int(dir) - int(previous)
	if delta != 0 {
		if _, err = tx.ExecContext(ctx, `UPDATE items SET score = score + ? WHERE id = ?`, delta, itemID); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE accounts SET karma = karma + ? WHERE id = ?`, delta, author); err != nil {
			return 0, err
		}
	}

	if err = tx.GetContext(ctx, &score, `SELECT score FROM items WHERE id = ?`, itemID); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return score, nil
}
