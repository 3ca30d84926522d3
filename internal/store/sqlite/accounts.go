package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

type accountRow struct {
	ID          int64          `db:"id"`
	DisplayName string         `db:"display_name"`
	Bio         sql.NullString `db:"bio"`
	Karma       int            `db:"karma"`
	CreatedAt   int64          `db:"created_at"`
}

func (r accountRow) account() model.Account {
	return model.Account{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Bio:         r.Bio.String,
		Karma:       r.Karma,
		CreatedAt:   time.Unix(r.CreatedAt, 0).UTC(),
	}
}

func (s *Store) CreateAccount(ctx context.Context, account *model.Account, key *model.AccountKey) (accountID, keyID int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
INSERT INTO accounts (display_name, bio, created_at)
VALUES (?, ?, ?)
`, account.DisplayName, nullIfEmpty(account.Bio), account.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, 0, store.ErrDuplicateName
		}
		return 0, 0, err
	}
	accountID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	res, err = tx.ExecContext(ctx, `
INSERT INTO account_keys (account_id, alg, public_key, created_at, revoked_at)
VALUES (?, ?, ?, ?, NULL)
`, accountID, key.Alg, key.PublicKey, key.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, 0, store.ErrDuplicateKey
		}
		return 0, 0, err
	}
	keyID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return accountID, keyID, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	var r accountRow
	err := s.db.GetContext(ctx, &r, `
SELECT id, display_name, bio, karma, created_at
FROM accounts
WHERE id = ?
`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, store.ErrNotFound
		}
		return model.Account{}, err
	}
	return r.account(), nil
}

type keyRow struct {
	ID        int64         `db:"id"`
	AccountID int64         `db:"account_id"`
	Alg       string        `db:"alg"`
	PublicKey string        `db:"public_key"`
	CreatedAt int64         `db:"created_at"`
	RevokedAt sql.NullInt64 `db:"revoked_at"`

	DisplayName sql.NullString `db:"display_name"`
	Bio         sql.NullString `db:"bio"`
	Karma       sql.NullInt64  `db:"karma"`
	AccCreated  sql.NullInt64  `db:"account_created_at"`
}

func (s *Store) FindAccountKey(ctx context.Context, alg, publicKey string) (model.AccountKey, *model.Account, error) {
	var r keyRow
	err := s.db.GetContext(ctx, &r, `
SELECT k.id, k.account_id, k.alg, k.public_key, k.created_at, k.revoked_at,
	a.display_name, a.bio, a.karma, a.created_at AS account_created_at
FROM account_keys k
LEFT JOIN accounts a ON a.id = k.account_id
WHERE k.alg = ? AND k.public_key = ?
LIMIT 1
`, alg, publicKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccountKey{}, nil, store.ErrNotFound
		}
		return model.AccountKey{}, nil, err
	}
	k := model.AccountKey{
		ID:        r.ID,
		AccountID: r.AccountID,
		Alg:       r.Alg,
		PublicKey: r.PublicKey,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
	if r.RevokedAt.Valid {
		t := time.Unix(r.RevokedAt.Int64, 0).UTC()
		k.RevokedAt = &t
	}
	if !r.AccCreated.Valid {
		return k, nil, nil
	}
	return k, &model.Account{
		ID:          r.AccountID,
		DisplayName: r.DisplayName.String,
		Bio:         r.Bio.String,
		Karma:       int(r.Karma.Int64),
		CreatedAt:   time.Unix(r.AccCreated.Int64, 0).UTC(),
	}, nil
}

func (s *Store) CreateChallenge(ctx context.Context, c model.Challenge) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO auth_challenges (challenge, alg, expires_at, created_at)
VALUES (?, ?, ?, ?)
`, c.Challenge, c.Alg, c.ExpiresAt.Unix(), time.Now().Unix())
	return err
}

type challengeRow struct {
	Challenge string `db:"challenge"`
	Alg       string `db:"alg"`
	ExpiresAt int64  `db:"expires_at"`
}

// ConsumeChallenge returns the challenge and removes it so it cannot be
// replayed.
func (s *Store) ConsumeChallenge(ctx context.Context, challenge string) (model.Challenge, error) {
	var r challengeRow
	err := s.db.GetContext(ctx, &r, `SELECT challenge, alg, expires_at FROM auth_challenges WHERE challenge = ?`, challenge)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Challenge{}, store.ErrNotFound
		}
		return model.Challenge{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_challenges WHERE challenge = ?`, challenge); err != nil {
		return model.Challenge{}, err
	}
	return model.Challenge{
		Challenge: r.Challenge,
		Alg:       r.Alg,
		ExpiresAt: time.Unix(r.ExpiresAt, 0),
	}, nil
}

func (s *Store) CreateToken(ctx context.Context, token model.Token) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO auth_tokens (token, account_id, key_id, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)
`, token.Token, nullableInt(token.AccountID), token.KeyID, token.ExpiresAt.Unix(), time.Now().Unix())
	return err
}

type tokenRow struct {
	Token     string        `db:"token"`
	AccountID sql.NullInt64 `db:"account_id"`
	KeyID     sql.NullInt64 `db:"key_id"`
	ExpiresAt int64         `db:"expires_at"`
}

func (s *Store) GetToken(ctx context.Context, token string) (model.Token, error) {
	var r tokenRow
	err := s.db.GetContext(ctx, &r, `SELECT token, account_id, key_id, expires_at FROM auth_tokens WHERE token = ?`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Token{}, store.ErrNotFound
		}
		return model.Token{}, err
	}
	t := model.Token{
		Token:     r.Token,
		KeyID:     r.KeyID.Int64,
		ExpiresAt: time.Unix(r.ExpiresAt, 0),
	}
	if r.AccountID.Valid {
		id := r.AccountID.Int64
		t.AccountID = &id
	}
	return t, nil
}
