package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

func TestAccountKeys(t *testing.T) {
	st := newTestStore(t)

	account := model.Account{DisplayName: "Bot", CreatedAt: time.Now()}
	key := model.AccountKey{Alg: "ed25519", PublicKey: "pubkey", CreatedAt: time.Now()}

	accountID, keyID, err := st.CreateAccount(context.Background(), &account, &key)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if accountID == 0 || keyID == 0 {
		t.Fatalf("expected ids")
	}

	k, acc, err := st.FindAccountKey(context.Background(), "ed25519", "pubkey")
	if err != nil {
		t.Fatalf("find key: %v", err)
	}
	if acc == nil || acc.ID != accountID || acc.DisplayName != "Bot" {
		t.Fatalf("expected account, got %+v", acc)
	}
	if k.ID != keyID {
		t.Fatalf("expected key id")
	}

	_, _, err = st.CreateAccount(context.Background(),
		&model.Account{DisplayName: "Other", CreatedAt: time.Now()},
		&model.AccountKey{Alg: "ed25519", PublicKey: "pubkey", CreatedAt: time.Now()})
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	_, _, err = st.CreateAccount(context.Background(),
		&model.Account{DisplayName: "Bot", CreatedAt: time.Now()},
		&model.AccountKey{Alg: "ed25519", PublicKey: "other", CreatedAt: time.Now()})
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	if _, err := st.GetAccount(context.Background(), 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChallengeConsumedOnce(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := model.Challenge{Challenge: "abc", Alg: "ed25519", ExpiresAt: time.Now().Add(time.Minute)}
	if err := st.CreateChallenge(ctx, c); err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	got, err := st.ConsumeChallenge(ctx, "abc")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.Alg != "ed25519" {
		t.Fatalf("unexpected alg %q", got.Alg)
	}
	if _, err := st.ConsumeChallenge(ctx, "abc"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected replay to fail, got %v", err)
	}
}
