package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store/sqlite"
)

func newService(t *testing.T, tokenTTL time.Duration) (*Service, *sqlite.Store) {
	t.Helper()
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, tokenTTL, time.Minute), st
}

func signEd25519(t *testing.T, svc *Service, priv ed25519.PrivateKey) SignedChallenge {
	t.Helper()
	challenge, err := svc.CreateChallenge(context.Background(), "ed25519")
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	sig := ed25519.Sign(priv, []byte(challenge.Challenge))
	return SignedChallenge{
		Alg:       AlgEd25519,
		PublicKey: base64.RawStdEncoding.EncodeToString(priv.Public().(ed25519.PublicKey)),
		Challenge: challenge.Challenge,
		Signature: base64.RawStdEncoding.EncodeToString(sig),
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newService(t, time.Hour)
	ctx := context.Background()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	account, token, err := svc.Register(ctx, "gopher", "likes channels", signEd25519(t, svc, priv))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	viewer, err := svc.Authenticate(ctx, token.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if viewer != model.ViewerID(account.ID) {
		t.Fatalf("expected viewer %d, got %d", account.ID, viewer)
	}

	token2, again, err := svc.VerifyAndCreateToken(ctx, signEd25519(t, svc, priv))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if again.ID != account.ID || token2.Token == token.Token {
		t.Fatalf("expected a new token for the same account")
	}
}

func TestChallengeReplayRejected(t *testing.T) {
	svc, _ := newService(t, time.Hour)
	_, priv, _ := ed25519.GenerateKey(nil)
	sc := signEd25519(t, svc, priv)

	if _, _, err := svc.Register(context.Background(), "once", "", sc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.VerifyAndCreateToken(context.Background(), sc); err == nil {
		t.Fatalf("expected replayed challenge to fail")
	}
}

func TestUnknownKeyAndBadSignature(t *testing.T) {
	svc, _ := newService(t, time.Hour)
	_, priv, _ := ed25519.GenerateKey(nil)

	if _, _, err := svc.VerifyAndCreateToken(context.Background(), signEd25519(t, svc, priv)); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}

	sc := signEd25519(t, svc, priv)
	sc.Challenge = sc.Challenge + "x"
	if _, _, err := svc.VerifyAndCreateToken(context.Background(), sc); err == nil {
		t.Fatalf("expected tampered challenge to fail")
	}
}

func TestTokenExpiration(t *testing.T) {
	svc, _ := newService(t, -time.Second)
	_, priv, _ := ed25519.GenerateKey(nil)

	_, token, err := svc.Register(context.Background(), "ephemeral", "", signEd25519(t, svc, priv))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nope"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSecp256k1Signature(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	msg := "sign me"
	compact := secpecdsa.SignCompact(priv, PersonalHash([]byte(msg)), true)
	pub := hex.EncodeToString(priv.PubKey().SerializeCompressed())
	sig := "0x" + hex.EncodeToString(compact[1:])

	if err := VerifySignature(AlgSecp256k1, pub, msg, sig); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifySignature(AlgSecp256k1, pub, "other", sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if err := VerifySignature("rsa-pss", pub, msg, sig); !errors.Is(err, ErrUnsupportedAlg) {
		t.Fatalf("expected ErrUnsupportedAlg, got %v", err)
	}
}
