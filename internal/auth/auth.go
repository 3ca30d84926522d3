package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

const (
	AlgEd25519   = "ed25519"
	AlgSecp256k1 = "secp256k1"
)

var (
	ErrUnsupportedAlg   = errors.New("unsupported alg")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrChallengeExpired = errors.New("challenge expired")
	ErrAlgMismatch      = errors.New("challenge alg mismatch")
	ErrKeyRevoked       = errors.New("key revoked")
	ErrUnknownKey       = errors.New("unknown key")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Store is the persistence the challenge/response flow needs.
type Store interface {
	store.AuthStore
	store.AccountStore
}

type Service struct {
	store        Store
	tokenTTL     time.Duration
	challengeTTL time.Duration
	now          func() time.Time
}

func NewService(st Store, tokenTTL, challengeTTL time.Duration) *Service {
	return &Service{
		store:        st,
		tokenTTL:     tokenTTL,
		challengeTTL: challengeTTL,
		now:          time.Now,
	}
}

func (s *Service) CreateChallenge(ctx context.Context, alg string) (model.Challenge, error) {
	alg = strings.ToLower(alg)
	if alg != AlgEd25519 && alg != AlgSecp256k1 {
		return model.Challenge{}, fmt.Errorf("%w: %s", ErrUnsupportedAlg, alg)
	}
	challenge, err := randomToken(32)
	if err != nil {
		return model.Challenge{}, err
	}
	c := model.Challenge{
		Challenge: challenge,
		Alg:       alg,
		ExpiresAt: s.now().Add(s.challengeTTL),
	}
	if err := s.store.CreateChallenge(ctx, c); err != nil {
		return model.Challenge{}, err
	}
	return c, nil
}

// SignedChallenge is a challenge answered with the caller's key.
type SignedChallenge struct {
	Alg       string
	PublicKey string
	Challenge string
	Signature string
}

func (s *Service) consume(ctx context.Context, sc SignedChallenge) error {
	c, err := s.store.ConsumeChallenge(ctx, sc.Challenge)
	if err != nil {
		return err
	}
	if s.now().After(c.ExpiresAt) {
		return ErrChallengeExpired
	}
	if !strings.EqualFold(c.Alg, sc.Alg) {
		return ErrAlgMismatch
	}
	return VerifySignature(sc.Alg, sc.PublicKey, sc.Challenge, sc.Signature)
}

// Register creates an account owned by the key that signed the challenge
// and signs it in.
func (s *Service) Register(ctx context.Context, displayName, bio string, sc SignedChallenge) (model.Account, model.Token, error) {
	if err := s.consume(ctx, sc); err != nil {
		return model.Account{}, model.Token{}, err
	}
	now := s.now()
	account := model.Account{DisplayName: displayName, Bio: bio, CreatedAt: now}
	key := model.AccountKey{Alg: strings.ToLower(sc.Alg), PublicKey: sc.PublicKey, CreatedAt: now}
	accountID, keyID, err := s.store.CreateAccount(ctx, &account, &key)
	if err != nil {
		return model.Account{}, model.Token{}, err
	}
	account.ID = accountID
	token, err := s.issue(ctx, accountID, keyID)
	if err != nil {
		return model.Account{}, model.Token{}, err
	}
	return account, token, nil
}

// VerifyAndCreateToken signs in the account that owns the signing key.
func (s *Service) VerifyAndCreateToken(ctx context.Context, sc SignedChallenge) (model.Token, model.Account, error) {
	if err := s.consume(ctx, sc); err != nil {
		return model.Token{}, model.Account{}, err
	}
	key, account, err := s.store.FindAccountKey(ctx, strings.ToLower(sc.Alg), sc.PublicKey)
	if errors.Is(err, store.ErrNotFound) || (err == nil && account == nil) {
		return model.Token{}, model.Account{}, ErrUnknownKey
	}
	if err != nil {
		return model.Token{}, model.Account{}, err
	}
	if key.RevokedAt != nil {
		return model.Token{}, model.Account{}, ErrKeyRevoked
	}
	token, err := s.issue(ctx, account.ID, key.ID)
	if err != nil {
		return model.Token{}, model.Account{}, err
	}
	return token, *account, nil
}

func (s *Service) issue(ctx context.Context, accountID, keyID int64) (model.Token, error) {
	value, err := randomToken(32)
	if err != nil {
		return model.Token{}, err
	}
	token := model.Token{
		Token:     value,
		AccountID: &accountID,
		KeyID:     keyID,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return model.Token{}, err
	}
	return token, nil
}

// Authenticate resolves a bearer token to the viewer it was issued to.
func (s *Service) Authenticate(ctx context.Context, bearer string) (model.ViewerID, error) {
	if bearer == "" {
		return model.Anonymous, ErrUnauthorized
	}
	token, err := s.store.GetToken(ctx, bearer)
	if errors.Is(err, store.ErrNotFound) {
		return model.Anonymous, ErrUnauthorized
	}
	if err != nil {
		return model.Anonymous, err
	}
	if s.now().After(token.ExpiresAt) {
		return model.Anonymous, ErrTokenExpired
	}
	if token.AccountID == nil {
		return model.Anonymous, ErrUnauthorized
	}
	return model.ViewerID(*token.AccountID), nil
}

func VerifySignature(alg, publicKey, message, signature string) error {
	switch strings.ToLower(alg) {
	case AlgEd25519:
		pubKey, sig, err := decodeEd25519(publicKey, signature)
		if err != nil {
			return err
		}
		if !ed25519.Verify(pubKey, []byte(message), sig) {
			return ErrInvalidSignature
		}
		return nil
	case AlgSecp256k1:
		pubKeyBytes, err := decodeHex(publicKey)
		if err != nil {
			return err
		}
		sigBytes, err := decodeHex(signature)
		if err != nil {
			return err
		}
		pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
		if err != nil {
			return err
		}
		if len(sigBytes) < 64 {
			return fmt.Errorf("%w: secp256k1 signature is %d bytes", ErrInvalidSignature, len(sigBytes))
		}
		var r, sv secp256k1.ModNScalar
		if overflow := r.SetByteSlice(sigBytes[:32]); overflow {
			return ErrInvalidSignature
		}
		if overflow := sv.SetByteSlice(sigBytes[32:64]); overflow {
			return ErrInvalidSignature
		}
		if !secpecdsa.NewSignature(&r, &sv).Verify(PersonalHash([]byte(message)), pubKey) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAlg, alg)
	}
}

// PersonalHash is the Ethereum personal_sign digest of msg, which wallet
// keys sign instead of the raw challenge.
func PersonalHash(msg []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(prefix))
	h.Write(msg)
	return h.Sum(nil)
}

func decodeEd25519(pub, sig string) (ed25519.PublicKey, []byte, error) {
	pubBytes, err := decodeBase64OrHex(pub)
	if err != nil {
		return nil, nil, err
	}
	sigBytes, err := decodeBase64OrHex(sig)
	if err != nil {
		return nil, nil, err
	}
	if len(pubBytes) != ed25519.PublicKeySize {
		return nil, nil, errors.New("invalid ed25519 public key length")
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return nil, nil, fmt.Errorf("%w: ed25519 signature is %d bytes", ErrInvalidSignature, len(sigBytes))
	}
	return ed25519.PublicKey(pubBytes), sigBytes, nil
}

func decodeBase64OrHex(input string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(input); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(input); err == nil {
		return b, nil
	}
	return decodeHex(input)
}

func decodeHex(input string) ([]byte, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(input), "0x")
	return hex.DecodeString(clean)
}

func randomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
