// Package client provides a Go client for the Slashboard API.
package client

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	// ErrRetrieval means the server could not read the page; retrying later
	// may succeed.
	ErrRetrieval = errors.New("retrieval failed")
)

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Client is a Slashboard API client. Identical concurrent GETs share one
// round trip.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	TokenExp   time.Time

	flight singleflight.Group
}

// Credentials holds an account's keypair and display name.
type Credentials struct {
	Name       string
	PublicKey  string
	PrivateKey ed25519.PrivateKey
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateCredentials creates a new ed25519 keypair.
func GenerateCredentials(name string) (*Credentials, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		Name:       name,
		PublicKey:  base64.StdEncoding.EncodeToString(pub),
		PrivateKey: priv,
	}, nil
}

// CredentialsFromKey restores credentials from a base64 private key as
// produced by EncodedPrivateKey.
func CredentialsFromKey(name, privKeyB64 string) (*Credentials, error) {
	privBytes, err := base64.StdEncoding.DecodeString(privKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(privBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key is %d bytes, want %d", len(privBytes), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(privBytes)
	return &Credentials{
		Name:       name,
		PublicKey:  base64.StdEncoding.EncodeToString(priv.Public().(ed25519.PublicKey)),
		PrivateKey: priv,
	}, nil
}

func (creds *Credentials) EncodedPrivateKey() string {
	return base64.StdEncoding.EncodeToString(creds.PrivateKey)
}

func (creds *Credentials) Sign(message string) string {
	sig := ed25519.Sign(creds.PrivateKey, []byte(message))
	return base64.StdEncoding.EncodeToString(sig)
}

// GetChallenge requests an authentication challenge from the server.
func (c *Client) GetChallenge(ctx context.Context, alg string) (string, error) {
	var result struct {
		Challenge string `json:"challenge"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/challenge", map[string]string{"alg": alg}, &result); err != nil {
		return "", err
	}
	return result.Challenge, nil
}

type tokenResponse struct {
	AccountID   int64     `json:"account_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (c *Client) signed(ctx context.Context, creds *Credentials) (map[string]string, error) {
	challenge, err := c.GetChallenge(ctx, "ed25519")
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return map[string]string{
		"alg":        "ed25519",
		"public_key": creds.PublicKey,
		"challenge":  challenge,
		"signature":  creds.Sign(challenge),
	}, nil
}

// Register creates an account for creds and keeps the returned token.
func (c *Client) Register(ctx context.Context, creds *Credentials, bio string) (int64, error) {
	body, err := c.signed(ctx, creds)
	if err != nil {
		return 0, err
	}
	body["display_name"] = creds.Name
	body["bio"] = bio

	var result tokenResponse
	err = c.do(ctx, http.MethodPost, "/api/accounts", body, &result)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return 0, ErrAlreadyRegistered
	}
	if err != nil {
		return 0, err
	}
	c.Token = result.AccessToken
	c.TokenExp = result.ExpiresAt
	return result.AccountID, nil
}

// Authenticate gets a bearer token for creds.
func (c *Client) Authenticate(ctx context.Context, creds *Credentials) (int64, error) {
	body, err := c.signed(ctx, creds)
	if err != nil {
		return 0, err
	}
	var result tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", body, &result); err != nil {
		return 0, err
	}
	c.Token = result.AccessToken
	c.TokenExp = result.ExpiresAt
	return result.AccountID, nil
}

// RegisterAndAuthenticate registers creds if needed and signs in.
func (c *Client) RegisterAndAuthenticate(ctx context.Context, creds *Credentials) (int64, error) {
	id, err := c.Register(ctx, creds, "")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrAlreadyRegistered) {
		return 0, fmt.Errorf("register: %w", err)
	}
	return c.Authenticate(ctx, creds)
}

func (c *Client) IsAuthenticated() bool {
	return c.Token != "" && time.Now().Before(c.TokenExp)
}

// do sends body as JSON and decodes a successful response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if method == http.MethodGet && ctx.Err() == nil {
			return fmt.Errorf("%w: %w", ErrRetrieval, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrRetrieval, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
