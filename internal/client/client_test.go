package client

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alphabot-ai/slashboard/internal/feed"
	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/view"
)

func TestGenerateCredentials(t *testing.T) {
	creds, err := GenerateCredentials("test-account")
	if err != nil {
		t.Fatalf("generate credentials: %v", err)
	}
	if creds.Name != "test-account" {
		t.Errorf("expected name 'test-account', got '%s'", creds.Name)
	}

	restored, err := CredentialsFromKey("test-account", creds.EncodedPrivateKey())
	if err != nil {
		t.Fatalf("restore credentials: %v", err)
	}
	if restored.PublicKey != creds.PublicKey {
		t.Fatalf("expected restored public key to match")
	}

	pub, _ := base64.StdEncoding.DecodeString(creds.PublicKey)
	sig, _ := base64.StdEncoding.DecodeString(restored.Sign("hello"))
	if !ed25519.Verify(pub, []byte("hello"), sig) {
		t.Fatalf("signature from restored key does not verify")
	}

	if _, err := CredentialsFromKey("x", base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatalf("expected short key to be rejected")
	}
}

func TestClientNew(t *testing.T) {
	c := New("https://example.com/")

	if c.BaseURL != "https://example.com" {
		t.Errorf("expected base URL 'https://example.com', got '%s'", c.BaseURL)
	}
	if c.HTTPClient == nil {
		t.Error("expected non-nil HTTP client")
	}
	if c.IsAuthenticated() {
		t.Error("expected new client to not be authenticated")
	}
}

func TestLoadMergesPagingParams(t *testing.T) {
	var got []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.URL.RequestURI())
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(model.Page{Items: []model.Item{}, EndOfItems: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	parent := int64(12)
	base := PageURL(BoardPostsPath("golang"), feed.Request{Sort: model.SortNew, Cursor: 99, Limit: 10})

	if _, err := c.Load(ctx, view.LoadRequest{URL: base}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := c.Load(ctx, view.LoadRequest{URL: base, Cursor: 6}); err != nil {
		t.Fatalf("load cursor: %v", err)
	}
	if _, err := c.Load(ctx, view.LoadRequest{URL: CommentsPath(3) + "?limit=10&sort=top", Offset: 20, ParentID: &parent}); err != nil {
		t.Fatalf("load children: %v", err)
	}

	want := []string{
		"/api/boards/golang/posts?limit=10&sort=new",
		"/api/boards/golang/posts?cursor=6&limit=10&sort=new",
		"/api/posts/3/comments?offset=20&parent=12&sort=top",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusServiceUnavailable, ErrRetrieval},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		_, err := New(srv.URL).Page(context.Background(), BoardsPath(), feed.Request{})
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"title required"}`))
	}))
	defer srv.Close()
	_, err := New(srv.URL).CreatePost(context.Background(), "golang", "", "", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Message != "title required" {
		t.Fatalf("expected APIError 400, got %v", err)
	}
}

func TestUnreachableServerIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base)
	_, err := c.Load(context.Background(), view.LoadRequest{URL: BoardsPath()})
	if !errors.Is(err, ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval for a failed page read, got %v", err)
	}

	_, err = c.CreateBoard(context.Background(), "golang", "Go", "")
	if err == nil || errors.Is(err, ErrRetrieval) {
		t.Fatalf("expected a plain transport error for a write, got %v", err)
	}
}

func TestConcurrentLoadsShareOneRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(model.Page{Items: []model.Item{{ID: 7, Kind: model.KindBoard}}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	req := view.LoadRequest{URL: BoardsPath()}

	var wg sync.WaitGroup
	pages := make([]model.Page, 3)
	errs := make([]error, 3)
	for i := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pages[i], errs[i] = c.Load(context.Background(), req)
		}()
	}

	cancelled, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Load(cancelled, req)
		done <- err
	}()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to stop waiting, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := hits.Load(); n != 1 {
		t.Fatalf("expected one upstream request, got %d", n)
	}
	for i := range 3 {
		if errs[i] != nil || len(pages[i].Items) != 1 || pages[i].Items[0].ID != 7 {
			t.Fatalf("caller %d: unexpected result %+v, %v", i, pages[i], errs[i])
		}
	}
	pages[0].Items[0].Vote = model.Up
	if pages[1].Items[0].Vote != model.None {
		t.Fatalf("expected each caller to own its items")
	}
}

func TestRegisterFallsBackToLogin(t *testing.T) {
	var sawBearer atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/challenge":
			_ = json.NewEncoder(w).Encode(map[string]any{"challenge": "abc"})
		case "/api/accounts":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"display name already taken"}`))
		case "/api/auth/verify":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			pub, _ := base64.StdEncoding.DecodeString(body["public_key"])
			sig, _ := base64.StdEncoding.DecodeString(body["signature"])
			if body["challenge"] != "abc" || !ed25519.Verify(pub, []byte("abc"), sig) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"account_id":   5,
				"access_token": "tok",
				"expires_at":   time.Now().Add(time.Hour),
			})
		case "/api/items/9":
			sawBearer.Store(r.Header.Get("Authorization") == "Bearer tok")
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 9, "deleted": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	creds, err := GenerateCredentials("returning")
	if err != nil {
		t.Fatalf("generate credentials: %v", err)
	}
	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.Register(ctx, creds, ""); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	id, err := c.RegisterAndAuthenticate(ctx, creds)
	if err != nil {
		t.Fatalf("register and authenticate: %v", err)
	}
	if id != 5 || !c.IsAuthenticated() {
		t.Fatalf("expected authenticated account 5, got %d", id)
	}

	patch, err := c.Delete(ctx, 9)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !sawBearer.Load() || patch.Deleted == nil || !*patch.Deleted {
		t.Fatalf("expected authorized delete patch, got %+v", patch)
	}
}
