package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mbolis/survey-admin/httpx"
)

type memStore struct {
	mu      sync.Mutex
	key     string
	ok      bool
	loadErr error
}

func (s *memStore) Load(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.ok, s.loadErr
}

func (s *memStore) Save(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key, s.ok = key, true
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key, s.ok = "", false
	return nil
}

type fakeAPI struct {
	mu    sync.Mutex
	valid map[string]bool
	err   error
	calls int
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (httpx.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	key := body.(map[string]any)["key"].(string)
	return httpx.Payload{
		"status": "success",
		"data":   map[string]any{"valid": f.valid[key]},
	}, nil
}

func TestLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	m := New(&fakeAPI{valid: map[string]bool{"good": true}}, store)

	if !m.LoginWithKey(ctx, "good") {
		t.Fatal("valid key rejected")
	}
	if !m.IsAuthed() {
		t.Fatal("not authenticated after login")
	}
	if key, ok, _ := store.Load(ctx); !ok || key != "good" {
		t.Fatalf("persisted key = %q, %v", key, ok)
	}

	m.Logout(ctx)
	snap := m.Snapshot()
	if snap.IsAuthed || snap.HasKey || snap.Key != "" || snap.State != StateAnonymous {
		t.Fatalf("after logout: %+v", snap)
	}
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatal("persisted key not cleared")
	}
}

func TestFailedLoginKeepsState(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	m := New(&fakeAPI{valid: map[string]bool{"good": true}}, store)

	if m.LoginWithKey(ctx, "bad") {
		t.Fatal("invalid key accepted")
	}
	if m.IsAuthed() {
		t.Fatal("authenticated after failed login")
	}
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatal("rejected key was persisted")
	}

	m.LoginWithKey(ctx, "good")
	if m.LoginWithKey(ctx, "bad") {
		t.Fatal("invalid key accepted")
	}
	snap := m.Snapshot()
	if !snap.IsAuthed || snap.Key != "good" {
		t.Fatalf("failed login changed state: %+v", snap)
	}
	if key, _, _ := store.Load(ctx); key != "good" {
		t.Fatalf("persisted key = %q", key)
	}
}

func TestBootstrapWithoutStoredKey(t *testing.T) {
	api := &fakeAPI{}
	m := New(api, &memStore{})

	if m.Initialized() {
		t.Fatal("initialized before bootstrap")
	}
	m.Bootstrap(context.Background())
	if !m.Initialized() || m.IsAuthed() {
		t.Fatalf("snapshot = %+v", m.Snapshot())
	}
	if api.calls != 0 {
		t.Fatalf("validation called %d times without a stored key", api.calls)
	}
}

func TestBootstrapRevalidatesOnce(t *testing.T) {
	api := &fakeAPI{valid: map[string]bool{"stored": true}}
	m := New(api, &memStore{key: "stored", ok: true})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.EnsureBootstrapped(context.Background())
		}()
	}
	wg.Wait()
	m.Bootstrap(context.Background())

	if api.calls != 1 {
		t.Fatalf("validation called %d times, want 1", api.calls)
	}
	snap := m.Snapshot()
	if !snap.Initialized || !snap.IsAuthed || snap.Key != "stored" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestBootstrapRevokedKey(t *testing.T) {
	m := New(&fakeAPI{valid: map[string]bool{}}, &memStore{key: "revoked", ok: true})
	m.Bootstrap(context.Background())

	snap := m.Snapshot()
	if !snap.Initialized || snap.IsAuthed || snap.State != StateAnonymous {
		t.Fatalf("snapshot = %+v", snap)
	}
	// the stored key is kept in memory even when it no longer validates
	if snap.Key != "revoked" {
		t.Fatalf("key = %q", snap.Key)
	}
}

func TestBootstrapStoreError(t *testing.T) {
	m := New(&fakeAPI{}, &memStore{loadErr: errors.New("disk gone")})
	m.Bootstrap(context.Background())
	if !m.Initialized() || m.IsAuthed() {
		t.Fatalf("snapshot = %+v", m.Snapshot())
	}
}

func TestValidateKeySwallowsErrors(t *testing.T) {
	m := New(&fakeAPI{err: errors.New("connection refused")}, &memStore{})
	if m.ValidateKey(context.Background(), "any") {
		t.Fatal("network failure counted as valid")
	}
}

func TestValidateKeyOverHTTP(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"valid", http.StatusOK, `{"status":"success","data":{"valid":true}}`, true},
		{"invalid", http.StatusOK, `{"status":"success","data":{"valid":false}}`, false},
		{"truthy is not true", http.StatusOK, `{"status":"success","data":{"valid":"yes"}}`, false},
		{"error status", http.StatusOK, `{"status":"error","data":{"valid":true}}`, false},
		{"no data", http.StatusOK, `{"status":"success"}`, false},
		{"forbidden", http.StatusForbidden, `{"status":"error","message":"nope"}`, false},
		{"html", http.StatusOK, `<html></html>`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != ValidatePath || r.Method != http.MethodPost {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(c.status)
				w.Write([]byte(c.body))
			}))
			defer srv.Close()

			m := New(httpx.NewClient(srv.URL, ""), &memStore{})
			if got := m.ValidateKey(context.Background(), "k"); got != c.want {
				t.Fatalf("ValidateKey = %v, want %v", got, c.want)
			}
		})
	}
}
