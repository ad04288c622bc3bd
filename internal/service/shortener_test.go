package service

import (
	"context"
	"errors"
	"testing"

	"github.com/akarpov/urlmap/internal/model"
	"github.com/akarpov/urlmap/internal/storage"
	"github.com/akarpov/urlmap/internal/storage/memory"
)

type mockMappingStore struct {
	findByCodeFunc   func(code string) (*model.Mapping, error)
	findByURLFunc    func(originalURL string) (*model.Mapping, error)
	insertFunc       func(mapping model.Mapping) error
	deleteByCodeFunc func(code string) (int64, error)
}

func (m *mockMappingStore) FindByCode(ctx context.Context, code string) (*model.Mapping, error) {
	if m.findByCodeFunc != nil {
		return m.findByCodeFunc(code)
	}
	return nil, storage.ErrNotFound
}

func (m *mockMappingStore) FindByURL(ctx context.Context, originalURL string) (*model.Mapping, error) {
	if m.findByURLFunc != nil {
		return m.findByURLFunc(originalURL)
	}
	return nil, storage.ErrNotFound
}

func (m *mockMappingStore) Insert(ctx context.Context, mapping model.Mapping) error {
	if m.insertFunc != nil {
		return m.insertFunc(mapping)
	}
	return nil
}

func (m *mockMappingStore) DeleteByCode(ctx context.Context, code string) (int64, error) {
	if m.deleteByCodeFunc != nil {
		return m.deleteByCodeFunc(code)
	}
	return 0, nil
}

type mockCredentialStore struct {
	findCredentialFunc func(username, password string) (*model.Credential, error)
}

func (m *mockCredentialStore) FindCredential(ctx context.Context, username, password string) (*model.Credential, error) {
	if m.findCredentialFunc != nil {
		return m.findCredentialFunc(username, password)
	}
	return nil, storage.ErrNotFound
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "http prefix", in: "http://example.com/page", want: "example.com/page"},
		{name: "https prefix", in: "https://example.com", want: "example.com"},
		{name: "no prefix", in: "example.com", want: "example.com"},
		{name: "empty", in: "", want: ""},
		{name: "prefix only http", in: "http://", want: ""},
		{name: "prefix only https", in: "https://", want: ""},
		// The http check runs first, then the https check runs on the
		// remainder regardless.
		{name: "stacked schemes", in: "http://https://x", want: "x"},
		{name: "https then http is not restripped", in: "https://http://x", want: "http://x"},
		{name: "scheme in the middle", in: "example.com/?url=https://other.com", want: "example.com/?url=https://other.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestService_Shorten(t *testing.T) {
	ctx := context.Background()

	t.Run("empty URL", func(t *testing.T) {
		store := memory.NewStorage()
		svc := NewService(store, store)

		for _, in := range []string{"", "http://", "https://", "http://https://"} {
			if _, err := svc.Shorten(ctx, in); !errors.Is(err, ErrEmptyURL) {
				t.Errorf("Service.Shorten(%q) error = %v, want ErrEmptyURL", in, err)
			}
		}

		// No mapping may be created on a validation failure.
		if _, err := store.FindByURL(ctx, ""); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("FindByURL(\"\") after rejected shorten error = %v, want ErrNotFound", err)
		}
	})

	t.Run("stores normalized URL", func(t *testing.T) {
		store := memory.NewStorage()
		svc := NewService(store, store)

		code, err := svc.Shorten(ctx, "http://example.com/page")
		if err != nil {
			t.Fatalf("Service.Shorten() error = %v", err)
		}
		if len(code) != 6 {
			t.Errorf("Service.Shorten() code length = %d, want 6", len(code))
		}

		m, err := store.FindByCode(ctx, code)
		if err != nil {
			t.Fatalf("FindByCode(%q) error = %v", code, err)
		}
		if m.OriginalURL != "example.com/page" {
			t.Errorf("stored original_url = %q, want %q", m.OriginalURL, "example.com/page")
		}
	})

	t.Run("sequential dedup", func(t *testing.T) {
		store := memory.NewStorage()
		svc := NewService(store, store)

		first, err := svc.Shorten(ctx, "https://a.com")
		if err != nil {
			t.Fatalf("Service.Shorten() first error = %v", err)
		}

		// A different scheme normalizes to the same URL and must reuse
		// the existing code rather than mint a second one.
		second, err := svc.Shorten(ctx, "http://a.com")
		if err != nil {
			t.Fatalf("Service.Shorten() second error = %v", err)
		}

		if first != second {
			t.Errorf("Service.Shorten() minted two codes for one URL: %q and %q", first, second)
		}
	})

	t.Run("store error on dedup check aborts", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		mappings := &mockMappingStore{
			findByURLFunc: func(originalURL string) (*model.Mapping, error) {
				return nil, storeErr
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		_, err := svc.Shorten(ctx, "example.com")
		if !errors.Is(err, storeErr) {
			t.Errorf("Service.Shorten() error = %v, want wrapped %v", err, storeErr)
		}
	})

	t.Run("URL conflict on insert returns winner code", func(t *testing.T) {
		// Simulates losing the dedup race: the pre-insert check sees no
		// mapping, the insert hits the unique index, and the re-fetch
		// finds the concurrent winner.
		var urlChecked bool
		mappings := &mockMappingStore{
			findByURLFunc: func(originalURL string) (*model.Mapping, error) {
				if !urlChecked {
					urlChecked = true
					return nil, storage.ErrNotFound
				}
				return &model.Mapping{ShortCode: "winner", OriginalURL: originalURL}, nil
			},
			insertFunc: func(mapping model.Mapping) error {
				return storage.ErrURLExists
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		code, err := svc.Shorten(ctx, "https://raced.com")
		if err != nil {
			t.Fatalf("Service.Shorten() error = %v", err)
		}
		if code != "winner" {
			t.Errorf("Service.Shorten() = %q, want %q", code, "winner")
		}
	})

	t.Run("code conflict on insert retries with fresh draw", func(t *testing.T) {
		inserts := 0
		mappings := &mockMappingStore{
			insertFunc: func(mapping model.Mapping) error {
				inserts++
				if inserts == 1 {
					return storage.ErrCodeExists
				}
				return nil
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		if _, err := svc.Shorten(ctx, "example.com"); err != nil {
			t.Fatalf("Service.Shorten() error = %v", err)
		}
		if inserts != 2 {
			t.Errorf("Service.Shorten() insert attempts = %d, want 2", inserts)
		}
	})

	t.Run("exhaustion when every draw collides", func(t *testing.T) {
		mappings := &mockMappingStore{
			findByCodeFunc: func(code string) (*model.Mapping, error) {
				return &model.Mapping{ShortCode: code, OriginalURL: "taken.com"}, nil
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		if _, err := svc.Shorten(ctx, "example.com"); !errors.Is(err, ErrCodeSpaceExhausted) {
			t.Errorf("Service.Shorten() error = %v, want ErrCodeSpaceExhausted", err)
		}
	})
}

func TestService_ResolveUniqueCode(t *testing.T) {
	ctx := context.Background()

	t.Run("returns unused code after collisions", func(t *testing.T) {
		lookups := 0
		mappings := &mockMappingStore{
			findByCodeFunc: func(code string) (*model.Mapping, error) {
				lookups++
				if lookups <= 3 {
					return &model.Mapping{ShortCode: code, OriginalURL: "taken.com"}, nil
				}
				return nil, storage.ErrNotFound
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		code, err := svc.resolveUniqueCode(ctx)
		if err != nil {
			t.Fatalf("resolveUniqueCode() error = %v", err)
		}
		if len(code) != 6 {
			t.Errorf("resolveUniqueCode() code length = %d, want 6", len(code))
		}
		if lookups != 4 {
			t.Errorf("resolveUniqueCode() lookups = %d, want 4", lookups)
		}
	})

	t.Run("store error aborts without retry", func(t *testing.T) {
		storeErr := errors.New("timeout")
		lookups := 0
		mappings := &mockMappingStore{
			findByCodeFunc: func(code string) (*model.Mapping, error) {
				lookups++
				return nil, storeErr
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		_, err := svc.resolveUniqueCode(ctx)
		if !errors.Is(err, storeErr) {
			t.Errorf("resolveUniqueCode() error = %v, want wrapped %v", err, storeErr)
		}
		if lookups != 1 {
			t.Errorf("resolveUniqueCode() lookups = %d, want 1 (no retry on store error)", lookups)
		}
	})
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip enforces https", func(t *testing.T) {
		store := memory.NewStorage()
		svc := NewService(store, store)

		code, err := svc.Shorten(ctx, "http://example.com/page")
		if err != nil {
			t.Fatalf("Service.Shorten() error = %v", err)
		}

		target, found := svc.Resolve(ctx, code)
		if !found {
			t.Fatal("Service.Resolve() found = false, want true")
		}
		if target != "https://example.com/page" {
			t.Errorf("Service.Resolve() = %q, want %q", target, "https://example.com/page")
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		store := memory.NewStorage()
		svc := NewService(store, store)

		if _, found := svc.Resolve(ctx, "nosuch"); found {
			t.Error("Service.Resolve() found = true for unknown code")
		}
	})

	t.Run("store error collapses into not found", func(t *testing.T) {
		mappings := &mockMappingStore{
			findByCodeFunc: func(code string) (*model.Mapping, error) {
				return nil, errors.New("connection refused")
			},
		}
		svc := NewService(mappings, &mockCredentialStore{})

		if _, found := svc.Resolve(ctx, "abc123"); found {
			t.Error("Service.Resolve() found = true on store error")
		}
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*Service, *memory.Storage, string) {
		t.Helper()
		store := memory.NewStorage()
		store.AddCredential("admin", "hunter2")
		svc := NewService(store, store)

		code, err := svc.Shorten(ctx, "https://example.com")
		if err != nil {
			t.Fatalf("Service.Shorten() error = %v", err)
		}
		return svc, store, code
	}

	t.Run("wrong password leaves mapping resolvable", func(t *testing.T) {
		svc, _, code := seed(t)

		err := svc.Delete(ctx, code, "admin", "wrong")
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Service.Delete() error = %v, want ErrUnauthorized", err)
		}

		if _, found := svc.Resolve(ctx, code); !found {
			t.Error("Service.Resolve() found = false after unauthorized delete attempt")
		}
	})

	t.Run("authorized delete", func(t *testing.T) {
		svc, _, code := seed(t)

		if err := svc.Delete(ctx, code, "admin", "hunter2"); err != nil {
			t.Fatalf("Service.Delete() error = %v", err)
		}

		if _, found := svc.Resolve(ctx, code); found {
			t.Error("Service.Resolve() found = true after delete")
		}
	})

	t.Run("authorized delete of unknown code", func(t *testing.T) {
		svc, _, _ := seed(t)

		if err := svc.Delete(ctx, "nosuch", "admin", "hunter2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Service.Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("credential store error is not auth error", func(t *testing.T) {
		storeErr := errors.New("users table missing")
		credentials := &mockCredentialStore{
			findCredentialFunc: func(username, password string) (*model.Credential, error) {
				return nil, storeErr
			},
		}
		svc := NewService(&mockMappingStore{}, credentials)

		err := svc.Delete(ctx, "abc123", "admin", "hunter2")
		if !errors.Is(err, storeErr) {
			t.Errorf("Service.Delete() error = %v, want wrapped %v", err, storeErr)
		}
		if errors.Is(err, ErrUnauthorized) {
			t.Error("Service.Delete() collapsed store error into ErrUnauthorized")
		}
	})
}

func BenchmarkService_Shorten(b *testing.B) {
	store := memory.NewStorage()
	svc := NewService(store, store)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.Shorten(ctx, "https://example.com/very/long/url/path")
	}
}

func BenchmarkService_Resolve(b *testing.B) {
	store := memory.NewStorage()
	svc := NewService(store, store)
	ctx := context.Background()

	code, err := svc.Shorten(ctx, "https://example.com")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.Resolve(ctx, code)
	}
}
