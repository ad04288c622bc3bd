package memory

import (
	"context"
	"sync"

	"github.com/akarpov/urlmap/internal/model"
	"github.com/akarpov/urlmap/internal/storage"
)

// Storage implements in-memory MappingStore and CredentialStore for
// testing and development. It enforces the same two uniqueness
// constraints the Postgres backend does.
type Storage struct {
	byCode      map[string]string
	byURL       map[string]string
	credentials map[string]string
	mutex       sync.RWMutex
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		byCode:      make(map[string]string),
		byURL:       make(map[string]string),
		credentials: make(map[string]string),
	}
}

// FindByCode returns the mapping holding the given short code.
func (s *Storage) FindByCode(ctx context.Context, code string) (*model.Mapping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	originalURL, found := s.byCode[code]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &model.Mapping{ShortCode: code, OriginalURL: originalURL}, nil
}

// FindByURL returns the mapping holding the given normalized URL.
func (s *Storage) FindByURL(ctx context.Context, originalURL string) (*model.Mapping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	code, found := s.byURL[originalURL]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &model.Mapping{ShortCode: code, OriginalURL: originalURL}, nil
}

// Insert stores a new mapping, rejecting duplicates on either column.
func (s *Storage) Insert(ctx context.Context, mapping model.Mapping) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.byCode[mapping.ShortCode]; exists {
		return storage.ErrCodeExists
	}
	if _, exists := s.byURL[mapping.OriginalURL]; exists {
		return storage.ErrURLExists
	}

	s.byCode[mapping.ShortCode] = mapping.OriginalURL
	s.byURL[mapping.OriginalURL] = mapping.ShortCode
	return nil
}

// DeleteByCode removes the mapping for code and reports how many rows went away.
func (s *Storage) DeleteByCode(ctx context.Context, code string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	originalURL, found := s.byCode[code]
	if !found {
		return 0, nil
	}

	delete(s.byCode, code)
	delete(s.byURL, originalURL)
	return 1, nil
}

// AddCredential seeds a username/password pair into the user store.
func (s *Storage) AddCredential(username, password string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.credentials[username] = password
}

// FindCredential returns the credential matching the pair exactly.
func (s *Storage) FindCredential(ctx context.Context, username, password string) (*model.Credential, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stored, found := s.credentials[username]
	if !found || stored != password {
		return nil, storage.ErrNotFound
	}

	return &model.Credential{Username: username, Password: password}, nil
}

// Ping reports the store as always reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
