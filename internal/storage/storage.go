package storage

import (
	"context"
	"errors"

	"github.com/akarpov/urlmap/internal/model"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// ErrURLExists is returned by Insert when the unique constraint on
// original_url rejects the mapping: the URL already has a code.
var ErrURLExists = errors.New("URL already has a mapping")

// ErrCodeExists is returned by Insert when the unique constraint on
// short_code rejects the mapping: a concurrent writer claimed the code
// between the uniqueness check and the insert.
var ErrCodeExists = errors.New("short code already in use")

// MappingStore is the persistence contract for short-code mappings.
// Both lookup columns are unique: the store is the backstop that keeps
// concurrent shorten requests from minting two codes for one URL.
type MappingStore interface {
	FindByCode(ctx context.Context, code string) (*model.Mapping, error)

	FindByURL(ctx context.Context, originalURL string) (*model.Mapping, error)

	// Insert persists a new mapping. Unique-constraint conflicts come
	// back as ErrURLExists (dedup hit) or ErrCodeExists (lost code race).
	Insert(ctx context.Context, mapping model.Mapping) error

	// DeleteByCode removes at most one mapping and reports how many
	// rows were actually removed, so callers can tell "not found"
	// apart from "deleted".
	DeleteByCode(ctx context.Context, code string) (int64, error)
}

// CredentialStore looks up deletion credentials in the user store.
type CredentialStore interface {
	// FindCredential returns the record matching the username/password
	// pair exactly, or ErrNotFound.
	FindCredential(ctx context.Context, username, password string) (*model.Credential, error)
}
