package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akarpov/urlmap/internal/generator"
	"github.com/akarpov/urlmap/internal/model"
	"github.com/akarpov/urlmap/internal/storage"
)

var (
	// ErrEmptyURL is returned when the input URL is empty after
	// scheme stripping.
	ErrEmptyURL = errors.New("please provide a URL")

	// ErrNotFound is returned when a short code has no live mapping.
	ErrNotFound = errors.New("unable to find or delete the shortcode")

	// ErrUnauthorized is returned when deletion credentials match no
	// record in the user store.
	ErrUnauthorized = errors.New("wrong username and, or password")

	// ErrCodeSpaceExhausted is returned when every generated candidate
	// collided within the attempt budget. With 62^6 codes this signals
	// a store near capacity, not bad luck.
	ErrCodeSpaceExhausted = errors.New("could not allocate an unused short code")
)

// maxCodeAttempts bounds both the uniqueness-resolution loop and the
// insert retry on a lost code race.
const maxCodeAttempts = 10

// Service implements the shorten, resolve, and delete workflows on top
// of a MappingStore and a CredentialStore.
type Service struct {
	mappings    storage.MappingStore
	credentials storage.CredentialStore
}

// NewService constructs a Service over the given stores.
func NewService(mappings storage.MappingStore, credentials storage.CredentialStore) *Service {
	return &Service{
		mappings:    mappings,
		credentials: credentials,
	}
}

// NormalizeURL strips at most one leading "http://", then at most one
// leading "https://", in that fixed order. Both checks always run, so
// "http://https://x" normalizes to "x".
func NormalizeURL(rawURL string) string {
	link := strings.TrimPrefix(rawURL, "http://")
	link = strings.TrimPrefix(link, "https://")
	return link
}

// Shorten normalizes rawURL and returns the short code that resolves
// to it, reusing the existing code if the URL was shortened before.
func (s *Service) Shorten(ctx context.Context, rawURL string) (string, error) {
	link := NormalizeURL(rawURL)
	if link == "" {
		return "", ErrEmptyURL
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.resolveUniqueCode(ctx)
		if err != nil {
			return "", err
		}

		existing, err := s.mappings.FindByURL(ctx, link)
		if err == nil {
			// Dedup hit: the freshly drawn code is discarded. It was
			// never persisted, so the wasted draw carries no state.
			return existing.ShortCode, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("error checking for existing mapping: %w", err)
		}

		err = s.mappings.Insert(ctx, model.Mapping{ShortCode: code, OriginalURL: link})
		switch {
		case err == nil:
			return code, nil

		case errors.Is(err, storage.ErrURLExists):
			// Lost the dedup race to a concurrent shortener; the
			// winner's code is authoritative.
			winner, ferr := s.mappings.FindByURL(ctx, link)
			if ferr != nil {
				return "", fmt.Errorf("error re-fetching mapping after conflict: %w", ferr)
			}
			return winner.ShortCode, nil

		case errors.Is(err, storage.ErrCodeExists):
			// A concurrent writer claimed the code between the
			// uniqueness check and the insert. Draw again.
			log.Debug().Str("code", code).Int("attempt", attempt+1).
				Msg("Short code claimed concurrently, retrying")

		default:
			return "", fmt.Errorf("error inserting mapping: %w", err)
		}
	}

	return "", ErrCodeSpaceExhausted
}

// resolveUniqueCode draws candidates until one is absent from the
// store. Store errors abort immediately and are never retried; only
// collisions are.
func (s *Service) resolveUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generator.GenerateCode()
		if err != nil {
			return "", fmt.Errorf("error generating short code: %w", err)
		}

		_, err = s.mappings.FindByCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("error checking code uniqueness: %w", err)
		}

		log.Debug().Str("code", code).Int("attempt", attempt+1).
			Msg("Generated code already in use, retrying")
	}

	return "", ErrCodeSpaceExhausted
}

// Resolve returns the target URL for a code with an enforced https://
// prefix. Lookup failures collapse into not-found: a public resolve
// path must not leak store internals, so outages read as absent codes.
// The underlying error is still logged.
func (s *Service) Resolve(ctx context.Context, code string) (string, bool) {
	m, err := s.mappings.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error().Err(err).Str("code", code).Msg("Store error on resolve")
		}
		return "", false
	}

	return "https://" + m.OriginalURL, true
}

// Delete removes the mapping for code after verifying the credentials
// against the user store. Credential mismatch, credential-store errors,
// and a missing mapping are reported as distinct errors.
func (s *Service) Delete(ctx context.Context, code, username, password string) error {
	_, err := s.credentials.FindCredential(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("error while checking credentials: %w", err)
	}

	deleted, err := s.mappings.DeleteByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("error deleting mapping: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return nil
}
