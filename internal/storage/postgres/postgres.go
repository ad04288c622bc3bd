package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/akarpov/urlmap/internal/model"
	"github.com/akarpov/urlmap/internal/storage"
)

// Storage is the Postgres-backed MappingStore and CredentialStore.
// Uniqueness of short_code and original_url is enforced by the schema,
// which closes the check-then-insert race between concurrent shorteners.
type Storage struct {
	pool      *pgxpool.Pool
	urlTable  string
	userTable string
}

// NewStorage connects to the database and ensures the two tables exist.
// Table names come from configuration so deployments can point at
// pre-provisioned tables.
func NewStorage(dsn, urlTable, userTable string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &Storage{
		pool:      pool,
		urlTable:  urlTable,
		userTable: userTable,
	}

	if err := s.createTables(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) createTables(ctx context.Context) error {
	createURLs := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			short_code VARCHAR(6) PRIMARY KEY,
			original_url TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`, s.urlTable)

	if _, err := s.pool.Exec(ctx, createURLs); err != nil {
		return fmt.Errorf("error creating %s table: %w", s.urlTable, err)
	}

	createUsers := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL
		);
	`, s.userTable)

	if _, err := s.pool.Exec(ctx, createUsers); err != nil {
		return fmt.Errorf("error creating %s table: %w", s.userTable, err)
	}

	return nil
}

// FindByCode returns the mapping holding the given short code.
func (s *Storage) FindByCode(ctx context.Context, code string) (*model.Mapping, error) {
	query := fmt.Sprintf("SELECT short_code, original_url FROM %s WHERE short_code = $1", s.urlTable)

	var m model.Mapping
	err := s.pool.QueryRow(ctx, query, code).Scan(&m.ShortCode, &m.OriginalURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("error querying mapping by code: %w", err)
	}

	return &m, nil
}

// FindByURL returns the mapping holding the given normalized URL.
func (s *Storage) FindByURL(ctx context.Context, originalURL string) (*model.Mapping, error) {
	query := fmt.Sprintf("SELECT short_code, original_url FROM %s WHERE original_url = $1", s.urlTable)

	var m model.Mapping
	err := s.pool.QueryRow(ctx, query, originalURL).Scan(&m.ShortCode, &m.OriginalURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("error querying mapping by URL: %w", err)
	}

	return &m, nil
}

// Insert persists a new mapping, translating unique violations into
// the storage sentinels by the name of the violated constraint.
func (s *Storage) Insert(ctx context.Context, mapping model.Mapping) error {
	query := fmt.Sprintf("INSERT INTO %s (short_code, original_url) VALUES ($1, $2)", s.urlTable)

	_, err := s.pool.Exec(ctx, query, mapping.ShortCode, mapping.OriginalURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// The original_url unique index is named <table>_original_url_key;
			// anything else is the primary key on short_code.
			if pgErr.ConstraintName == s.urlTable+"_original_url_key" {
				return storage.ErrURLExists
			}
			return storage.ErrCodeExists
		}
		return fmt.Errorf("error inserting mapping: %w", err)
	}

	return nil
}

// DeleteByCode removes the mapping for code and reports the rows removed.
func (s *Storage) DeleteByCode(ctx context.Context, code string) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE short_code = $1", s.urlTable)

	tag, err := s.pool.Exec(ctx, query, code)
	if err != nil {
		return 0, fmt.Errorf("error deleting mapping: %w", err)
	}

	return tag.RowsAffected(), nil
}

// FindCredential returns the user record matching the pair exactly.
// Comparison is plaintext.
func (s *Storage) FindCredential(ctx context.Context, username, password string) (*model.Credential, error) {
	query := fmt.Sprintf("SELECT username, password FROM %s WHERE username = $1 AND password = $2", s.userTable)

	var c model.Credential
	err := s.pool.QueryRow(ctx, query, username, password).Scan(&c.Username, &c.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("error querying credential: %w", err)
	}

	return &c, nil
}

// Ping checks database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
