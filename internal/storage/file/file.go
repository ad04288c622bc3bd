package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/akarpov/urlmap/internal/model"
	"github.com/akarpov/urlmap/internal/storage"
)

// Storage implements MappingStore backed by a JSONL file: one mapping
// per line, loaded fully on start, appended on insert, compacted on
// delete. Uniqueness checks run against the in-memory index.
type Storage struct {
	filePath    string
	byCode      map[string]string
	byURL       map[string]string
	mu          sync.RWMutex
	fileWriteMu sync.Mutex
}

// NewStorage creates a file-backed storage at the provided path.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		byCode:   make(map[string]string),
		byURL:    make(map[string]string),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) loadFromFile() error {
	f, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var m model.Mapping
		if err := json.Unmarshal(line, &m); err != nil {
			return fmt.Errorf("failed to parse storage record: %w", err)
		}

		s.byCode[m.ShortCode] = m.OriginalURL
		s.byURL[m.OriginalURL] = m.ShortCode
	}

	return scanner.Err()
}

func (s *Storage) appendToFile(m model.Mapping) error {
	s.fileWriteMu.Lock()
	defer s.fileWriteMu.Unlock()

	f, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open storage file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write mapping: %w", err)
	}

	return nil
}

// rewriteFile dumps the in-memory state back to disk. Caller must hold mu.
func (s *Storage) rewriteFile() error {
	s.fileWriteMu.Lock()
	defer s.fileWriteMu.Unlock()

	f, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to rewrite storage file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for code, originalURL := range s.byCode {
		data, err := json.Marshal(model.Mapping{ShortCode: code, OriginalURL: originalURL})
		if err != nil {
			return fmt.Errorf("failed to encode mapping: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write mapping: %w", err)
		}
	}

	return w.Flush()
}

// FindByCode returns the mapping holding the given short code.
func (s *Storage) FindByCode(ctx context.Context, code string) (*model.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	originalURL, found := s.byCode[code]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &model.Mapping{ShortCode: code, OriginalURL: originalURL}, nil
}

// FindByURL returns the mapping holding the given normalized URL.
func (s *Storage) FindByURL(ctx context.Context, originalURL string) (*model.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, found := s.byURL[originalURL]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &model.Mapping{ShortCode: code, OriginalURL: originalURL}, nil
}

// Insert stores a new mapping and appends it to the file.
func (s *Storage) Insert(ctx context.Context, mapping model.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[mapping.ShortCode]; exists {
		return storage.ErrCodeExists
	}
	if _, exists := s.byURL[mapping.OriginalURL]; exists {
		return storage.ErrURLExists
	}

	if err := s.appendToFile(mapping); err != nil {
		return err
	}

	s.byCode[mapping.ShortCode] = mapping.OriginalURL
	s.byURL[mapping.OriginalURL] = mapping.ShortCode
	return nil
}

// DeleteByCode removes the mapping for code, compacting the file.
func (s *Storage) DeleteByCode(ctx context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	originalURL, found := s.byCode[code]
	if !found {
		return 0, nil
	}

	delete(s.byCode, code)
	delete(s.byURL, originalURL)

	if err := s.rewriteFile(); err != nil {
		// Put the record back so memory and disk stay consistent.
		s.byCode[code] = originalURL
		s.byURL[originalURL] = code
		return 0, err
	}

	return 1, nil
}

// Ping verifies the storage file's directory is accessible.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.filePath))
	return err
}
