package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements PostStore on top of a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ PostStore = (*FileStore)(nil)

// NewFileStore creates a store backed by path.
// If path is empty, defaults to ~/.chirp/twitter.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("store: failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".chirp", "twitter.json")
	}
	return &FileStore{path: path}, nil
}

// GetPosts returns the post history for accountID. A missing file is created
// with the empty default document first. Unknown accounts yield an empty slice.
func (s *FileStore) GetPosts(accountID string) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	idx := doc.find(accountID)
	if idx < 0 || doc.Accounts[idx].Posts == nil {
		return []Post{}, nil
	}
	return doc.Accounts[idx].Posts, nil
}

// AddPost appends post to the history of accountID, creating the account
// record if it does not exist yet, and rewrites the file.
func (s *FileStore) AddPost(accountID string, post Post) error {
	if accountID == "" {
		return fmt.Errorf("store: account id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return err
	}

	doc, err := s.load()
	if err != nil {
		return err
	}

	if idx := doc.find(accountID); idx >= 0 {
		doc.Accounts[idx].Posts = append(doc.Accounts[idx].Posts, post)
	} else {
		doc.Accounts = append(doc.Accounts, Account{ID: accountID, Posts: []Post{post}})
	}

	return s.save(doc)
}

// AddAccount registers a new account record with an empty history.
func (s *FileStore) AddAccount(account Account) error {
	if account.ID == "" {
		return fmt.Errorf("store: account id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return err
	}

	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc.find(account.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrAccountExists, account.ID)
	}

	account.Posts = append([]Post{}, account.Posts...)
	doc.Accounts = append(doc.Accounts, account)
	return s.save(doc)
}

// Accounts returns every account record in file order.
func (s *FileStore) Accounts() ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Accounts, nil
}

// Account returns the record for id, or ErrAccountNotFound.
func (s *FileStore) Account(id string) (*Account, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
}

// Load reads and decodes the whole document.
func (s *FileStore) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save atomically replaces the document on disk.
func (s *FileStore) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *FileStore) ensureFile() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: stat %s: %w", s.path, err)
	}
	return s.save(&Document{})
}

func (s *FileStore) load() (*Document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *FileStore) save(doc *Document) error {
	doc.normalize()

	b, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("store: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// CreateTemp uses 0600; keep the mode the cache already had
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: chmod temp file: %w", err)
	}

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("store: atomic rename %s: %w", s.path, err)
	}
	return nil
}
