package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/autobrief/autobrief/internal/newsletter"
)

// DirStore keeps one JSON document per user in a local directory, using the
// same file naming as GistStore.
type DirStore struct {
	dir string
}

// NewDirStore creates a store rooted at dir. The directory is created on
// the first save.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// ListUsers returns the email of every user with a document in the
// directory. A missing directory means no users.
func (s *DirStore) ListUsers(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var users []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		users = append(users, userEmailFromFile(e.Name()))
	}
	return users, nil
}

// LoadGroups reads and migrates a user's document.
func (s *DirStore) LoadGroups(ctx context.Context, userEmail string) (*newsletter.UserData, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, userFileName(userEmail)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading user document: %w", err)
	}
	return newsletter.Decode(raw)
}

// SaveGroups replaces a user's document on disk.
func (s *DirStore) SaveGroups(ctx context.Context, userEmail string, data *newsletter.UserData) error {
	raw, err := newsletter.Encode(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFileName(userEmail)), raw, 0o600); err != nil {
		return fmt.Errorf("writing user document: %w", err)
	}
	return nil
}
