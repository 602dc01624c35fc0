package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
)

const lockFileName = ".lock"

// File is one uploaded file to keep on disk
type File struct {
	Name    string
	Content []byte
}

// UploadStore keeps uploaded files under <root>/<userID>/<alignmentID>/.
// Writes and pruning for one user are serialized with a file lock so
// several processes can share the directory.
type UploadStore struct {
	root string
}

func NewUploadStore(root string) (*UploadStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadStore{root: root}, nil
}

func (s *UploadStore) Root() string {
	return s.root
}

// Save writes files for one alignment and returns the directory used.
// The i-th file is stored as file<i+1>_<basename>, so uploads sharing a
// name do not overwrite each other.
func (s *UploadStore) Save(userID, alignmentID string, files ...File) (string, error) {
	if err := validSegment(userID); err != nil {
		return "", fmt.Errorf("invalid user id: %w", err)
	}
	if err := validSegment(alignmentID); err != nil {
		return "", fmt.Errorf("invalid alignment id: %w", err)
	}

	unlock, err := s.lockUser(userID)
	if err != nil {
		return "", err
	}
	defer unlock()

	dir := filepath.Join(s.root, userID, alignmentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create alignment dir: %w", err)
	}

	for i, f := range files {
		base := filepath.Base(f.Name)
		if err := validSegment(base); err != nil {
			return "", fmt.Errorf("invalid file name %q: %w", f.Name, err)
		}
		name := StoredName(i, base)
		if err := os.WriteFile(filepath.Join(dir, name), f.Content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	return dir, nil
}

// StoredName is the on-disk name of the file at index slot of a Save call
func StoredName(slot int, name string) string {
	return fmt.Sprintf("file%d_%s", slot+1, filepath.Base(name))
}

// Prune removes every alignment directory of userID whose id is not in
// keep and returns the removed ids
func (s *UploadStore) Prune(userID string, keep []string) ([]string, error) {
	if err := validSegment(userID); err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	userDir := filepath.Join(s.root, userID)
	if _, err := os.Stat(userDir); os.IsNotExist(err) {
		return nil, nil
	}

	unlock, err := s.lockUser(userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(userDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	retained := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		retained[id] = struct{}{}
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := retained[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(userDir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}

	if len(removed) > 0 {
		log.Debug().
			Str("userId", userID).
			Strs("removed", removed).
			Msg("Pruned old uploads")
	}

	return removed, nil
}

func (s *UploadStore) lockUser(userID string) (func(), error) {
	userDir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create user dir: %w", err)
	}

	lock := flock.New(filepath.Join(userDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock uploads of %s: %w", userID, err)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Str("userId", userID).Msg("Failed to release upload lock")
		}
	}, nil
}

func validSegment(s string) error {
	if s == "" || s == "." || s == ".." || s == lockFileName {
		return fmt.Errorf("%q is not allowed", s)
	}
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%q contains a path separator", s)
	}
	return nil
}
