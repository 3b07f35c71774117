package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Reaganak40/chessai/searcher"
	"github.com/rs/zerolog/log"
)

// Store persists a single search tree to a file.
type Store struct {
	path string
}

func NewStore(dir, name string) *Store {
	return &Store{path: filepath.Join(dir, name)}
}

func (s *Store) Path() string {
	return s.path
}

// Save writes the tree rooted at root. The previous snapshot is replaced only once the new one
// has been written in full.
func (s *Store) Save(root *searcher.Node) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data := Encode(root)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	log.Info().Str("path", s.path).Int("nodes", root.Size()).Int("bytes", len(data)).Msg("snapshot saved")
	return nil
}

// Load reads the tree back. A missing file is reported with an error wrapping os.ErrNotExist;
// a corrupt one with ErrTypeMismatch.
func (s *Store) Load() (*searcher.Node, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}

	log.Info().Str("path", s.path).Int("nodes", root.Size()).Msg("snapshot loaded")
	return root, nil
}
