package content

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// FileStore reads content from a YAML or JSON file shaped as
// `{ "<category>": ["<tidbit text>", ...] }`.
// The file is re-read whenever its modification time changes.
type FileStore struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	raw     []byte
	data    map[string][]string
}

// NewFileStore creates a FileStore for path. The file is read lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Parse decodes a content document.
func Parse(b []byte) (map[string][]string, error) {
	data := make(map[string][]string)
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal() > %w", err)
	}
	return data, nil
}

// ReadFile reads and decodes a content file.
func ReadFile(path string) (map[string][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	data, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("Parse(%s) > %w", path, err)
	}
	return data, nil
}

func (s *FileStore) load() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("os.Stat(%s) > %w", s.path, err)
	}
	if s.data != nil && info.ModTime().Equal(s.modTime) {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("os.ReadFile(%s) > %w", s.path, err)
	}
	data, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("Parse(%s) > %w", s.path, err)
	}

	s.raw = raw
	s.data = data
	s.modTime = info.ModTime()
	return nil
}

// Categories returns every category in the file sorted by id.
func (s *FileStore) Categories(ctx context.Context) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	categories := make([]Category, 0, len(ids))
	for _, id := range ids {
		categories = append(categories, NewCategory(id))
	}
	return categories, nil
}

// TidbitsByCategory returns the tidbit texts of a category in file order.
// Unknown categories yield an empty list.
func (s *FileStore) TidbitsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	texts := s.data[categoryID]
	result := make([]string, len(texts))
	copy(result, texts)
	return result, nil
}

// Snapshot returns the whole file content with a version derived from its bytes.
func (s *FileStore) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return Snapshot{}, err
	}

	tidbits := make(map[string][]string, len(s.data))
	for category, texts := range s.data {
		tidbits[category] = append([]string(nil), texts...)
	}
	return Snapshot{
		Tidbits:      tidbits,
		Version:      fmt.Sprintf("%x", xxhash.Sum64(s.raw)),
		LastModified: s.modTime.UTC(),
	}, nil
}
