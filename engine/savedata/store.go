package savedata

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
)

// ErrSlotNotFound is returned by stores asked for a slot never written.
var ErrSlotNotFound = errors.New("save slot not found")

// Store persists encoded slots by slot number.
type Store interface {
	Read(ctx context.Context, slot int) ([]byte, error)
	Write(ctx context.Context, slot int, data []byte) error
	Delete(ctx context.Context, slot int) error
	// List returns the slot numbers present, ascending.
	List(ctx context.Context) ([]int, error)
	Close() error
}

// DefaultDir is where slot files go when nothing else is configured
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "scenekit", "saves")
}

// FileStore keeps one file per slot, named save_<n>.<ext>.
type FileStore struct {
	dir string
	ext string
}

// NewFileStore creates a store under dir using ext for file names
func NewFileStore(dir, ext string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	if ext == "" {
		ext = "json"
	}
	return &FileStore{dir: dir, ext: strings.TrimPrefix(ext, ".")}
}

func (s *FileStore) Dir() string { return s.dir }

// Path returns the file backing slot
func (s *FileStore) Path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("save_%d.%s", slot, s.ext))
}

func (s *FileStore) Read(ctx context.Context, slot int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d", ErrSlotNotFound, slot)
	}
	return data, err
}

// Write replaces the slot file atomically through a temp file in the same
// directory.
func (s *FileStore) Write(ctx context.Context, slot int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, fmt.Sprintf(".save_%d-*.tmp", slot))
	if err != nil {
		return err
	}
	tmp := f.Name()
	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.Path(slot)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, slot int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.Path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %d", ErrSlotNotFound, slot)
	}
	return err
}

func (s *FileStore) List(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, "save_*."+s.ext))
	if err != nil {
		return nil, err
	}
	var slots []int
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), "."+s.ext)
		n, err := strconv.Atoi(strings.TrimPrefix(base, "save_"))
		if err != nil {
			continue
		}
		slots = append(slots, n)
	}
	sort.Ints(slots)
	return slots, nil
}

// Close is a no-op; files are closed after every operation
func (s *FileStore) Close() error { return nil }
