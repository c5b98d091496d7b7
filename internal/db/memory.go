package db

import (
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/blacktop/otool/internal/model"
	"github.com/pkg/errors"
)

// Memory is a database that stores data in memory and persists it as a gob
// file on Close.
type Memory struct {
	Images map[string]*model.Image
	Path   string

	mu sync.RWMutex
}

// NewInMemory creates a new in-memory database.
func NewInMemory(path string) (Database, error) {
	if path == "" {
		return nil, errors.New("'path' is required")
	}
	return &Memory{
		Images: make(map[string]*model.Image),
		Path:   path,
	}, nil
}

// Connect loads a previously persisted database; a missing file is an empty database.
func (m *Memory) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.Open(m.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&m.Images); err != nil {
		return errors.Wrapf(err, "failed to decode %s", m.Path)
	}
	return nil
}

// Save inserts or replaces the image keyed by its path.
func (m *Memory) Save(i *model.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Images[i.Path] = i
	return nil
}

// Get returns the image for the given path.
// It returns model.ErrNotFound if the path does not exist.
func (m *Memory) Get(path string) (*model.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, exists := m.Images[path]
	if !exists {
		return nil, errors.Wrapf(model.ErrNotFound, "path %s", path)
	}
	return img, nil
}

func (m *Memory) List() ([]*model.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	images := make([]*model.Image, 0, len(m.Images))
	for _, img := range m.Images {
		images = append(images, img)
	}
	slices.SortFunc(images, func(a, b *model.Image) int {
		return strings.Compare(a.Path, b.Path)
	})
	return images, nil
}

func (m *Memory) Dependents(dylib string) ([]*model.Image, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	var images []*model.Image
	for _, img := range all {
		for _, d := range img.Dependencies {
			if d.Path == dylib && d.Kind != "selfId" {
				images = append(images, img)
				break
			}
		}
	}
	return images, nil
}

// Delete removes the image for the given path.
// It returns model.ErrNotFound if the path does not exist.
func (m *Memory) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Images[path]; !exists {
		return errors.Wrapf(model.ErrNotFound, "path %s", path)
	}
	delete(m.Images, path)
	return nil
}

// Close persists the database to Path.
func (m *Memory) Close() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(m.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m.Images)
}
