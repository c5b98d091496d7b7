// Package db provides a database interface and implementations.
package db

import (
	"fmt"

	"github.com/blacktop/otool/internal/model"
)

// Database is the interface that wraps the basic database operations.
type Database interface {
	// Connect connects to the database.
	Connect() error

	// Save inserts or replaces the image keyed by its path.
	Save(i *model.Image) error

	// Get returns the image for the given path.
	// It returns model.ErrNotFound if the path does not exist.
	Get(path string) (*model.Image, error)

	// List returns every stored image ordered by path.
	List() ([]*model.Image, error)

	// Dependents returns the images that reference the dylib install name.
	Dependents(dylib string) ([]*model.Image, error)

	// Delete removes the image for the given path.
	// It returns model.ErrNotFound if the path does not exist.
	Delete(path string) error

	// Close closes the database.
	Close() error
}

// New returns the Database for driver ("sqlite" or "memory") stored at path.
func New(driver, path string) (Database, error) {
	switch driver {
	case "sqlite", "":
		return NewSqlite(path, 100)
	case "memory":
		return NewInMemory(path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
