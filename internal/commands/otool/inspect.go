// Package otool implements the otool command's inspection, scanning and
// rendering logic on top of pkg/macho.
package otool

import (
	"fmt"
	"os"
	"time"

	"github.com/blacktop/otool/pkg/bundle"
	"github.com/blacktop/otool/pkg/macho"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Result is one inspected path.
type Result struct {
	Path    string       `json:"path" yaml:"path"`
	Binary  string       `json:"binary,omitempty" yaml:"binary,omitempty"`
	Size    int64        `json:"size" yaml:"size"`
	ModTime time.Time    `json:"mod_time" yaml:"mod_time"`
	Image   *macho.Image `json:"image" yaml:"image"`
}

// Bundled reports whether Path was a bundle resolved to a different Binary.
func (r *Result) Bundled() bool {
	return r.Binary != "" && r.Binary != r.Path
}

// Inspector decodes files, caching images until the file changes.
type Inspector struct {
	cache *lru.Cache[string, *macho.Image]
	opts  []macho.Option
}

// NewInspector returns an Inspector that keeps up to size decoded images.
func NewInspector(size int, opts ...macho.Option) (*Inspector, error) {
	cache, err := lru.New[string, *macho.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	return &Inspector{
		cache: cache,
		opts:  opts,
	}, nil
}

func cacheKey(path string, fi os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, fi.Size(), fi.ModTime().UnixNano())
}

// Inspect resolves path (a file or a bundle directory) and decodes its image.
func (i *Inspector) Inspect(path string) (*Result, error) {
	binary, err := bundle.Resolve(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(binary)
	if err != nil {
		return nil, &macho.ReadError{Path: binary, Err: err}
	}
	res := &Result{
		Path:    path,
		Binary:  binary,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}

	key := cacheKey(binary, fi)
	if img, ok := i.cache.Get(key); ok {
		res.Image = img
		return res, nil
	}
	img, err := macho.Open(binary, i.opts...)
	if err != nil {
		return nil, err
	}
	i.cache.Add(key, img)
	res.Image = img
	return res, nil
}

// Forget drops every cached image.
func (i *Inspector) Forget() {
	i.cache.Purge()
}

// Cached returns the number of cached images.
func (i *Inspector) Cached() int {
	return i.cache.Len()
}
