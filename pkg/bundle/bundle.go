// Package bundle locates the primary Mach-O image inside Apple bundle
// directories (.app, .framework and friends).
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/blacktop/otool/pkg/macho"
)

var (
	// ErrNotABundle is returned for a directory that is not a recognised bundle.
	ErrNotABundle = errors.New("not a bundle")
	// ErrMetadataNotFound is returned when a bundle has no Info.plist.
	ErrMetadataNotFound = errors.New("Info.plist not found")
	// ErrPrimaryImageMissing is returned when the bundle's executable cannot be determined.
	ErrPrimaryImageMissing = errors.New("bundle executable not found")
)

// Kind is the layout family of a path.
type Kind int

const (
	KindFile Kind = iota
	KindApp
	KindFramework
)

func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindFramework:
		return "framework"
	default:
		return "file"
	}
}

// bundles that carry an Info.plist with CFBundleExecutable
var appExts = []string{".app", ".appex", ".xpc", ".bundle", ".plugin"}

// KindOf classifies path by its extension only.
func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(filepath.Clean(path)))
	switch {
	case ext == ".framework":
		return KindFramework
	case slices.Contains(appExts, ext):
		return KindApp
	default:
		return KindFile
	}
}

func statDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", macho.ErrNotFound, path)
		}
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotABundle, path)
	}
	return nil
}

// Resolve returns the Mach-O file to inspect for path: regular files are
// returned as is, bundle directories are resolved to their primary image.
func Resolve(path string) (string, error) {
	path = filepath.Clean(path)
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", macho.ErrNotFound, path)
		}
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	switch KindOf(path) {
	case KindFramework:
		return FrameworkBinary(path)
	case KindApp:
		return AppExecutable(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrNotABundle, path)
	}
}

// ReadInfo finds and parses the Info.plist of an app style bundle. It
// returns the directory that holds the bundle's executable alongside it:
// the bundle root for the flat iOS layout, Contents/MacOS for macOS.
func ReadInfo(path string) (*Info, string, error) {
	path = filepath.Clean(path)
	if err := statDir(path); err != nil {
		return nil, "", err
	}
	if KindOf(path) != KindApp {
		return nil, "", fmt.Errorf("%w: %s", ErrNotABundle, path)
	}

	layouts := []struct {
		plist string
		bin   string
	}{
		// iOS
		{filepath.Join(path, "Info.plist"), path},
		// macOS
		{filepath.Join(path, "Contents", "Info.plist"), filepath.Join(path, "Contents", "MacOS")},
	}
	for _, l := range layouts {
		data, err := os.ReadFile(l.plist)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to read %s: %w", l.plist, err)
		}
		info, err := ParseInfo(data)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", l.plist, err)
		}
		return info, l.bin, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
}

// AppExecutable returns the path of an app bundle's main executable as
// named by CFBundleExecutable.
func AppExecutable(path string) (string, error) {
	info, dir, err := ReadInfo(path)
	if err != nil {
		return "", err
	}
	if info.CFBundleExecutable == "" {
		return "", fmt.Errorf("%w: no CFBundleExecutable in %s", ErrPrimaryImageMissing, path)
	}
	return filepath.Join(dir, info.CFBundleExecutable), nil
}

// FrameworkBinary returns the path of a framework's binary. The flat layout
// (Name.framework/Name) is tried first, then the versioned layout under
// Versions/Current and finally any other Versions/* entry.
func FrameworkBinary(path string) (string, error) {
	path = filepath.Clean(path)
	if err := statDir(path); err != nil {
		return "", err
	}
	if KindOf(path) != KindFramework {
		return "", fmt.Errorf("%w: %s", ErrNotABundle, path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	candidates := []string{
		filepath.Join(path, name),
		filepath.Join(path, "Versions", "Current", name),
	}
	if others, err := filepath.Glob(filepath.Join(path, "Versions", "*", name)); err == nil {
		candidates = append(candidates, others...)
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: no %s binary in %s", ErrPrimaryImageMissing, name, path)
}
