package otool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/blacktop/otool/internal/magic"
	"github.com/blacktop/otool/internal/utils"
	"github.com/blacktop/otool/pkg/macho"
	"golang.org/x/sync/errgroup"
)

// ErrNoMachO is returned when a scan finds nothing to decode.
var ErrNoMachO = errors.New("no Mach-O files found")

// ScanConfig is the config for Inspector.Scan
type ScanConfig struct {
	Workers int
	Exclude []string

	// OnStart is called once with the number of Mach-O candidates found.
	OnStart func(total int)
	// OnFile is called after each candidate is decoded (err is nil on success).
	OnFile func(path string, err error)
}

// ScanReport is the outcome of a directory scan.
type ScanReport struct {
	Root    string            `json:"root" yaml:"root"`
	Results []*Result         `json:"results" yaml:"results"`
	Failed  map[string]string `json:"failed,omitempty" yaml:"failed,omitempty"`
	Skipped int               `json:"skipped" yaml:"skipped"`
}

// candidates walks root and returns the regular files that start with a Mach-O magic.
func candidates(ctx context.Context, root string, exclude []string) ([]string, int, error) {
	var (
		paths   []string
		skipped int
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			utils.Indent(log.WithError(err).WithField("path", path).Debug, 2)("Skipping unreadable entry")
			skipped++
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != root && utils.MatchesAny(path, exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			skipped++
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, err := magic.IsMachO(path); !ok || err != nil {
			skipped++
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paths, skipped, nil
}

// Scan decodes every Mach-O file below root using up to conf.Workers goroutines.
// Files that fail to decode are recorded in ScanReport.Failed and do not stop the scan.
func (i *Inspector) Scan(ctx context.Context, root string, conf *ScanConfig) (*ScanReport, error) {
	if conf == nil {
		conf = &ScanConfig{}
	}
	paths, skipped, err := candidates(ctx, root, conf.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if conf.OnStart != nil {
		conf.OnStart(len(paths))
	}

	report := &ScanReport{
		Root:    root,
		Failed:  make(map[string]string),
		Skipped: skipped,
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if conf.Workers > 0 {
		g.SetLimit(conf.Workers)
	}
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := i.Inspect(path)

			mu.Lock()
			if err != nil {
				log.WithError(err).WithField("path", path).Debug("Failed to decode")
				report.Failed[path] = err.Error()
			} else {
				report.Results = append(report.Results, res)
			}
			mu.Unlock()

			if conf.OnFile != nil {
				conf.OnFile(path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(report.Results, func(a, b *Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	return report, nil
}

// Dependents returns the scanned images that load the dylib install name.
func (r *ScanReport) Dependents(dylib string) []*Result {
	var users []*Result
	for _, res := range r.Results {
		if slices.ContainsFunc(res.Image.Imports(), func(d macho.Dependency) bool { return d.Path == dylib }) {
			users = append(users, res)
		}
	}
	return users
}
