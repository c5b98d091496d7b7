package otool

import (
	"errors"
	"fmt"
	"slices"

	"github.com/blacktop/otool/pkg/macho"
	"github.com/dominikbraun/graph"
)

// vertex names an image in the dependency graph: its install name, or its path when it has none.
func vertex(path string, img *macho.Image) string {
	if id, ok := img.ID(); ok {
		return id.Path
	}
	return path
}

// NewGraph builds a directed graph with an edge from every install name to the images that load it.
// images is keyed by file path.
func NewGraph(images map[string]*macho.Image) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	addVertex := func(v string) error {
		if err := g.AddVertex(v); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("failed to add vertex %s: %w", v, err)
		}
		return nil
	}

	for path, img := range images {
		user := vertex(path, img)
		if err := addVertex(user); err != nil {
			return nil, err
		}
		for _, dep := range img.Imports() {
			if err := addVertex(dep.Path); err != nil {
				return nil, err
			}
			if err := g.AddEdge(dep.Path, user); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", dep.Path, user, err)
			}
		}
	}

	return g, nil
}

// TransitiveDependents returns the sorted paths of every image that loads dylib
// directly or through another image in the set.
func TransitiveDependents(images map[string]*macho.Image, dylib string) ([]string, error) {
	g, err := NewGraph(images)
	if err != nil {
		return nil, err
	}
	if _, err := g.Vertex(dylib); errors.Is(err, graph.ErrVertexNotFound) {
		return nil, nil
	}

	reached := make(map[string]bool)
	if err := graph.BFS(g, dylib, func(v string) bool {
		if v != dylib {
			reached[v] = true
		}
		return false
	}); err != nil {
		return nil, fmt.Errorf("failed to walk dependency graph: %w", err)
	}

	var paths []string
	for path, img := range images {
		if reached[vertex(path, img)] {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)

	return paths, nil
}

// TransitiveDependents returns the scanned images that load dylib directly or through other scanned images.
func (r *ScanReport) TransitiveDependents(dylib string) ([]*Result, error) {
	images := make(map[string]*macho.Image, len(r.Results))
	byPath := make(map[string]*Result, len(r.Results))
	for _, res := range r.Results {
		images[res.Path] = res.Image
		byPath[res.Path] = res
	}
	paths, err := TransitiveDependents(images, dylib)
	if err != nil {
		return nil, err
	}
	users := make([]*Result, 0, len(paths))
	for _, p := range paths {
		users = append(users, byPath[p])
	}
	return users, nil
}
