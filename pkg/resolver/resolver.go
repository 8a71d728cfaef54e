// Package resolver locates the source text of modules named in import
// statements.
//
// # Example
//
//	//go:embed templates
//	var templates embed.FS
//
//	r := resolver.Chain(resolver.FS(templates), resolver.Dir("/etc/jslt"))
//	expr, err := gojslt.Compile(src, gojslt.WithResourceResolver(r))
package resolver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no resource has the requested name.
var ErrNotFound = errors.New("resource not found")

// ResourceResolver opens the resource with the given name. The caller closes
// the returned reader.
type ResourceResolver interface {
	Resolve(name string) (io.ReadCloser, error)
}

// Func adapts a function to the ResourceResolver interface.
type Func func(name string) (io.ReadCloser, error)

// Resolve implements ResourceResolver.
func (f Func) Resolve(name string) (io.ReadCloser, error) { return f(name) }

// DirResolver reads resources from files below a root directory.
type DirResolver struct {
	Root string
}

// Dir creates a resolver reading files relative to root. Absolute names are
// read as they are.
func Dir(root string) *DirResolver {
	return &DirResolver{Root: root}
}

// Resolve implements ResourceResolver.
func (d *DirResolver) Resolve(name string) (io.ReadCloser, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.Root, filepath.FromSlash(name))
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, err
}

// FSResolver reads resources from an fs.FS, such as an embed.FS.
type FSResolver struct {
	FS fs.FS
}

// FS creates a resolver over fsys. Leading slashes of names are ignored.
func FS(fsys fs.FS) *FSResolver {
	return &FSResolver{FS: fsys}
}

// Resolve implements ResourceResolver.
func (r *FSResolver) Resolve(name string) (io.ReadCloser, error) {
	f, err := r.FS.Open(strings.TrimPrefix(name, "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, err
}

// MapResolver serves resources from memory.
type MapResolver map[string]string

// Map creates a resolver over the given name to source mapping.
func Map(sources map[string]string) MapResolver {
	return MapResolver(sources)
}

// Resolve implements ResourceResolver.
func (m MapResolver) Resolve(name string) (io.ReadCloser, error) {
	src, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return io.NopCloser(strings.NewReader(src)), nil
}

// ChainResolver asks each resolver in turn.
type ChainResolver []ResourceResolver

// Chain creates a resolver trying each of resolvers in order. A resolver
// that reports ErrNotFound passes the name on to the next one; any other
// error stops the search.
func Chain(resolvers ...ResourceResolver) ChainResolver {
	return ChainResolver(resolvers)
}

// Resolve implements ResourceResolver.
func (c ChainResolver) Resolve(name string) (io.ReadCloser, error) {
	for _, r := range c {
		rc, err := r.Resolve(name)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ReadAll resolves name and reads the whole resource.
func ReadAll(r ResourceResolver, name string) (string, error) {
	rc, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
