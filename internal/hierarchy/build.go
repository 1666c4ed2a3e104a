package hierarchy

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dejo1307/viewbindmigrate/internal/kotlin"
)

// Options control how a project index is built.
type Options struct {
	// Supertypes adds or overrides classes: fqn -> direct supertype fqns.
	Supertypes map[string][]string
	// Workers limits concurrent file parsing. Zero means 8.
	Workers int
	// Skip, if set, excludes paths relative to the root.
	Skip func(rel string, isDir bool) bool
}

// Build indexes every Kotlin class declared under root. Unreadable files
// are logged and skipped; only cancellation fails the build.
func Build(ctx context.Context, root string, opts Options) (*Index, error) {
	start := time.Now()
	paths, err := kotlinFiles(root, opts.Skip)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	parsed := make([]*kotlin.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				log.Printf("[hierarchy] skipping %s: %v", path, err)
				return nil
			}
			parsed[i] = kotlin.Parse(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := parsed[:0]
	for _, f := range parsed {
		if f != nil {
			files = append(files, f)
		}
	}
	idx := NewIndex(opts.Supertypes)
	idx.Add(files...)
	log.Printf("[hierarchy] indexed %d classes from %d files in %s", idx.Declared(), len(paths), time.Since(start))
	return idx, nil
}

func kotlinFiles(root string, skip func(string, bool) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel != "." && skip != nil && skip(filepath.ToSlash(rel), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".kt") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// Cache keeps recently built indexes keyed by repository root.
type Cache struct {
	lru *lru.Cache[string, *Index]
}

// NewCache returns a cache holding at most size indexes.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[string, *Index](size)
	if err != nil {
		return nil, fmt.Errorf("creating hierarchy cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Get returns the index for root, building it on a miss.
func (c *Cache) Get(ctx context.Context, root string, opts Options) (*Index, error) {
	if idx, ok := c.lru.Get(root); ok {
		return idx, nil
	}
	idx, err := Build(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	c.lru.Add(root, idx)
	return idx, nil
}

// Invalidate drops the index for root.
func (c *Cache) Invalidate(root string) {
	c.lru.Remove(root)
}

var (
	namespaceRe = regexp.MustCompile(`namespace\s*=?\s*["']([^"']+)["']`)
	manifestRe  = regexp.MustCompile(`<manifest[^>]*\spackage\s*=\s*"([^"]+)"`)
)

// DetectNamespace returns the application namespace declared by the first
// module directory that has one: the Gradle namespace wins over the
// manifest package attribute. It returns "" when nothing is declared.
func DetectNamespace(moduleDirs ...string) string {
	for _, dir := range moduleDirs {
		for _, name := range []string{"build.gradle.kts", "build.gradle"} {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			if m := namespaceRe.FindSubmatch(data); m != nil {
				return string(m[1])
			}
		}
	}
	for _, dir := range moduleDirs {
		data, err := os.ReadFile(filepath.Join(dir, "src", "main", "AndroidManifest.xml"))
		if err != nil {
			continue
		}
		if m := manifestRe.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}
	return ""
}
