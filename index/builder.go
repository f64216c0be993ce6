package index

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eolymp/go-latexenv"
)

// Extensions of files picked up by Collect.
var Extensions = []string{".tex", ".ltx", ".sty", ".cls"}

// Build parses files concurrently and returns an index of their environments.
// It stops at the first file which can not be read.
func Build(ctx context.Context, paths ...string) (*Index, error) {
	x := New()

	if err := x.Update(ctx, paths...); err != nil {
		return nil, err
	}

	return x, nil
}

// Update parses files concurrently and replaces their entries in the index.
// Files which no longer exist are removed from the index.
func (x *Index) Update(ctx context.Context, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := x.AddFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				x.Remove(path)
				return nil
			}

			return err
		})
	}

	return g.Wait()
}

// AddFile parses a file and indexes its environments under its path.
func (x *Index) AddFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	defer file.Close()

	doc, err := latexenv.Parse(bufio.NewReader(file))
	if err != nil {
		return fmt.Errorf("parse %v: %w", path, err)
	}

	x.Add(path, doc)
	return nil
}

// Collect returns LaTeX files under root in lexical order, hidden directories
// are skipped. If root is a file it is returned as is.
func Collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if IsSource(path) {
			paths = append(paths, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// IsSource reports whether path has one of Extensions.
func IsSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}

	return false
}
