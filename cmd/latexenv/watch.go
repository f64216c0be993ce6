package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eolymp/go-latexenv/index"
)

// Watch builds an index of a directory and updates it whenever LaTeX files
// under the directory change, until interrupted.
type Watch struct {
	Out      string        `default:".latexenv/index.msgpack" help:"Where to save the index." short:"o"`
	Debounce time.Duration `default:"250ms"                   help:"How long to wait for more changes before updating the index."`

	Dir string `arg:"" default:"." help:"Directory to watch." type:"existingdir"`
}

func (w *Watch) Run(ctx context.Context, log *slog.Logger) error {
	files, err := index.Collect(w.Dir)
	if err != nil {
		return err
	}

	x, err := index.Build(ctx, files...)
	if err != nil {
		return err
	}

	if err := x.SaveFile(w.Out); err != nil {
		return err
	}

	log.InfoContext(ctx, "watching", slog.String("dir", w.Dir), slog.Int("files", len(x.Files())))

	return watchTree(ctx, w.Dir, w.Debounce, nil, func(changed []string) {
		paths := affected(x, changed)
		if len(paths) == 0 {
			return
		}

		if err := x.Update(ctx, paths...); err != nil {
			log.ErrorContext(ctx, "unable to update index", slog.Any("error", err))
			return
		}

		if err := x.SaveFile(w.Out); err != nil {
			log.ErrorContext(ctx, "unable to save index", slog.Any("error", err))
			return
		}

		log.InfoContext(ctx, "index updated", slog.Int("changed", len(paths)), slog.Int("environments", x.Len()))
	})
}

// affected returns LaTeX files among changed paths and indexed files under changed directories
func affected(x *index.Index, changed []string) (paths []string) {
	seen := map[string]bool{}

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, path := range changed {
		if index.IsSource(path) {
			add(path)
		}

		prefix := path + string(filepath.Separator)
		for _, file := range x.Files() {
			if strings.HasPrefix(file, prefix) {
				add(file)
			}
		}
	}

	sort.Strings(paths)
	return
}

// watchTree calls onChange with paths changed under root, changes are
// collected until nothing happens for the debounce period. New directories are
// watched as they appear. Ready is called once root is being watched.
func watchTree(ctx context.Context, root string, debounce time.Duration, ready func(), onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	defer watcher.Close()

	if err := watchRecursive(watcher, root); err != nil {
		return err
	}

	if ready != nil {
		ready()
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			path := filepath.Clean(event.Name)
			if hidden(root, path) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, path)
				}
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}

			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}

			sort.Strings(changed)
			pending = map[string]bool{}
			onChange(changed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			return err
		}
	}
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

// hidden reports dot files, editor backups and files in hidden directories under root
func hidden(root, path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, "~") {
		return true
	}

	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}

	return false
}
