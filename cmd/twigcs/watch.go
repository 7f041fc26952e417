package main

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yacobolo/twigcs/internal/config"
)

const watchDebounce = 200 * time.Millisecond

// watch lints once, then again after every burst of template or
// configuration changes until ctx is cancelled
func watch(ctx context.Context, s *settings, logger *slog.Logger, out, errOut io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs, err := watchDirs(s.paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	logger.Info("watching for changes", "directories", len(dirs))

	run := func() {
		if _, err := lintOnce(ctx, s, logger, out, errOut); err != nil && ctx.Err() == nil {
			logger.Error("lint run failed", "error", err)
		}
	}
	run()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}
			if relevant(ev.Name) {
				fire = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			logger.Info("change detected, re-running")
			run()
		}
	}
}

// relevant reports whether a changed path can affect lint results
func relevant(path string) bool {
	return strings.HasSuffix(path, ".twig") || filepath.Base(path) == config.FileName
}

// watchDirs lists every directory to watch below paths. Hidden directories
// are skipped. A file path contributes its parent directory.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, base := range paths {
		info, err := os.Stat(base)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(base))
			continue
		}

		err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
