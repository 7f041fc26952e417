package twigcs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// TemplatePattern selects templates inside a directory path
const TemplatePattern = "**/*.twig"

// ScanStats tracks file discovery statistics
type ScanStats struct {
	FilesDiscovered int // Templates found under the given paths
	FilesScanned    int // Templates kept after filtering
	FilesSkipped    int // Templates dropped by exclude patterns or .gitignore
}

var (
	// gitignore caching
	gitIgnoreCache *ignore.GitIgnore
	gitIgnoreOnce  sync.Once
)

// loadGitIgnore loads the .gitignore file once (thread-safe)
// Gracefully degrades if .gitignore doesn't exist
func loadGitIgnore() *ignore.GitIgnore {
	gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(".gitignore")
		if err != nil {
			gitIgnoreCache = nil
			return
		}
		gitIgnoreCache = gi
	})
	return gitIgnoreCache
}

// isExcluded matches a path relative to its base path against exclude patterns.
// A bare pattern such as "vendor" excludes that file or directory at any depth.
func isExcluded(rel string, exclude []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range exclude {
		pattern = strings.Trim(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}
		for _, candidate := range []string{pattern, pattern + "/**", "**/" + pattern, "**/" + pattern + "/**"} {
			if ok, _ := doublestar.Match(candidate, rel); ok {
				return true
			}
		}
	}
	return false
}

// shouldSkipFile determines if a discovered template should be excluded
//
// Two-layer filtering:
// 1. Exclude patterns, relative to the base path the file was found under
// 2. Gitignore check (only for relative paths)
func shouldSkipFile(path, rel string, exclude []string) bool {
	if isExcluded(rel, exclude) {
		return true
	}

	// Absolute paths (like /tmp/...) should not be affected by project gitignore
	if !filepath.IsAbs(path) {
		gi := loadGitIgnore()
		if gi != nil && gi.MatchesPath(path) {
			return true
		}
	}
	return false
}

// Discover expands base paths into the templates to lint.
//
// A path naming a file is taken as is. A directory is searched for *.twig
// files. Results follow the order of paths, sorted within each directory,
// without duplicates.
func Discover(paths []string, exclude []string) ([]string, ScanStats, error) {
	var stats ScanStats
	var files []string
	seen := make(map[string]bool)

	add := func(path, rel string) {
		if seen[path] {
			return
		}
		stats.FilesDiscovered++
		if shouldSkipFile(path, rel, exclude) {
			stats.FilesSkipped++
			return
		}
		seen[path] = true
		files = append(files, path)
		stats.FilesScanned++
	}

	for _, base := range paths {
		info, err := os.Stat(base)
		if err != nil {
			return nil, stats, fmt.Errorf("stat %s: %w", base, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(base), filepath.Base(base))
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(base), TemplatePattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, stats, fmt.Errorf("glob %s: %w", base, err)
		}
		sort.Strings(matches)
		for _, rel := range matches {
			add(filepath.Join(base, filepath.FromSlash(rel)), rel)
		}
	}

	return files, stats, nil
}
