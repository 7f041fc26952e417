package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yacobolo/twigcs/internal/rule"
)

// Cascade resolves the ruleset of each template from the project
// configuration and any nested .twigcs.yaml files below the project root.
//
// Nested files only contribute their rules map. Files closer to the
// template win. The walk stops at the project root or at a directory
// holding .git. Resolved rulesets are memoized per directory.
type Cascade struct {
	base  *rule.Ruleset
	root  string
	rules map[string]string

	mu    sync.Mutex
	files map[string]*Config       // parsed nested files by path
	dirs  map[string]*rule.Ruleset // resolved ruleset by directory
}

// NewCascade creates a cascade over base. root is the project directory and
// rules the project-level rules map, applied before any nested file.
func NewCascade(base *rule.Ruleset, root string, rules map[string]string) (*Cascade, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve config root: %w", err)
	}
	if err := CheckRuleNames(base, rules); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return &Cascade{
		base:  base,
		root:  abs,
		rules: rules,
		files: make(map[string]*Config),
		dirs:  make(map[string]*rule.Ruleset),
	}, nil
}

// RulesetFor returns the ruleset that applies to a template file
func (c *Cascade) RulesetFor(file string) (*rule.Ruleset, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", file, err)
	}
	dir := filepath.Dir(abs)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rs, ok := c.dirs[dir]; ok {
		return rs, nil
	}

	paths, err := c.nestedFiles(dir)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string, len(c.rules))
	for name, value := range c.rules {
		merged[name] = value
	}
	// Farther files first so closer ones overwrite them
	for i := len(paths) - 1; i >= 0; i-- {
		cfg, err := c.load(paths[i])
		if err != nil {
			return nil, err
		}
		for name, value := range cfg.Rules {
			merged[name] = value
		}
	}

	rs, err := ApplyRules(c.base, merged)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	c.dirs[dir] = rs
	return rs, nil
}

// nestedFiles lists the configuration files between dir and the root,
// closest first. The root's own file is not included.
func (c *Cascade) nestedFiles(dir string) ([]string, error) {
	rel, err := filepath.Rel(c.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, nil
	}

	var paths []string
	for d := dir; d != c.root; {
		candidate := filepath.Join(d, FileName)
		if ok, err := exists(candidate); err != nil {
			return nil, err
		} else if ok {
			paths = append(paths, candidate)
		}

		if ok, err := exists(filepath.Join(d, ".git")); err != nil {
			return nil, err
		} else if ok {
			break
		}

		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return paths, nil
}

func (c *Cascade) load(path string) (*Config, error) {
	if cfg, ok := c.files[path]; ok {
		return cfg, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := CheckRuleNames(c.base, cfg.Rules); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	c.files[path] = cfg
	return cfg, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
