// Package discovery expands check command arguments into manifest paths.
//
// Explicit files (and "-" for stdin) are returned as given. Directories are
// searched with doublestar include patterns, then filtered through
// .dockerignore-style exclude patterns from the config and the directory's
// ignore file.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/moby/patternmatcher"
)

// Stdin is the argument that reads a manifest from standard input.
const Stdin = "-"

// Options controls directory expansion.
type Options struct {
	Include []string
	Exclude []string
}

// Discover resolves args into an ordered, duplicate-free list of paths.
// Paths naming the same file are reported once, as first spelled.
// An empty args list searches the current directory.
func Discover(args []string, opts Options) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	for _, p := range opts.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		key := p
		if p != Stdin {
			if abs, err := filepath.Abs(p); err == nil {
				key = abs
			}
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if arg == Stdin {
			add(arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		found, err := expandDir(arg, opts)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

// expandDir globs dir and drops excluded matches. Results are joined onto
// dir and sorted.
func expandDir(dir string, opts Options) ([]string, error) {
	patterns, err := LoadIgnore(dir)
	if err != nil {
		return nil, fmt.Errorf("read ignore file in %s: %w", dir, err)
	}
	patterns = append(slices.Clone(opts.Exclude), patterns...)

	var pm *patternmatcher.PatternMatcher
	if len(patterns) > 0 {
		pm, err = patternmatcher.New(patterns)
		if err != nil {
			return nil, fmt.Errorf("exclude patterns: %w", err)
		}
	}

	fsys := os.DirFS(dir)
	var matches []string
	for _, pattern := range opts.Include {
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s in %s: %w", pattern, dir, err)
		}
		matches = append(matches, found...)
	}
	slices.Sort(matches)
	matches = slices.Compact(matches)

	out := make([]string, 0, len(matches))
	for _, rel := range matches {
		if !fs.ValidPath(rel) {
			continue
		}
		if pm != nil {
			excluded, err := pm.MatchesOrParentMatches(filepath.FromSlash(rel))
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
		}
		out = append(out, filepath.Join(dir, filepath.FromSlash(rel)))
	}
	return out, nil
}
