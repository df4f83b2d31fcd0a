package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"archmap/internal/config"
)

// ErrRootNotFound reports that the scan root does not exist. Callers can
// test for it with errors.Is through the wrap chain Scan returns.
var ErrRootNotFound = errors.New("scan root not found")

// Selector walks a source tree and decides which files a scan should read.
// Patterns match the slash-separated path relative to the root, exclusions
// win over inclusions, and only .rs files survive the final gate.
type Selector struct {
	root     string
	scanning config.Scanning
	exclude  []glob.Glob
	include  []glob.Glob
}

func NewSelector(root string, scanning config.Scanning) (*Selector, error) {
	exclude, err := compileMatchers(scanning.ExcludePatterns, "exclude")
	if err != nil {
		return nil, err
	}
	include, err := compileMatchers(scanning.IncludePatterns, "include")
	if err != nil {
		return nil, err
	}
	return &Selector{
		root:     root,
		scanning: scanning,
		exclude:  exclude,
		include:  include,
	}, nil
}

// compileMatchers compiles each pattern twice when it starts with "**/":
// that prefix also matches zero directories, so the trimmed variant covers
// files sitting directly under the root.
func compileMatchers(patterns []string, kind string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		matchers = append(matchers, g)
		if rest, ok := strings.CutPrefix(p, "**/"); ok && rest != "" {
			g, err := glob.Compile(rest)
			if err != nil {
				return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
			}
			matchers = append(matchers, g)
		}
	}
	return matchers, nil
}

// Select returns the relative, slash-separated paths of every file the scan
// should read, in walk order. An unreadable root is an error; unreadable
// entries below it are skipped.
func (s *Selector) Select() ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, s.root)
		}
		return nil, fmt.Errorf("reading scan root %s: %w", s.root, err)
	}

	var files []string
	if !info.IsDir() {
		if rel := filepath.Base(s.root); s.consider(rel, info.Size()) {
			files = append(files, rel)
		}
		return files, nil
	}

	if s.scanning.FollowSymlinks {
		stack := make([]string, 0, 8)
		if resolved, err := filepath.EvalSymlinks(s.root); err == nil {
			stack = append(stack, resolved)
		}
		if err := s.walkFollowing(s.root, stack, &files); err != nil {
			return nil, fmt.Errorf("reading scan root %s: %w", s.root, err)
		}
		return files, nil
	}

	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root {
				return err
			}
			slog.Debug("skipping unreadable entry", "path", p, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		s.visit(p, &files)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading scan root %s: %w", s.root, err)
	}
	return files, nil
}

// walkFollowing recurses through symlinked directories too. stack holds
// the resolved paths of the current branch's ancestors; a directory that
// resolves onto one of them is a link loop and is cut there. Sibling links
// to the same directory are both traversed, like any recursive walker
// that follows links. Only the top-level ReadDir error propagates; deeper
// failures are skipped like any unreadable entry.
func (s *Selector) walkFollowing(dir string, stack []string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		info, err := os.Stat(p)
		if err != nil {
			slog.Debug("skipping unreadable entry", "path", p, "error", err)
			continue
		}
		if info.IsDir() {
			resolved, err := filepath.EvalSymlinks(p)
			if err != nil {
				slog.Debug("skipping unresolvable directory", "path", p, "error", err)
				continue
			}
			looped := false
			for _, ancestor := range stack {
				if ancestor == resolved {
					looped = true
					break
				}
			}
			if looped {
				slog.Debug("skipping symlink loop", "path", p)
				continue
			}
			if err := s.walkFollowing(p, append(stack, resolved), files); err != nil {
				slog.Debug("skipping unreadable directory", "path", p, "error", err)
			}
			continue
		}
		s.visit(p, files)
	}
	return nil
}

// visit stats p, resolving symlinks so a link to a regular file counts as
// one, and records it when consider accepts it.
func (s *Selector) visit(p string, files *[]string) {
	info, err := os.Stat(p)
	if err != nil {
		slog.Debug("skipping unreadable entry", "path", p, "error", err)
		return
	}
	if !info.Mode().IsRegular() {
		return
	}
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		slog.Debug("skipping entry outside root", "path", p, "error", err)
		return
	}
	rel = filepath.ToSlash(rel)
	if s.consider(rel, info.Size()) {
		*files = append(*files, rel)
	}
}

// consider applies the selection gates in order: exclusions, inclusions
// (an empty list includes everything), the size cap, and the .rs extension.
// A file named exactly ".rs" has no stem and is rejected.
func (s *Selector) consider(rel string, size int64) bool {
	for _, g := range s.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(s.include) > 0 {
		included := false
		for _, g := range s.include {
			if g.Match(rel) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	if max := s.scanning.MaxSize(); max > 0 && size > max {
		return false
	}
	base := path.Base(rel)
	return strings.HasSuffix(base, ".rs") && base != ".rs"
}
