package project

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codebind/internal/config"
	cberrors "github.com/standardbeagle/codebind/internal/errors"
	"github.com/standardbeagle/codebind/internal/types"
)

// Scanner builds a collection from a directory tree, applying the configured
// include/exclude patterns. Patterns match against paths relative to the
// scan root, slash-separated.
type Scanner struct {
	cfg *config.Config
}

// NewScanner creates a scanner for the given configuration.
func NewScanner(cfg *config.Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan walks the project root and returns a single-project collection
// holding every file that passes the include/exclude filters.
func (s *Scanner) Scan() (*types.Collection, error) {
	root, err := filepath.Abs(s.cfg.Project.Root)
	if err != nil {
		return nil, cberrors.NewFileError("scan", s.cfg.Project.Root, err)
	}

	name := s.cfg.Project.Name
	if name == "" {
		name = filepath.Base(root)
	}

	proj := &types.Project{ID: 1, Name: name, Root: filepath.ToSlash(root)}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.ExcludesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !s.cfg.Scan.FollowSymlinks {
			return nil
		}
		if !s.included(rel) || s.excluded(rel) {
			return nil
		}
		if s.cfg.Scan.MaxFileSize > 0 {
			if info, err := os.Stat(path); err == nil && info.Size() > s.cfg.Scan.MaxFileSize {
				return nil
			}
		}

		proj.AddFile(&types.ProjectFile{Path: filepath.ToSlash(path)})
		return nil
	})
	if walkErr != nil {
		return nil, cberrors.NewFileError("scan", root, walkErr)
	}

	return &types.Collection{
		Name:     name,
		Projects: []*types.Project{proj},
	}, nil
}

// Matches reports whether a path relative to the scan root passes the
// configured filters. The watcher uses this to decide which fs events to
// forward into the model.
func (s *Scanner) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	return s.included(rel) && !s.excluded(rel)
}

// ExcludesDir reports whether the whole subtree at rel is excluded.
// Exclusion patterns target files, so the check probes with a child path;
// that way directory trees like **/obj/** are pruned early.
func (s *Scanner) ExcludesDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return false
	}
	return s.excluded(rel + "/_")
}

func (s *Scanner) included(rel string) bool {
	// No inclusion patterns means include everything
	if len(s.cfg.Scan.Include) == 0 {
		return true
	}
	for _, pattern := range s.cfg.Scan.Include {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			// Bad pattern shouldn't break scanning
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.cfg.Scan.Exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
