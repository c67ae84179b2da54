// Package scan lists the candidate form files below a source root using
// include and exclude glob patterns ("**/*.form").
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultIncludes matches every form file.
var DefaultIncludes = []string{"**/*.form"}

// Files walks root on fsys and returns the slash separated paths, relative to
// root, of the regular files matching at least one include pattern and no
// exclude pattern. Results are sorted. An empty include list uses
// DefaultIncludes. A missing root yields no files.
func Files(fsys afero.Fs, root string, includes, excludes []string) ([]string, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	for _, pattern := range append(append([]string(nil), includes...), excludes...) {
		if !doublestar.ValidatePattern(normalize(pattern)) {
			return nil, fmt.Errorf("scan: invalid pattern %q", pattern)
		}
	}

	if exists, err := afero.DirExists(fsys, root); err != nil {
		return nil, err
	} else if !exists {
		return nil, nil
	}

	var files []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(includes, rel) && !matchAny(excludes, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(normalize(pattern), name); err == nil && ok {
			return true
		}
	}
	return false
}

// normalize turns Ant style patterns into doublestar ones: backslashes become
// slashes and a trailing slash means everything below the directory.
func normalize(pattern string) string {
	pattern = strings.ReplaceAll(strings.TrimSpace(pattern), "\\", "/")
	pattern = strings.TrimPrefix(pattern, "/")
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}
	return pattern
}
