package ingest

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Proteobench/Proteobench/constants"
)

// AllowedExt checks if a file extension is one of constants.ParamFileExtensions.
func AllowedExt(ext string) bool {
	_, ok := constants.ParamFileExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// MatchPattern reports whether path, taken relative to root, matches the
// doublestar pattern. Patterns use forward slashes on every platform.
func MatchPattern(pattern, root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
