package constants

import "strings"

// ParamFileExtensions holds the extensions ingest considers parameter files by default.
var ParamFileExtensions = map[string]struct{}{
	"tsv": {},
	"txt": {},
}

// DefaultIncludePattern is the doublestar pattern used when a directory ingest has none.
const DefaultIncludePattern = "**/*.{tsv,txt}"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
