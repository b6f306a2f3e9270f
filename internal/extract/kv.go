package extract

import (
	"strings"

	"github.com/Proteobench/Proteobench/internal/common"
)

type kvRow struct {
	key   string
	value string
}

// KeyValues is a header-less, tab-delimited key/value dump.
// The first occurrence of a key wins; an empty value counts as missing.
type KeyValues struct {
	path  string
	rows  []kvRow
	index map[string]string
}

// ReadKeyValues loads a tab-delimited dump. Lines without a tab are kept as
// keys with an empty value.
func ReadKeyValues(path string) (*KeyValues, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	return ParseKeyValues(path, lines), nil
}

// ParseKeyValues builds a KeyValues from already-read lines. path is only used
// in error messages.
func ParseKeyValues(path string, lines []string) *KeyValues {
	kv := &KeyValues{path: path, index: make(map[string]string)}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		key, value, _ := strings.Cut(l, "\t")
		// trailing columns are ignored
		value, _, _ = strings.Cut(value, "\t")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		kv.rows = append(kv.rows, kvRow{key: key, value: value})
		if _, seen := kv.index[key]; !seen {
			kv.index[key] = value
		}
	}
	return kv
}

// Get returns a non-empty value for key.
func (kv *KeyValues) Get(key string) (string, bool) {
	v, ok := kv.index[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Require is Get for mandatory keys.
func (kv *KeyValues) Require(key string) (string, error) {
	v, ok := kv.Get(key)
	if !ok {
		return "", common.NewFieldNotFound(kv.path, key)
	}
	return v, nil
}

// Matching returns the non-empty values of every row whose key contains substr,
// in row order.
func (kv *KeyValues) Matching(substr string) []string {
	var out []string
	for _, r := range kv.rows {
		if r.value != "" && strings.Contains(r.key, substr) {
			out = append(out, r.value)
		}
	}
	return out
}

// Len is the number of rows read.
func (kv *KeyValues) Len() int {
	return len(kv.rows)
}

// Path is the file the dump was read from.
func (kv *KeyValues) Path() string {
	return kv.path
}
