// Package extract turns search-engine parameter dumps into params.Record values.
//
// Format-specific extractors live in sub-packages and share the line and
// key/value helpers defined here.
package extract

import "github.com/Proteobench/Proteobench/internal/params"

// Extractor reads one tool's parameter file into a fresh record.
type Extractor interface {
	Name() string
	Extract(path string) (*params.Record, error)
}

// Sniffer reports whether the leading bytes of a file look like its format.
type Sniffer interface {
	Sniff(head []byte) bool
}
