package extract

import (
	"fmt"
	"io"
	"sort"

	"github.com/Proteobench/Proteobench/internal/common"
)

const sniffBytes = 4 << 10

// Registry holds extractors keyed by Name. It is fixed at construction, so
// concurrent readers need no locking.
type Registry struct {
	extractors map[string]Extractor
	order      []string
}

// NewRegistry builds a registry from extractors. Detect asks them in the
// given order; a later extractor with an already used name replaces the
// earlier one in place.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[string]Extractor, len(extractors))}
	for _, e := range extractors {
		if _, ok := r.extractors[e.Name()]; !ok {
			r.order = append(r.order, e.Name())
		}
		r.extractors[e.Name()] = e
	}
	return r
}

// Get returns the extractor registered under name.
func (r *Registry) Get(name string) (Extractor, error) {
	e, ok := r.extractors[name]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor named %q", common.ErrUnsupportedFormat, name)
	}
	return e, nil
}

// Names lists registered extractor names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Detect picks the extractor whose Sniffer accepts the head of the file.
// Extractors are asked in registration order.
func (r *Registry) Detect(path string) (Extractor, error) {
	f, err := openExisting(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, &common.FileError{Path: path, Cause: err}
	}
	head = head[:n]

	for _, name := range r.order {
		if s, ok := r.extractors[name].(Sniffer); ok && s.Sniff(head) {
			return r.extractors[name], nil
		}
	}
	return nil, &common.FileError{Path: path, Cause: common.ErrUnsupportedFormat}
}

// Resolve returns the named extractor, or the detected one when name is empty.
func (r *Registry) Resolve(path, name string) (Extractor, error) {
	if name != "" {
		return r.Get(name)
	}
	return r.Detect(path)
}
