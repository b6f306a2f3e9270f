package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/Proteobench/Proteobench/internal/common"
)

const maxLineBytes = 1 << 20

// ReadLines returns the lines of path with trailing "\r" removed.
// A missing file is reported as common.ErrFileNotFound.
func ReadLines(path string) ([]string, error) {
	f, err := openExisting(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, &common.FileError{Path: path, Cause: fmt.Errorf("scan: %w", err)}
	}
	return lines, nil
}

func openExisting(path string) (*os.File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewFileNotFound(path)
		}
		return nil, &common.FileError{Path: path, Cause: err}
	}
	if fi.IsDir() {
		return nil, &common.FileError{Path: path, Cause: fmt.Errorf("%w: is a directory", common.ErrInvalidInput)}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &common.FileError{Path: path, Cause: err}
	}
	return f, nil
}

// leading whitespace, tree-drawing glyphs and bullet markers
var reStructure = regexp.MustCompile(`^[\s│├└─┌┐┘┬┴┼╰╭┃┣┗━•·▪◦*]*`)

// StripStructure removes the indentation and tree decoration a report puts in
// front of its "Label: value" lines.
func StripStructure(line string) string {
	return strings.TrimSpace(reStructure.ReplaceAllString(line, ""))
}

// StripAll applies StripStructure to every line.
func StripAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = StripStructure(l)
	}
	return out
}

// SplitOnLabel finds the first line containing label and returns the trimmed
// text after it.
func SplitOnLabel(lines []string, label string) (string, bool) {
	return Lookup(lines, Label(label))
}

// Matcher pulls a value out of a single line.
type Matcher interface {
	Match(line string) (string, bool)
}

type labelMatcher string

func (m labelMatcher) Match(line string) (string, bool) {
	_, after, ok := strings.Cut(line, string(m))
	if !ok {
		return "", false
	}
	return strings.TrimSpace(after), true
}

// Label matches lines containing s anywhere.
func Label(s string) Matcher {
	return labelMatcher(s)
}

type anchoredMatcher struct {
	re *regexp.Regexp
}

func (m anchoredMatcher) Match(line string) (string, bool) {
	loc := m.re.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(line[loc[1]:]), true
}

// Anchored matches lines against a regular expression; the value is what
// follows the match. It panics on an invalid pattern.
func Anchored(pattern string) Matcher {
	return anchoredMatcher{re: regexp.MustCompile(pattern)}
}

// Lookup tries each matcher against all lines in document order. The first
// matcher with a hit wins.
func Lookup(lines []string, matchers ...Matcher) (string, bool) {
	for _, m := range matchers {
		for _, l := range lines {
			if v, ok := m.Match(l); ok {
				return v, true
			}
		}
	}
	return "", false
}
