package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Proteobench/Proteobench/internal/common"
)

// Datapoint is one benchmark result as stored in the results repository.
type Datapoint = map[string]any

// ReadResults decodes ResultsFile from the clone.
func (r *Repo) ReadResults() ([]Datapoint, error) {
	path := filepath.Join(r.workDir(), ResultsFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewFileNotFound(path)
		}
		return nil, &common.FileError{Path: path, Cause: err}
	}
	var out []Datapoint
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &common.FileError{Path: path, Cause: fmt.Errorf("%w: %v", common.ErrInvalidInput, err)}
	}
	return out, nil
}

// ReadResultFiles decodes every top-level *.json other than ResultsFile,
// one datapoint per file, in file name order.
func (r *Repo) ReadResultFiles() ([]Datapoint, error) {
	dir := r.workDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewFileNotFound(dir)
		}
		return nil, &common.FileError{Path: dir, Cause: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == ResultsFile || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Datapoint, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &common.FileError{Path: path, Cause: err}
		}
		var dp Datapoint
		if err := json.Unmarshal(raw, &dp); err != nil {
			return nil, &common.FileError{Path: path, Cause: fmt.Errorf("%w: %v", common.ErrInvalidInput, err)}
		}
		out = append(out, dp)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no result files in %s", common.ErrNotFound, dir)
	}
	return out, nil
}

// Submission is one results file proposed to the results repository.
type Submission struct {
	Branch   string
	FileName string
	Data     []byte
	Title    string
	Body     string
}

// Submit clones the fork, commits the file on a new branch, pushes it and
// opens a pull request. It returns the pull request number.
func (r *Repo) Submit(ctx context.Context, s Submission) (int, error) {
	if s.Branch == "" || s.FileName == "" || s.Title == "" {
		return 0, fmt.Errorf("%w: branch, file name and title are required", common.ErrInvalidInput)
	}
	if err := r.CloneFork(ctx); err != nil {
		return 0, err
	}
	if err := r.CreateBranch(ctx, s.Branch); err != nil {
		return 0, err
	}
	if _, err := r.WriteResults(s.FileName, s.Data); err != nil {
		return 0, err
	}
	if _, err := r.Commit(s.Title, s.Body); err != nil {
		return 0, err
	}
	if err := r.Push(ctx); err != nil {
		return 0, err
	}
	return r.CreatePullRequest(ctx, s.Title, s.Body)
}
