// Package publish syncs benchmark results with the community results
// repository: clone, branch, commit, push and open a pull request from the
// bot fork.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/Proteobench/Proteobench/internal/common"
)

const (
	DefaultUpstreamRepo = "Proteobench/Results_quant_ion_DDA"
	DefaultForkRepo     = "Proteobot/Results_quant_ion_DDA"
	DefaultUsername     = "Proteobot"
	DefaultBaseBranch   = "master"

	// ResultsFile is the aggregated datapoint file at the repository root.
	ResultsFile = "results.json"
)

type Config struct {
	Token        string // empty means anonymous, read-only access
	Username     string
	UpstreamRepo string // owner/name
	ForkRepo     string // owner/name
	CloneDir     string // upstream checkout
	CloneDirPR   string // fork checkout, kept apart from CloneDir
	BaseBranch   string
	// APIBaseURL overrides the GitHub API endpoint, e.g. for GitHub Enterprise.
	APIBaseURL string
}

// FromConfig maps the application config section.
func FromConfig(c common.PublishConfig) Config {
	return Config{
		Token:        c.Token,
		Username:     c.Username,
		UpstreamRepo: c.UpstreamRepo,
		ForkRepo:     c.ForkRepo,
		CloneDir:     c.CloneDir,
		CloneDirPR:   c.CloneDirPR,
		BaseBranch:   c.BaseBranch,
	}
}

type Repo struct {
	cfg    Config
	repo   *git.Repository
	dir    string // working tree of repo
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}
	if cfg.UpstreamRepo == "" {
		cfg.UpstreamRepo = DefaultUpstreamRepo
	}
	if cfg.ForkRepo == "" {
		cfg.ForkRepo = DefaultForkRepo
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = DefaultBaseBranch
	}
	return &Repo{cfg: cfg, logger: logger}
}

// RemoteURL is the public https URL of an owner/name repository.
func RemoteURL(name string) string {
	return "https://github.com/" + strings.Trim(name, "/") + ".git"
}

func (r *Repo) auth() *githttp.BasicAuth {
	if r.cfg.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: r.cfg.Username, Password: r.cfg.Token}
}

// Clone opens CloneDir when it already holds a checkout of the upstream
// results repository, otherwise clones upstream into it.
func (r *Repo) Clone(ctx context.Context) error {
	return r.clone(ctx, r.cfg.UpstreamRepo, r.cfg.CloneDir, "publish.clone_dir")
}

// CloneFork is Clone against the bot fork, which pull requests are opened
// from, in CloneDirPR. Without a token it falls back to the upstream repository.
func (r *Repo) CloneFork(ctx context.Context) error {
	if r.cfg.Token == "" {
		return r.Clone(ctx)
	}
	return r.clone(ctx, r.cfg.ForkRepo, r.cfg.CloneDirPR, "publish.clone_dir_pr")
}

func (r *Repo) clone(ctx context.Context, name, dir, key string) error {
	if dir == "" {
		return common.NewAppError("CONFIG_ERROR", key+" is required", common.ErrConfigurationMissing)
	}
	repo, err := git.PlainOpen(dir)
	if err == nil {
		if err := checkOrigin(repo, name); err != nil {
			r.logger.Error("publish.clone.mismatch", "dir", dir, "repo", name, "error", err)
			return err
		}
		r.logger.Debug("publish.clone.reuse", "dir", dir)
		r.repo, r.dir = repo, dir
		return nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return fmt.Errorf("open %s: %w", dir, err)
	}

	r.logger.Info("publish.clone.start", "repo", name, "dir", dir, "authenticated", r.cfg.Token != "")
	opts := &git.CloneOptions{URL: RemoteURL(name)}
	if a := r.auth(); a != nil {
		opts.Auth = a
	}
	repo, err = git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return fmt.Errorf("clone %s: %w", name, err)
	}
	r.repo, r.dir = repo, dir
	return nil
}

// checkOrigin rejects a reused checkout whose origin points at another
// repository. A checkout without origin is local and accepted.
func checkOrigin(repo *git.Repository, name string) error {
	origin, err := repo.Remote("origin")
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil
		}
		return fmt.Errorf("origin: %w", err)
	}
	want := RemoteURL(name)
	for _, u := range origin.Config().URLs {
		if strings.EqualFold(strings.TrimSuffix(u, "/"), want) {
			return nil
		}
	}
	return fmt.Errorf("%w: checkout origin %v is not %s", common.ErrInvalidInput, origin.Config().URLs, want)
}

// workDir is the working tree of the opened checkout, or CloneDir before any clone.
func (r *Repo) workDir() string {
	if r.dir != "" {
		return r.dir
	}
	return r.cfg.CloneDir
}

func (r *Repo) open() (*git.Repository, error) {
	if r.repo == nil {
		return nil, fmt.Errorf("%w: repository not cloned", common.ErrInvalidInput)
	}
	return r.repo, nil
}

// CreateBranch fetches origin, when there is one, then creates and checks out name.
func (r *Repo) CreateBranch(ctx context.Context, name string) error {
	repo, err := r.open()
	if err != nil {
		return err
	}
	if _, err := repo.Remote("origin"); err == nil {
		opts := &git.FetchOptions{RemoteName: "origin"}
		if a := r.auth(); a != nil {
			opts.Auth = a
		}
		if err := repo.FetchContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("fetch origin: %w", err)
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	r.logger.Info("publish.branch.created", "branch", name)
	return nil
}

// ActiveBranch is the short name of the checked-out branch.
func (r *Repo) ActiveBranch() (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("%w: HEAD is detached", common.ErrInvalidInput)
	}
	return head.Name().Short(), nil
}

// WriteResults writes data to name inside the working tree.
func (r *Repo) WriteResults(name string, data []byte) (string, error) {
	dir := r.workDir()
	if dir == "" {
		return "", common.NewAppError("CONFIG_ERROR", "publish.clone_dir is required", common.ErrConfigurationMissing)
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %q escapes the repository", common.ErrInvalidInput, name)
	}
	path := filepath.Join(dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &common.FileError{Path: path, Cause: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &common.FileError{Path: path, Cause: err}
	}
	return path, nil
}

// Commit stages every change and commits it as "title\nbody".
func (r *Repo) Commit(title, body string) (plumbing.Hash, error) {
	repo, err := r.open()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("stage: %w", err)
	}
	hash, err := wt.Commit(strings.Join([]string{title, body}, "\n"), &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.cfg.Username,
			Email: r.cfg.Username + "@users.noreply.github.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	r.logger.Info("publish.commit.ok", "hash", hash.String(), "title", title)
	return hash, nil
}

// Push publishes the active branch to origin and records it as upstream.
func (r *Repo) Push(ctx context.Context) error {
	repo, err := r.open()
	if err != nil {
		return err
	}
	branch, err := r.ActiveBranch()
	if err != nil {
		return err
	}
	ref := plumbing.NewBranchReferenceName(branch)
	opts := &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(ref + ":" + ref)},
	}
	if a := r.auth(); a != nil {
		opts.Auth = a
	}
	if err := repo.PushContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push %s: %w", branch, err)
	}
	if err := repo.CreateBranch(&gitconfig.Branch{Name: branch, Remote: "origin", Merge: ref}); err != nil &&
		!errors.Is(err, git.ErrBranchExists) {
		return fmt.Errorf("track %s: %w", branch, err)
	}
	r.logger.Info("publish.push.ok", "branch", branch)
	return nil
}

func (r *Repo) github(ctx context.Context) (*github.Client, error) {
	if r.cfg.Token == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "publish.token is required to open pull requests", common.ErrConfigurationMissing)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: r.cfg.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	if r.cfg.APIBaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(r.cfg.APIBaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: api base url: %v", common.ErrInvalidInput, err)
		}
		client.BaseURL = base
	}
	return client, nil
}

// CreatePullRequest opens a pull request on the fork from the active branch
// into the base branch and returns its number.
func (r *Repo) CreatePullRequest(ctx context.Context, title, body string) (int, error) {
	branch, err := r.ActiveBranch()
	if err != nil {
		return 0, err
	}
	client, err := r.github(ctx)
	if err != nil {
		return 0, err
	}
	owner, name, ok := strings.Cut(r.cfg.ForkRepo, "/")
	if !ok {
		return 0, fmt.Errorf("%w: fork repo %q is not owner/name", common.ErrInvalidInput, r.cfg.ForkRepo)
	}

	pr, _, err := client.PullRequests.Create(ctx, owner, name, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Base:  github.String(r.cfg.BaseBranch),
		Head:  github.String(r.cfg.Username + ":" + branch),
	})
	if err != nil {
		r.logger.Error("publish.pr.failed", "repo", r.cfg.ForkRepo, "branch", branch, "error", err)
		return 0, fmt.Errorf("create pull request: %w", err)
	}
	r.logger.Info("publish.pr.ok", "repo", r.cfg.ForkRepo, "number", pr.GetNumber())
	return pr.GetNumber(), nil
}
