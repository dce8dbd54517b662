package gitscan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Repository is a handle onto one on-disk Git repository: its .git
// directory, working tree, loaded refs, and any pack indices it carries.
type Repository struct {
	gitDir  string
	workDir string

	mu           sync.RWMutex
	refs         map[string]Hash
	head         Hash
	headRef      string
	headDetached bool
	packIndices  []*packIndex
}

// Open locates and opens the repository containing path, which may be the
// working directory, the .git directory itself, or any descendant of the
// working directory.
func Open(path string) (*Repository, error) {
	gitDir, workDir, err := findGitDirectory(path)
	if err != nil {
		return nil, err
	}
	if err := validateGitDirectory(gitDir); err != nil {
		return nil, err
	}

	r := &Repository{
		gitDir:  gitDir,
		workDir: workDir,
		refs:    make(map[string]Hash),
	}

	if err := r.loadPackIndices(); err != nil {
		return nil, fmt.Errorf("loading pack indices: %w", err)
	}
	if err := r.loadRefs(); err != nil {
		return nil, fmt.Errorf("loading refs: %w", err)
	}

	return r, nil
}

func (r *Repository) GitDir() string  { return r.gitDir }
func (r *Repository) WorkDir() string { return r.workDir }
func (r *Repository) Name() string    { return filepath.Base(r.workDir) }

// Head returns the resolved hash HEAD currently points at (the zero Hash
// for an unborn branch), whether it is detached, and the ref name HEAD
// follows (empty when detached).
func (r *Repository) Head() (Hash, bool, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.head, r.headDetached, r.headRef
}

// Branches returns every local branch (refs/heads/*) by short name.
func (r *Repository) Branches() map[string]Hash {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Hash)
	for ref, hash := range r.refs {
		if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			out[name] = hash
		}
	}
	return out
}

// Tags returns every local tag (refs/tags/*) by short name.
func (r *Repository) Tags() map[string]Hash {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Hash)
	for ref, hash := range r.refs {
		if name, ok := strings.CutPrefix(ref, "refs/tags/"); ok {
			out[name] = hash
		}
	}
	return out
}

// RemoteBranches returns every remote-tracking branch (refs/remotes/*) by
// its "<remote>/<branch>" name.
func (r *Repository) RemoteBranches() map[string]Hash {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Hash)
	for ref, hash := range r.refs {
		if name, ok := strings.CutPrefix(ref, "refs/remotes/"); ok {
			out[name] = hash
		}
	}
	return out
}

// findGitDirectory locates the .git directory starting from path, walking
// up toward the filesystem root, and resolves .git files used by worktrees
// and submodules.
func findGitDirectory(path string) (gitDir, workDir string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolving path: %w", err)
	}

	if filepath.Base(abs) == ".git" {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, filepath.Dir(abs), nil
		}
	}

	current := abs
	for {
		candidate := filepath.Join(current, ".git")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return candidate, current, nil
			}
			return resolveGitFile(candidate, current)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", "", fmt.Errorf("not a git repository (or any parent up to mount point): %s", path)
		}
		current = parent
	}
}

// resolveGitFile follows a ".git" file of the form "gitdir: <path>" used by
// worktrees and submodules.
func resolveGitFile(gitFile, workDir string) (string, string, error) {
	content, err := os.ReadFile(gitFile)
	if err != nil {
		return "", "", fmt.Errorf("reading .git file: %w", err)
	}

	line := strings.TrimSpace(string(content))
	target, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return "", "", fmt.Errorf("invalid .git file format: %s", gitFile)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(gitFile), target)
	}
	target = filepath.Clean(target)

	if _, err := os.Stat(target); err != nil {
		return "", "", fmt.Errorf("gitdir points to a missing directory: %s", target)
	}
	return target, workDir, nil
}

func validateGitDirectory(gitDir string) error {
	info, err := os.Stat(gitDir)
	if err != nil {
		return fmt.Errorf("git directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", gitDir)
	}
	for _, required := range []string{"objects", "refs", "HEAD"} {
		if _, err := os.Stat(filepath.Join(gitDir, required)); err != nil {
			return fmt.Errorf("invalid git directory, missing %s", required)
		}
	}
	return nil
}
