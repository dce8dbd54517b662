package gitscan

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
)

// HashBlob computes the blob object id git would assign to the file at
// path, without writing it to the object store.
func HashBlob(path string) (Hash, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf("blob %d\x00", len(content))
	sum := sha1.Sum(append([]byte(header), content...))
	return NewHashFromBytes(sum), nil
}

// WorkingTreeState is everything gitscan can determine about the
// difference between HEAD, the index, and the working tree, in the shape
// the cache's WIP synthesis needs.
type WorkingTreeState struct {
	// DiffIndex is HEAD vs the working tree (unstaged plus staged
	// changes, git diff-index HEAD without --cached).
	DiffIndex string
	// DiffIndexCached is HEAD vs the index alone (git diff-index --cached
	// HEAD).
	DiffIndexCached string
	// Untracked lists working-tree files present on disk but absent from
	// the index.
	Untracked []string
}

// Status computes the working tree state relative to headCommit. If
// headCommit is "" (an unborn branch), every tracked file is reported as
// added; untracked files are listed in Untracked as usual.
func (r *Repository) Status(headCommit Hash) (WorkingTreeState, error) {
	var headFlat map[string]Hash
	if headCommit != "" {
		tree, err := r.CommitTree(headCommit)
		if err != nil {
			return WorkingTreeState{}, err
		}
		headFlat, err = r.Flatten(tree)
		if err != nil {
			return WorkingTreeState{}, err
		}
	} else {
		headFlat = map[string]Hash{}
	}

	entries, err := r.ReadIndex()
	if err != nil {
		return WorkingTreeState{}, fmt.Errorf("reading index: %w", err)
	}

	indexFlat := make(map[string]Hash, len(entries))
	tracked := make(map[string]bool, len(entries))
	worktreeFlat := make(map[string]Hash, len(entries))

	for _, e := range entries {
		indexFlat[e.Path] = e.Hash
		tracked[e.Path] = true

		diskPath := filepath.Join(r.workDir, e.Path)
		info, statErr := os.Stat(diskPath)
		if statErr != nil {
			// Deleted from the working tree but still staged: leave it
			// out of worktreeFlat so it renders as a deletion below.
			continue
		}

		if info.ModTime().Equal(e.MTime) && uint32(info.Size()) == e.Size {
			worktreeFlat[e.Path] = e.Hash
			continue
		}

		hash, err := HashBlob(diskPath)
		if err != nil {
			continue
		}
		worktreeFlat[e.Path] = hash
	}

	untracked, err := r.findUntracked(tracked)
	if err != nil {
		return WorkingTreeState{}, err
	}

	return WorkingTreeState{
		DiffIndex:       diffFlatMaps(headFlat, worktreeFlat),
		DiffIndexCached: diffFlatMaps(headFlat, indexFlat),
		Untracked:       untracked,
	}, nil
}

func (r *Repository) findUntracked(tracked map[string]bool) ([]string, error) {
	var untracked []string

	err := filepath.Walk(r.workDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(r.workDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !tracked[rel] {
			untracked = append(untracked, rel)
		}
		return nil
	})

	return untracked, err
}
