package server

import (
	"fmt"
	"strings"

	"github.com/rybkr/gitvista/internal/cache"
	"github.com/rybkr/gitvista/internal/gitscan"
)

// Rescan throws away everything the facade knows and rebuilds it from the
// repository's current on-disk state: every reachable commit (newest
// first, starting at HEAD), its file changes against each parent, branch
// and tag references, and the working-tree WIP row.
func Rescan(facade *cache.Facade, repo *gitscan.Repository) error {
	facade.Setup()

	headHash, _, _ := repo.Head()

	// The WIP pseudo-commit is inserted at row 0 before any real commit is
	// fed through the lane engine, so the engine is seeded and the first
	// real commit's lane continues from ZeroSha's row rather than starting
	// fresh.
	state, err := repo.Status(headHash)
	if err != nil {
		return fmt.Errorf("computing working tree status: %w", err)
	}
	facade.UpdateWip(cache.WipRevisionInfo{
		ParentSha:       cache.Sha(headHash),
		DiffIndex:       state.DiffIndex,
		DiffIndexCached: state.DiffIndexCached,
	}, state.Untracked)

	visited := make(map[gitscan.Hash]bool)
	order, err := topoNewestFirst(repo, headHash, visited)
	if err != nil {
		return fmt.Errorf("walking commit history: %w", err)
	}

	for _, raw := range order {
		parents := make([]cache.Sha, len(raw.Parents))
		for i, p := range raw.Parents {
			parents[i] = cache.Sha(p)
		}

		c := cache.NewCommitInfo(
			cache.Sha(raw.ID),
			parents,
			0,
			raw.Author.Name,
			raw.Committer.When,
			raw.Committer.Name,
			raw.Message,
		)
		facade.InsertCommit(&c)

		for _, parent := range raw.Parents {
			buf, err := repo.DiffTrees(mustTree(repo, parent), raw.Tree)
			if err != nil {
				continue
			}
			facade.InsertRevisionFile(cache.Sha(parent), cache.Sha(raw.ID), buf)
		}
		if len(raw.Parents) == 0 {
			buf, err := repo.DiffTrees("", raw.Tree)
			if err == nil {
				facade.InsertRevisionFile("", cache.Sha(raw.ID), buf)
			}
		}
	}

	for name, hash := range repo.Branches() {
		facade.InsertReference(cache.Sha(hash), cache.LocalBranch, name)
	}
	for name, hash := range repo.Tags() {
		facade.InsertReference(cache.Sha(hash), cache.LocalTag, name)
	}
	for name, hash := range repo.RemoteBranches() {
		facade.InsertReference(cache.Sha(hash), cache.RemoteBranch, name)
	}
	// gitscan reads no remote tags, so the remote tag table is emptied.
	facade.UpdateTags(make(cache.RemoteTags))

	if _, _, ref := repo.Head(); ref != "" {
		facade.ReloadCurrentBranch(strings.TrimPrefix(ref, "refs/heads/"))
	}

	return nil
}

// topoNewestFirst walks the commit graph depth-first from head, returning
// commits in an order where every commit precedes its parents — the order
// the cache's CommitStore expects so pending-child edges resolve without a
// second pass.
func topoNewestFirst(repo *gitscan.Repository, head gitscan.Hash, visited map[gitscan.Hash]bool) ([]gitscan.RawCommit, error) {
	if head == "" || visited[head] {
		return nil, nil
	}
	visited[head] = true

	commit, err := repo.ReadCommit(head)
	if err != nil {
		return nil, err
	}

	// Later parents' histories go in front of earlier ones (reverse DFS
	// postorder), so a commit shared by two parents follows both of them.
	var ancestors []gitscan.RawCommit
	for _, parent := range commit.Parents {
		rest, err := topoNewestFirst(repo, parent, visited)
		if err != nil {
			return nil, err
		}
		ancestors = append(rest, ancestors...)
	}
	return append([]gitscan.RawCommit{commit}, ancestors...), nil
}

func mustTree(repo *gitscan.Repository, commitHash gitscan.Hash) gitscan.Hash {
	tree, err := repo.CommitTree(commitHash)
	if err != nil {
		return ""
	}
	return tree
}
