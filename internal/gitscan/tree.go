package gitscan

import (
	"bytes"
	"fmt"
)

// ReadTree decodes one tree object into its immediate entries.
func (r *Repository) ReadTree(hash Hash) ([]TreeEntry, error) {
	data, typ, err := r.ReadObject(hash)
	if err != nil {
		return nil, err
	}
	if typ != ObjTree {
		return nil, fmt.Errorf("%s is a %s, not a tree", hash.Short(), typ)
	}
	return parseTree(data)
}

func parseTree(content []byte) ([]TreeEntry, error) {
	var entries []TreeEntry

	for len(content) > 0 {
		spaceIdx := bytes.IndexByte(content, ' ')
		if spaceIdx == -1 {
			return nil, fmt.Errorf("malformed tree entry: missing mode separator")
		}
		mode := string(content[:spaceIdx])
		content = content[spaceIdx+1:]

		nullIdx := bytes.IndexByte(content, 0)
		if nullIdx == -1 {
			return nil, fmt.Errorf("malformed tree entry: missing name terminator")
		}
		name := string(content[:nullIdx])
		content = content[nullIdx+1:]

		if len(content) < 20 {
			return nil, fmt.Errorf("malformed tree entry: truncated object name")
		}
		var raw [20]byte
		copy(raw[:], content[:20])
		content = content[20:]

		entries = append(entries, TreeEntry{Mode: mode, Name: name, Hash: NewHashFromBytes(raw)})
	}

	return entries, nil
}

// Flatten walks a tree recursively and returns every blob it reaches,
// keyed by its full slash-separated path.
func (r *Repository) Flatten(treeHash Hash) (map[string]Hash, error) {
	out := make(map[string]Hash)
	if err := r.flattenInto(treeHash, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) flattenInto(treeHash Hash, prefix string, out map[string]Hash) error {
	entries, err := r.ReadTree(treeHash)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		if e.IsDir() {
			if err := r.flattenInto(e.Hash, path, out); err != nil {
				return err
			}
			continue
		}
		out[path] = e.Hash
	}
	return nil
}

// CommitTree resolves a commit to its root tree.
func (r *Repository) CommitTree(commitHash Hash) (Hash, error) {
	c, err := r.ReadCommit(commitHash)
	if err != nil {
		return "", err
	}
	return c.Tree, nil
}

// DiffTrees compares the flattened blob sets of two trees (either side may
// be "" to mean the empty tree) and renders the result in the fixed-column
// diff-tree raw format the cache's diff parser expects: one line per
// changed path, ":<oldmode> <newmode> <oldsha> <newsha> <status>\t<path>",
// with the tab landing at column 98 exactly as upstream `git diff-tree
// --raw` places it for a single-character status.
func (r *Repository) DiffTrees(before, after Hash) (string, error) {
	var beforeFlat, afterFlat map[string]Hash
	var err error

	if before != "" {
		beforeFlat, err = r.Flatten(before)
		if err != nil {
			return "", err
		}
	} else {
		beforeFlat = map[string]Hash{}
	}
	if after != "" {
		afterFlat, err = r.Flatten(after)
		if err != nil {
			return "", err
		}
	} else {
		afterFlat = map[string]Hash{}
	}

	return diffFlatMaps(beforeFlat, afterFlat), nil
}

// diffFlatMaps renders the changes between two flattened path->blob-hash
// maps in the same fixed-column raw format DiffTrees produces.
func diffFlatMaps(before, after map[string]Hash) string {
	var buf bytes.Buffer
	for path, newHash := range after {
		oldHash, existed := before[path]
		switch {
		case !existed:
			writeRawLine(&buf, zeroHash, newHash, 'A', path)
		case oldHash != newHash:
			writeRawLine(&buf, oldHash, newHash, 'M', path)
		}
	}
	for path, oldHash := range before {
		if _, stillPresent := after[path]; !stillPresent {
			writeRawLine(&buf, oldHash, zeroHash, 'D', path)
		}
	}
	return buf.String()
}

const zeroHash Hash = "0000000000000000000000000000000000000000"

func writeRawLine(buf *bytes.Buffer, oldHash, newHash Hash, status byte, path string) {
	fmt.Fprintf(buf, ":100644 100644 %s %s %c\t%s\n", oldHash, newHash, status, path)
}
