package gitscan

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadRefs loads every loose ref (branches, tags, remote-tracking
// branches) and resolves HEAD. Packed refs (packed-refs) are not read, so a
// ref that exists only in packed-refs is absent from the loaded set.
func (r *Repository) loadRefs() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, prefix := range []string{"heads", "tags", "remotes"} {
		if err := r.loadLooseRefs(prefix); err != nil {
			return fmt.Errorf("loading refs/%s: %w", prefix, err)
		}
	}
	return r.loadHEAD()
}

func (r *Repository) loadLooseRefs(prefix string) error {
	dir := filepath.Join(r.gitDir, "refs", prefix)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(r.gitDir, path)
		if err != nil {
			return err
		}
		refName := filepath.ToSlash(relPath)

		hash, err := r.resolveRef(path, 0)
		if err != nil {
			log.Printf("gitscan: skipping unresolvable ref %s: %v", refName, err)
			return nil
		}
		r.refs[refName] = hash
		return nil
	})
}

func (r *Repository) loadHEAD() error {
	content, err := os.ReadFile(filepath.Join(r.gitDir, "HEAD"))
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}

	line := strings.TrimSpace(string(content))
	if target, ok := strings.CutPrefix(line, "ref: "); ok {
		r.headRef = target
		r.headDetached = false
		r.head = r.refs[target]
		return nil
	}

	r.headDetached = true
	r.headRef = ""
	hash, err := NewHash(line)
	if err != nil {
		return fmt.Errorf("invalid HEAD: %w", err)
	}
	r.head = hash
	return nil
}

const maxSymrefDepth = 8

// resolveRef reads one ref file, following symbolic refs ("ref: ...") up
// to maxSymrefDepth levels to guard against a cycle.
func (r *Repository) resolveRef(path string, depth int) (Hash, error) {
	if depth > maxSymrefDepth {
		return "", fmt.Errorf("symbolic ref chain too deep starting at %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(content))

	if target, ok := strings.CutPrefix(line, "ref: "); ok {
		return r.resolveRef(filepath.Join(r.gitDir, target), depth+1)
	}

	hash, err := NewHash(line)
	if err != nil {
		return "", fmt.Errorf("invalid hash in ref file %s: %w", path, err)
	}
	return hash, nil
}
