package cache

import "strings"

// nameInterner de-duplicates directory and file-name strings encountered
// while parsing diff output, returning stable integer indices. Diff output
// commonly repeats directory prefixes across many entries; interning them
// keeps RevisionFiles cheap to store and cheap to compare.
type nameInterner struct {
	dirNames  []string
	fileNames []string
}

func newNameInterner() *nameInterner {
	return &nameInterner{}
}

func (n *nameInterner) reset() {
	n.dirNames = n.dirNames[:0]
	n.fileNames = n.fileNames[:0]
}

// fileNamesLoader accumulates (dir, name) index pairs for the RevisionFiles
// currently being built. flush drains it into the bound target,
// suppressing duplicates already present.
type fileNamesLoader struct {
	target  *RevisionFiles
	dirIdx  []int
	nameIdx []int
}

// indexOf returns the stable index of s within table, appending it if not
// already present.
func indexOf(table *[]string, s string) int {
	for i, existing := range *table {
		if existing == s {
			return i
		}
	}
	idx := len(*table)
	*table = append(*table, s)
	return idx
}

// append splits path at its last '/', interns both halves, and records
// their indices on the loader.
func (n *nameInterner) append(path string, fl *fileNamesLoader) {
	cut := strings.LastIndexByte(path, '/') + 1
	dir := path[:cut]
	name := path[cut:]

	fl.dirIdx = append(fl.dirIdx, indexOf(&n.dirNames, dir))
	fl.nameIdx = append(fl.nameIdx, indexOf(&n.fileNames, name))
}

// flush drains the loader's recorded (dir, name) pairs into fl.target,
// materializing dir+name strings and skipping ones already present on the
// target. After flush the loader's index lists are empty and its target is
// cleared.
func (n *nameInterner) flush(fl *fileNamesLoader) {
	if fl.target == nil {
		return
	}

	for i := range fl.nameIdx {
		dir := n.dirNames[fl.dirIdx[i]]
		name := n.fileNames[fl.nameIdx[i]]
		full := dir + name

		found := false
		for _, existing := range fl.target.Files {
			if existing == full {
				found = true
				break
			}
		}
		if !found {
			fl.target.Files = append(fl.target.Files, full)
		}
	}

	fl.dirIdx = fl.dirIdx[:0]
	fl.nameIdx = fl.nameIdx[:0]
	fl.target = nil
}
