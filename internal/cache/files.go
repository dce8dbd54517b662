package cache

// StatusFlags is a bitmask describing one file's change state within a
// RevisionFiles entry.
type StatusFlags uint16

const (
	StatusNew              StatusFlags = 1 << iota
	StatusDeleted
	StatusModified
	StatusConflict
	StatusUnknown
	StatusInIndex
	StatusPartiallyCached
)

// RevisionFiles holds the file change set for one (parent, child) pair,
// decoded from raw diff text by the DiffParser. files, statuses, and
// mergeParent are parallel lists indexed identically; extStatus may be
// shorter than files (it only covers entries up to the last rename/copy).
type RevisionFiles struct {
	Files       []string
	Statuses    []StatusFlags
	MergeParent []int
	ExtStatus   []string
	OnlyModified bool
}

// RevisionFilesKey identifies one RevisionFiles entry by the (parent,
// child) sha pair it was computed between. The WIP uses (ZeroSha, parent).
type RevisionFilesKey struct {
	Parent Sha
	Child  Sha
}

// Count returns the number of file entries.
func (rf *RevisionFiles) Count() int {
	return len(rf.Files)
}

// File returns the path at index i, or "" if out of range.
func (rf *RevisionFiles) File(i int) string {
	if i < 0 || i >= len(rf.Files) {
		return ""
	}
	return rf.Files[i]
}

// StatusCmp reports whether the status at index i includes every bit of
// flag. Out-of-range indices never match.
func (rf *RevisionFiles) StatusCmp(i int, flag StatusFlags) bool {
	if i < 0 || i >= len(rf.Statuses) {
		return false
	}
	return rf.Statuses[i]&flag == flag
}

// AppendStatus ORs flag into the status at index i, if in range.
func (rf *RevisionFiles) AppendStatus(i int, flag StatusFlags) {
	if i < 0 || i >= len(rf.Statuses) {
		return
	}
	rf.Statuses[i] |= flag
}

// AppendExtStatus appends one rename/copy description string.
func (rf *RevisionFiles) AppendExtStatus(info string) {
	rf.ExtStatus = append(rf.ExtStatus, info)
}

// setStatusChar appends a new status entry decoded from a single diff-tree
// status letter (one of A, C, D, M, R, T, U, X), honoring the cached bit.
func (rf *RevisionFiles) setStatusChar(flag byte, cached bool) {
	var s StatusFlags
	switch flag {
	case 'A':
		s = StatusNew
	case 'D':
		s = StatusDeleted
	case 'U':
		s = StatusConflict
	case 'T':
		s = StatusModified
	default:
		s = StatusModified
	}
	if cached {
		s |= StatusInIndex
	}
	rf.Statuses = append(rf.Statuses, s)
}

// setStatus appends a single status flag verbatim, used by the combined
// merge path and the rename/copy path where the caller already knows the
// exact flag to record.
func (rf *RevisionFiles) setStatus(s StatusFlags) {
	rf.Statuses = append(rf.Statuses, s)
}
