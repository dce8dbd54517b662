package cache

import "strings"

// CommitStore owns the ordered commit history and the sha index built over
// it. Row 0 is reserved for the WIP entry once InsertWip has placed one there;
// every other row is a real commit in the order it was ingested.
type CommitStore struct {
	bySha map[Sha]*CommitInfo
	rows  []*CommitInfo

	// pendingChildren holds child shas discovered before their parent has
	// been inserted (history is read newest-first, so a commit's children
	// are always seen before it). Drained into the parent's back-reference
	// set the moment the parent itself is inserted.
	pendingChildren map[Sha][]Sha
}

func NewCommitStore() *CommitStore {
	return &CommitStore{
		bySha:           make(map[Sha]*CommitInfo),
		pendingChildren: make(map[Sha][]Sha),
	}
}

// Clear discards every commit and pending edge, resetting the store to its
// zero state.
func (s *CommitStore) Clear() {
	s.bySha = make(map[Sha]*CommitInfo)
	s.rows = nil
	s.pendingChildren = make(map[Sha][]Sha)
}

func (s *CommitStore) Count() int {
	return len(s.rows)
}

// ByRow returns the commit at the given row, or nil if out of range.
func (s *CommitStore) ByRow(row int) *CommitInfo {
	if row < 0 || row >= len(s.rows) {
		return nil
	}
	return s.rows[row]
}

// BySha resolves sha to a commit. An exact 40-char sha is looked up
// directly; anything shorter is treated as a prefix and resolved only if it
// identifies a single commit unambiguously. A prefix matching zero or more
// than one commit returns nil.
func (s *CommitStore) BySha(sha Sha) *CommitInfo {
	if c, ok := s.bySha[sha]; ok {
		return c
	}
	if sha == "" {
		return nil
	}
	var found *CommitInfo
	for full, c := range s.bySha {
		if full.hasPrefix(string(sha)) {
			if found != nil {
				return nil
			}
			found = c
		}
	}
	return found
}

// PositionOf returns the row of the commit identified by sha (exact or
// unambiguous prefix), or -1 if it cannot be resolved to exactly one row.
func (s *CommitStore) PositionOf(sha Sha) int {
	c := s.BySha(sha)
	if c == nil {
		return -1
	}
	for i, row := range s.rows {
		if row == c {
			return i
		}
	}
	return -1
}

// Insert appends a commit at the next row, indexes it by sha, links it as a
// child of each of its parents (recording the edge for later if a parent
// has not been inserted yet), drains any children that arrived before it,
// and computes its lane snapshot via engine. The WIP entry (sha == ZeroSha)
// must be inserted through InsertWip instead: Insert rejects it.
func (s *CommitStore) Insert(c *CommitInfo, engine *laneEngine) {
	if c.sha == ZeroSha {
		return
	}

	s.bySha[c.sha] = c
	s.rows = append(s.rows, c)

	if children, ok := s.pendingChildren[c.sha]; ok {
		for _, childSha := range children {
			if child, ok := s.bySha[childSha]; ok {
				c.addChildReference(child)
			}
		}
		delete(s.pendingChildren, c.sha)
	}

	for _, p := range c.parents {
		if parent, ok := s.bySha[p]; ok {
			parent.addChildReference(c)
		} else {
			s.pendingChildren[p] = append(s.pendingChildren[p], c.sha)
		}
	}

	c.SetLanes(engine.process(c.sha, c.parents))
}

// InsertWip places the synthetic WIP commit at row 0, replacing any prior
// WIP entry, and links it as a child of its parent when that parent is
// already in the store. A parent inserted after the WIP is not linked back
// to it.
func (s *CommitStore) InsertWip(wip *CommitInfo) {
	if wip.sha != ZeroSha {
		return
	}
	if len(s.rows) > 0 && s.rows[0] != nil && s.rows[0].sha == ZeroSha {
		delete(s.bySha, ZeroSha)
		s.rows[0] = wip
	} else {
		s.rows = append([]*CommitInfo{wip}, s.rows...)
	}
	s.bySha[ZeroSha] = wip

	if len(wip.parents) > 0 {
		if parent, ok := s.bySha[wip.parents[0]]; ok {
			parent.addChildReference(wip)
		}
	}
}

// SearchDirection controls which way Search scans from the starting row.
type SearchDirection int

const (
	SearchForward SearchDirection = iota
	SearchBackward
)

// Search scans rows for a commit whose sha, author, committer or log text
// contains text (case-insensitively), starting just past (or before, when
// searching backward) fromRow, wrapping around the end of history exactly
// once. It returns the row found, or -1 if no commit matches or text is
// empty.
func (s *CommitStore) Search(text string, fromRow int, dir SearchDirection) int {
	if text == "" || len(s.rows) == 0 {
		return -1
	}
	needle := strings.ToLower(text)
	n := len(s.rows)

	for step := 1; step <= n; step++ {
		var row int
		if dir == SearchForward {
			row = ((fromRow+step)%n + n) % n
		} else {
			row = ((fromRow-step)%n + n) % n
		}
		if s.rows[row] != nil && s.rows[row].Contains(needle) {
			return row
		}
	}
	return -1
}
