package cache

// LaneKind classifies the glyph a single lane (rendering column) carries
// for one row of the history graph.
type LaneKind int

const (
	LaneEmpty LaneKind = iota
	LaneActive
	LaneMergeSource
	LaneFork
	LaneInitial
	LaneBranch
	LaneCrossing
)

// Lane is a snapshot of one column's role for one commit's row.
type Lane struct {
	Kind LaneKind
}

// laneEngine is the streaming lane-assignment state machine described by
// the spec: it holds a vector of active lanes between commits and, fed one
// commit (sha, parents) at a time in ingest order, produces the lane
// vector for that commit's row.
//
// Each lane tracks the sha it is currently watching for ("" once a lane
// has closed: it reached a root, or joined a sibling lane at a fork
// point). curColumn is the index of the lane presently bound to the
// ingest stream's "mainline" pointer — the column that just advanced
// naturally from the previous row, as opposed to one reached by a fork or
// a merge join.
type laneEngine struct {
	targets   []Sha
	curColumn int
}

func newLaneEngine() *laneEngine {
	return &laneEngine{}
}

func (e *laneEngine) reset() {
	e.targets = nil
	e.curColumn = 0
}

// init seeds the engine with its first lane, bound to sha. Exposed so WIP
// synthesis can prime the engine before any commit has been ingested
// (spec §4.E: "If the lane engine is empty, initialize it with ZERO_SHA").
func (e *laneEngine) init(sha Sha) {
	e.targets = []Sha{sha}
	e.curColumn = 0
}

func (e *laneEngine) isEmpty() bool {
	return len(e.targets) == 0
}

// matches returns every lane index currently watching for sha, in
// ascending order.
func (e *laneEngine) matches(sha Sha) []int {
	var out []int
	for i, t := range e.targets {
		if t != "" && t == sha {
			out = append(out, i)
		}
	}
	return out
}

// process runs one commit through the transition order described by the
// spec and returns the snapshot for its row.
//
//  1. find which lane(s), if any, already watch for sha
//  2. a commit no lane watches for is a fresh branch tip: open a lane for it
//  3. more than one watching lane means sha is a fork point (>1 child)
//  4. the lane that migrates onto sha becomes the active column; if that
//     isn't the column already active, this is a discontinuity
//  5. a merge opens one new lane per extra parent, each starting this row
//     as a merge-source glyph
//  6. a parentless commit marks its column as an initial (root) lane
//  7. snapshot the row
//  8. close the other lanes that watched a fork point, advance the active
//     lane to the first parent, and run the merge/fork/branch compaction
//     passes, in that order
func (e *laneEngine) process(sha Sha, parents []Sha) []Lane {
	matched := e.matches(sha)
	isNew := len(matched) == 0
	if isNew {
		e.targets = append(e.targets, sha)
		matched = []int{len(e.targets) - 1}
	}

	isFork := len(matched) > 1
	chosen := matched[0]
	for _, m := range matched {
		if m == e.curColumn {
			chosen = m
			break
		}
	}

	isDiscontinuity := !isNew && chosen != e.curColumn
	if isDiscontinuity || isNew {
		e.curColumn = chosen
	}

	marks := make(map[int]LaneKind)
	isMerge := len(parents) > 1
	if isMerge {
		for _, p := range parents[1:] {
			e.targets = append(e.targets, p)
			marks[len(e.targets)-1] = LaneMergeSource
		}
	}
	if len(parents) == 0 {
		marks[e.curColumn] = LaneInitial
	}
	if isFork {
		// Fork takes priority over an initial-root marker on the same
		// column (a root commit can also be the fork point for two or
		// more children discovered earlier in the stream).
		marks[chosen] = LaneFork
	}

	row := e.snapshot(marks)

	if isFork {
		// The other lanes that watched sha join the chosen lane here.
		for _, m := range matched {
			if m != chosen {
				e.targets[m] = ""
			}
		}
	}

	e.advance(parents, isMerge, isFork)

	return row
}

func (e *laneEngine) snapshot(marks map[int]LaneKind) []Lane {
	row := make([]Lane, len(e.targets))
	for i, target := range e.targets {
		if kind, ok := marks[i]; ok {
			row[i] = Lane{Kind: kind}
			continue
		}
		switch {
		case target == "":
			row[i] = Lane{Kind: LaneEmpty}
		case i == e.curColumn:
			row[i] = Lane{Kind: LaneActive}
		default:
			row[i] = Lane{Kind: LaneCrossing}
		}
	}
	return row
}

// advance moves the active column's target to the first parent (closing
// the lane if there is none), then runs the compaction passes the spec
// orders after a merge, a fork, and a branch tip respectively.
func (e *laneEngine) advance(parents []Sha, isMerge, isFork bool) {
	var first Sha
	if len(parents) > 0 {
		first = parents[0]
	}
	e.targets[e.curColumn] = first

	if isMerge {
		e.afterMerge()
	}
	if isFork {
		e.afterFork()
	}
	if e.isBranchTip() {
		e.afterBranch()
	}
}

// afterMerge folds away lanes that, after advancing, target a sha some
// earlier lane already targets: two parents of a merge can both lead back
// into a branch this engine already tracks, in which case the later
// duplicate is dropped (its ancestry is rediscovered as a fork when that
// sha is finally reached).
func (e *laneEngine) afterMerge() {
	seen := make(map[Sha]bool, len(e.targets))
	kept := e.targets[:0:0]
	newCur := e.curColumn
	for i, t := range e.targets {
		if t != "" && seen[t] {
			if i < newCur {
				newCur--
			}
			continue
		}
		if t != "" {
			seen[t] = true
		}
		kept = append(kept, t)
	}
	e.targets = kept
	e.curColumn = newCur
}

// afterFork trims trailing empty lanes freed up once a fork point has
// been recorded.
func (e *laneEngine) afterFork() {
	e.trimTrailingEmpty()
}

// isBranchTip reports whether the active column just closed (its commit
// had no parent to continue the mainline into), marking the end of a
// branch.
func (e *laneEngine) isBranchTip() bool {
	return e.curColumn < len(e.targets) && e.targets[e.curColumn] == ""
}

// afterBranch removes the now-closed active lane, unless it is the sole
// remaining lane, and repoints curColumn at the nearest surviving lane.
func (e *laneEngine) afterBranch() {
	if len(e.targets) <= 1 {
		return
	}
	closed := e.curColumn
	e.targets = append(e.targets[:closed], e.targets[closed+1:]...)
	if e.curColumn >= len(e.targets) {
		e.curColumn = len(e.targets) - 1
	}
}

func (e *laneEngine) trimTrailingEmpty() {
	for len(e.targets) > 1 && e.targets[len(e.targets)-1] == "" && len(e.targets)-1 != e.curColumn {
		e.targets = e.targets[:len(e.targets)-1]
	}
}
