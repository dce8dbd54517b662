package cache

import "testing"

func kindsOf(row []Lane) []LaneKind {
	out := make([]LaneKind, len(row))
	for i, l := range row {
		out[i] = l.Kind
	}
	return out
}

func hasKind(row []Lane, kind LaneKind) bool {
	for _, l := range row {
		if l.Kind == kind {
			return true
		}
	}
	return false
}

// linear history: c -> b -> a (a is root). No fork, no merge; the sole
// lane should end on an Initial marker at the root.
func TestLaneEngineLinearHistory(t *testing.T) {
	e := newLaneEngine()

	rowC := e.process("c", []Sha{"b"})
	if len(rowC) != 1 || rowC[0].Kind != LaneActive {
		t.Fatalf("c: want single active lane, got %v", kindsOf(rowC))
	}

	rowB := e.process("b", []Sha{"a"})
	if len(rowB) != 1 || rowB[0].Kind != LaneActive {
		t.Fatalf("b: want single active lane, got %v", kindsOf(rowB))
	}

	rowA := e.process("a", nil)
	if !hasKind(rowA, LaneInitial) {
		t.Fatalf("a: want an Initial marker, got %v", kindsOf(rowA))
	}
}

// fork: two children (b, c) both point at parent p, and p is also a root.
// p's row must show a Fork marker (which wins over the Initial marker it
// would otherwise also qualify for).
func TestLaneEngineFork(t *testing.T) {
	e := newLaneEngine()

	e.process("c", []Sha{"p"})
	e.process("b", []Sha{"p"})
	rowP := e.process("p", nil)

	if !hasKind(rowP, LaneFork) {
		t.Fatalf("p: want a Fork marker, got %v", kindsOf(rowP))
	}
}

// merge: m has two parents l and r, both of which eventually converge at
// p. m's own row must already show at least 2 lanes (the mainline plus the
// freshly opened merge-source lane for the second parent). p is both a
// root and the convergence point of l and r, so its row shows a Fork
// marker, not Initial (Fork wins over Initial).
func TestLaneEngineMerge(t *testing.T) {
	e := newLaneEngine()

	rowM := e.process("m", []Sha{"l", "r"})
	if len(rowM) < 2 {
		t.Fatalf("m: want >= 2 lanes, got %v", kindsOf(rowM))
	}
	if !hasKind(rowM, LaneMergeSource) {
		t.Fatalf("m: want a MergeSource marker, got %v", kindsOf(rowM))
	}

	e.process("l", []Sha{"p"})
	e.process("r", []Sha{"p"})

	rowP := e.process("p", nil)
	if !hasKind(rowP, LaneFork) {
		t.Fatalf("p: want l and r to converge as a Fork at p's row (Fork wins over Initial), got %v", kindsOf(rowP))
	}
}

// an octopus merge (3+ parents) must open one merge-source lane per extra
// parent, not just one.
func TestLaneEngineOctopusMerge(t *testing.T) {
	e := newLaneEngine()

	row := e.process("m", []Sha{"a", "b", "c"})
	if len(row) != 3 {
		t.Fatalf("want 3 lanes opened for a 3-parent merge, got %v", kindsOf(row))
	}
	count := 0
	for _, l := range row {
		if l.Kind == LaneMergeSource {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("want 2 MergeSource lanes (one per extra parent), got %d in %v", count, kindsOf(row))
	}
}

// a branch tip whose lane closes (no parent) and is not the sole lane must
// be compacted away rather than lingering as an empty column forever.
func TestLaneEngineBranchCompaction(t *testing.T) {
	e := newLaneEngine()

	e.process("m", []Sha{"l", "r"})
	rowL := e.process("l", nil)
	if len(e.targets) != 1 {
		t.Fatalf("after l (a root on the mainline lane, with r's lane still open) closes, want the lane compacted away, got targets=%v", e.targets)
	}
	_ = rowL
}
