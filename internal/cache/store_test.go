package cache

import (
	"testing"
	"time"
)

var zeroTime = time.Time{}

func TestCommitStoreBySha(t *testing.T) {
	s := NewCommitStore()
	e := newLaneEngine()
	c := NewCommitInfo("abcdef0123456789abcdef0123456789abcdef01", nil, 0, "a", zeroTime, "a", "root")
	s.Insert(&c, e)

	if got := s.BySha("abcdef0123456789abcdef0123456789abcdef01"); got == nil {
		t.Fatalf("want exact sha lookup to succeed")
	}
	if got := s.BySha("abcdef"); got == nil || got.Sha() != c.Sha() {
		t.Fatalf("want unambiguous prefix lookup to resolve to the commit")
	}
	if got := s.BySha("zzzzzz"); got != nil {
		t.Fatalf("want unmatched prefix to resolve to nil, got %v", got)
	}
}

func TestCommitStorePrefixAmbiguity(t *testing.T) {
	s := NewCommitStore()
	e := newLaneEngine()
	c1 := NewCommitInfo("aaaa111111111111111111111111111111111111", nil, 0, "a", zeroTime, "a", "one")
	c2 := NewCommitInfo("aaaa222222222222222222222222222222222222", []Sha{c1.Sha()}, 0, "a", zeroTime, "a", "two")
	s.Insert(&c1, e)
	s.Insert(&c2, e)

	if got := s.BySha("aaaa"); got != nil {
		t.Fatalf("want ambiguous prefix to resolve to nil, got %v", got.Sha())
	}
}

func TestCommitStorePendingChildEdges(t *testing.T) {
	s := NewCommitStore()
	e := newLaneEngine()

	const parentSha Sha = "parent0000000000000000000000000000000000"
	const childSha Sha = "child00000000000000000000000000000000000"

	child := NewCommitInfo(childSha, []Sha{parentSha}, 0, "a", zeroTime, "a", "child")
	s.Insert(&child, e)

	parent := NewCommitInfo(parentSha, nil, 0, "a", zeroTime, "a", "parent")
	s.Insert(&parent, e)

	stored := s.BySha(parent.Sha())
	if !stored.HasChildren() {
		t.Fatalf("want parent, inserted after its child, to pick up the pending child edge")
	}
}

func TestCommitStoreSearchWrapsAround(t *testing.T) {
	s := NewCommitStore()
	e := newLaneEngine()
	a := NewCommitInfo("a000000000000000000000000000000000000000", nil, 0, "alice", zeroTime, "alice", "first commit")
	b := NewCommitInfo("b000000000000000000000000000000000000000", []Sha{a.Sha()}, 0, "bob", zeroTime, "bob", "second commit")
	s.Insert(&a, e)
	s.Insert(&b, e)

	row := s.Search("alice", 0, SearchForward)
	if row != 0 {
		t.Fatalf("want wraparound search to find row 0, got %d", row)
	}

	if row := s.Search("nobody", 0, SearchForward); row != -1 {
		t.Fatalf("want no match to return -1, got %d", row)
	}
}

func TestCommitStoreInsertWipAtRowZero(t *testing.T) {
	s := NewCommitStore()
	e := newLaneEngine()
	a := NewCommitInfo("a000000000000000000000000000000000000000", nil, 0, "alice", zeroTime, "alice", "first")
	s.Insert(&a, e)

	wip := NewCommitInfo(ZeroSha, []Sha{a.Sha()}, 0, "", zeroTime, "", "Local changes")
	s.InsertWip(&wip)

	if s.Count() != 2 {
		t.Fatalf("want WIP added as an extra row, got count=%d", s.Count())
	}
	if got := s.ByRow(0); got == nil || !got.IsWip() {
		t.Fatalf("want row 0 to be the WIP commit")
	}
}
