package cache

import (
	"strings"
	"testing"
)

// buildRawLine constructs a diff-tree raw-format line with the flag field
// placed so that the fast-path tab lands at column 98 (flagLen == 1) or
// past it, mirroring real upstream output.
func buildRawLine(flag, path string) string {
	sha1 := strings.Repeat("a", 40)
	sha2 := strings.Repeat("b", 40)
	return ":100644 100644 " + sha1 + " " + sha2 + " " + flag + "\t" + path
}

func TestDiffParserFastPathModified(t *testing.T) {
	p := newDiffParser(newNameInterner())
	line := buildRawLine("M", "src/main.go")

	rf := p.parseDiff(line)

	if rf.Count() != 1 {
		t.Fatalf("want 1 file, got %d", rf.Count())
	}
	if rf.File(0) != "src/main.go" {
		t.Fatalf("want src/main.go, got %q", rf.File(0))
	}
	if !rf.StatusCmp(0, StatusModified) {
		t.Fatalf("want Modified status, got %v", rf.Statuses)
	}
	if !rf.StatusCmp(0, StatusInIndex) {
		t.Fatalf("want InIndex bit set (dst sha is non-zero), got %v", rf.Statuses)
	}
}

func TestDiffParserFastPathDeleted(t *testing.T) {
	p := newDiffParser(newNameInterner())
	line := buildRawLine("D", "old/file.txt")

	rf := p.parseDiff(line)

	if rf.Count() != 1 || !rf.StatusCmp(0, StatusDeleted) {
		t.Fatalf("want 1 Deleted entry, got count=%d statuses=%v", rf.Count(), rf.Statuses)
	}
}

func TestDiffParserCombinedMerge(t *testing.T) {
	p := newDiffParser(newNameInterner())
	sha := strings.Repeat("c", 40)
	line := "::100644 100644 100644 " + sha + " " + sha + " " + sha + " MM\tconflict.go"

	rf := p.parseDiff(line)

	if rf.Count() != 1 || rf.File(0) != "conflict.go" {
		t.Fatalf("want conflict.go recorded once, got %v", rf.Files)
	}
	if !rf.StatusCmp(0, StatusModified) {
		t.Fatalf("want combined-merge entries reported as Modified, got %v", rf.Statuses)
	}
}

func TestDiffParserRename(t *testing.T) {
	p := newDiffParser(newNameInterner())
	line := buildRawLine("R100", "old.go\tnew.go")

	rf := p.parseDiff(line)

	if rf.Count() != 2 {
		t.Fatalf("want 2 entries (delete orig, add dest), got %d: %v", rf.Count(), rf.Files)
	}
	if !indexContains(rf.Files, "old.go") || !indexContains(rf.Files, "new.go") {
		t.Fatalf("want both old.go and new.go present, got %v", rf.Files)
	}
	if len(rf.ExtStatus) != 2 {
		t.Fatalf("want 2 ext-status entries, got %v", rf.ExtStatus)
	}
}

func TestDiffParserFakeWorkDirRevFile(t *testing.T) {
	p := newDiffParser(newNameInterner())
	modified := buildRawLine("M", "tracked.go")

	rf := p.fakeWorkDirRevFile(modified, "", []string{"new_untracked.txt"})

	if rf.Count() != 2 {
		t.Fatalf("want tracked.go + untracked file, got %d: %v", rf.Count(), rf.Files)
	}
	found := false
	for i, f := range rf.Files {
		if f == "new_untracked.txt" {
			found = true
			if !rf.StatusCmp(i, StatusUnknown) {
				t.Fatalf("want untracked file marked Unknown, got %v", rf.Statuses[i])
			}
		}
	}
	if !found {
		t.Fatalf("want new_untracked.txt present, got %v", rf.Files)
	}
}

func indexContains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
