package cache

import "testing"

func TestNameInternerDedupesAcrossAppends(t *testing.T) {
	n := newNameInterner()
	var rf RevisionFiles
	fl := &fileNamesLoader{target: &rf}

	n.append("src/main.go", fl)
	n.append("src/util.go", fl)
	n.append("src/main.go", fl)

	n.flush(fl)

	if rf.Count() != 2 {
		t.Fatalf("want 2 unique files, got %d: %v", rf.Count(), rf.Files)
	}
	if len(n.dirNames) != 1 {
		t.Fatalf("want 1 interned dir, got %d: %v", len(n.dirNames), n.dirNames)
	}
	if len(n.fileNames) != 2 {
		t.Fatalf("want 2 interned file names, got %d: %v", len(n.fileNames), n.fileNames)
	}
}

func TestNameInternerFlushClearsLoader(t *testing.T) {
	n := newNameInterner()
	var rf RevisionFiles
	fl := &fileNamesLoader{target: &rf}

	n.append("a/b.txt", fl)
	n.flush(fl)

	if fl.target != nil || len(fl.dirIdx) != 0 || len(fl.nameIdx) != 0 {
		t.Fatalf("want loader cleared after flush, got target=%v dirIdx=%v nameIdx=%v", fl.target, fl.dirIdx, fl.nameIdx)
	}
}

func TestNameInternerResetClearsTables(t *testing.T) {
	n := newNameInterner()
	var rf RevisionFiles
	fl := &fileNamesLoader{target: &rf}
	n.append("a/b.txt", fl)
	n.flush(fl)

	n.reset()

	if len(n.dirNames) != 0 || len(n.fileNames) != 0 {
		t.Fatalf("want tables empty after reset, got dirs=%v files=%v", n.dirNames, n.fileNames)
	}
}
