package cache

import "testing"

func TestRevisionFilesStatusCmpOutOfRange(t *testing.T) {
	var rf RevisionFiles
	if rf.StatusCmp(0, StatusModified) {
		t.Fatalf("want false for empty RevisionFiles")
	}
}

func TestRevisionFilesAppendStatusIgnoresOutOfRange(t *testing.T) {
	var rf RevisionFiles
	rf.setStatusChar('M', false)
	rf.AppendStatus(5, StatusConflict)
	if rf.Statuses[0]&StatusConflict != 0 {
		t.Fatalf("out-of-range AppendStatus must not mutate in-range entries")
	}
}

func TestRevisionFilesSetStatusCharMapsLetters(t *testing.T) {
	cases := []struct {
		flag byte
		want StatusFlags
	}{
		{'A', StatusNew},
		{'D', StatusDeleted},
		{'U', StatusConflict},
		{'T', StatusModified},
		{'X', StatusModified},
	}
	for _, c := range cases {
		var rf RevisionFiles
		rf.setStatusChar(c.flag, false)
		if !rf.StatusCmp(0, c.want) {
			t.Errorf("flag %q: want %v, got %v", c.flag, c.want, rf.Statuses[0])
		}
	}
}

func TestRevisionFilesSetStatusCharCachedBit(t *testing.T) {
	var rf RevisionFiles
	rf.setStatusChar('M', true)
	if !rf.StatusCmp(0, StatusInIndex) {
		t.Fatalf("want InIndex bit set when cached=true, got %v", rf.Statuses[0])
	}
}
