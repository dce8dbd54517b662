package gitscan

import "testing"

func TestParseCommit(t *testing.T) {
	body := "tree " + string(sampleHash('a')) + "\n" +
		"parent " + string(sampleHash('b')) + "\n" +
		"author Jane Doe <jane@example.com> 1713800000 +0000\n" +
		"committer Jane Doe <jane@example.com> 1713800000 +0000\n" +
		"\n" +
		"Fix the thing\n" +
		"\n" +
		"Longer description.\n"

	c, err := parseCommit(sampleHash('c'), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Tree != sampleHash('a') {
		t.Fatalf("want tree %s, got %s", sampleHash('a'), c.Tree)
	}
	if len(c.Parents) != 1 || c.Parents[0] != sampleHash('b') {
		t.Fatalf("want 1 parent %s, got %v", sampleHash('b'), c.Parents)
	}
	if c.Author.Name != "Jane Doe" {
		t.Fatalf("want author Jane Doe, got %q", c.Author.Name)
	}
	if c.Message != "Fix the thing\n\nLonger description." {
		t.Fatalf("unexpected message: %q", c.Message)
	}
}

func TestParseCommitNoParents(t *testing.T) {
	body := "tree " + string(sampleHash('a')) + "\n" +
		"author Jane Doe <jane@example.com> 1713800000 +0000\n" +
		"committer Jane Doe <jane@example.com> 1713800000 +0000\n" +
		"\n" +
		"root commit\n"

	c, err := parseCommit(sampleHash('c'), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Parents) != 0 {
		t.Fatalf("want no parents, got %v", c.Parents)
	}
}

func sampleHash(fill byte) Hash {
	b := make([]byte, 40)
	for i := range b {
		b[i] = fill
	}
	return Hash(b)
}
