package gitscan

import (
	"bytes"
	"strings"
	"testing"
)

func rawDigest(hash Hash) []byte {
	out := make([]byte, 20)
	for i := 0; i < 20; i++ {
		var v byte
		fromHexByte(hash[i*2], hash[i*2+1], &v)
		out[i] = v
	}
	return out
}

func fromHexByte(hi, lo byte, out *byte) {
	*out = hexVal(hi)<<4 | hexVal(lo)
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

func buildTreeObject(entries []TreeEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(rawDigest(e.Hash))
	}
	return buf.Bytes()
}

func TestParseTree(t *testing.T) {
	blob := sampleHash('a')
	sub := sampleHash('b')
	raw := buildTreeObject([]TreeEntry{
		{Mode: "100644", Name: "README.md", Hash: blob},
		{Mode: "40000", Name: "src", Hash: sub},
	})

	entries, err := parseTree(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "README.md" || entries[0].IsDir() {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Name != "src" || !entries[1].IsDir() {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestDiffFlatMaps(t *testing.T) {
	before := map[string]Hash{
		"a.txt": sampleHash('1'),
		"b.txt": sampleHash('2'),
	}
	after := map[string]Hash{
		"a.txt": sampleHash('1'),
		"b.txt": sampleHash('3'),
		"c.txt": sampleHash('4'),
	}

	out := diffFlatMaps(before, after)

	if !strings.Contains(out, "\tb.txt\n") {
		t.Fatalf("want b.txt reported changed, got %q", out)
	}
	if !strings.Contains(out, "\tc.txt\n") {
		t.Fatalf("want c.txt reported added, got %q", out)
	}
	if strings.Contains(out, "\ta.txt\n") {
		t.Fatalf("want a.txt (unchanged) absent, got %q", out)
	}
}
