package gitscan

import "testing"

func TestNewHashValid(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef01234567"
	h, err := NewHash(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(h) != raw {
		t.Fatalf("expected hash %s, got %s", raw, h)
	}
}

func TestNewHashInvalidLength(t *testing.T) {
	if _, err := NewHash("abcd"); err == nil {
		t.Fatalf("expected error for invalid hash length")
	}
}

func TestNewHashInvalidHex(t *testing.T) {
	if _, err := NewHash("0123456789abcdef0123456789abcdef0123456z"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}

func TestHashShortAndValid(t *testing.T) {
	h := Hash("0123456789abcdef0123456789abcdef01234567")
	if got := h.Short(); got != "0123456" {
		t.Fatalf("expected short hash 0123456, got %s", got)
	}
	if !h.IsValid() {
		t.Fatalf("expected hash to be valid")
	}
	if Hash("not-a-hash").IsValid() {
		t.Fatalf("expected garbage hash to be invalid")
	}
}

func TestStrToObjectType(t *testing.T) {
	if got := strToObjectType("commit"); got != ObjCommit {
		t.Fatalf("expected commit object type")
	}
	if got := strToObjectType("tree"); got != ObjTree {
		t.Fatalf("expected tree object type")
	}
	if got := strToObjectType("blob"); got != ObjBlob {
		t.Fatalf("expected blob object type")
	}
	if got := strToObjectType("cow"); got != ObjNone {
		t.Fatalf("expected none object type for unsupported value")
	}
}

func TestParseSignatureValid(t *testing.T) {
	sig, err := ParseSignature("Jane Doe <jane@example.com> 1713800000 +0000")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sig.Name != "Jane Doe" || sig.Email != "jane@example.com" {
		t.Fatalf("unexpected signature: %+v", sig)
	}
	if sig.When.Unix() != 1713800000 {
		t.Fatalf("unexpected timestamp: %d", sig.When.Unix())
	}
}

func TestParseSignatureInvalid(t *testing.T) {
	if _, err := ParseSignature("Jane Doe jane@example.com 1713800000"); err == nil {
		t.Fatalf("expected error for missing angle brackets")
	}
	if _, err := ParseSignature("Jane Doe <jane@example.com>"); err == nil {
		t.Fatalf("expected error for missing timestamp")
	}
}
