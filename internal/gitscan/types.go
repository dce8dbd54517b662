// Package gitscan reads a repository's on-disk object store directly —
// loose objects, packed objects, refs, the index, and working-tree state —
// without shelling out to git.
package gitscan

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Hash is a Git object identifier, the 40-character hex encoding of a
// SHA-1 digest.
type Hash string

// NewHash validates s as a 40-character hex string and returns it as a Hash.
func NewHash(s string) (Hash, error) {
	if len(s) != 40 {
		return "", fmt.Errorf("invalid hash length: %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("invalid hash: %w", err)
	}
	return Hash(s), nil
}

// NewHashFromBytes decodes a 20-byte raw digest into a Hash.
func NewHashFromBytes(b [20]byte) Hash {
	return Hash(hex.EncodeToString(b[:]))
}

func (h Hash) IsValid() bool {
	if len(string(h)) != 40 {
		return false
	}
	_, err := hex.DecodeString(string(h))
	return err == nil
}

func (h Hash) Short() string {
	if len(h) < 7 {
		return string(h)
	}
	return string(h[:7])
}

// ObjectType identifies the kind of object a loose or packed entry decodes
// to. Values mirror the pack format's 3-bit type field.
type ObjectType byte

const (
	ObjNone   ObjectType = 0
	ObjCommit ObjectType = 1
	ObjTree   ObjectType = 2
	ObjBlob   ObjectType = 3
	ObjTag    ObjectType = 4
)

func (t ObjectType) String() string {
	switch t {
	case ObjCommit:
		return "commit"
	case ObjTree:
		return "tree"
	case ObjBlob:
		return "blob"
	case ObjTag:
		return "tag"
	default:
		return "none"
	}
}

func strToObjectType(s string) ObjectType {
	switch s {
	case "commit":
		return ObjCommit
	case "tree":
		return ObjTree
	case "blob":
		return ObjBlob
	case "tag":
		return ObjTag
	default:
		return ObjNone
	}
}

// Signature is a "Name <email> seconds tz" line as it appears in a commit
// or tag object.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

var signatureRe = regexp.MustCompile(`^(.*) <(.*)> (\d+) ([+-]\d{4})$`)

// ParseSignature parses one author/committer/tagger line.
func ParseSignature(line string) (Signature, error) {
	m := signatureRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Signature{}, fmt.Errorf("invalid signature line: %q", line)
	}

	var unixTime int64
	fmt.Sscanf(m[3], "%d", &unixTime)

	loc := time.UTC
	if len(m[4]) == 5 {
		sign := 1
		if m[4][0] == '-' {
			sign = -1
		}
		var hh, mm int
		fmt.Sscanf(m[4][1:], "%2d%2d", &hh, &mm)
		loc = time.FixedZone(m[4], sign*(hh*3600+mm*60))
	}

	return Signature{
		Name:  m[1],
		Email: m[2],
		When:  time.Unix(unixTime, 0).In(loc),
	}, nil
}

// RawCommit is a commit object decoded straight from its serialized form,
// with no graph-position information attached.
type RawCommit struct {
	ID        Hash
	Tree      Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Message   string
}

// TreeEntry is one line of a decoded tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

func (e TreeEntry) IsDir() bool {
	return e.Mode == "40000" || e.Mode == "040000"
}
