package cache

import "strings"

// diffParser decodes raw diff-tree-style header lines into RevisionFiles
// records. It owns no state of its own beyond the shared nameInterner;
// everything it reads or writes lives on the loader and the output record
// passed in by the caller.
type diffParser struct {
	interner *nameInterner
}

func newDiffParser(interner *nameInterner) *diffParser {
	return &diffParser{interner: interner}
}

// parseDiff decodes a full diff buffer into a new RevisionFiles.
func (p *diffParser) parseDiff(buf string) RevisionFiles {
	fl := &fileNamesLoader{}
	rf := p.parseDiffFormat(buf, fl, false)
	fl.target = &rf
	p.interner.flush(fl)
	return rf
}

// parseDiffFormat is the shared decoder used both by parseDiff and by WIP
// synthesis. cached indicates the buffer came from an index-vs-HEAD diff
// (diff-index --cached) rather than a working-tree-vs-HEAD diff.
func (p *diffParser) parseDiffFormat(buf string, fl *fileNamesLoader, cached bool) RevisionFiles {
	var rf RevisionFiles
	parNum := 1

	for _, line := range strings.Split(buf, "\n") {
		if line == "" {
			continue
		}

		if line[0] != ':' {
			parNum++
			continue
		}

		if len(line) > 1 && line[1] == ':' {
			// Combined merge entry: rename/copy info is not trustworthy here,
			// so the file is reported as modified.
			if fl.target != &rf && !cached {
				p.interner.flush(fl)
				fl.target = &rf
			}
			name := lastTabField(line)
			p.interner.append(name, fl)
			rf.setStatus(StatusModified)
			rf.MergeParent = append(rf.MergeParent, parNum)
			continue
		}

		if len(line) > 98 && line[98] == '\t' {
			// Fast path: fixed-width metadata, a tab at column 98, filename at
			// column 99. This offset is an artifact of the upstream diff-tree
			// output and is load-bearing; do not generalize it.
			fields := strings.Split(line, " ")
			if len(fields) < 5 {
				continue
			}
			dstSha := fields[3]
			fileIsCached := !strings.HasPrefix(dstSha, "000000")
			flagField := fields[4]
			if flagField == "" {
				continue
			}
			flag := flagField[0]

			if flag == 'D' {
				fileIsCached = !fileIsCached
			}

			if fl.target != &rf && (!cached || flag == 'U') {
				p.interner.flush(fl)
				fl.target = &rf
			}
			p.interner.append(line[99:], fl)
			rf.setStatusChar(flag, fileIsCached)
			rf.MergeParent = append(rf.MergeParent, parNum)
			continue
		}

		// Extended-status path: rename or copy.
		p.setExtStatus(&rf, line[min(97, len(line)):], parNum, fl)
	}

	return rf
}

// setExtStatus decodes a rename/copy suffix of the form "Rxx\t<orig>\t<dest>"
// (or "Cxx\t<orig>\t<dest>") into the similarity-annotated ExtStatus string,
// plus a synthetic NEW entry for dest and, for renames only, a synthetic
// DELETED entry for orig.
func (p *diffParser) setExtStatus(rf *RevisionFiles, rowSt string, parNum int, fl *fileNamesLoader) {
	fields := splitNonEmpty(rowSt, '\t')
	if len(fields) != 3 {
		return
	}

	typ := fields[0]
	if len(typ) < 2 {
		return
	}
	orig := fields[1]
	dest := fields[2]
	similarity := typ[1:]
	extInfo := orig + " --> " + dest + " (" + similarity + "%)"

	if fl.target != rf {
		p.interner.flush(fl)
		fl.target = rf
	}
	p.interner.append(dest, fl)
	rf.MergeParent = append(rf.MergeParent, parNum)
	rf.setStatus(StatusNew)
	rf.AppendExtStatus(extInfo)

	if typ[0] == 'R' {
		if fl.target != rf {
			p.interner.flush(fl)
			fl.target = rf
		}
		p.interner.append(orig, fl)
		rf.MergeParent = append(rf.MergeParent, parNum)
		rf.setStatus(StatusDeleted)
		rf.AppendExtStatus(extInfo)
	}

	rf.OnlyModified = false
}

// fakeWorkDirRevFile synthesizes the WIP's RevisionFiles from a working-
// tree-vs-HEAD diff, an index-vs-HEAD diff, and the untracked file list.
func (p *diffParser) fakeWorkDirRevFile(diffIndex, diffIndexCached string, untracked []string) RevisionFiles {
	fl := &fileNamesLoader{}
	rf := p.parseDiffFormat(diffIndex, fl, false)
	fl.target = &rf
	rf.OnlyModified = false

	for _, path := range untracked {
		if fl.target != &rf {
			p.interner.flush(fl)
			fl.target = &rf
		}
		p.interner.append(path, fl)
		rf.setStatus(StatusUnknown)
		rf.MergeParent = append(rf.MergeParent, 1)
	}

	cachedFl := &fileNamesLoader{}
	cachedFiles := p.parseDiffFormat(diffIndexCached, cachedFl, true)
	cachedFl.target = &cachedFiles
	p.interner.flush(cachedFl)
	p.interner.flush(fl)

	for i := 0; i < rf.Count(); i++ {
		idx := indexOfString(cachedFiles.Files, rf.File(i))
		if idx == -1 {
			continue
		}
		if cachedFiles.StatusCmp(idx, StatusConflict) {
			rf.AppendStatus(i, StatusConflict)
		} else if rf.StatusCmp(i, StatusModified) && !rf.StatusCmp(i, StatusInIndex) {
			rf.AppendStatus(i, StatusPartiallyCached)
		}
	}

	return rf
}

func lastTabField(s string) string {
	idx := strings.LastIndexByte(s, '\t')
	if idx == -1 {
		return s
	}
	return s[idx+1:]
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	for _, part := range strings.Split(s, string(sep)) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func indexOfString(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
