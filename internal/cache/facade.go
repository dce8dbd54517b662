package cache

import (
	"sync"
	"time"
)

// References maps a sha to the branch/tag names pointing at it.
type References map[Sha]*refs

// RemoteTags maps a remote tag name to the sha it points at.
type RemoteTags map[string]Sha

// Facade is the single entry point callers use to build and query the
// commit graph cache. It owns every other component (the interner, the
// diff parser, the lane engine, the commit store) and serializes access to
// them behind one mutex.
//
// Every exported method locks mu for its full duration. Where one
// operation builds on another (Setup, UpdateWip), the shared work lives in
// an unexported method that assumes the lock is already held. This is the
// idiomatic Go stand-in for the reentrant locking the underlying model
// calls for: internal call chains never re-acquire mu.
type Facade struct {
	mu sync.Mutex

	configured bool

	interner *nameInterner
	parser   *diffParser
	engine   *laneEngine
	store    *CommitStore

	revisionFiles map[RevisionFilesKey]RevisionFiles
	references    References
	remoteTags    RemoteTags
	subtrees      []Subtree

	currentBranch string

	onUpdate func()
}

// NewFacade builds an empty, unconfigured Facade. onUpdate, if non-nil, is
// invoked (without mu held) whenever a mutation makes previously served
// data stale.
func NewFacade(onUpdate func()) *Facade {
	interner := newNameInterner()
	return &Facade{
		interner:      interner,
		parser:        newDiffParser(interner),
		engine:        newLaneEngine(),
		store:         NewCommitStore(),
		revisionFiles: make(map[RevisionFilesKey]RevisionFiles),
		references:    make(References),
		remoteTags:    make(RemoteTags),
		onUpdate:      onUpdate,
	}
}

// notify is called with mu held, as the last step of a mutating method. It
// releases mu around the callback so onUpdate may query the Facade.
func (f *Facade) notify() {
	if f.onUpdate != nil {
		f.mu.Unlock()
		defer f.mu.Lock()
		f.onUpdate()
	}
}

// Setup clears any existing state and marks the cache ready to accept
// commits. Calling Setup again is legal (a fresh clone or repository
// switch) and simply resets everything.
func (f *Facade) Setup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setup()
}

func (f *Facade) setup() {
	f.interner.reset()
	f.engine.reset()
	f.store.Clear()
	f.revisionFiles = make(map[RevisionFilesKey]RevisionFiles)
	f.references = make(References)
	f.remoteTags = make(RemoteTags)
	f.subtrees = nil
	f.currentBranch = ""
	f.configured = true
}

func (f *Facade) IsConfigured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configured
}

// InsertCommit appends c to the store and computes its lane row. It is a
// no-op, returning false, if Setup has not been called yet.
func (f *Facade) InsertCommit(c *CommitInfo) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configured {
		return false
	}
	f.store.Insert(c, f.engine)
	f.notify()
	return true
}

// UpdateWip synthesizes and installs the WIP pseudo-commit from the raw
// diff buffers and untracked file list in info. The first WIP after Setup
// is run through the lane engine so the next real commit inserted
// continues from row 0; a later WIP keeps the previous WIP row's lanes.
// It is a no-op, returning false, if Setup has not been called yet.
func (f *Facade) UpdateWip(info WipRevisionInfo, untracked []string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configured {
		return false
	}
	f.insertWipRevision(info, untracked)
	f.notify()
	return true
}

// insertWipRevision builds the synthetic WIP CommitInfo and its
// RevisionFiles entry, and inserts it at row 0. If a WIP row already
// exists, its lanes are reused so the WIP row never changes the lane
// geometry. Otherwise, if the lane engine has not seen any commit yet, it
// is seeded with ZeroSha first so the WIP row itself has a lane to report.
func (f *Facade) insertWipRevision(info WipRevisionInfo, untracked []string) {
	rf := f.parser.fakeWorkDirRevFile(info.DiffIndex, info.DiffIndexCached, untracked)
	f.revisionFiles[RevisionFilesKey{Parent: ZeroSha, Child: info.ParentSha}] = rf

	log := "Local changes"
	if rf.Count() == len(untracked) {
		log = "No local changes"
	}
	wip := NewCommitInfo(ZeroSha, []Sha{info.ParentSha}, 0, "-", time.Now(), "-", log)

	if prev := f.store.ByRow(0); prev != nil && prev.IsWip() {
		wip.SetLanes(prev.Lanes())
	} else {
		if f.engine.isEmpty() {
			f.engine.init(ZeroSha)
		}
		wip.SetLanes(f.engine.process(ZeroSha, wip.Parents()))
	}

	f.store.InsertWip(&wip)
}

// InsertRevisionFile records the file change set between parent and child,
// decoding buf if it has not already been parsed. It is idempotent: a
// (parent, child) pair already present is left untouched and the call
// reports false.
func (f *Facade) InsertRevisionFile(parent, child Sha, buf string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := RevisionFilesKey{Parent: parent, Child: child}
	if _, ok := f.revisionFiles[key]; ok {
		return false
	}
	f.revisionFiles[key] = f.parser.parseDiff(buf)
	return true
}

// ContainsRevisionFile reports whether a (parent, child) file change set
// has already been recorded.
func (f *Facade) ContainsRevisionFile(parent, child Sha) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revisionFiles[RevisionFilesKey{Parent: parent, Child: child}]
	return ok
}

// RevisionFile returns the recorded file change set for (parent, child),
// and whether it was found.
func (f *Facade) RevisionFile(parent, child Sha) (RevisionFiles, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rf, ok := f.revisionFiles[RevisionFilesKey{Parent: parent, Child: child}]
	return rf, ok
}

// Count returns the number of commits currently held, including the WIP
// row if one has been installed.
func (f *Facade) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.Count()
}

// PendingLocalChanges reports whether row 0 is a WIP entry with at least
// one file recorded against it.
func (f *Facade) PendingLocalChanges() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.store.ByRow(0)
	if c == nil || !c.IsWip() {
		return false
	}
	rf, ok := f.revisionFiles[RevisionFilesKey{Parent: ZeroSha, Child: c.Parent(0)}]
	return ok && rf.Count() > 0
}

func (f *Facade) CommitByRow(row int) *CommitInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.ByRow(row)
}

func (f *Facade) CommitBySha(sha Sha) *CommitInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.BySha(sha)
}

func (f *Facade) PositionOf(sha Sha) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.PositionOf(sha)
}

func (f *Facade) Search(text string, fromRow int, dir SearchDirection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.Search(text, fromRow, dir)
}

// InsertReference attaches name (of type t) to sha, creating the sha's
// reference set if this is its first.
func (f *Facade) InsertReference(sha Sha, t RefType, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.references[sha]
	if !ok {
		r = newRefs()
		f.references[sha] = r
	}
	r.add(t, name)
	f.notify()
}

// HasReferences reports whether sha carries any reference at all.
func (f *Facade) HasReferences(sha Sha) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.references[sha]
	return ok && !r.isEmpty()
}

// GetReferences returns the names of type t attached to sha.
func (f *Facade) GetReferences(sha Sha, t RefType) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.references[sha]
	if !ok {
		return nil
	}
	return r.get(t)
}

// ClearReferences drops every reference of type t across every sha, used
// when reloading refs of that kind from scratch (e.g. a full branch
// rescan).
func (f *Facade) ClearReferences(t RefType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sha, r := range f.references {
		for _, name := range r.get(t) {
			r.remove(t, name)
		}
		if r.isEmpty() {
			delete(f.references, sha)
		}
	}
	f.notify()
}

// ReloadCurrentBranch replaces the tracked current branch name.
func (f *Facade) ReloadCurrentBranch(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentBranch = name
	f.notify()
}

func (f *Facade) CurrentBranch() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentBranch
}

// GetBranches returns every local branch name known via InsertReference.
func (f *Facade) GetBranches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.references {
		out = append(out, r.get(LocalBranch)...)
	}
	return out
}

// UpdateTags replaces the remote tag table wholesale and notifies
// subscribers that cached tag data is stale.
func (f *Facade) UpdateTags(tags RemoteTags) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(RemoteTags, len(tags))
	for k, v := range tags {
		cp[k] = v
	}
	f.remoteTags = cp
	f.notify()
}

// GetTags returns a copy of the current remote tag table.
func (f *Facade) GetTags() RemoteTags {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(RemoteTags, len(f.remoteTags))
	for k, v := range f.remoteTags {
		cp[k] = v
	}
	return cp
}

// InsertSubtree records a repository subtree definition.
func (f *Facade) InsertSubtree(s Subtree) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subtrees = append(f.subtrees, s)
	f.notify()
}

// Subtrees returns a copy of the recorded subtree list.
func (f *Facade) Subtrees() []Subtree {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Subtree(nil), f.subtrees...)
}
