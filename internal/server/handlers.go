package server

import (
	"net/http"
	"strconv"

	"github.com/rybkr/gitvista/internal/cache"
)

// handleRevisionFile serves a single revision's file-change list, letting
// the client fetch a commit's diff summary lazily instead of embedding it
// in the snapshot for every row.
func (s *Server) handleRevisionFile(w http.ResponseWriter, r *http.Request) {
	parent := r.URL.Query().Get("parent")
	child := r.URL.Query().Get("child")
	if child == "" {
		http.Error(w, "missing child parameter", http.StatusBadRequest)
		return
	}

	files, ok := s.facade.RevisionFile(shaOrZero(parent), shaOrZero(child))
	if !ok {
		http.Error(w, "revision not found", http.StatusNotFound)
		return
	}

	writeJSON(w, files)
}

// handleSearch serves incremental commit-message/author search over the
// cached rows, in the direction requested.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	fromRow, backward := parseSearchParams(r)

	row := s.facade.Search(text, fromRow, searchDirection(backward))
	writeJSON(w, map[string]int{"row": row})
}

func shaOrZero(s string) cache.Sha {
	if s == "" {
		return cache.ZeroSha
	}
	return cache.Sha(s)
}

func parseSearchParams(r *http.Request) (fromRow int, backward bool) {
	fromRow, _ = strconv.Atoi(r.URL.Query().Get("from"))
	backward = r.URL.Query().Get("dir") == "backward"
	return fromRow, backward
}

func searchDirection(backward bool) cache.SearchDirection {
	if backward {
		return cache.SearchBackward
	}
	return cache.SearchForward
}
