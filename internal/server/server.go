// Package server exposes a cache.Facade over HTTP and WebSocket so a
// browser-based history viewer can render it: a REST snapshot for the
// initial page load, and a WebSocket feed of cache_updated notifications
// so the client knows when to re-fetch.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rybkr/gitvista/internal/cache"
	"github.com/rybkr/gitvista/internal/gitscan"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO(rybkr): restrict to configured allowed origins
		return true
	},
}

// UpdateMessage is pushed to every connected WebSocket client whenever the
// facade's state changes. The payload is deliberately empty: clients are
// expected to re-fetch the REST snapshot rather than receive the graph
// piecemeal over the socket.
type UpdateMessage struct {
	Type string `json:"type"`
}

const messageTypeCacheUpdated = "cache_updated"

// Server wires a gitscan.Repository and cache.Facade to HTTP handlers and a
// WebSocket broadcast.
type Server struct {
	repo   *gitscan.Repository
	facade *cache.Facade
	addr   string

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]bool
	broadcast chan UpdateMessage

	stop chan struct{}
}

// NewServer builds a Server. facade.onUpdate should be wired to call
// BroadcastUpdate so cache mutations reach connected clients.
func NewServer(repo *gitscan.Repository, facade *cache.Facade, addr string) *Server {
	return &Server{
		repo:      repo,
		facade:    facade,
		addr:      addr,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan UpdateMessage, 256),
		stop:      make(chan struct{}),
	}
}

// Start installs the HTTP handlers, begins the watcher and poll loops, and
// blocks serving HTTP until the process exits or ListenAndServe errors.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/repository", s.handleRepository)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/revision", s.handleRevisionFile)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/ws", s.handleWebSocket)

	go s.handleBroadcast()
	go s.pollRepo()
	if err := s.startWatcher(); err != nil {
		log.Printf("server: file watcher unavailable, falling back to polling only: %v", err)
	}

	log.Printf("server: listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Close stops the poll and watch loops. It does not shut down the HTTP
// server; callers that need that should wrap Start with an http.Server and
// call its Shutdown directly.
func (s *Server) Close() {
	close(s.stop)
}

func (s *Server) handleRepository(w http.ResponseWriter, r *http.Request) {
	name, gitDir := s.repo.Name(), s.repo.GitDir()
	branch := s.facade.CurrentBranch()

	writeJSON(w, map[string]interface{}{
		"name":          name,
		"gitDir":        gitDir,
		"currentBranch": branch,
	})
}

// snapshot is the /api/snapshot payload: everything a fresh client needs
// to render the graph without further round trips for the visible window
// of rows.
type snapshot struct {
	Count               int              `json:"count"`
	PendingLocalChanges bool             `json:"pendingLocalChanges"`
	CurrentBranch       string           `json:"currentBranch"`
	Branches            map[string]string `json:"branches"`
	Tags                map[string]string `json:"tags"`
	Commits             []commitView     `json:"commits"`
}

type commitView struct {
	Sha       string   `json:"sha"`
	Parents   []string `json:"parents"`
	Author    string   `json:"author"`
	Committer string   `json:"committer"`
	ShortLog  string   `json:"shortLog"`
	Lanes     int      `json:"lanesCount"`
}

func (s *Server) buildSnapshot() snapshot {
	count := s.facade.Count()
	commits := make([]commitView, 0, count)
	for row := 0; row < count; row++ {
		c := s.facade.CommitByRow(row)
		if c == nil {
			continue
		}
		parents := make([]string, c.ParentsCount())
		for i := range parents {
			parents[i] = string(c.Parent(i))
		}
		commits = append(commits, commitView{
			Sha:       string(c.Sha()),
			Parents:   parents,
			Author:    c.Author(),
			Committer: c.Committer(),
			ShortLog:  c.ShortLog(),
			Lanes:     c.LanesCount(),
		})
	}

	branches := make(map[string]string)
	for name, sha := range s.repo.Branches() {
		branches[name] = string(sha)
	}
	tags := make(map[string]string)
	for name, sha := range s.facade.GetTags() {
		tags[name] = string(sha)
	}

	return snapshot{
		Count:               count,
		PendingLocalChanges: s.facade.PendingLocalChanges(),
		CurrentBranch:       s.facade.CurrentBranch(),
		Branches:            branches,
		Tags:                tags,
		Commits:             commits,
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.buildSnapshot())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade error: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMu.Unlock()
	log.Printf("server: client connected, total %d", total)

	if err := conn.WriteJSON(UpdateMessage{Type: messageTypeCacheUpdated}); err != nil {
		log.Printf("server: error sending initial state: %v", err)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			total := len(s.clients)
			s.clientsMu.Unlock()
			conn.Close()
			log.Printf("server: client disconnected, total %d", total)
			return
		}
	}
}

func (s *Server) handleBroadcast() {
	for {
		select {
		case msg := <-s.broadcast:
			s.clientsMu.RLock()
			for client := range s.clients {
				if err := client.WriteJSON(msg); err != nil {
					log.Printf("server: error broadcasting to client: %v", err)
					s.clientsMu.RUnlock()
					s.clientsMu.Lock()
					delete(s.clients, client)
					client.Close()
					s.clientsMu.Unlock()
					s.clientsMu.RLock()
				}
			}
			s.clientsMu.RUnlock()
		case <-s.stop:
			return
		}
	}
}

// BroadcastUpdate notifies every connected client that the facade's state
// changed. Intended to be passed as the facade's onUpdate callback.
func (s *Server) BroadcastUpdate() {
	select {
	case s.broadcast <- UpdateMessage{Type: messageTypeCacheUpdated}:
	default:
		log.Println("server: broadcast channel full, dropping message")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
