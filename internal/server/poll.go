package server

import (
	"log"
	"time"
)

const pollPeriod = 5 * time.Second

func (s *Server) pollRepo() {
	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()

	log.Printf("server: repository polling started (period = %s)", pollPeriod)

	for {
		select {
		case <-s.stop:
			log.Println("server: repository polling stopped")
			return

		case <-ticker.C:
			s.rescanSafely("poll")
		}
	}
}

// rescanSafely rescans the repository, recovering from any panic so a
// corrupted repository or a bad ref name during the scan doesn't take the
// whole server down. It broadcasts nothing itself: updates reach clients
// through the facade's onUpdate as Rescan mutates it, so a rescan that
// fails partway may already have broadcast.
func (s *Server) rescanSafely(source string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in %s rescan: %v", source, r)
		}
	}()

	if err := Rescan(s.facade, s.repo); err != nil {
		log.Printf("server: %s rescan failed: %v", source, err)
	}
	// Rescan's facade mutations already trigger onUpdate -> BroadcastUpdate
	// for every connected client; nothing further to do here.
}
