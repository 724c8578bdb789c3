package web

import (
	"context"
	"log"
	"time"
)

// StartSessionCleanup starts a background goroutine to clean up expired
// sessions and stale login attempts until ctx is cancelled
func (s *WebServer) StartSessionCleanup(ctx context.Context) {
	interval := s.Config.Session.CleanupInterval.Std()
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("[WEB]: Session cleanup stopped")
				return
			case <-ticker.C:
				s.cleanupSessions(ctx)
			}
		}
	}()

	log.Println("[WEB]: Started session cleanup background task")
}

func (s *WebServer) cleanupSessions(ctx context.Context) {
	removed, err := s.Store.CleanupExpiredSessions(ctx)
	if err != nil {
		log.Printf("[WEB]: Error cleaning up expired sessions: %v", err)
		return
	}
	if removed > 0 || s.Config.Web.Debug {
		log.Printf("[WEB]: Session cleanup removed %d sessions at %s", removed, time.Now().Format(time.RFC3339))
	}
}
