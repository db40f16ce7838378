package services

import (
	"fmt"
	"sync"
)

// runGuard refuses overlapping status runs for the same organization and semester
type runGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newRunGuard() *runGuard {
	return &runGuard{running: make(map[string]struct{})}
}

func runKey(orgID, semesterID uint) string {
	return fmt.Sprintf("%d:%d", orgID, semesterID)
}

// acquire returns false if a run for key is already in progress
func (g *runGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.running[key]; busy {
		return false
	}
	g.running[key] = struct{}{}
	return true
}

func (g *runGuard) release(key string) {
	g.mu.Lock()
	delete(g.running, key)
	g.mu.Unlock()
}
