package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Stores manages one whatsmeow credential store per session id, each a
// sqlite database under <root>/<sessionId>/wa.db. Keeping stores per
// session keeps credential clearing a plain recursive delete of the
// session's subtree.
type Stores struct {
	root string
	log  waLog.Logger

	mu         sync.Mutex
	containers map[string]*sqlstore.Container
}

func NewStores(root string, log waLog.Logger) *Stores {
	return &Stores{
		root:       root,
		log:        log,
		containers: make(map[string]*sqlstore.Container),
	}
}

// Container opens (or returns the cached) credential store for a
// session id.
func (s *Stores) Container(ctx context.Context, sessionID string) (*sqlstore.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if container, ok := s.containers[sessionID]; ok {
		return container, nil
	}

	dir := filepath.Join(s.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(dir, "wa.db"))
	container, err := sqlstore.New(ctx, "sqlite3", dsn, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	s.containers[sessionID] = container
	return container, nil
}

// Close releases the open store for a session id, if any. Errors are
// logged, not returned; callers are on teardown paths that must not
// fail.
func (s *Stores) Close(sessionID string) {
	s.mu.Lock()
	container, ok := s.containers[sessionID]
	delete(s.containers, sessionID)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := container.Close(); err != nil {
		s.log.Warnf("Failed to close store for %s: %v", sessionID, err)
	}
}

// Clear removes the persisted credentials for a session id. Safe to
// call when the subtree is partially missing or never existed.
func (s *Stores) Clear(sessionID string) error {
	s.Close(sessionID)
	return os.RemoveAll(filepath.Join(s.root, sessionID))
}
