package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	waLog "go.mau.fi/whatsmeow/util/log"

	"gowa-blast/database"
	"gowa-blast/internal/model"
	"gowa-blast/internal/ws"
)

// Registry owns the session map. It is the only structure shared
// between the command surface, the dispatch pipeline and the lifecycle
// paths, and it is handed to each of them explicitly.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	publisher ws.RealtimePublisher
	factory   ClientFactory
	stores    *database.Stores
	log       waLog.Logger
}

func NewRegistry(publisher ws.RealtimePublisher, factory ClientFactory, stores *database.Stores, log waLog.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		publisher: publisher,
		factory:   factory,
		stores:    stores,
		log:       log,
	}
}

// Init creates the session for an id, or returns the existing one
// unchanged when it is still alive. The underlying client is
// constructed asynchronously; the returned session may still be
// INITIALIZING.
func (r *Registry) Init(id string) *Session {
	r.mu.Lock()
	if sess, ok := r.sessions[id]; ok && !sess.Status().Terminal() {
		r.mu.Unlock()
		return sess
	}

	sess := newSession(id, r.publisher, r.log.Sub(id))
	r.sessions[id] = sess
	r.mu.Unlock()

	go sess.run()
	sess.publishLog(ws.LevelInfo, "Initializing new session...")

	go r.construct(sess)
	return sess
}

// construct builds the client off the caller's request path. Both
// synchronous and asynchronous failures fold into an internal-error
// transition; a broken session never takes the process down.
func (r *Registry) construct(sess *Session) {
	defer func() {
		if rec := recover(); rec != nil {
			sess.Handle(model.LifecycleEvent{
				Kind: model.EventInternalError,
				Err:  fmt.Errorf("client construction panicked: %v", rec),
			})
		}
	}()

	ctx := context.Background()

	client, err := r.factory.NewClient(ctx, sess.ID, sess.Handle)
	if err != nil {
		sess.Handle(model.LifecycleEvent{Kind: model.EventInternalError, Err: err})
		return
	}

	if !sess.setClient(client) {
		// Stopped while constructing; the session will not tear this
		// client down anymore, so do it here.
		client.Destroy(ctx)
		return
	}

	if err := client.Connect(ctx); err != nil {
		sess.Handle(model.LifecycleEvent{Kind: model.EventInternalError, Err: err})
	}
}

// Get is an O(1) lookup; it never blocks on in-flight transitions.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// List snapshots every session's id/status/lastError, sorted by id.
func (r *Registry) List() []model.SessionInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.mu.RUnlock()

	infos := make([]model.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Snapshot())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Stop tears a session down and removes it. A no-op for unknown ids.
// Teardown trouble is logged, never surfaced: the entry is removed and
// the DESTROYED event emitted regardless.
func (r *Registry) Stop(ctx context.Context, id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	sess.Stop(ctx)
	r.stores.Close(id)
}

// ClearCredentials wipes the persisted credentials for an id. Works
// whether or not a live session exists, and never fails loudly: this
// runs inside restart flows where the caller cannot act on an error.
func (r *Registry) ClearCredentials(id string) {
	r.publisher.Publish(ws.NewLogEvent(id, "Deleting persisted session data...", ws.LevelWarning))
	if err := r.stores.Clear(id); err != nil {
		r.log.Errorf("Failed to clear credentials for %s: %v", id, err)
		r.publisher.Publish(ws.NewLogEvent(id, "Failed to delete session data: "+err.Error(), ws.LevelError))
		return
	}
	r.publisher.Publish(ws.NewLogEvent(id, "Session data deleted.", ws.LevelSuccess))
}

// Restart stops the session, optionally clears its credentials, and
// initializes it again. Callers run this off the request path.
func (r *Registry) Restart(ctx context.Context, id string, clearCredentials bool) {
	r.Stop(ctx, id)
	if clearCredentials {
		r.ClearCredentials(id)
	}
	r.Init(id)
}
