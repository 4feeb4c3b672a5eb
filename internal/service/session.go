package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"

	"gowa-blast/internal/model"
	"gowa-blast/internal/ws"
)

// teardownTimeout bounds how long a stop waits for the client to shut
// down before the session is removed anyway.
const teardownTimeout = 10 * time.Second

// Session is one managed WhatsApp connection. All mutations go through
// the session's own event loop (run), so transitions never race: the
// client adapter, the registry and the handlers only ever call Handle
// or the read-only accessors.
type Session struct {
	ID string

	publisher ws.RealtimePublisher
	log       waLog.Logger

	events chan model.LifecycleEvent
	done   chan struct{}

	mu        sync.RWMutex
	status    model.Status
	qr        string
	lastError string
	client    Client
}

func newSession(id string, publisher ws.RealtimePublisher, log waLog.Logger) *Session {
	return &Session{
		ID:        id,
		publisher: publisher,
		log:       log,
		events:    make(chan model.LifecycleEvent, 16),
		done:      make(chan struct{}),
		status:    model.StatusInitializing,
	}
}

// Handle enqueues one lifecycle event. Events are applied one at a
// time in arrival order; events after destruction are dropped.
func (s *Session) Handle(evt model.LifecycleEvent) {
	select {
	case <-s.done:
	case s.events <- evt:
	}
}

// run is the session's event loop. Exactly one goroutine per session.
func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case evt := <-s.events:
			s.apply(evt)
		}
	}
}

func (s *Session) apply(evt model.LifecycleEvent) {
	s.mu.Lock()
	from := s.status
	if from.Terminal() {
		s.mu.Unlock()
		return
	}

	if evt.Kind == model.EventStop {
		s.mu.Unlock()
		s.destroy()
		return
	}

	to, ok := nextStatus(from, evt.Kind)
	if !ok {
		s.mu.Unlock()
		s.log.Debugf("Ignoring %s in state %s", evt.Kind, from)
		return
	}

	// The artifact lives only while QR_READY; re-entering QR_READY
	// overwrites it.
	if to == model.StatusQRReady {
		s.qr = evt.QR
	} else {
		s.qr = ""
	}

	errMsg := ""
	if to == model.StatusError || to == model.StatusAuthFailure {
		if evt.Err != nil {
			errMsg = evt.Err.Error()
		} else {
			errMsg = evt.Kind.String()
		}
		s.lastError = errMsg
	}
	s.status = to
	s.mu.Unlock()

	// Emission order matters to observers: QR payload first (when
	// present), then the typed status event, then the log line.
	if evt.Kind == model.EventQRIssued {
		s.publisher.Publish(ws.NewQREvent(s.ID, evt.QR))
	}
	s.publisher.Publish(ws.NewStatusEvent(s.ID, to, errMsg))
	s.publishLog(statusLogLevel(to), fmt.Sprintf("Status changed to %s", to))

	if errMsg != "" {
		s.log.Errorf("Session %s entered %s: %s", s.ID, to, errMsg)
	}
}

// nextStatus is the transition table. Events not listed for the
// current state are ignored by the caller.
func nextStatus(from model.Status, kind model.EventKind) (model.Status, bool) {
	switch kind {
	case model.EventQRIssued:
		if from == model.StatusInitializing || from == model.StatusQRReady {
			return model.StatusQRReady, true
		}
	case model.EventAuthenticated:
		if from == model.StatusQRReady || from == model.StatusInitializing {
			return model.StatusAuthed, true
		}
	case model.EventReady:
		if from == model.StatusAuthed {
			return model.StatusReady, true
		}
	case model.EventAuthFailure:
		return model.StatusAuthFailure, true
	case model.EventDisconnected:
		return model.StatusDisconnected, true
	case model.EventInternalError:
		return model.StatusError, true
	}
	return from, false
}

func statusLogLevel(status model.Status) string {
	switch status {
	case model.StatusReady:
		return ws.LevelSuccess
	case model.StatusDisconnected:
		return ws.LevelWarning
	case model.StatusError, model.StatusAuthFailure:
		return ws.LevelError
	}
	return ws.LevelInfo
}

// destroy tears down the client (bounded effort), marks the session
// DESTROYED and wakes everyone waiting on Done. Runs on the event loop.
func (s *Session) destroy() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.qr = ""
	s.status = model.StatusDestroyed
	s.mu.Unlock()

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		client.Destroy(ctx)
		cancel()
	}

	s.publisher.Publish(ws.NewStatusEvent(s.ID, model.StatusDestroyed, ""))
	s.publishLog(ws.LevelInfo, "Session stopped and removed.")

	close(s.done)
}

// Stop requests destruction and waits for it, up to the caller's
// deadline. Safe to call more than once.
func (s *Session) Stop(ctx context.Context) {
	s.Handle(model.LifecycleEvent{Kind: model.EventStop})
	select {
	case <-s.done:
	case <-ctx.Done():
		s.log.Warnf("Timed out waiting for session %s teardown", s.ID)
	}
}

// Done is closed once the session reached DESTROYED.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// setClient attaches the constructed client. Returns false when the
// session was destroyed while construction was still in flight; the
// caller then owns the client and must tear it down itself.
func (s *Session) setClient(c Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	s.client = c
	return true
}

// Client returns the underlying handle, or nil before construction
// finished / after destruction. Dispatch reads it once at job start.
func (s *Session) Client() Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *Session) Status() model.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// QR returns the pending authentication artifact, empty outside
// QR_READY.
func (s *Session) QR() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qr
}

// Snapshot is the consistent view exposed to list/status endpoints.
func (s *Session) Snapshot() model.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.SessionInfo{ID: s.ID, Status: s.status, LastError: s.lastError}
}

func (s *Session) publishLog(level, message string) {
	s.publisher.Publish(ws.NewLogEvent(s.ID, message, level))
	s.log.Infof("[%s] %s", s.ID, message)
}
