package model

// EventKind identifies a lifecycle event coming out of the underlying
// WhatsApp client. The session state machine consumes these through a
// single Handle entry point, so the transition table lives in one place
// instead of scattered per-event callbacks.
type EventKind int

const (
	EventQRIssued EventKind = iota
	EventAuthenticated
	EventReady
	EventAuthFailure
	EventDisconnected
	EventInternalError
	EventStop
)

func (k EventKind) String() string {
	switch k {
	case EventQRIssued:
		return "qr-issued"
	case EventAuthenticated:
		return "authenticated"
	case EventReady:
		return "ready"
	case EventAuthFailure:
		return "auth-failure"
	case EventDisconnected:
		return "disconnected"
	case EventInternalError:
		return "internal-error"
	case EventStop:
		return "stop"
	}
	return "unknown"
}

// LifecycleEvent is one event for one session. QR is set only for
// EventQRIssued; Err only for EventAuthFailure / EventInternalError.
type LifecycleEvent struct {
	Kind EventKind
	QR   string
	Err  error
}
