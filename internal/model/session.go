package model

// Status is the lifecycle state of one WhatsApp session.
type Status string

const (
	StatusInitializing Status = "INITIALIZING"
	StatusQRReady      Status = "QR_READY"
	StatusAuthed       Status = "AUTHENTICATED"
	StatusReady        Status = "READY"
	StatusAuthFailure  Status = "AUTH_FAILURE"
	StatusDisconnected Status = "DISCONNECTED"
	StatusError        Status = "ERROR"
	StatusDestroyed    Status = "DESTROYED"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDestroyed
}

// SessionInfo is the snapshot exposed by the list/status endpoints.
// The QR artifact and the client handle are deliberately not part of it.
type SessionInfo struct {
	ID        string `json:"id"`
	Status    Status `json:"status"`
	LastError string `json:"lastError,omitempty"`
}
