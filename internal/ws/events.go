package ws

import (
	"time"

	"gowa-blast/internal/model"
)

// Event names on the wire. Kept compatible with the frontend: the
// browser listens for "wa_status", "qr" and "log".
const (
	EventStatus = "wa_status"
	EventQR     = "qr"
	EventLog    = "log"
)

// WsEvent is the envelope broadcast to subscribers of a session topic.
// SessionID doubles as the topic key.
type WsEvent struct {
	Event     string      `json:"event"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type StatusData struct {
	SessionID string       `json:"sessionId"`
	Status    model.Status `json:"status"`
	Error     string       `json:"error,omitempty"`
}

type QRData struct {
	SessionID string `json:"sessionId"`
	QR        string `json:"qr"`
}

type LogData struct {
	SessionID string    `json:"sessionId"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

// Log levels used in LogData. Same vocabulary the old frontend expects.
const (
	LevelInfo    = "INFO"
	LevelSuccess = "SUCCESS"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

func NewStatusEvent(sessionID string, status model.Status, errMsg string) WsEvent {
	return WsEvent{
		Event:     EventStatus,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      StatusData{SessionID: sessionID, Status: status, Error: errMsg},
	}
}

func NewQREvent(sessionID, qr string) WsEvent {
	return WsEvent{
		Event:     EventQR,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      QRData{SessionID: sessionID, QR: qr},
	}
}

func NewLogEvent(sessionID, message, level string) WsEvent {
	now := time.Now().UTC()
	return WsEvent{
		Event:     EventLog,
		SessionID: sessionID,
		Timestamp: now,
		Data:      LogData{SessionID: sessionID, Message: message, Level: level, Timestamp: now},
	}
}
