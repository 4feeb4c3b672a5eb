package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gowa-blast/internal/ws"
)

// FileSink persists session log events to the blast log file. It
// implements ws.RealtimePublisher so it can be tee'd next to the
// WebSocket hub; status and QR events pass through untouched.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open blast log: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Publish(event ws.WsEvent) {
	if event.Event != ws.EventLog {
		return
	}
	data, ok := event.Data.(ws.LogData)
	if !ok {
		return
	}

	line := fmt.Sprintf("[%s] [%s] [%s] %s\n",
		data.Timestamp.Format(time.RFC3339), data.Level, data.SessionID, data.Message)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.WriteString(line); err != nil {
		log.Printf("blastlog: failed to write log line: %v", err)
	}
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
