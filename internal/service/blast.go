package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	waLog "go.mau.fi/whatsmeow/util/log"

	"gowa-blast/internal/helper"
	"gowa-blast/internal/model"
	"gowa-blast/internal/ws"
)

// Default pacing window between individual sends.
const (
	DefaultMinDelay = 2000 * time.Millisecond
	DefaultMaxDelay = 5000 * time.Millisecond
)

// Blaster runs dispatch jobs: strictly sequential, randomly paced
// per-recipient sends against one ready session. Recipients are never
// fanned out in parallel; the pacing exists to keep bulk sends from
// looking like bulk sends, and parallelism would defeat it.
type Blaster struct {
	publisher ws.RealtimePublisher
	log       waLog.Logger

	httpClient *http.Client

	countryPrefix string
	addressSuffix string
	minDelay      time.Duration
	maxDelay      time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewBlaster(publisher ws.RealtimePublisher, log waLog.Logger, countryPrefix, addressSuffix string, minDelay, maxDelay time.Duration) *Blaster {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Blaster{
		publisher:     publisher,
		log:           log,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		countryPrefix: countryPrefix,
		addressSuffix: addressSuffix,
		minDelay:      minDelay,
		maxDelay:      maxDelay,
		sleep:         time.Sleep,
	}
}

// Start spawns the job in its own goroutine with a catch-all at the
// root, decoupled from the request/response cycle, and returns the job
// id. The session handle is read once, here; mid-job state changes are
// tolerated as per-recipient failures.
func (b *Blaster) Start(sess *Session, contacts []model.Contact, message, mediaURL string) string {
	jobID := uuid.NewString()
	client := sess.Client()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				b.log.Errorf("Blast job %s panicked: %v", jobID, rec)
				b.logEvent(sess.ID, ws.LevelError, fmt.Sprintf("Blast aborted: %v", rec))
			}
		}()
		b.run(jobID, sess.ID, client, contacts, message, mediaURL)
	}()

	return jobID
}

func (b *Blaster) run(jobID, sessionID string, client Client, contacts []model.Contact, message, mediaURL string) {
	b.logEvent(sessionID, ws.LevelInfo, fmt.Sprintf("Starting blast to %d numbers... (job %s)", len(contacts), jobID))

	if client == nil {
		b.logEvent(sessionID, ws.LevelError, "Blast aborted: session has no client handle")
		return
	}

	// One download per job. A fetch failure is not fatal: the blast
	// degrades to text-only.
	var media *model.Media
	if mediaURL != "" {
		b.logEvent(sessionID, ws.LevelInfo, fmt.Sprintf("Downloading media from %s...", mediaURL))
		m, err := FetchMedia(b.httpClient, mediaURL)
		if err != nil {
			b.logEvent(sessionID, ws.LevelError, fmt.Sprintf("Failed to download media: %v", err))
		} else {
			media = m
		}
	}

	ctx := context.Background()

	for _, contact := range contacts {
		number := helper.NormalizeNumber(contact.Number, b.countryPrefix, b.addressSuffix)

		text := contact.Message
		if text == "" {
			text = message
		}
		text = helper.RenderMessage(text, contact)

		if media != nil {
			b.pause(sessionID, number)
			if err := client.SendMedia(ctx, number, media, ""); err != nil {
				b.logEvent(sessionID, ws.LevelError, fmt.Sprintf("Failed to send media to %s: %v", number, err))
			} else {
				b.logEvent(sessionID, ws.LevelSuccess, fmt.Sprintf("Media sent to %s", number))
			}
		}

		b.pause(sessionID, number)
		if err := client.SendText(ctx, number, text); err != nil {
			// One bad number must not stop the rest of the batch.
			b.logEvent(sessionID, ws.LevelError, fmt.Sprintf("Failed to send to %s: %v", number, err))
			continue
		}
		b.logEvent(sessionID, ws.LevelSuccess, fmt.Sprintf("Message sent to %s", number))
	}

	b.logEvent(sessionID, ws.LevelSuccess, "Blast completed!")
}

// pause suspends this job for a random duration in the configured
// window. Only the dispatch goroutine sleeps; other sessions keep
// working.
func (b *Blaster) pause(sessionID, number string) {
	d := RandomDelay(b.minDelay, b.maxDelay)
	b.logEvent(sessionID, ws.LevelInfo, fmt.Sprintf("Waiting %dms before sending to %s...", d.Milliseconds(), number))
	b.sleep(d)
}

// RandomDelay draws a uniform whole-millisecond duration from
// [min, max], bounds inclusive.
func RandomDelay(min, max time.Duration) time.Duration {
	if max < min {
		max = min
	}
	minMs := int(min / time.Millisecond)
	maxMs := int(max / time.Millisecond)
	return time.Duration(minMs+rand.Intn(maxMs-minMs+1)) * time.Millisecond
}

func (b *Blaster) logEvent(sessionID, level, message string) {
	b.publisher.Publish(ws.NewLogEvent(sessionID, message, level))
	b.log.Infof("[%s] %s", sessionID, message)
}
