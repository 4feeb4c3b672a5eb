package wa

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"google.golang.org/protobuf/proto"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"gowa-blast/database"
	"gowa-blast/internal/helper"
	"gowa-blast/internal/model"
	"gowa-blast/internal/service"
)

// qrTimeout bounds how long a fresh session waits for the QR code to
// be scanned before the pairing attempt is abandoned.
const qrTimeout = 3 * time.Minute

// Factory builds whatsmeow-backed clients, one per session, each with
// its own credential store.
type Factory struct {
	stores     *database.Stores
	log        waLog.Logger
	deviceName string
}

func NewFactory(stores *database.Stores, log waLog.Logger, deviceName string) *Factory {
	return &Factory{stores: stores, log: log, deviceName: deviceName}
}

func (f *Factory) NewClient(ctx context.Context, sessionID string, handle func(model.LifecycleEvent)) (service.Client, error) {
	container, err := f.stores.Container(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	// Device name shown in the phone's linked-devices list. Global
	// whatsmeow setting, applied before the device is created.
	if f.deviceName != "" {
		store.DeviceProps.Os = proto.String(f.deviceName)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	c := &Client{
		id:     sessionID,
		handle: handle,
		log:    f.log.Sub(sessionID),
	}
	c.wm = whatsmeow.NewClient(device, c.log)

	// The state machine owns retry policy: DISCONNECTED sessions stay
	// down until an operator restarts them.
	c.wm.EnableAutoReconnect = false

	c.wm.AddEventHandler(c.handleEvent)
	return c, nil
}

// Client adapts one whatsmeow connection to the capability surface the
// registry and blaster consume. It translates whatsmeow's event types
// into lifecycle events and hands them to the session's single Handle
// entry point.
type Client struct {
	id     string
	wm     *whatsmeow.Client
	handle func(model.LifecycleEvent)
	log    waLog.Logger

	// authed tracks whether an authenticated event was already
	// emitted, so a resumed session still walks
	// AUTHENTICATED -> READY in order.
	authed atomic.Bool
}

func (c *Client) Connect(ctx context.Context) error {
	if c.wm.Store.ID != nil {
		// Stored credentials; no pairing needed.
		return c.wm.Connect()
	}

	qrCtx, cancel := context.WithTimeout(context.Background(), qrTimeout)
	qrChan, err := c.wm.GetQRChannel(qrCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get QR channel: %w", err)
	}

	if err := c.wm.Connect(); err != nil {
		cancel()
		return fmt.Errorf("failed to connect: %w", err)
	}

	go func() {
		defer cancel()
		for evt := range qrChan {
			switch evt.Event {
			case "code":
				c.handle(model.LifecycleEvent{Kind: model.EventQRIssued, QR: evt.Code})
			case whatsmeow.QRChannelSuccess.Event:
				c.authed.Store(true)
				c.handle(model.LifecycleEvent{Kind: model.EventAuthenticated})
			case whatsmeow.QRChannelTimeout.Event:
				c.handle(model.LifecycleEvent{
					Kind: model.EventAuthFailure,
					Err:  fmt.Errorf("QR code expired before it was scanned"),
				})
			default:
				err := evt.Error
				if err == nil {
					err = fmt.Errorf("pairing failed: %s", evt.Event)
				}
				c.handle(model.LifecycleEvent{Kind: model.EventAuthFailure, Err: err})
			}
		}
	}()

	return nil
}

func (c *Client) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.PairSuccess:
		c.log.Infof("Paired with %s", e.ID)

	case *events.Connected:
		if !c.authed.Swap(true) {
			c.handle(model.LifecycleEvent{Kind: model.EventAuthenticated})
		}
		c.handle(model.LifecycleEvent{Kind: model.EventReady})

		// Presence makes the account show as online; best-effort.
		if err := c.wm.SendPresence(context.Background(), types.PresenceAvailable); err != nil {
			c.log.Warnf("Failed to send presence: %v", err)
		}

	case *events.LoggedOut:
		c.authed.Store(false)
		c.handle(model.LifecycleEvent{
			Kind: model.EventAuthFailure,
			Err:  fmt.Errorf("logged out by the device (reason %d)", e.Reason),
		})

	case *events.StreamReplaced:
		c.handle(model.LifecycleEvent{Kind: model.EventDisconnected})

	case *events.Disconnected:
		c.handle(model.LifecycleEvent{Kind: model.EventDisconnected})
	}
}

func (c *Client) SendText(ctx context.Context, to string, text string) error {
	jid, err := helper.ToJID(to)
	if err != nil {
		return err
	}

	// Typing indicator before the send; ignore failures.
	_ = c.wm.SendChatPresence(ctx, jid, types.ChatPresenceComposing, types.ChatPresenceMediaText)

	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := c.wm.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("send to %s failed: %w", to, err)
	}

	_ = c.wm.SendChatPresence(ctx, jid, types.ChatPresencePaused, types.ChatPresenceMediaText)
	return nil
}

func (c *Client) SendMedia(ctx context.Context, to string, media *model.Media, caption string) error {
	jid, err := helper.ToJID(to)
	if err != nil {
		return err
	}

	var msg *waE2E.Message
	if strings.HasPrefix(media.Mimetype, "image/") {
		uploaded, err := c.wm.Upload(ctx, media.Data, whatsmeow.MediaImage)
		if err != nil {
			return fmt.Errorf("image upload failed: %w", err)
		}
		msg = &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			Caption:       proto.String(caption),
			Mimetype:      proto.String(media.Mimetype),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			JPEGThumbnail: media.Thumbnail,
		}}
	} else {
		uploaded, err := c.wm.Upload(ctx, media.Data, whatsmeow.MediaDocument)
		if err != nil {
			return fmt.Errorf("document upload failed: %w", err)
		}
		msg = &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			Title:         proto.String(media.FileName),
			FileName:      proto.String(media.FileName),
			Caption:       proto.String(caption),
			Mimetype:      proto.String(media.Mimetype),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		}}
	}

	if _, err := c.wm.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("media send to %s failed: %w", to, err)
	}
	return nil
}

// Destroy disconnects the client. Credentials stay on disk so a
// restart can resume without a new QR scan; clearing them is a
// separate, explicit operation.
func (c *Client) Destroy(ctx context.Context) {
	c.wm.Disconnect()
	c.log.Infof("Client disconnected for %s", c.id)
}
