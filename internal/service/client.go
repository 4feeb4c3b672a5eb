package service

import (
	"context"

	"gowa-blast/internal/model"
)

// Client is the capability surface the registry and the blaster need
// from the underlying WhatsApp engine. The whatsmeow-backed
// implementation lives in internal/wa; tests plug in fakes.
//
// Addresses are canonical ("6281...@s.whatsapp.net"); normalization
// happens before a client ever sees a number.
type Client interface {
	// Connect starts the connection and the pairing flow when no
	// stored credentials exist. Lifecycle progress is reported through
	// the handler given at construction, not through the return value.
	Connect(ctx context.Context) error

	SendText(ctx context.Context, to string, text string) error
	SendMedia(ctx context.Context, to string, media *model.Media, caption string) error

	// Destroy tears the connection down. Best-effort: implementations
	// log failures instead of returning them.
	Destroy(ctx context.Context)
}

// ClientFactory constructs one client per session. handle receives the
// client's lifecycle events; implementations must never invoke it
// concurrently for the same session.
type ClientFactory interface {
	NewClient(ctx context.Context, sessionID string, handle func(model.LifecycleEvent)) (Client, error)
}

// ClientFactoryFunc adapts a function to the ClientFactory interface.
type ClientFactoryFunc func(ctx context.Context, sessionID string, handle func(model.LifecycleEvent)) (Client, error)

func (f ClientFactoryFunc) NewClient(ctx context.Context, sessionID string, handle func(model.LifecycleEvent)) (Client, error) {
	return f(ctx, sessionID, handle)
}
