package output

import (
	"context"

	"github.com/MuchTitan/session-watcher/internal"
)

// Plugin receives every event that carries a session id. Write blocks until
// the event is fully handled; a returned error stops the watcher.
type Plugin interface {
	internal.Plugin
	Write(ctx context.Context, event *internal.Event) error
}
