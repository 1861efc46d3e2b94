package filter

import (
	"github.com/MuchTitan/session-watcher/internal"
)

// Plugin decides whether an event continues down the pipeline. A nil event
// returned without error means the event was filtered out.
type Plugin interface {
	internal.Plugin
	Process(record *internal.Event) (*internal.Event, error)
}
