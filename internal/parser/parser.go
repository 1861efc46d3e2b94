package parser

import (
	"errors"

	"github.com/MuchTitan/session-watcher/internal"
)

var (
	ErrNotFound         = errors.New("id is not the right length or not found in line")
	ErrUnexpectedLength = errors.New("unexpected id length")
)

// Plugin extracts structured values from an event's raw line into the event.
type Plugin interface {
	internal.Plugin
	Process(record *internal.Event) error
}
