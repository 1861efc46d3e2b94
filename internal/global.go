package internal

import (
	"time"
)

// Event is a single log line travelling through the watcher.
type Event struct {
	Timestamp time.Time
	RawData   string
	SessionID string
	Metadata  Metadata
}

type Metadata struct {
	Source      string
	LineNum     int
	InputSource string
}

// Plugin interface that all plugins must implement
type Plugin interface {
	Name() string
	Init(config map[string]any) error
	Exit() error
}
