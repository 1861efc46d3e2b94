package input

import (
	"context"
	"strings"

	"github.com/MuchTitan/session-watcher/internal"
)

// Plugin is a source of log lines. Start hands back an unbuffered channel
// that is closed once the source stops; Err reports why it stopped, nil
// meaning the stream simply ended or the context was cancelled.
type Plugin interface {
	internal.Plugin
	Start(ctx context.Context) (<-chan internal.Event, error)
	Err() error
}

func AddMetadata(event *internal.Event, in Plugin) {
	event.Metadata.InputSource = in.Name()
}

// CleanLine strips the line terminator and surrounding whitespace.
func CleanLine(line string) string {
	return strings.TrimSpace(line)
}
