package outputstdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/util"
)

// Stdout prints every matched session as a JSON document. Useful as a dry
// run next to, or instead of, the session output.
type Stdout struct {
	name       string
	jsonIndent bool
	writer     io.Writer
}

func (s *Stdout) Name() string {
	return s.name
}

func (s *Stdout) Init(config map[string]any) error {
	var err error
	if s.name, err = util.GetString(config, "Name"); err != nil {
		return err
	}
	if s.name == "" {
		s.name = "stdout"
	}

	if s.jsonIndent, err = util.GetBool(config, "JsonIndent", false); err != nil {
		return err
	}

	if s.writer == nil {
		s.writer = os.Stdout
	}

	return nil
}

func (s *Stdout) Write(_ context.Context, event *internal.Event) error {
	output, err := s.formatJSON(event)
	if err != nil {
		return fmt.Errorf("failed to format record: %w", err)
	}
	_, err = fmt.Fprintln(s.writer, output)
	return err
}

func (s *Stdout) formatJSON(event *internal.Event) (string, error) {
	formatted := map[string]any{
		"timestamp": event.Timestamp.Format(time.RFC3339),
		"sessionId": event.SessionID,
	}

	if event.Metadata.LineNum != 0 {
		formatted["lineNum"] = event.Metadata.LineNum
	}

	if event.Metadata.Source != "" {
		formatted["path"] = event.Metadata.Source
	}

	var bytes []byte
	var err error

	if s.jsonIndent {
		bytes, err = json.MarshalIndent(formatted, "", "  ")
	} else {
		bytes, err = json.Marshal(formatted)
	}

	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func (s *Stdout) Exit() error {
	return nil
}
