package filter

import (
	"strings"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/util"
)

// DefaultMarker is logged by the document-editing server once the last
// editable session on a document is marked for destruction.
const DefaultMarker = "Have 1 sessions. markToDestroy: true, LastEditableSession: true."

// Marker keeps only events whose raw line contains a literal substring.
type Marker struct {
	name   string
	marker string
}

func NewMarker(marker string) *Marker {
	return &Marker{name: "marker", marker: marker}
}

func (m *Marker) Name() string {
	return m.name
}

func (m *Marker) Init(config map[string]any) error {
	var err error
	if m.name, err = util.GetString(config, "Name"); err != nil {
		return err
	}
	if m.name == "" {
		m.name = "marker"
	}

	if m.marker, err = util.GetString(config, "Marker"); err != nil {
		return err
	}
	if m.marker == "" {
		m.marker = DefaultMarker
	}

	return nil
}

func (m *Marker) Process(data *internal.Event) (*internal.Event, error) {
	if !strings.Contains(data.RawData, m.marker) {
		return nil, nil
	}
	return data, nil
}

func (m *Marker) Exit() error {
	return nil
}
