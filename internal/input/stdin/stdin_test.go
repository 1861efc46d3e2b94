package inputstdin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan internal.Event) []internal.Event {
	var events []internal.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, evt)
		case <-timeout:
			t.Fatal("timeout waiting for channel close")
		}
	}
}

func TestStdIn_Init(t *testing.T) {
	s := &StdIn{}
	require.NoError(t, s.Init(map[string]any{}))
	assert.Equal(t, "stdin", s.Name())
	assert.NotNil(t, s.reader)

	s = New("", strings.NewReader(""))
	require.NoError(t, s.Init(map[string]any{"Name": "pipe"}))
	assert.Equal(t, "pipe", s.Name())
}

func TestStdIn_ReadsLinesUntilEOF(t *testing.T) {
	s := New("", strings.NewReader("first\r\n\n  second  \nthird"))
	require.NoError(t, s.Init(map[string]any{}))

	lines, err := s.Start(context.Background())
	require.NoError(t, err)

	events := collect(t, lines)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].RawData)
	assert.Equal(t, 1, events[0].Metadata.LineNum)
	assert.Equal(t, "second", events[1].RawData)
	assert.Equal(t, 3, events[1].Metadata.LineNum)
	assert.Equal(t, "third", events[2].RawData)
	assert.Equal(t, "stdin", events[2].Metadata.InputSource)

	assert.NoError(t, s.Err())
	assert.NoError(t, s.Exit())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestStdIn_ReadErrorIsReported(t *testing.T) {
	s := New("", io.MultiReader(strings.NewReader("line\n"), failingReader{}))
	require.NoError(t, s.Init(map[string]any{}))

	lines, err := s.Start(context.Background())
	require.NoError(t, err)

	events := collect(t, lines)
	assert.Len(t, events, 1)
	assert.ErrorContains(t, s.Err(), "broken pipe")
}

func TestStdIn_StartWithoutInit(t *testing.T) {
	s := &StdIn{name: "stdin"}
	_, err := s.Start(context.Background())
	assert.Error(t, err)
}
