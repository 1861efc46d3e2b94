package inputtail

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "loolwsd.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func appendLines(t *testing.T, path string, lines ...string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	for _, line := range lines {
		_, err := f.WriteString(line + "\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Sync())
}

func receive(t *testing.T, ch <-chan internal.Event, n int) []internal.Event {
	var events []internal.Event
	timeout := time.After(5 * time.Second)
	for len(events) < n {
		select {
		case evt, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d events", len(events))
			}
			events = append(events, evt)
		case <-timeout:
			t.Fatalf("timeout waiting for events, got %d of %d", len(events), n)
		}
	}
	return events
}

func TestTail_Init(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
		check   func(*testing.T, *Tail)
	}{
		{
			name:   "defaults",
			config: map[string]any{"Path": "/var/log/loolwsd.log"},
			check: func(t *testing.T, tl *Tail) {
				assert.Equal(t, "tail", tl.Name())
				assert.Equal(t, "/var/log/loolwsd.log", tl.path)
				assert.False(t, tl.fromStart)
				assert.True(t, tl.mustExist)
				assert.False(t, tl.poll)
			},
		},
		{
			name: "custom options",
			config: map[string]any{
				"Path":      "/tmp/x.log",
				"Name":      "lool",
				"FromStart": true,
				"MustExist": false,
				"Poll":      true,
			},
			check: func(t *testing.T, tl *Tail) {
				assert.Equal(t, "lool", tl.Name())
				assert.True(t, tl.fromStart)
				assert.False(t, tl.mustExist)
				assert.True(t, tl.poll)
			},
		},
		{
			name:    "missing path",
			config:  map[string]any{"Name": "lool"},
			wantErr: true,
		},
		{
			name:    "invalid bool",
			config:  map[string]any{"Path": "/tmp/x.log", "Poll": "yes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := &Tail{}
			err := tl.Init(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, tl)
		})
	}
}

func TestTail_StartsAtEndOfFile(t *testing.T) {
	path := createTempFile(t, "old line 1\nold line 2\n")

	tl := &Tail{}
	require.NoError(t, tl.Init(map[string]any{"Path": path, "Poll": true}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := tl.Start(ctx)
	require.NoError(t, err)

	appendLines(t, path, "new line 1", "", "  new line 2  ")

	events := receive(t, lines, 2)
	assert.Equal(t, "new line 1", events[0].RawData)
	assert.Equal(t, "new line 2", events[1].RawData)
	assert.Equal(t, path, events[0].Metadata.Source)
	assert.Equal(t, "tail", events[0].Metadata.InputSource)

	assert.NoError(t, tl.Exit())
	assert.NoError(t, tl.Err())
}

func TestTail_FromStart(t *testing.T) {
	path := createTempFile(t, "first\nsecond\n")

	tl := &Tail{}
	require.NoError(t, tl.Init(map[string]any{"Path": path, "FromStart": true, "Poll": true}))

	lines, err := tl.Start(context.Background())
	require.NoError(t, err)

	events := receive(t, lines, 2)
	assert.Equal(t, "first", events[0].RawData)
	assert.Equal(t, "second", events[1].RawData)

	assert.NoError(t, tl.Exit())
}

func TestTail_MissingFileFailsToStart(t *testing.T) {
	tl := &Tail{}
	require.NoError(t, tl.Init(map[string]any{"Path": filepath.Join(t.TempDir(), "missing.log")}))

	_, err := tl.Start(context.Background())
	assert.Error(t, err)
}

func TestTail_ContextCancelClosesChannel(t *testing.T) {
	path := createTempFile(t, "")

	tl := &Tail{}
	require.NoError(t, tl.Init(map[string]any{"Path": path, "Poll": true}))

	ctx, cancel := context.WithCancel(context.Background())
	lines, err := tl.Start(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-lines:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel was not closed after cancel")
	}

	assert.NoError(t, tl.Exit())
}
