package outputstdout

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *internal.Event {
	return &internal.Event{
		Timestamp: time.Date(2024, 2, 20, 15, 4, 5, 0, time.UTC),
		SessionID: "a1b2c3d4-e5f6-7890-abcd-1234567890ab",
		Metadata: internal.Metadata{
			Source:  "/var/log/loolwsd.log",
			LineNum: 42,
		},
	}
}

func TestStdoutInit(t *testing.T) {
	s := &Stdout{}
	require.NoError(t, s.Init(map[string]any{}))
	assert.Equal(t, "stdout", s.Name())
	assert.False(t, s.jsonIndent)
	assert.Equal(t, os.Stdout, s.writer)

	s = &Stdout{}
	assert.Error(t, s.Init(map[string]any{"JsonIndent": "true"}))
}

func TestStdoutWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	s := &Stdout{writer: &buf}
	require.NoError(t, s.Init(map[string]any{}))

	require.NoError(t, s.Write(context.Background(), testEvent()))

	assert.Equal(t,
		`{"lineNum":42,"path":"/var/log/loolwsd.log","sessionId":"a1b2c3d4-e5f6-7890-abcd-1234567890ab","timestamp":"2024-02-20T15:04:05Z"}`+"\n",
		buf.String())
}

func TestStdoutFormatJSONIndent(t *testing.T) {
	s := &Stdout{writer: &bytes.Buffer{}}
	require.NoError(t, s.Init(map[string]any{"JsonIndent": true}))

	output, err := s.formatJSON(testEvent())
	assert.NoError(t, err)
	assert.Contains(t, output, "\n  \"sessionId\": \"a1b2c3d4-e5f6-7890-abcd-1234567890ab\"")
}

func TestStdoutFormatJSONOmitsEmptyMetadata(t *testing.T) {
	s := &Stdout{}
	output, err := s.formatJSON(&internal.Event{SessionID: "x"})
	assert.NoError(t, err)
	assert.NotContains(t, output, "lineNum")
	assert.NotContains(t, output, "path")
}

func TestStdoutExit(t *testing.T) {
	s := &Stdout{}
	assert.NoError(t, s.Exit())
}
