package inputstdin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/input"
	"github.com/MuchTitan/session-watcher/internal/util"
	"github.com/sirupsen/logrus"
)

const maxLineSize = 1 << 20 // 1MB

// StdIn reads lines piped into the process, e.g. `tail -F loolwsd.log | session-watcher`.
type StdIn struct {
	name   string
	reader io.Reader
	err    error
	mu     sync.Mutex
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New returns a StdIn reading from r instead of os.Stdin.
func New(name string, r io.Reader) *StdIn {
	return &StdIn{name: name, reader: r}
}

func (s *StdIn) Name() string {
	return s.name
}

func (s *StdIn) Init(config map[string]any) error {
	var err error
	if s.name, err = util.GetString(config, "Name"); err != nil {
		return err
	}
	if s.name == "" {
		s.name = "stdin"
	}
	if s.reader == nil {
		s.reader = os.Stdin
	}
	return nil
}

func (s *StdIn) Start(parentCtx context.Context) (<-chan internal.Event, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("stdin input %q not initialized", s.name)
	}

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(parentCtx)

	output := make(chan internal.Event)
	s.wg.Add(1)
	go s.readLines(ctx, output)

	logrus.WithField("input", s.name).Info("Starting StdIn Input")
	return output, nil
}

func (s *StdIn) readLines(ctx context.Context, output chan<- internal.Event) {
	defer s.wg.Done()
	defer close(output)

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := input.CleanLine(scanner.Text())
		if text == "" {
			continue
		}

		event := internal.Event{
			Timestamp: time.Now(),
			RawData:   text,
			Metadata: internal.Metadata{
				Source:  "stdin",
				LineNum: lineNum,
			},
		}
		input.AddMetadata(&event, s)

		select {
		case output <- event:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.mu.Lock()
		s.err = fmt.Errorf("couldn't read line from stdin: %w", err)
		s.mu.Unlock()
		return
	}
	logrus.WithField("input", s.name).Info("Read from stdin reached end of stream")
}

func (s *StdIn) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Exit does not wait for the reader goroutine, which may stay blocked in
// a read on os.Stdin until the process ends.
func (s *StdIn) Exit() error {
	logrus.WithField("input", s.name).Debug("Stopping read from StdIn")
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
