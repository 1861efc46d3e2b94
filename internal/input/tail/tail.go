package inputtail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/input"
	"github.com/MuchTitan/session-watcher/internal/util"
	"github.com/nxadm/tail"
	"github.com/sirupsen/logrus"
)

// Tail follows a single file the way `tail -F` does: it starts at the
// current end of the file, waits for appended lines and reopens the path
// when the file is replaced.
type Tail struct {
	name      string
	path      string
	fromStart bool
	mustExist bool
	poll      bool
	tailer    *tail.Tail
	err       error
	mu        sync.Mutex
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

func (t *Tail) Name() string {
	return t.name
}

func (t *Tail) Init(config map[string]any) error {
	var err error
	if t.path, err = util.GetString(config, "Path"); err != nil {
		return err
	}
	if t.path == "" {
		return errors.New("no path provided for tail input")
	}

	if t.name, err = util.GetString(config, "Name"); err != nil {
		return err
	}
	if t.name == "" {
		t.name = "tail"
	}

	if t.fromStart, err = util.GetBool(config, "FromStart", false); err != nil {
		return err
	}
	if t.mustExist, err = util.GetBool(config, "MustExist", true); err != nil {
		return err
	}
	if t.poll, err = util.GetBool(config, "Poll", false); err != nil {
		return err
	}

	return nil
}

// startLocation pins the read position to the file size observed now, so
// nothing appended after Start returns can be skipped.
func (t *Tail) startLocation() *tail.SeekInfo {
	if t.fromStart {
		return nil
	}
	info, err := os.Stat(t.path)
	if err != nil {
		return nil
	}
	return &tail.SeekInfo{Offset: info.Size(), Whence: io.SeekStart}
}

func (t *Tail) Start(parentCtx context.Context) (<-chan internal.Event, error) {
	tailer, err := tail.TailFile(t.path, tail.Config{
		Location:      t.startLocation(),
		Follow:        true,
		ReOpen:        true,
		CompleteLines: true,
		MustExist:     t.mustExist,
		Poll:          t.poll,
		Logger:        logrus.WithField("input", t.name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail file %s: %w", t.path, err)
	}
	t.tailer = tailer

	var ctx context.Context
	ctx, t.cancel = context.WithCancel(parentCtx)

	output := make(chan internal.Event)
	t.wg.Add(1)
	go t.readLines(ctx, output)

	logrus.WithField("path", t.path).Info("Starting Tail Input")
	return output, nil
}

func (t *Tail) readLines(ctx context.Context, output chan<- internal.Event) {
	defer t.wg.Done()
	defer close(output)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.tailer.Lines:
			if !ok {
				if err := t.tailer.Wait(); err != nil {
					t.setErr(fmt.Errorf("tailing %s stopped: %w", t.path, err))
				}
				return
			}
			if line.Err != nil {
				t.setErr(fmt.Errorf("error reading %s: %w", t.path, line.Err))
				return
			}

			text := input.CleanLine(line.Text)
			if text == "" {
				continue
			}

			event := internal.Event{
				Timestamp: time.Now(),
				RawData:   text,
				Metadata: internal.Metadata{
					Source:  t.path,
					LineNum: line.Num,
				},
			}
			input.AddMetadata(&event, t)

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (t *Tail) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

func (t *Tail) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Tail) Exit() error {
	logrus.WithField("path", t.path).Info("Stopping Tail Input")
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()

	if t.tailer == nil {
		return nil
	}
	err := t.tailer.Stop()
	t.tailer.Cleanup()
	return err
}
