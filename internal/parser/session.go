package parser

import (
	"fmt"
	"regexp"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/util"
)

const (
	DefaultSessionPattern = `(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
	SessionIDLength       = 36
)

// SessionID pulls the first canonical UUID out of a line and stores it in
// Event.SessionID.
type SessionID struct {
	name string
	re   *regexp.Regexp
}

func NewSessionID() *SessionID {
	return &SessionID{
		name: "session",
		re:   regexp.MustCompile(DefaultSessionPattern),
	}
}

func (s *SessionID) Name() string {
	return s.name
}

func (s *SessionID) Init(config map[string]any) error {
	var err error
	if s.name, err = util.GetString(config, "Name"); err != nil {
		return err
	}
	if s.name == "" {
		s.name = "session"
	}

	pattern, err := util.GetString(config, "Pattern")
	if err != nil {
		return err
	}
	if pattern == "" {
		pattern = DefaultSessionPattern
	}

	s.re, err = regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid session id pattern: %w", err)
	}

	return nil
}

// Process sets event.SessionID or returns ErrNotFound / ErrUnexpectedLength.
func (s *SessionID) Process(event *internal.Event) error {
	id, ok := s.find(event.RawData)
	if !ok {
		return ErrNotFound
	}
	if len(id) != SessionIDLength {
		return fmt.Errorf("%w: got %d characters", ErrUnexpectedLength, len(id))
	}
	event.SessionID = id
	return nil
}

// find returns the first match that is not glued to further hex digits, so
// that near-misses such as a 9 or 13 digit group are skipped rather than
// cut down to size. A leading hex digit is tolerated when it closes a
// percent-escape, as in the URL encoded docKey "...%2Fa1b2c3d4-...".
func (s *SessionID) find(line string) (string, bool) {
	for _, loc := range s.re.FindAllStringIndex(line, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isHex(line[start-1]) && !closesEscape(line, start) {
			continue
		}
		if end < len(line) && isHex(line[end]) {
			continue
		}
		return line[start:end], true
	}
	return "", false
}

func (s *SessionID) Exit() error {
	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func closesEscape(line string, pos int) bool {
	return pos >= 3 && line[pos-3] == '%' && isHex(line[pos-2]) && isHex(line[pos-1])
}
