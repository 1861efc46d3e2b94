package outputsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/util"
	"github.com/sirupsen/logrus"
)

// Session notifies the document server that a session is gone by sending
// DELETE <BaseURL><session id>.
type Session struct {
	name       string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) Init(config map[string]any) error {
	var err error
	if s.baseURL, err = util.GetString(config, "BaseURL"); err != nil {
		return err
	}
	if s.baseURL == "" {
		return errors.New("session output needs a BaseURL")
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("invalid BaseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BaseURL must be http or https, got %q", s.baseURL)
	}

	if s.name, err = util.GetString(config, "Name"); err != nil {
		return err
	}
	if s.name == "" {
		s.name = "session"
	}

	// Zero keeps the client waiting on the document server indefinitely.
	if s.timeout, err = util.GetDuration(config, "Timeout", 0); err != nil {
		return err
	}

	s.httpClient = &http.Client{
		Timeout: s.timeout,
	}

	return nil
}

func (s *Session) Write(ctx context.Context, event *internal.Event) error {
	id := event.SessionID
	if id == "" {
		return errors.New("event carries no session id")
	}
	target := s.baseURL + id

	logrus.Info("========== Processing for " + id + " ==========")
	logrus.Infof("Sending request to url %s", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("couldn't build request for %s: %w", target, err)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request for session %s failed: %w", id, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("couldn't read response from %s: %w", target, err)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("response from %s (%s) is not json: %w", target, res.Status, err)
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return err
	}

	logrus.Infof("Response status %s", res.Status)
	logrus.Info("Response received:\n\t" + string(pretty))
	logrus.Info(strings.Repeat("=", 90))
	return nil
}

func (s *Session) Exit() error {
	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}
	return nil
}
