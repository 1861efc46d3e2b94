package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

type GelfConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Mode    string `yaml:"mode"`
	HostKey string `yaml:"hostKey"`
}

type messageWriter interface {
	WriteMessage(m *gelf.Message) error
}

// GelfHook ships every log entry to a Graylog endpoint.
type GelfHook struct {
	hostKey string
	writer  messageWriter
}

func NewGelfHook(cfg GelfConfig) (*GelfHook, error) {
	if cfg.HostKey == "" {
		return nil, errors.New("please provide a valid hostKey for the gelf log hook")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 12201
	}
	if cfg.Mode == "" {
		cfg.Mode = "udp"
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var w gelf.Writer
	var err error

	switch cfg.Mode {
	case "udp":
		w, err = gelf.NewUDPWriter(addr)
	case "tcp":
		w, err = gelf.NewTCPWriter(addr)
	default:
		return nil, fmt.Errorf("mode: '%v' is not supported", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", cfg.Mode, err)
	}

	return &GelfHook{hostKey: cfg.HostKey, writer: w}, nil
}

func (h *GelfHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *GelfHook) Fire(entry *logrus.Entry) error {
	return h.writer.WriteMessage(h.newMessage(entry))
}

func (h *GelfHook) newMessage(entry *logrus.Entry) *gelf.Message {
	short := strings.TrimSpace(entry.Message)
	full := ""
	if i := strings.IndexByte(short, '\n'); i > 0 {
		full = short
		short = strings.TrimSpace(short[:i])
	}

	extra := make(map[string]any, len(entry.Data))
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		extra["_"+k] = v
	}

	return &gelf.Message{
		Version:  "1.1",
		Host:     h.hostKey,
		Short:    short,
		Full:     full,
		TimeUnix: float64(entry.Time.UnixNano()) / 1e9,
		Level:    gelfLevel(entry.Level),
		Extra:    extra,
	}
}

func (h *GelfHook) Close() error {
	if closer, ok := h.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func gelfLevel(level logrus.Level) int32 {
	switch level {
	case logrus.PanicLevel:
		return int32(gelf.LOG_ALERT)
	case logrus.FatalLevel:
		return int32(gelf.LOG_CRIT)
	case logrus.ErrorLevel:
		return int32(gelf.LOG_ERR)
	case logrus.WarnLevel:
		return int32(gelf.LOG_WARNING)
	case logrus.InfoLevel:
		return int32(gelf.LOG_INFO)
	default:
		return int32(gelf.LOG_DEBUG)
	}
}
