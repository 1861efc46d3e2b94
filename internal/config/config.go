package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MuchTitan/session-watcher/internal/engine"
	"github.com/MuchTitan/session-watcher/internal/filter"
	"github.com/MuchTitan/session-watcher/internal/input"
	inputstdin "github.com/MuchTitan/session-watcher/internal/input/stdin"
	inputtail "github.com/MuchTitan/session-watcher/internal/input/tail"
	"github.com/MuchTitan/session-watcher/internal/logging"
	"github.com/MuchTitan/session-watcher/internal/output"
	outputsession "github.com/MuchTitan/session-watcher/internal/output/session"
	outputstdout "github.com/MuchTitan/session-watcher/internal/output/stdout"
	"github.com/MuchTitan/session-watcher/internal/parser"
	"github.com/MuchTitan/session-watcher/internal/util"
	"github.com/sirupsen/logrus"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration
type Config struct {
	System  SystemConfig     `yaml:"System"`
	Input   map[string]any   `yaml:"Input"`
	Matcher map[string]any   `yaml:"Matcher"`
	Outputs []map[string]any `yaml:"Outputs"`
}

// SystemConfig holds the watcher's own logging setup
type SystemConfig struct {
	LogLevel    string              `yaml:"logLevel"`
	LogFile     string              `yaml:"logFile"`
	LogToStderr bool                `yaml:"logToStderr"`
	Gelf        *logging.GelfConfig `yaml:"gelf"`
}

func (c *SystemConfig) GetLogLevel() logrus.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "TRACE":
		return logrus.TraceLevel
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		// Default LogLevel Info
		return logrus.InfoLevel
	}
}

// PluginEngine is an engine built from a configuration file
type PluginEngine struct {
	*engine.Engine
	config   Config
	logFile  *os.File
	gelfHook *logging.GelfHook
}

// NewPluginEngine creates a new engine with configuration
func NewPluginEngine(configPath string) (*PluginEngine, error) {
	e := &PluginEngine{
		Engine: engine.NewEngine(),
	}

	if err := e.loadConfig(configPath); err != nil {
		e.closeLogging()
		return nil, err
	}

	if err := e.initializePlugins(); err != nil {
		e.closeLogging()
		return nil, err
	}

	return e, nil
}

func (e *PluginEngine) loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Replace environment variables
	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), &e.config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := e.setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func (e *PluginEngine) setupLogging() error {
	var writers []io.Writer

	if e.config.System.LogFile != "" {
		file, err := os.OpenFile(e.config.System.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		e.logFile = file
		writers = append(writers, file)
	}

	if e.config.System.LogToStderr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	logrus.SetLevel(e.config.System.GetLogLevel())
	logrus.SetOutput(io.MultiWriter(writers...))
	logrus.SetFormatter(&logging.LineFormatter{})

	if e.config.System.Gelf != nil {
		hook, err := logging.NewGelfHook(*e.config.System.Gelf)
		if err != nil {
			return err
		}
		e.gelfHook = hook
		logrus.AddHook(hook)
	}

	return nil
}

func (e *PluginEngine) initializePlugins() error {
	if err := e.initializeInput(e.config.Input); err != nil {
		return fmt.Errorf("failed to initialize input: %w", err)
	}

	if err := e.initializeMatcher(e.config.Matcher); err != nil {
		return fmt.Errorf("failed to initialize matcher: %w", err)
	}

	if len(e.config.Outputs) == 0 {
		return errors.New("no outputs configured")
	}
	for _, outputConfig := range e.config.Outputs {
		if err := e.initializeOutput(outputConfig); err != nil {
			return fmt.Errorf("failed to initialize output: %w", err)
		}
	}

	return nil
}

func pluginType(config map[string]any, def string) (string, error) {
	t, err := util.GetString(config, "Type")
	if err != nil {
		return "", err
	}
	if t == "" {
		return def, nil
	}
	return strings.ToLower(t), nil
}

func (e *PluginEngine) initializeInput(config map[string]any) error {
	if config == nil {
		return errors.New("no input configured")
	}

	var inputObject input.Plugin

	t, err := pluginType(config, "tail")
	if err != nil {
		return err
	}

	switch t {
	case "tail":
		inputObject = &inputtail.Tail{}
	case "stdin":
		inputObject = &inputstdin.StdIn{}
	default:
		return fmt.Errorf("unknown input type: %s", config["Type"])
	}

	if err := inputObject.Init(config); err != nil {
		return err
	}

	e.SetInput(inputObject)
	return nil
}

func (e *PluginEngine) initializeMatcher(config map[string]any) error {
	marker := &filter.Marker{}
	if err := marker.Init(map[string]any{"Marker": config["Marker"]}); err != nil {
		return err
	}

	session := &parser.SessionID{}
	if err := session.Init(map[string]any{"Pattern": config["Pattern"]}); err != nil {
		return err
	}

	e.RegisterFilter(marker)
	e.RegisterParser(session)
	return nil
}

func (e *PluginEngine) initializeOutput(config map[string]any) error {
	var outputObject output.Plugin

	t, err := pluginType(config, "")
	if err != nil {
		return err
	}

	switch t {
	case "session":
		outputObject = &outputsession.Session{}
	case "stdout":
		outputObject = &outputstdout.Stdout{}
	default:
		return fmt.Errorf("unknown output type: %s", config["Type"])
	}

	if err := outputObject.Init(config); err != nil {
		return err
	}

	e.RegisterOutput(outputObject)
	return nil
}

// Close stops the engine and releases the log destinations.
func (e *PluginEngine) Close() error {
	err := e.Stop()
	e.closeLogging()
	return err
}

func (e *PluginEngine) closeLogging() {
	if e.gelfHook != nil {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
		if err := e.gelfHook.Close(); err != nil {
			logrus.WithError(err).Warn("could not close gelf writer")
		}
	}
	if e.logFile != nil {
		logrus.SetOutput(os.Stderr)
		e.logFile.Close()
	}
}
