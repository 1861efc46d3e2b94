package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/MuchTitan/session-watcher/internal/config"
	"github.com/sirupsen/logrus"
)

type FlagOptions struct {
	configPath *string
}

var opts = FlagOptions{}

func init() {
	opts.configPath = flag.String("cfg", "/etc/session-watcher/cfg.yaml", "provided the path to your config file")
	flag.Parse()
}

func main() {
	engine, err := config.NewPluginEngine(*opts.configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Couldn't set up session watcher")
	}

	logrus.Info("Starting session watcher")

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := engine.Run(ctx)
	if runErr != nil {
		logrus.WithError(runErr).Error("Session watcher terminated")
	} else {
		logrus.Info("Stopping session watcher")
	}

	if err := engine.Close(); err != nil {
		logrus.WithError(err).Warn("Couldn't release all plugins")
	}

	if runErr != nil {
		os.Exit(1)
	}
}
