// Package main is the entry point for the sonoir 3D preview.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/app"
	"github.com/Faultbox/sonoir/internal/config"
	"github.com/Faultbox/sonoir/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== sonoir preview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	if config.SaveRequested() {
		cfg.Remember(a.Code())
		if path, err := cfg.Save(); err != nil {
			logger.Error("failed to save config", zap.Error(err))
		} else {
			logger.Info("config saved", zap.String("path", path))
		}
	}

	logger.Info("viewer closed normally")
}
