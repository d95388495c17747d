// Package main is a terminal wizard that composes a sonoir configuration and
// prints its share link.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/config"
	"github.com/Faultbox/sonoir/internal/configurator"
	"github.com/Faultbox/sonoir/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; log to the file only.
	if cfg.Logging.LogFile != "" {
		fileCfg := logger.DefaultFileConfig(cfg.Logging.LogFile)
		if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, false); err != nil {
			fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	catalog := configurator.DefaultCatalog()
	codec, err := catalog.Codec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catalog error: %v\n", err)
		os.Exit(1)
	}

	session := configurator.NewSession(catalog)
	if start := cfg.Share.StartCode(); start != "" {
		if code, err := session.RestoreCode(codec, start); err != nil {
			logger.Warn("ignoring share code", zap.String("code", code), zap.Error(err))
		}
	}

	program := tea.NewProgram(newWizardModel(session, codec, cfg.Share.BaseURL), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	if m, ok := final.(wizardModel); ok && m.link != "" {
		fmt.Println(m.link)
	}

	if config.SaveRequested() {
		code, err := codec.Encode(session.Selections())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
			os.Exit(1)
		}
		cfg.Remember(code)
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved to %s\n", path)
	}
}
