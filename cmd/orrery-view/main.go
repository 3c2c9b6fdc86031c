// Package main is the entry point for the orrery scene viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/internal/config"
	"github.com/orrery-engine/orrery/internal/logger"
	"github.com/orrery-engine/orrery/internal/viewer"
)

func main() {
	config.ParseFlags()

	scenePath := flag.Arg(0)
	if scenePath == "" {
		fmt.Fprintln(os.Stderr, "usage: orrery-view [flags] <scene.oml>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), true)
	defer log.Sync()

	log.Info("orrery viewer starting", zap.String("scene", scenePath))

	v, err := viewer.New(cfg, scenePath, log)
	if err != nil {
		log.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("viewer closed normally")
}
