// cmd/tangent/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	stlog "log" // fatal errors before the logger is ready
	"os"

	"github.com/bethropolis/tangent/internal/app"
	"github.com/bethropolis/tangent/internal/config"
	"github.com/bethropolis/tangent/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	// --- Argument & Flag Parsing ---
	flags := config.NewFlags(config.AppName)
	args, err := flags.Parse(argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return 0
	}
	var filePath string
	if len(args) > 0 {
		filePath = args[0]
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(*flags.ConfigFilePath, flags)
	if err != nil {
		stlog.Printf("Warning: %v (using defaults)", err)
	}

	// --- Logger Initialization ---
	logCloser, err := logger.Setup(cfg.Logger)
	if err != nil {
		stlog.Printf("Failed to set up logging: %v", err)
		return 1
	}
	defer logCloser.Close()

	logger.Infof("Starting %s %s", config.AppName, config.AppVersion)
	if filePath != "" {
		logger.Debugf("File path specified: %s", filePath)
	} else {
		logger.Debugf("No file specified, starting empty.")
	}

	// --- Create and Run App ---
	tangentApp, err := app.New(cfg, filePath, os.Stdout)
	if err != nil {
		logger.Errorf("Error initializing application: %v", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}
	defer func() {
		if err := tangentApp.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		}
	}()

	if *flags.Script == "" {
		fmt.Println(tangentApp.Document().PerformanceInfo())
		return 0
	}

	var script io.Reader = os.Stdin
	if *flags.Script != "-" {
		f, err := os.Open(*flags.Script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
			return 1
		}
		defer f.Close()
		script = f
	}
	if err := tangentApp.Run(script); err != nil {
		logger.Errorf("Script failed: %v", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}

	logger.Infof("%s finished.", config.AppName)
	return 0
}
