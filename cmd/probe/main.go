package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/robonalysis/internal/config"
	"github.com/okian/robonalysis/internal/probe"
	"github.com/okian/robonalysis/pkg/logger"
)

const defaultRunTimeout = 30 * time.Minute

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		teams      = flag.String("teams", "", "Comma separated RobotEvents team ids")
		passcode   = flag.String("passcode", os.Getenv(config.EnvPrefix+"PASSCODE"), "Unlock passcode when the API is gated")
		workers    = flag.Int("workers", probe.DefaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write a JSON report to this file")
		verbose    = flag.Bool("verbose", false, "Log every verified response")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	report, err := probe.Run(ctx, &probe.Config{
		BaseURL:    *baseURL,
		TeamIDs:    probe.ParseTeamIDs(*teams),
		Passcode:   *passcode,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}
