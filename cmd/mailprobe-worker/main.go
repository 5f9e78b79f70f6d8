// mailprobe-worker is the config-driven batch worker. It reads one address
// per line from stdin, verifies them with the configured backends (sink,
// quota store, probe identity), and writes finished records to stdout as
// JSON lines. Configuration comes from config.yaml and MAILPROBE_*
// environment variables rather than flags.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/config"
	"github.com/mailprobe/mailprobe/internal/core"
	"github.com/mailprobe/mailprobe/internal/di"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	orchestrator *core.BatchOrchestrator,
	resolver core.MXResolver,
	sink core.RecordSink,
) error {
	defer logger.Sync()

	owner := cfg.GetString("worker.owner")
	if owner == "" {
		owner = "worker"
	}

	emails, err := readAddresses(os.Stdin)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return errors.New("no addresses on stdin")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	logger.Info("Starting batch verification",
		zap.Int("addresses", len(emails)),
		zap.String("owner", owner))

	job, results, err := orchestrator.Run(ctx, owner, emails, core.ValidationOptions{})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	bands := make(map[core.RiskBand]int)
	for item := range results {
		bands[item.Record.Confidence.Band]++
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to encode stream item: %w", err)
		}
	}

	logger.Info("Batch finished",
		zap.String("state", string(job.State())),
		zap.Int("admitted", job.Admitted),
		zap.Int("emitted", job.Emitted()),
		zap.Int("low", bands[core.BandLow]),
		zap.Int("medium", bands[core.BandMedium]),
		zap.Int("high", bands[core.BandHigh]),
		zap.Int("critical", bands[core.BandCritical]))

	// Close any resources that need closing
	if stopper, ok := resolver.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close record sink", zap.Error(err))
		}
	}
	return nil
}

// readAddresses loads one address per line, skipping blanks and # comments.
func readAddresses(r *os.File) ([]string, error) {
	var emails []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read addresses: %w", err)
	}
	return emails, nil
}
