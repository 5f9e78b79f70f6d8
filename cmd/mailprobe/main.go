package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
	"github.com/mailprobe/mailprobe/internal/di"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
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
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.VerifierService,
	orchestrator *core.BatchOrchestrator,
	resolver core.MXResolver,
) error {
	defer logger.Sync()

	opts := core.ValidationOptions{
		SkipSMTP:     flags.SkipSMTP,
		SkipCatchAll: flags.SkipCatchAll,
	}
	if timeout, err := time.ParseDuration(flags.SMTPTimeout); err == nil {
		opts.SMTPTimeout = timeout
	}

	// Stop the resolver's cache cleanup goroutine on exit
	defer func() {
		if stopper, ok := resolver.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}()

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

	if flags.InputFile != "" {
		return runBatch(ctx, flags, logger, orchestrator, opts)
	}
	return runSingle(ctx, flags, logger, service, opts)
}

// runSingle verifies one address given as the remaining command line
// argument and prints its record as JSON.
func runSingle(
	ctx context.Context,
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.VerifierService,
	opts core.ValidationOptions,
) error {
	args := flag.Args()
	if len(args) != 1 {
		return errors.New("expected exactly one address argument (or -file for batch mode)")
	}

	record := service.Verify(ctx, flags.Owner, args[0], opts)

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// runBatch reads one address per line from the input file and streams each
// finished record as a JSON line in completion order.
func runBatch(
	ctx context.Context,
	flags *di.CLIFlags,
	logger *zap.Logger,
	orchestrator *core.BatchOrchestrator,
	opts core.ValidationOptions,
) error {
	emails, err := readAddresses(flags.InputFile)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return errors.New("input file contains no addresses")
	}

	logger.Info("Starting batch verification",
		zap.Int("addresses", len(emails)),
		zap.Int("workers", flags.Workers),
		zap.String("owner", flags.Owner))

	job, results, err := orchestrator.Run(ctx, flags.Owner, emails, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	start := time.Now()
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
		zap.Int("critical", bands[core.BandCritical]),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// readAddresses loads one address per line, skipping blanks and # comments.
func readAddresses(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var emails []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return emails, nil
}
