package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sorsimple/obslayer/internal/config"
	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/processor"
	"github.com/sorsimple/obslayer/internal/store"
)

const Version = "0.1.0"

// maxRecordBytes bounds a single JSONL record.
const maxRecordBytes = 1 << 20

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Process JSONL event records from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().Int("workers", 0, "concurrent record workers (default from settings)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	log := setupLogging(settings)

	workers := settings.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	if workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}

	doc, err := config.Load(settings.DocumentPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration document: %w", err)
	}

	database, err := store.Open(settings.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	repo, err := store.NewRepository(database, log)
	if err != nil {
		return fmt.Errorf("failed to prepare repository: %w", err)
	}

	input := os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("processing started", "version", Version, "workers", workers)
	processed, failed := runPipeline(ctx, log, processor.New(doc, repo, nil, log), input, workers)
	log.Info("processing finished", "processed", processed, "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, processed+failed)
	}
	return nil
}

// runPipeline fans JSONL records out to a fixed worker pool and returns
// the processed and failed counts. A canceled context stops intake;
// in-flight records finish.
func runPipeline(ctx context.Context, log *logging.Logger, p *processor.Processor, input io.Reader, workers int) (int64, int64) {
	records := make(chan []byte, workers)
	var processed, failed atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range records {
				if _, err := p.ProcessAndSave(ctx, raw); err != nil {
					failed.Add(1)
					log.Error("record failed", logging.Error(err))
					continue
				}
				processed.Add(1)
			}
		}()
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
scan:
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		raw := make([]byte, len(line))
		copy(raw, line)
		select {
		case records <- raw:
		case <-ctx.Done():
			break scan
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("reading records failed", logging.Error(err))
	}
	close(records)
	wg.Wait()

	return processed.Load(), failed.Load()
}
