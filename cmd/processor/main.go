// Command processor is the one-shot batch pipeline: it reads raw publication
// records as NDJSON (one record per line) from a file or stdin, classifies
// them with overflow rebalancing, and writes labeled records as NDJSON.
// When the rule database or search index is configured, it also records the
// batch in the classification log and indexes the labeled publications.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pubdash/classifier/internal/bootstrap"
	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/config"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
)

const runTimeout = 10 * time.Minute

// maxRecordLine bounds a single NDJSON line; abstract-bearing records can
// run long.
const maxRecordLine = 1 << 20

func main() {
	configPath := flag.String("config", "config.yml", "path to config file")
	inputPath := flag.String("input", "-", "NDJSON input file, - for stdin")
	outputPath := flag.String("output", "-", "NDJSON output file, - for stdout")
	maxOverflow := flag.Int("max-overflow", -1, "overflow bucket cap, -1 for the configured default")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.Must(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := run(ctx, cfg, logger, *inputPath, *outputPath, *maxOverflow); err != nil {
		logger.Fatal("batch run failed", logging.Error(err))
	}
}

func run(
	ctx context.Context,
	cfg *config.Config,
	logger logging.Logger,
	inputPath, outputPath string,
	maxOverflow int,
) error {
	comps, err := bootstrap.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	records, err := readRecords(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Info("input loaded", logging.Int("records", len(records)))

	labeled, stats := comps.Batch.Process(ctx, records, maxOverflow)

	if err := writeLabeled(outputPath, labeled); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if comps.AuditLog != nil {
		if err := comps.AuditLog.RecordBatch(ctx, labeled); err != nil {
			logger.Warn("audit log write failed", logging.Error(err))
		}
	}
	if comps.Indexer != nil {
		indexed, err := comps.Indexer.IndexBatch(ctx, labeled)
		if err != nil {
			logger.Warn("search indexing failed", logging.Error(err))
		} else {
			logger.Info("indexed labeled publications", logging.Int("count", indexed))
		}
	}

	for category, n := range classifier.CountsByCategory(labeled) {
		if n > 0 {
			logger.Info("category total",
				logging.String("category", string(category)),
				logging.Int("count", n),
			)
		}
	}
	logger.Info("batch complete",
		logging.Int("labeled", len(labeled)),
		logging.Int("dropped", stats.Dropped),
		logging.Int("deduplicated", stats.Deduplicated),
	)
	return nil
}

func readRecords(path string) ([]*domain.RawRecord, error) {
	var in io.ReadCloser = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		in = f
		defer func() { _ = f.Close() }()
	}

	var records []*domain.RawRecord
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec domain.RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, &rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func writeLabeled(path string, labeled []domain.LabeledRecord) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, l := range labeled {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return w.Flush()
}
