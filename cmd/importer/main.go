// Package main imports a university CSV into the SQLite dataset cache and,
// optionally, publishes a compressed copy to R2.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/uniadvisor/uniadvisor/internal/config"
	"github.com/uniadvisor/uniadvisor/internal/dataset"
	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/logger"
	"github.com/uniadvisor/uniadvisor/internal/r2client"
	"github.com/uniadvisor/uniadvisor/internal/storage"
)

// CLI flags
var (
	inputFlag   = flag.String("input", "", "CSV (or .csv.zst) to import; r2://<key> reads from R2 (default: dataset path from config)")
	publishFlag = flag.Bool("publish", false, "Upload the cleaned dataset to R2 as zstd-compressed CSV")
	dryRunFlag  = flag.Bool("dry-run", false, "Parse and report only; do not write SQLite or R2")
	timeoutFlag = flag.Duration("timeout", config.DatasetReload, "Overall import deadline")
)

const r2Prefix = "r2://"

// options are the resolved CLI inputs.
type options struct {
	input      string
	publishKey string
	dryRun     bool
}

// objectStore is the part of *r2client.Client the importer uses.
type objectStore interface {
	dataset.Downloader
	HeadObject(ctx context.Context, key string) (string, error)
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// saver persists cleaned rows. *storage.DB satisfies it.
type saver interface {
	ReplaceUniversities(ctx context.Context, source string, rows []dataset.University) error
}

func main() {
	flag.Parse()

	cfg, err := config.LoadForMode(config.ImportMode)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).WithModule("importer")
	log.Info("Starting dataset importer")

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	opts := options{
		input:  *inputFlag,
		dryRun: *dryRunFlag,
	}
	if opts.input == "" {
		opts.input = cfg.DatasetPath
	}
	if *publishFlag {
		opts.publishKey = publishKey(cfg.R2.DatasetKey)
	}

	var store objectStore
	if cfg.R2.Enabled {
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    cfg.R2.Endpoint(),
			AccessKeyID: cfg.R2.AccessKeyID,
			SecretKey:   cfg.R2.SecretAccessKey,
			BucketName:  cfg.R2.BucketName,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to create R2 client")
		}
		store = client
	}

	var db saver
	if !opts.dryRun {
		conn, err := storage.New(ctx, cfg.SQLitePath())
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer func() { _ = conn.Close() }()
		db = conn
	}

	start := time.Now()
	ds, stats, err := run(ctx, opts, db, store, log)
	printSummary(os.Stdout, ds, stats, opts)
	if err != nil {
		log.WithError(err).Error("Import failed")
		_, _ = fmt.Fprintf(os.Stderr, "\n❌ Import failed: %v\n", err)
		os.Exit(1)
	}
	log.WithField("rows", ds.Len()).
		WithField("duration", time.Since(start).Round(time.Millisecond)).
		Info("Import complete")
}

// run loads opts.input, writes the cleaned rows to db (unless dry-run) and
// publishes them to store when a publish key is set.
func run(ctx context.Context, opts options, db saver, store objectStore, log *logger.Logger) (*dataset.Dataset, dataset.LoadStats, error) {
	ds, stats, err := load(ctx, opts.input, store)
	if errs.IsNotFound(err) {
		return ds, stats, fmt.Errorf("%s does not exist: %w", opts.input, err)
	}
	if err != nil {
		return ds, stats, err
	}
	if ds.Len() == 0 {
		return ds, stats, fmt.Errorf("%s: no usable rows", opts.input)
	}
	log.WithFields(map[string]any{
		"source":     ds.Source(),
		"kept":       stats.Kept,
		"malformed":  stats.Malformed,
		"incomplete": stats.Incomplete,
		"duplicates": stats.Duplicates,
	}).Info("Dataset parsed")

	if opts.dryRun {
		return ds, stats, nil
	}

	if db != nil {
		if err := db.ReplaceUniversities(ctx, ds.Source(), ds.Universities()); err != nil {
			return ds, stats, fmt.Errorf("save: %w", err)
		}
		log.WithField("rows", ds.Len()).Info("Dataset written to SQLite")
	}

	if opts.publishKey != "" {
		if store == nil {
			return ds, stats, fmt.Errorf("publish: R2 is not enabled")
		}
		switch previous, err := store.HeadObject(ctx, opts.publishKey); {
		case err == nil:
			log.WithField("key", opts.publishKey).WithField("previous_etag", previous).Info("Replacing published dataset")
		case errs.IsNotFound(err):
			log.WithField("key", opts.publishKey).Info("First publish of dataset")
		default:
			return ds, stats, fmt.Errorf("publish: %w", err)
		}
		etag, err := publish(ctx, store, opts.publishKey, ds)
		if err != nil {
			return ds, stats, err
		}
		log.WithField("key", opts.publishKey).WithField("etag", etag).Info("Dataset published to R2")
	}
	return ds, stats, nil
}

// load reads input from R2 when it carries the r2:// prefix, else from disk.
func load(ctx context.Context, input string, store objectStore) (*dataset.Dataset, dataset.LoadStats, error) {
	if input == "" {
		return dataset.Empty(""), dataset.LoadStats{}, fmt.Errorf("no input: pass -input or set %s", config.EnvDatasetPath)
	}
	if key, ok := strings.CutPrefix(input, r2Prefix); ok {
		if store == nil {
			return dataset.Empty(input), dataset.LoadStats{}, fmt.Errorf("%s: R2 is not enabled", input)
		}
		ctx, cancel := context.WithTimeout(ctx, config.DatasetDownload)
		defer cancel()
		return dataset.ObjectSource{Client: store, Key: key}.Load(ctx)
	}
	return dataset.FileSource{Path: input}.Load(ctx)
}

// publish uploads ds as zstd-compressed CSV.
func publish(ctx context.Context, store objectStore, key string, ds *dataset.Dataset) (string, error) {
	var raw bytes.Buffer
	if err := dataset.WriteCSV(&raw, ds.Universities()); err != nil {
		return "", fmt.Errorf("publish: encode: %w", err)
	}
	var compressed bytes.Buffer
	if err := r2client.Compress(&compressed, &raw); err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	etag, err := store.Upload(ctx, key, &compressed, "application/zstd")
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	return etag, nil
}

// publishKey makes sure the published object carries the .zst suffix that
// readers use to detect compression.
func publishKey(key string) string {
	if key == "" || r2client.IsCompressedKey(key) {
		return key
	}
	return key + ".zst"
}

func printSummary(w io.Writer, ds *dataset.Dataset, stats dataset.LoadStats, opts options) {
	_, _ = fmt.Fprintf(w, "Source:      %s\n", ds.Source())
	_, _ = fmt.Fprintf(w, "Columns:     %s\n", strings.Join(dataset.Columns(), ", "))
	_, _ = fmt.Fprintf(w, "Rows read:   %d\n", stats.Rows)
	_, _ = fmt.Fprintf(w, "Kept:        %d\n", stats.Kept)
	_, _ = fmt.Fprintf(w, "Malformed:   %d\n", stats.Malformed)
	_, _ = fmt.Fprintf(w, "Incomplete:  %d\n", stats.Incomplete)
	_, _ = fmt.Fprintf(w, "Duplicates:  %d\n", stats.Duplicates)
	_, _ = fmt.Fprintf(w, "Field errors: %d\n", stats.FieldErrors)
	if opts.dryRun {
		_, _ = fmt.Fprintln(w, "Dry run: nothing written")
	}
}
