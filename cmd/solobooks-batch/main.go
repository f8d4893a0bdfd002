package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/solobooks/solobooks/constants"
	"github.com/solobooks/solobooks/internal/common"
	"github.com/solobooks/solobooks/internal/export"
	"github.com/solobooks/solobooks/internal/extract"
	"github.com/solobooks/solobooks/internal/ingestion"
	"github.com/solobooks/solobooks/internal/llm/openai"
	"github.com/solobooks/solobooks/internal/repository"
	"github.com/solobooks/solobooks/internal/staging"
	"github.com/solobooks/solobooks/internal/storage"
	"github.com/solobooks/solobooks/internal/tabular"
	"github.com/solobooks/solobooks/internal/watch"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory with expense documents to ingest (required)")
		userStr  = flag.String("user", "", "owner user id (UUID, required with --confirm)")
		confirm  = flag.Bool("confirm", false, "confirm every usable record after extraction (requires DB_URL)")
		watchDir = flag.Bool("watch", false, "keep watching the directory and ingest files as they appear")
		out      = flag.String("out", "", "export confirmed expenses to this XLSX path (requires DB_URL and --user)")
		fromStr  = flag.String("from", "", "export window start YYYY-MM-DD")
		toStr    = flag.String("to", "", "export window end YYYY-MM-DD")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	userID := uuid.New()
	if *userStr != "" {
		parsed, err := uuid.Parse(*userStr)
		if err != nil {
			printError("Error: invalid --user id: %v\n", err)
			os.Exit(1)
		}
		userID = parsed
	} else if *confirm || *out != "" {
		printError("Error: --confirm and --out require --user\n")
		os.Exit(1)
	}

	from, err := parseDateFlag(*fromStr)
	if err != nil {
		printError("Error: invalid --from date, use YYYY-MM-DD: %v\n", err)
		os.Exit(1)
	}
	to, err := parseDateFlag(*toStr)
	if err != nil {
		printError("Error: invalid --to date, use YYYY-MM-DD: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := common.LoadConfig()

	// Repositories only exist when a database is configured; extraction and
	// staging work without one.
	var (
		expenses    repository.ExpenseRepository
		attachments repository.AttachmentRepository
		categories  repository.CategoryRepository
	)
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("db.connect.failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		expenses = repository.NewExpenseRepository(pool, logger)
		attachments = repository.NewAttachmentRepository(pool, logger)
		categories = repository.NewCategoryRepository(pool, logger)
	} else if *confirm || *out != "" {
		printError("Error: --confirm and --out require DB_URL\n")
		os.Exit(1)
	}

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	store := staging.Connect(ctx, cfg.Staging.RedisAddr, cfg.Staging.RedisPassword, logger)

	var blobs storage.BlobStore
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket)
		if err != nil {
			logger.Error("storage.gcs.failed", "bucket", cfg.Storage.Bucket, "error", err)
			os.Exit(1)
		}
		blobs = gcs
	} else {
		blobs = storage.NewDiskStore(cfg.Storage.LocalDir)
	}

	svc := ingestion.NewService(
		tabular.NewParser(logger),
		extract.NewService(extractor, logger),
		store,
		expenses,
		attachments,
		categories,
		blobs,
		logger,
	)

	if *watchDir {
		runWatch(ctx, svc, *dir, userID, *confirm, logger)
	} else {
		files, err := readBatch(*dir)
		if err != nil {
			logger.Error("batch.read.failed", "dir", *dir, "error", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			printError("Error: no files found in %s\n", *dir)
			os.Exit(1)
		}
		// Oversized directories are split to respect the per-batch cap.
		for start := 0; start < len(files); start += constants.MaxBatchFiles {
			end := start + constants.MaxBatchFiles
			if end > len(files) {
				end = len(files)
			}
			runBatch(ctx, svc, files[start:end], userID, *confirm, logger)
		}
	}

	if *out != "" {
		exporter := export.NewService(expenses, categories, logger)
		data, err := exporter.ExportExpensesXLSX(ctx, userID, from, to)
		if err != nil {
			logger.Error("batch.export.failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("batch.export.write_failed", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("batch.export.ok", "path", *out)
	}
}

// runBatch ingests one batch and optionally confirms every usable record,
// printing the outcome as JSON.
func runBatch(ctx context.Context, svc *ingestion.Service, files []ingestion.UploadedFile, userID uuid.UUID, confirm bool, logger *slog.Logger) {
	res, err := svc.Ingest(ctx, files, userID, ingestion.Options{})
	if err != nil {
		logger.Error("batch.ingest.failed", "error", err)
		return
	}
	if !confirm {
		printJSON(res)
		return
	}

	var approved []ingestion.ApprovedExpense
	for _, rec := range res.ExtractedExpenses {
		if rec.Usable() {
			approved = append(approved, ingestion.ApprovedExpense{TempID: rec.TempID})
		}
	}
	if len(approved) == 0 {
		logger.Warn("batch.confirm.skipped", "session_id", res.SessionID, "reason", "no usable records")
		printJSON(res)
		return
	}
	outcome, err := svc.Confirm(ctx, res.SessionID, userID, approved)
	if err != nil {
		logger.Error("batch.confirm.failed", "error", err)
		return
	}
	printJSON(outcome)
}

// runWatch ingests files as they settle in the watched directory, one
// single-file batch per event, until interrupted.
func runWatch(ctx context.Context, svc *ingestion.Service, dir string, userID uuid.UUID, confirm bool, logger *slog.Logger) {
	events, errs, err := watch.Start(ctx, watch.Config{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    2 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("watch.start.failed", "dir", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("watch.started", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if ok {
				logger.Error("watch.error", "error", err)
			}
		case path, ok := <-events:
			if !ok {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("watch.read.failed", "path", path, "error", err)
				continue
			}
			runBatch(ctx, svc, []ingestion.UploadedFile{{
				Name:     filepath.Base(path),
				MimeType: mime.TypeByExtension(filepath.Ext(path)),
				Data:     data,
			}}, userID, confirm, logger)
		}
	}
}

// readBatch loads every regular file in dir into memory, guessing the MIME
// type from the extension.
func readBatch(dir string) ([]ingestion.UploadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []ingestion.UploadedFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, ingestion.UploadedFile{
			Name:     e.Name(),
			MimeType: mime.TypeByExtension(filepath.Ext(e.Name())),
			Data:     data,
		})
	}
	return files, nil
}

func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		printError("Error: encoding output: %v\n", err)
	}
}
