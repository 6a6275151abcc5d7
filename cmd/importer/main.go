package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/wellpath/internal/adapters/postgres"
	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/usecases"
	"github.com/samirrijal/wellpath/internal/pkg/config"
	"github.com/samirrijal/wellpath/internal/pkg/logging"
	"github.com/samirrijal/wellpath/internal/workflows"
)

const maxConcurrentImports = 4

// Manifest lists survey payload files to import.
type Manifest struct {
	Source  string  `json:"source"`
	Surveys []Entry `json:"surveys"`
}

// Entry is one payload file for one well. File is relative to the manifest.
type Entry struct {
	WellID string `json:"well_id"`
	File   string `json:"file"`
}

// submitter imports one payload, either in-process or through Temporal.
type submitter func(ctx context.Context, wellID string, payload *domain.SurveyPayload) (string, error)

func main() {
	async := flag.Bool("async", false, "submit imports as Temporal workflows instead of processing them in-process")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: importer [-async] <manifest.json> [well-id,...]")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load("wellpath-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "wellpath-importer")

	manifestPath := flag.Arg(0)
	manifest, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}

	var filter []string
	if flag.NArg() > 1 {
		filter = strings.Split(flag.Arg(1), ",")
	}
	entries := selectEntries(manifest.Surveys, filter)

	batch := uuid.NewString()
	slog.Info("survey import batch", "batch", batch, "source", manifest.Source, "entries", len(entries), "async", *async)

	ctx := context.Background()

	var submit submitter
	if *async {
		c, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort, Namespace: cfg.Temporal.Namespace})
		if err != nil {
			log.Fatalf("temporal client: %v", err)
		}
		defer c.Close()
		submit = func(ctx context.Context, wellID string, p *domain.SurveyPayload) (string, error) {
			run, err := workflows.StartSurveyImport(ctx, c, cfg.Temporal.TaskQueue, workflows.SurveyImportInput{WellID: wellID, Payload: *p})
			if err != nil {
				return "", err
			}
			return "workflow " + run.GetID(), nil
		}
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		wells := postgres.NewWellRepo(db)
		svc := usecases.NewImportService(wells, postgres.NewImportRepo(db), postgres.NewTrajectoryRepo(db), nil, cfg.Geometry.Sanitizer())
		submit = func(ctx context.Context, wellID string, p *domain.SurveyPayload) (string, error) {
			res, err := svc.Process(ctx, wellID, p)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("trajectory %s (%d stations)", res.Trajectory.ID, res.Stations), nil
		}
	}

	failed := run(ctx, entries, filepath.Dir(manifestPath), batch, submit)
	slog.Info("survey import batch complete", "batch", batch, "entries", len(entries), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// selectEntries keeps the entries whose well is in filter. An empty filter
// keeps everything.
func selectEntries(entries []Entry, filter []string) []Entry {
	if len(filter) == 0 {
		return entries
	}
	keep := make(map[string]bool, len(filter))
	for _, id := range filter {
		if id = strings.TrimSpace(id); id != "" {
			keep[id] = true
		}
	}
	var out []Entry
	for _, e := range entries {
		if keep[e.WellID] {
			out = append(out, e)
		}
	}
	return out
}

func readPayload(dir string, e Entry) (*domain.SurveyPayload, error) {
	if e.WellID == "" || e.File == "" {
		return nil, errors.New("entry needs well_id and file")
	}
	path := e.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p domain.SurveyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Filename == "" {
		p.Filename = filepath.Base(path)
	}
	return &p, nil
}

// run submits every entry with bounded concurrency and returns how many failed.
func run(ctx context.Context, entries []Entry, dir, batch string, submit submitter) int {
	var failed atomic.Int64
	it := iter.Iterator[Entry]{MaxGoroutines: maxConcurrentImports}
	it.ForEach(entries, func(e *Entry) {
		logger := slog.With("batch", batch, "well_id", e.WellID, "file", e.File)

		p, err := readPayload(dir, *e)
		if err == nil {
			if p.UploadedBy == "" {
				p.UploadedBy = "importer/" + batch
			}
			var what string
			if what, err = submit(ctx, e.WellID, p); err == nil {
				logger.Info("imported", "result", what)
				return
			}
		}
		failed.Add(1)
		logger.Error("import failed", "error", err)
	})
	return int(failed.Load())
}
