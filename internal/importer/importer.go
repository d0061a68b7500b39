// Package importer loads a directory of Alpha Progression exports straight
// into the database, bypassing the HTTP ingest endpoint.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/upload"
)

// Ingester stores one export. *alpha.Provider implements it.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// ImportLogger records each file in the import history. *storage.DB
// implements it.
type ImportLogger interface {
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesErrored   int

	WorkoutsInserted int
	WorkoutsReplaced int
	SetsReceived     int
	SetsInserted     int64
	PRsDetected      int
}

// Importer reads every .csv export under a directory and stores it for one
// user.
type Importer struct {
	ingester Ingester
	logs     ImportLogger
	log      *slog.Logger
	loc      *time.Location
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. In dry-run mode ingester and logs may be nil;
// files are only parsed and counted.
func New(ingester Ingester, logs ImportLogger, loc *time.Location, log *slog.Logger, dryRun bool) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	return &Importer{ingester: ingester, logs: logs, loc: loc, log: log, dryRun: dryRun}
}

// Import processes the exports under dir in path order. A file that fails to
// parse is counted and skipped; a storage error stops the import.
func (imp *Importer) Import(ctx context.Context, dir string, userID int) (*Stats, error) {
	files, err := upload.FindExports(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		rel, _ := filepath.Rel(dir, f)

		if imp.dryRun {
			imp.countFile(f, rel)
			continue
		}
		if err := imp.importFile(ctx, f, rel, userID); err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", rel, err)
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) countFile(path, rel string) {
	fh, err := os.Open(path)
	if err != nil {
		imp.log.Warn("open failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return
	}
	defer fh.Close()

	sessions, err := alpha.ParseIn(fh, imp.loc)
	if err != nil {
		imp.log.Warn("parse failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return
	}
	imp.stats.FilesProcessed++
	for _, s := range sessions {
		_, sets := alpha.ToWorkout(0, s)
		imp.stats.WorkoutsInserted++
		imp.stats.SetsReceived += len(sets)
	}
}

func (imp *Importer) importFile(ctx context.Context, path, rel string, userID int) error {
	fh, err := os.Open(path)
	if err != nil {
		imp.log.Warn("open failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	defer fh.Close()

	logID := imp.begin(ctx, userID)
	start := time.Now()
	res, err := imp.ingester.Ingest(ctx, fh, userID)
	imp.finish(ctx, logID, userID, res, err, time.Since(start))

	if res != nil {
		imp.stats.WorkoutsInserted += res.WorkoutsInserted
		imp.stats.WorkoutsReplaced += res.WorkoutsReplaced
		imp.stats.SetsReceived += res.SetsReceived
		imp.stats.SetsInserted += res.SetsInserted
		imp.stats.PRsDetected += res.PRsDetected
	}
	if err != nil {
		// Nothing was stored when parsing failed.
		if res == nil {
			imp.log.Warn("parse failed", "file", rel, "error", err)
			imp.stats.FilesErrored++
			return nil
		}
		return err
	}

	imp.stats.FilesProcessed++
	imp.log.Info("imported export",
		"file", rel,
		"workouts", res.WorkoutsInserted,
		"replaced", res.WorkoutsReplaced,
		"sets", res.SetsInserted,
		"prs", res.PRsDetected,
	)
	return nil
}

// begin logs the import as running and returns its entry ID, or 0 when it
// could not be logged.
func (imp *Importer) begin(ctx context.Context, userID int) int64 {
	if imp.logs == nil {
		return 0
	}
	id, err := imp.logs.InsertImportLog(ctx, storage.ImportLog{
		UserID: userID,
		Source: alpha.Source,
		Status: storage.ImportRunning,
	})
	if err != nil {
		imp.log.Error("failed to log import", "error", err)
		return 0
	}
	return id
}

func (imp *Importer) finish(ctx context.Context, id int64, userID int, res *ingest.Result, importErr error, took time.Duration) {
	if imp.logs == nil || id == 0 {
		return
	}
	if res == nil {
		res = &ingest.Result{}
	}
	entry := storage.ImportLog{
		UserID:           userID,
		Source:           alpha.Source,
		Status:           storage.ImportSuccess,
		WorkoutsReceived: res.WorkoutsReceived,
		WorkoutsInserted: res.WorkoutsInserted,
		SetsReceived:     res.SetsReceived,
		SetsInserted:     res.SetsInserted,
		PRsDetected:      res.PRsDetected,
	}
	ms := int(took.Milliseconds())
	entry.DurationMs = &ms
	if importErr != nil {
		entry.Status = storage.ImportError
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if err := imp.logs.UpdateImportLog(ctx, id, entry); err != nil {
		imp.log.Error("failed to update import log", "id", id, "error", err)
	}
}
