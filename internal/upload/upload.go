// Package upload sends Alpha Progression CSV exports from a local directory
// to a LiftLog server.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	WorkoutsSent     int
	WorkoutsReplaced int
	SetsInserted     int64
	PRsDetected      int
}

// Uploader walks an export directory and POSTs every new or changed CSV to the
// LiftLog server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. A file the server rejects is counted as
// errored and retried on the next run; an unreachable server aborts.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindExports(u.dir)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			if !isRejected(err) {
				return &u.stats, err
			}
			u.log.Warn("export rejected", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	return &u.stats, nil
}

// isRejected reports whether the server refused the file itself, as opposed
// to being unreachable or failing.
func isRejected(err error) bool {
	var se *statusError
	return errors.As(err, &se) && !se.retryable()
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, _ := filepath.Rel(u.dir, path)
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would send", "file", relPath, "bytes", info.Size())
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	res, err := u.client.SendAlphaCSV(ctx, data)
	if err != nil {
		return fmt.Errorf("sending %s: %w", relPath, err)
	}

	u.stats.FilesUploaded++
	u.stats.WorkoutsSent += res.WorkoutsInserted
	u.stats.WorkoutsReplaced += res.WorkoutsReplaced
	u.stats.SetsInserted += res.SetsInserted
	u.stats.PRsDetected += res.PRsDetected

	if err := u.state.MarkUploaded(relPath, info.Size(), hash, res.WorkoutsInserted, res.SetsInserted); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}

	u.log.Info("uploaded export",
		"file", relPath,
		"workouts", res.WorkoutsInserted,
		"sets", res.SetsInserted,
		"prs", res.PRsDetected,
	)
	return nil
}

// FindExports returns every .csv file under dir, sorted by path. Hidden
// directories are not descended into.
func FindExports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
