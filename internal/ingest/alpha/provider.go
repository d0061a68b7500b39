package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/analytics/records"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Store persists imported workouts. *storage.DB implements it.
type Store interface {
	ReplaceImportedWorkout(ctx context.Context, w models.Workout, sets []storage.ImportedSet, check storage.PRCheck) (storage.ImportOutcome, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	db  Store
	log *slog.Logger
	loc *time.Location
}

// NewProvider creates a new Alpha Progression ingest provider. Session times
// in exports are read as loc; nil means UTC.
func NewProvider(db Store, loc *time.Location, log *slog.Logger) *Provider {
	if loc == nil {
		loc = time.UTC
	}
	return &Provider{db: db, log: log, loc: loc}
}

// Ingest parses a CSV export and stores every session with PR detection.
// Sessions are written oldest first so records are judged against what came
// before them. A session already imported is replaced.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := ParseIn(r, p.loc)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})

	result := &ingest.Result{WorkoutsReceived: len(sessions)}
	for _, s := range sessions {
		w, sets := ToWorkout(userID, s)
		result.SetsReceived += len(sets)

		out, err := p.db.ReplaceImportedWorkout(ctx, w, sets, records.Detect)
		if err != nil {
			return result, err
		}
		result.WorkoutsInserted++
		if out.Replaced {
			result.WorkoutsReplaced++
		}
		result.SetsInserted += int64(out.SetsInserted)
		result.PRsDetected += out.PRsDetected
	}

	p.log.Info("alpha import",
		"user_id", userID,
		"workouts", result.WorkoutsInserted,
		"replaced", result.WorkoutsReplaced,
		"sets", result.SetsInserted,
		"prs", result.PRsDetected,
	)
	return result, nil
}
