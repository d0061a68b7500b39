package models

import (
	"time"

	"github.com/claude/liftlog/internal/analytics/bodycomp"
	"github.com/google/uuid"
)

// UserBio is the per-user profile body analytics are evaluated against.
type UserBio struct {
	UserID    int       `json:"user_id"`
	HeightCm  float64   `json:"height_cm"`
	Age       int       `json:"age"`
	Sex       string    `json:"sex"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile converts the bio to the estimator's profile.
func (b UserBio) Profile() bodycomp.Profile {
	return bodycomp.Profile{HeightCm: b.HeightCm, Age: b.Age, Sex: bodycomp.Sex(b.Sex)}
}

// BodyLog is one weigh-in with optional circumferences. Stats is derived
// from the other fields and the bio at the time it was computed.
type BodyLog struct {
	ID           uuid.UUID          `json:"id"`
	UserID       int                `json:"user_id"`
	LoggedAt     time.Time          `json:"logged_at"`
	WeightKg     float64            `json:"weight_kg"`
	BodyFatPct   *float64           `json:"body_fat_pct"`
	Measurements map[string]float64 `json:"measurements"`
	Stats        *bodycomp.Stats    `json:"computed_stats"`
	CreatedAt    time.Time          `json:"created_at"`
}

// WeightPoint is a body weight at a point in time.
type WeightPoint struct {
	At       time.Time `json:"at"`
	WeightKg float64   `json:"weight_kg"`
}
