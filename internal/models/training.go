package models

import (
	"time"

	"github.com/google/uuid"
)

// MuscleGroup is an entry in the seeded muscle catalog.
type MuscleGroup struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Exercise is a trackable movement and the muscles it trains.
type Exercise struct {
	ID                uuid.UUID  `json:"id"`
	UserID            int        `json:"user_id"`
	Name              string     `json:"name"`
	Equipment         string     `json:"equipment"`
	PrimaryMuscleID   *uuid.UUID `json:"primary_muscle_group_id"`
	SecondaryMuscleID *uuid.UUID `json:"secondary_muscle_group_id"`
	TertiaryMuscleID  *uuid.UUID `json:"tertiary_muscle_group_id"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Workout is one training session.
type Workout struct {
	ID              uuid.UUID  `json:"id"`
	UserID          int        `json:"user_id"`
	Name            string     `json:"name"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds"`
	Intensity       *string    `json:"intensity"`
	Notes           *string    `json:"notes"`
	Source          string     `json:"source"`
	CreatedAt       time.Time  `json:"created_at"`
}

// WorkoutSet is one performed set. Nil measurements were not recorded.
type WorkoutSet struct {
	ID                      uuid.UUID `json:"id"`
	WorkoutID               uuid.UUID `json:"workout_id"`
	ExerciseID              uuid.UUID `json:"exercise_id"`
	SetOrder                int       `json:"set_order"`
	Weight                  *float64  `json:"weight"`
	Reps                    *int      `json:"reps"`
	DurationSeconds         *int      `json:"duration_seconds"`
	RIR                     *float64  `json:"rir"`
	IsWarmup                bool      `json:"is_warmup"`
	TimeUnderTensionSeconds *int      `json:"time_under_tension_seconds"`
	RestSecondsAfter        *int      `json:"rest_seconds_after"`
	IsPR                    bool      `json:"is_pr"`
	PRType                  *string   `json:"pr_type"`
	CreatedAt               time.Time `json:"created_at"`
}

// WorkoutDetail is a workout with its sets in order.
type WorkoutDetail struct {
	Workout
	Sets []WorkoutSet `json:"sets"`
}
