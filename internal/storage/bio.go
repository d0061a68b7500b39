package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// GetBio returns the user's bio, or ErrNotFound if none was saved yet.
func (db *DB) GetBio(ctx context.Context, userID int) (*models.UserBio, error) {
	var b models.UserBio
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, height_cm, age, sex, updated_at FROM user_bio WHERE user_id = $1`,
		userID,
	).Scan(&b.UserID, &b.HeightCm, &b.Age, &b.Sex, &b.UpdatedAt)
	if err != nil {
		return nil, rowErr("bio", err)
	}
	return &b, nil
}

// UpsertBio creates or replaces the user's bio.
func (db *DB) UpsertBio(ctx context.Context, bio models.UserBio) (*models.UserBio, error) {
	out := bio
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO user_bio (user_id, height_cm, age, sex)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
			SET height_cm = EXCLUDED.height_cm, age = EXCLUDED.age,
			    sex = EXCLUDED.sex, updated_at = NOW()
		RETURNING updated_at
	`, bio.UserID, bio.HeightCm, bio.Age, bio.Sex).Scan(&out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting bio: %w", err)
	}
	return &out, nil
}
