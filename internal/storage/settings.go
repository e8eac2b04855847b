package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Tiliavir/time-keeper/internal/model"
)

const (
	DefaultWeeklyGoalHours   = 40
	DefaultRoundingIncrement = 60
	MaxWeeklyGoalHours       = 40
)

// DefaultSettings returns the settings used for users that never saved any.
func DefaultSettings(userID string) model.Settings {
	return model.Settings{
		UserID:            userID,
		WeeklyGoalHours:   DefaultWeeklyGoalHours,
		RoundingIncrement: DefaultRoundingIncrement,
	}
}

// GetSettings returns the user's settings, or the defaults if none were saved.
func (s *Store) GetSettings(ctx context.Context, userID string) (model.Settings, error) {
	out := model.Settings{UserID: userID}
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT weekly_goal_hours, rounding_increment FROM user_settings WHERE user_id = ?`, userID).
		Scan(&out.WeeklyGoalHours, &out.RoundingIncrement)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(userID), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("storage error reading settings: %w", err)
	}
	return out, nil
}

// SaveSettings validates and upserts the user's settings.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	if settings.WeeklyGoalHours < 0 || settings.WeeklyGoalHours > MaxWeeklyGoalHours {
		return fmt.Errorf("%w: weekly goal must be between 0 and %d hours, got %d",
			ErrInvalidSettings, MaxWeeklyGoalHours, settings.WeeklyGoalHours)
	}
	if settings.RoundingIncrement != 30 && settings.RoundingIncrement != 60 {
		return fmt.Errorf("%w: rounding increment must be 30 or 60 minutes, got %d",
			ErrInvalidSettings, settings.RoundingIncrement)
	}

	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO user_settings (user_id, weekly_goal_hours, rounding_increment, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   weekly_goal_hours = excluded.weekly_goal_hours,
		   rounding_increment = excluded.rounding_increment,
		   updated_at = excluded.updated_at`,
		settings.UserID, settings.WeeklyGoalHours, settings.RoundingIncrement, s.stamp())
	if err != nil {
		return fmt.Errorf("storage error saving settings: %w", err)
	}
	return nil
}

// WeeklyGoalMinutes returns the user's weekly goal in minutes (2400 when unset).
func (s *Store) WeeklyGoalMinutes(ctx context.Context, userID string) (int, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return 0, err
	}
	return settings.WeeklyGoalHours * 60, nil
}

// RoundingIncrement returns the user's rounding increment in minutes (60 when unset).
func (s *Store) RoundingIncrement(ctx context.Context, userID string) (int, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return 0, err
	}
	return settings.RoundingIncrement, nil
}
