package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/time-keeper/internal/model"
)

// DefaultColor is assigned to categories created without one.
const DefaultColor = "#6366f1"

const categoryColumns = `id, user_id, name, color, workday_code, sort_order, created_at, updated_at`

// ListCategories returns the user's categories in display order.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY sort_order, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage error listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage error listing categories: %w", err)
	}
	return categories, nil
}

// CategoryByName looks a category up by its exact name.
func (s *Store) CategoryByName(ctx context.Context, userID, name string) (model.Category, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND name = ?`, userID, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return c, err
}

// CreateCategory inserts c, appending it after the user's existing categories.
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}

	return s.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.CategoryByName(ctx, c.UserID, c.Name); err == nil {
			return fmt.Errorf("category %q: %w", c.Name, ErrCategoryExists)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		var next int
		if err := s.q(ctx).QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories WHERE user_id = ?`, c.UserID).Scan(&next); err != nil {
			return fmt.Errorf("storage error reading sort order: %w", err)
		}

		now := s.now()
		var code any
		if c.WorkdayCode != nil {
			code = *c.WorkdayCode
		}
		res, err := s.q(ctx).ExecContext(ctx,
			`INSERT INTO categories (user_id, name, color, workday_code, sort_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.UserID, c.Name, c.Color, code, next, formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("storage error creating category: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("storage error reading category id: %w", err)
		}
		c.SortOrder = next
		c.CreatedAt = now.UTC().Truncate(time.Millisecond)
		c.UpdatedAt = c.CreatedAt
		return nil
	})
}

// EnsureCategory returns the named category, creating it when missing.
func (s *Store) EnsureCategory(ctx context.Context, userID, name string) (model.Category, error) {
	var out model.Category
	err := s.InTx(ctx, func(ctx context.Context) error {
		c, err := s.CategoryByName(ctx, userID, strings.TrimSpace(name))
		if err == nil {
			out = c
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		out = model.Category{UserID: userID, Name: name}
		return s.CreateCategory(ctx, &out)
	})
	return out, err
}

func scanCategory(row scanner) (model.Category, error) {
	var (
		c                model.Category
		code             sql.NullString
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &code, &c.SortOrder, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, err
		}
		return model.Category{}, fmt.Errorf("storage error scanning category: %w", err)
	}
	if code.Valid {
		v := code.String
		c.WorkdayCode = &v
	}

	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return model.Category{}, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Category{}, err
	}
	return c, nil
}
