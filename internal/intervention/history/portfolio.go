package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/runger/dopamenu/internal/intervention/model"
)

var (
	ErrUnknownCategory = errors.New("unknown portfolio category")
	ErrInvalidRating   = errors.New("invalid rating")
)

// PortfolioStats summarizes every stored portfolio. AverageRating covers
// rated days only and is 0 when none are rated.
type PortfolioStats struct {
	TotalDays           int     `json:"total_days"`
	CompletedCategories int     `json:"completed_categories"`
	AverageRating       float64 `json:"average_rating"`
	RatedDays           int     `json:"rated_days"`
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dayKey formats day in its own location.
func dayKey(day time.Time) string {
	return day.Format(model.DateLayout)
}

// Portfolio returns the portfolio for day, creating it with the default
// categories on first access.
func (s *Store) Portfolio(ctx context.Context, day time.Time) (model.DailyPortfolio, error) {
	return s.updatePortfolio(ctx, day, nil)
}

// PortfolioForDate returns the stored portfolio for day without creating
// one. A day never opened returns ErrNotFound.
func (s *Store) PortfolioForDate(ctx context.Context, day time.Time) (model.DailyPortfolio, error) {
	return loadPortfolio(ctx, s.db, dayKey(day))
}

// ToggleCategory flips the completed flag of one category on day.
func (s *Store) ToggleCategory(ctx context.Context, day time.Time, categoryID string) (model.DailyPortfolio, error) {
	return s.updatePortfolio(ctx, day, func(tx *sql.Tx, key string) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE portfolio_categories SET completed = 1 - completed
			WHERE day = ? AND category_id = ?
		`, key, categoryID)
		if err != nil {
			return fmt.Errorf("failed to toggle category: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to toggle category: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, categoryID)
		}
		return nil
	})
}

// SetGoodDayRating rates day from model.MinRating to model.MaxRating.
func (s *Store) SetGoodDayRating(ctx context.Context, day time.Time, rating int) (model.DailyPortfolio, error) {
	if err := model.ValidateRating(rating); err != nil {
		return model.DailyPortfolio{}, fmt.Errorf("%w: %v", ErrInvalidRating, err)
	}
	return s.updatePortfolio(ctx, day, func(tx *sql.Tx, key string) error {
		if _, err := tx.ExecContext(ctx, `UPDATE portfolios SET rating = ? WHERE day = ?`, rating, key); err != nil {
			return fmt.Errorf("failed to set rating: %w", err)
		}
		return nil
	})
}

// SetNotes replaces the notes of day.
func (s *Store) SetNotes(ctx context.Context, day time.Time, notes string) (model.DailyPortfolio, error) {
	return s.updatePortfolio(ctx, day, func(tx *sql.Tx, key string) error {
		if _, err := tx.ExecContext(ctx, `UPDATE portfolios SET notes = ? WHERE day = ?`, notes, key); err != nil {
			return fmt.Errorf("failed to set notes: %w", err)
		}
		return nil
	})
}

// RecentPortfolios returns the stored portfolios of the days days ending
// with day, newest first. Days never opened are skipped.
func (s *Store) RecentPortfolios(ctx context.Context, day time.Time, days int) ([]model.DailyPortfolio, error) {
	if days <= 0 {
		return []model.DailyPortfolio{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT day FROM portfolios WHERE day <= ? AND day > ? ORDER BY day DESC
	`, dayKey(day), dayKey(day.AddDate(0, 0, -days)))
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}

	// The pool holds a single connection, so finish the scan before loading.
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan portfolio day: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate portfolios: %w", err)
	}
	rows.Close()

	out := make([]model.DailyPortfolio, 0, len(keys))
	for _, key := range keys {
		p, err := loadPortfolio(ctx, s.db, key)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// PortfolioStats counts days, completed categories and the mean rating.
func (s *Store) PortfolioStats(ctx context.Context) (PortfolioStats, error) {
	var st PortfolioStats
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(rating), AVG(rating) FROM portfolios
	`).Scan(&st.TotalDays, &st.RatedDays, &avg)
	if err != nil {
		return PortfolioStats{}, fmt.Errorf("failed to query portfolio stats: %w", err)
	}
	if avg.Valid {
		st.AverageRating = avg.Float64
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM portfolio_categories WHERE completed = 1
	`).Scan(&st.CompletedCategories)
	if err != nil {
		return PortfolioStats{}, fmt.Errorf("failed to count completed categories: %w", err)
	}
	return st, nil
}

// ResetPortfolios deletes every portfolio. Decisions are kept.
func (s *Store) ResetPortfolios(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"portfolio_categories", "portfolios"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	s.logger.Info("portfolios reset")
	return nil
}

// updatePortfolio creates day's portfolio if needed, applies fn and returns
// the result, all in one transaction.
func (s *Store) updatePortfolio(ctx context.Context, day time.Time, fn func(tx *sql.Tx, key string) error) (model.DailyPortfolio, error) {
	key := dayKey(day)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DailyPortfolio{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.ensurePortfolio(ctx, tx, key); err != nil {
		return model.DailyPortfolio{}, err
	}

	if fn != nil {
		if err := fn(tx, key); err != nil {
			return model.DailyPortfolio{}, err
		}
		_, err := tx.ExecContext(ctx, `UPDATE portfolios SET updated_at_unix_ms = ? WHERE day = ?`,
			s.now().UnixMilli(), key)
		if err != nil {
			return model.DailyPortfolio{}, fmt.Errorf("failed to touch portfolio: %w", err)
		}
	}

	p, err := loadPortfolio(ctx, tx, key)
	if err != nil {
		return model.DailyPortfolio{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.DailyPortfolio{}, fmt.Errorf("failed to commit portfolio: %w", err)
	}
	return p, nil
}

func (s *Store) ensurePortfolio(ctx context.Context, tx *sql.Tx, key string) error {
	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO portfolios (day, updated_at_unix_ms) VALUES (?, ?)
	`, key, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	if n == 0 {
		return nil
	}

	for i, c := range model.NewDailyPortfolio(key).Categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO portfolio_categories (day, category_id, label, icon, position)
			VALUES (?, ?, ?, ?, ?)
		`, key, c.ID, c.Label, c.Icon, i)
		if err != nil {
			return fmt.Errorf("failed to create category %s: %w", c.ID, err)
		}
	}
	s.logger.Debug("portfolio created", "day", key)
	return nil
}

func loadPortfolio(ctx context.Context, q querier, key string) (model.DailyPortfolio, error) {
	var (
		rating sql.NullInt64
		notes  string
	)
	err := q.QueryRowContext(ctx, `SELECT rating, notes FROM portfolios WHERE day = ?`, key).Scan(&rating, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DailyPortfolio{}, fmt.Errorf("%w: portfolio %s", ErrNotFound, key)
	}
	if err != nil {
		return model.DailyPortfolio{}, fmt.Errorf("failed to load portfolio: %w", err)
	}

	p := model.DailyPortfolio{Date: key, Notes: notes, Categories: []model.PortfolioCategory{}}
	if rating.Valid {
		r := int(rating.Int64)
		p.GoodDayRating = &r
	}

	rows, err := q.QueryContext(ctx, `
		SELECT category_id, label, icon, completed, inferred
		FROM portfolio_categories WHERE day = ? ORDER BY position
	`, key)
	if err != nil {
		return model.DailyPortfolio{}, fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.PortfolioCategory
		if err := rows.Scan(&c.ID, &c.Label, &c.Icon, &c.Completed, &c.Inferred); err != nil {
			return model.DailyPortfolio{}, fmt.Errorf("failed to scan category: %w", err)
		}
		p.Categories = append(p.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return model.DailyPortfolio{}, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return p, nil
}
