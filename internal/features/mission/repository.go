// Package mission — repository.go performs all operations on the
// missions and mission_completions tables. Daily counters are keyed on
// the UTC calendar day.
package mission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const missionColumns = `id, title, description, instructions, reward, type, content_url, duration, is_active, created_at, updated_at`

// GetActive returns an active mission or ErrMissionNotFound.
func (r *Repository) GetActive(ctx context.Context, missionID int64) (*Mission, error) {
	var m Mission
	err := r.db.QueryRow(ctx,
		`SELECT `+missionColumns+` FROM missions WHERE id = $1 AND is_active = TRUE`, missionID,
	).Scan(
		&m.ID, &m.Title, &m.Description, &m.Instructions, &m.Reward,
		&m.Type, &m.ContentURL, &m.Duration, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrMissionNotFound
		}
		return nil, fmt.Errorf("read mission (id=%d): %w", missionID, err)
	}
	return &m, nil
}

// ListAvailable returns active missions the user has not completed on
// the given day, capped at limit.
func (r *Repository) ListAvailable(ctx context.Context, userID int64, day time.Time, limit int) ([]*Mission, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+missionColumns+`
		FROM missions
		WHERE is_active = TRUE
		  AND id NOT IN (
			SELECT mission_id FROM mission_completions
			WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $2 + INTERVAL '1 day'
		  )
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, day, limit)
	if err != nil {
		return nil, fmt.Errorf("query available missions: %w", err)
	}
	defer rows.Close()
	return scanMissions(rows)
}

// CompletedToday reports whether the user already completed this
// mission on the given day.
func (r *Repository) CompletedToday(ctx context.Context, q postgres.Querier, userID, missionID int64, day time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM mission_completions
			WHERE user_id = $1 AND mission_id = $2
			  AND completed_at >= $3 AND completed_at < $3 + INTERVAL '1 day'
		)
	`, userID, missionID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return exists, nil
}

// CountToday counts the user's completions on the given day.
func (r *Repository) CountToday(ctx context.Context, q postgres.Querier, userID int64, day time.Time) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM mission_completions
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $2 + INTERVAL '1 day'
	`, userID, day).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}

// CreateCompletion appends a completion row with the reward snapshot.
func (r *Repository) CreateCompletion(ctx context.Context, q postgres.Querier, userID, missionID, reward int64, proof string, at time.Time) (*Completion, error) {
	var comp Completion
	err := q.QueryRow(ctx, `
		INSERT INTO mission_completions (user_id, mission_id, reward, proof, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, mission_id, reward, proof, completed_at
	`, userID, missionID, reward, proof, at).Scan(
		&comp.ID, &comp.UserID, &comp.MissionID, &comp.Reward, &comp.Proof, &comp.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}
	return &comp, nil
}

// History returns the user's completions, newest first.
func (r *Repository) History(ctx context.Context, userID int64, limit, offset int) ([]*Completion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, mission_id, reward, proof, completed_at
		FROM mission_completions
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var out []*Completion
	for rows.Next() {
		var comp Completion
		if err := rows.Scan(&comp.ID, &comp.UserID, &comp.MissionID, &comp.Reward, &comp.Proof, &comp.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, &comp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read completions: %w", err)
	}
	return out, nil
}

// UserStats aggregates today/week/month counters and total earnings.
func (r *Repository) UserStats(ctx context.Context, userID int64, day, weekStart, monthStart time.Time) (*Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE completed_at >= $2),
			COUNT(*) FILTER (WHERE completed_at >= $3),
			COUNT(*) FILTER (WHERE completed_at >= $4),
			COALESCE(SUM(reward), 0)
		FROM mission_completions
		WHERE user_id = $1
	`, userID, day, weekStart, monthStart).Scan(&s.Today, &s.ThisWeek, &s.ThisMonth, &s.TotalEarnings)
	if err != nil {
		return nil, fmt.Errorf("mission stats: %w", err)
	}
	return &s, nil
}

// Create adds a mission (admin surface).
func (r *Repository) Create(ctx context.Context, m *Mission) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO missions (title, description, instructions, reward, type, content_url, duration, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, m.Title, m.Description, m.Instructions, m.Reward, m.Type, m.ContentURL, m.Duration, m.IsActive).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create mission: %w", err)
	}
	return nil
}

// Update applies plain field updates (admin surface).
func (r *Repository) Update(ctx context.Context, m *Mission) error {
	_, err := r.db.Exec(ctx, `
		UPDATE missions
		SET title = $2, description = $3, instructions = $4, reward = $5,
		    type = $6, content_url = $7, duration = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
	`, m.ID, m.Title, m.Description, m.Instructions, m.Reward, m.Type, m.ContentURL, m.Duration, m.IsActive)
	if err != nil {
		return fmt.Errorf("update mission: %w", err)
	}
	return nil
}

func scanMissions(rows pgx.Rows) ([]*Mission, error) {
	var out []*Mission
	for rows.Next() {
		var m Mission
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.Instructions, &m.Reward,
			&m.Type, &m.ContentURL, &m.Duration, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read missions: %w", err)
	}
	return out, nil
}
