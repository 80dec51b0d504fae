package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/labinsight/labinsight-api/internal/domain/profile"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the stored profile, or nil when the user never saved one
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	const q = `
SELECT user_id, preferred_language, preferred_explanation_style, privacy_mode, auto_delete_days, updated_at
FROM profiles
WHERE user_id=?
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// Upsert writes the whole profile row
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	const q = `
INSERT INTO profiles
  (user_id, preferred_language, preferred_explanation_style, privacy_mode, auto_delete_days, updated_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  preferred_language=VALUES(preferred_language),
  preferred_explanation_style=VALUES(preferred_explanation_style),
  privacy_mode=VALUES(privacy_mode),
  auto_delete_days=VALUES(auto_delete_days),
  updated_at=VALUES(updated_at);
`
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	// auto_delete_days is stored as sent; 0 means auto-deletion is off
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, p.PreferredLanguage, p.ExplanationStyle, p.PrivacyMode, p.AutoDeleteDays, updated)
	return err
}

// ListRetention returns the users the sweep applies to: privacy mode on
// and a positive auto-delete window
func (r *ProfileRepository) ListRetention(ctx context.Context) ([]*domain.Profile, error) {
	const q = `
SELECT user_id, preferred_language, preferred_explanation_style, privacy_mode, auto_delete_days, updated_at
FROM profiles
WHERE privacy_mode=TRUE AND auto_delete_days > 0;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var updated time.Time
	if err := row.Scan(&p.UserID, &p.PreferredLanguage, &p.ExplanationStyle,
		&p.PrivacyMode, &p.AutoDeleteDays, &updated); err != nil {
		return nil, err
	}
	p.UpdatedAt = updated
	return &p, nil
}
