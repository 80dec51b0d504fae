package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/labinsight/labinsight-api/internal/domain/report"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save inserts an analysis result record
func (r *ResultRepository) Save(ctx context.Context, a *domain.AnalysisResult) error {
	const q = `
INSERT INTO analysis_results
  (id, user_id, input_type, original_text, raw_output, structured_json, is_structured,
   risk_score, risk_level, user_age, user_gender, language, model, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  raw_output=VALUES(raw_output), structured_json=VALUES(structured_json),
  is_structured=VALUES(is_structured), risk_score=VALUES(risk_score), risk_level=VALUES(risk_level);
`
	var structured sql.NullString
	if a.Structured != nil {
		b, err := json.Marshal(a.Structured)
		if err != nil {
			return err
		}
		structured = sql.NullString{String: string(b), Valid: true}
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.UserID, a.InputType, a.OriginalText, a.RawOutput, structured, a.IsStructured,
		a.RiskScore, a.RiskLevel, nullInt(a.UserAge), nullStr(a.UserGender), a.Language, a.Model, createdAt,
	)
	return err
}

const resultColumns = `id, user_id, input_type, original_text, raw_output, structured_json, is_structured,
risk_score, risk_level, user_age, user_gender, language, model, created_at`

// Get returns one result scoped to its owner
func (r *ResultRepository) Get(ctx context.Context, userID string, id domain.ResultID) (*domain.AnalysisResult, error) {
	const q = `
SELECT ` + resultColumns + `
FROM analysis_results
WHERE user_id=? AND id=?
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, userID, id)
	a, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// Latest returns the most recent results for a user, newest first
func (r *ResultRepository) Latest(ctx context.Context, userID string, limit int) ([]*domain.AnalysisResult, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + resultColumns + `
FROM analysis_results
WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisResult
	for rows.Next() {
		a, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteByUser removes every result owned by the user (privacy action)
func (r *ResultRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM analysis_results WHERE user_id=?;`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOlderThan enforces a user's retention window
func (r *ResultRepository) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_results WHERE user_id=? AND created_at < ?;`, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.AnalysisResult, error) {
	var a domain.AnalysisResult
	var structured sql.NullString
	var age sql.NullInt64
	var gender sql.NullString
	var created time.Time
	if err := row.Scan(
		&a.ID, &a.UserID, &a.InputType, &a.OriginalText, &a.RawOutput, &structured, &a.IsStructured,
		&a.RiskScore, &a.RiskLevel, &age, &gender, &a.Language, &a.Model, &created,
	); err != nil {
		return nil, err
	}
	if structured.Valid {
		var s domain.StructuredAnalysis
		if err := json.Unmarshal([]byte(structured.String), &s); err == nil {
			a.Structured = &s
		}
	}
	a.UserAge = intPtr(age)
	a.UserGender = strPtr(gender)
	a.CreatedAt = created
	return &a, nil
}
