package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/labinsight/labinsight-api/internal/domain/report"
)

func newMock(t *testing.T) (*ResultRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResultRepository(db), mock
}

func TestResultRepository_Save(t *testing.T) {
	repo, mock := newMock(t)

	age := 40
	gender := "male"
	structured := &domain.StructuredAnalysis{Summary: "ok", RiskScore: 80, RiskLevel: domain.RiskLow}
	rec := &domain.AnalysisResult{
		ID:           "r1",
		UserID:       "u1",
		InputType:    domain.InputManual,
		OriginalText: "Hb 13.5",
		RawOutput:    `{"summary":"ok"}`,
		Structured:   structured,
		IsStructured: true,
		RiskScore:    80,
		RiskLevel:    domain.RiskLow,
		UserAge:      &age,
		UserGender:   &gender,
		Language:     domain.LanguageEnglish,
		Model:        "gpt-4o-mini",
		CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO analysis_results`).
		WithArgs(
			rec.ID, rec.UserID, rec.InputType, rec.OriginalText, rec.RawOutput,
			sqlmock.AnyArg(), rec.IsStructured, rec.RiskScore, rec.RiskLevel,
			int64(age), gender, rec.Language, rec.Model, rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_GetScopedToOwner(t *testing.T) {
	repo, mock := newMock(t)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "input_type", "original_text", "raw_output", "structured_json",
		"is_structured", "risk_score", "risk_level", "user_age", "user_gender",
		"language", "model", "created_at",
	}).AddRow(
		"r1", "u1", "manual", "Hb 13.5", `{"summary":"ok"}`, `{"summary":"ok","riskScore":80,"riskLevel":"low"}`,
		true, 80, "low", nil, nil, "en", "gpt-4o-mini", created,
	)

	mock.ExpectQuery(`SELECT .+ FROM analysis_results WHERE user_id=\? AND id=\?`).
		WithArgs("u1", "r1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u1", "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ResultID("r1"), got.ID)
	require.NotNil(t, got.Structured)
	assert.Equal(t, 80, got.Structured.RiskScore)
	assert.Nil(t, got.UserAge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_GetMissingReturnsNil(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM analysis_results`).
		WithArgs("u1", "gone").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.Get(context.Background(), "u1", "gone")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultRepository_Latest(t *testing.T) {
	repo, mock := newMock(t)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "input_type", "original_text", "raw_output", "structured_json",
		"is_structured", "risk_score", "risk_level", "user_age", "user_gender",
		"language", "model", "created_at",
	}).
		AddRow("r2", "u1", "manual", "t2", "raw2", nil, false, 50, "medium", nil, nil, "ar", "gpt-4o-mini", created).
		AddRow("r1", "u1", "manual", "t1", "raw1", nil, false, 50, "medium", nil, nil, "ar", "gpt-4o-mini", created.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .+ FROM analysis_results WHERE user_id=\? ORDER BY created_at DESC`).
		WithArgs("u1", 20).
		WillReturnRows(rows)

	// limit <= 0 falls back to the default page size
	got, err := repo.Latest(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ResultID("r2"), got[0].ID)
	assert.Nil(t, got[0].Structured)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_DeleteByUser(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM analysis_results WHERE user_id=\?`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_DeleteOlderThan(t *testing.T) {
	repo, mock := newMock(t)

	cutoff := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM analysis_results WHERE user_id=\? AND created_at <`).
		WithArgs("u1", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteOlderThan(context.Background(), "u1", cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
