package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/labinsight/labinsight-api/internal/domain/chat"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts one message. The log is append-only; there is no update path.
func (r *MessageRepository) Append(ctx context.Context, m *domain.Message) error {
	const q = `
INSERT INTO chat_messages
  (id, user_id, analysis_result_id, message_type, content, language, created_at)
VALUES (?,?,?,?,?,?,?);
`
	var analysisID sql.NullString
	if m.AnalysisResultID != nil {
		analysisID = sql.NullString{String: string(*m.AnalysisResultID), Valid: true}
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, m.ID, m.UserID, analysisID, m.Type, m.Content, m.Language, createdAt)
	return err
}

// Recent returns the newest messages for a user (optionally scoped to one
// analysis) in chronological order, oldest first.
func (r *MessageRepository) Recent(ctx context.Context, userID string, analysisID *report.ResultID, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = domain.HistoryWindow
	}

	q := `
SELECT id, user_id, analysis_result_id, message_type, content, language, created_at
FROM chat_messages
WHERE user_id=?`
	args := []any{userID}
	if analysisID != nil {
		q += ` AND analysis_result_id=?`
		args = append(args, string(*analysisID))
	}
	// seq is the table's auto-increment insertion counter; created_at
	// alone cannot break ties between the two writes of one exchange
	q += `
ORDER BY created_at DESC, seq DESC
LIMIT ?;`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		var aid sql.NullString
		var created time.Time
		if err := rows.Scan(&m.ID, &m.UserID, &aid, &m.Type, &m.Content, &m.Language, &created); err != nil {
			return nil, err
		}
		if aid.Valid {
			rid := report.ResultID(aid.String)
			m.AnalysisResultID = &rid
		}
		m.CreatedAt = created
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// query returns newest first; flip to chronological
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteByUser removes every message owned by the user (privacy action)
func (r *MessageRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id=?;`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOlderThan enforces a user's retention window
func (r *MessageRepository) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE user_id=? AND created_at < ?;`, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
