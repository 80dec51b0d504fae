package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/labinsight/labinsight-api/internal/domain/files"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Save inserts an uploaded-file metadata record
func (r *FileRepository) Save(ctx context.Context, f *domain.UploadedFile) error {
	const q = `
INSERT INTO uploaded_files
  (id, user_id, analysis_result_id, file_name, file_type, file_size, storage_key, extracted_text, created_at)
VALUES (?,?,?,?,?,?,?,?,?);
`
	var analysisID sql.NullString
	if f.AnalysisResultID != nil {
		analysisID = sql.NullString{String: string(*f.AnalysisResultID), Valid: true}
	}
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		f.ID, f.UserID, analysisID, f.FileName, f.FileType, f.FileSize, f.StorageKey, f.ExtractedText, createdAt)
	return err
}

// ListByUser returns a user's uploads, newest first
func (r *FileRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.UploadedFile, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, analysis_result_id, file_name, file_type, file_size, storage_key, extracted_text, created_at
FROM uploaded_files
WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.UploadedFile
	for rows.Next() {
		var f domain.UploadedFile
		var aid sql.NullString
		var created time.Time
		if err := rows.Scan(&f.ID, &f.UserID, &aid, &f.FileName, &f.FileType,
			&f.FileSize, &f.StorageKey, &f.ExtractedText, &created); err != nil {
			return nil, err
		}
		if aid.Valid {
			rid := report.ResultID(aid.String)
			f.AnalysisResultID = &rid
		}
		f.CreatedAt = created
		out = append(out, &f)
	}
	return out, rows.Err()
}

// DeleteByUser removes a user's upload records (privacy action)
func (r *FileRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploaded_files WHERE user_id=?;`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
