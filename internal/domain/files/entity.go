package files

import (
	"time"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// FileID identifier type
type FileID string

// UploadedFile records one stored report file. The object itself lives
// in the artifact store under StorageKey; ExtractedText is whatever the
// client-side OCR pulled out before upload.
type UploadedFile struct {
	ID               FileID           `json:"id"`
	UserID           string           `json:"user_id"`
	AnalysisResultID *report.ResultID `json:"analysis_result_id,omitempty"`
	FileName         string           `json:"file_name"`
	FileType         string           `json:"file_type"`
	FileSize         int64            `json:"file_size"`
	StorageKey       string           `json:"storage_key"`
	ExtractedText    string           `json:"extracted_text,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}
