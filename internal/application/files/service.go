package files

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/labinsight/labinsight-api/internal/application"
	"github.com/labinsight/labinsight-api/internal/domain/files"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// Service stores uploaded report files: bytes go to the object store,
// metadata to the database.
type Service struct {
	Repo    files.Repository
	Objects files.ObjectStore
	Clock   application.Clock
}

type UploadCommand struct {
	UserID           string
	FileName         string
	ContentType      string
	Size             int64
	Body             io.Reader
	ExtractedText    string
	AnalysisResultID string
}

func (s *Service) Store(ctx context.Context, cmd UploadCommand) (*files.UploadedFile, error) {
	if cmd.UserID == "" {
		return nil, application.Validation("authentication required for file upload")
	}
	if cmd.FileName == "" || cmd.Body == nil {
		return nil, application.Validation("file is required")
	}

	id := files.FileID(uuid.New().String())
	key := fmt.Sprintf("%s/%s-%s", cmd.UserID, id, sanitizeName(cmd.FileName))

	if _, err := s.Objects.Put(ctx, key, cmd.ContentType, cmd.Body, cmd.Size); err != nil {
		return nil, err
	}

	f := &files.UploadedFile{
		ID:            id,
		UserID:        cmd.UserID,
		FileName:      cmd.FileName,
		FileType:      cmd.ContentType,
		FileSize:      cmd.Size,
		StorageKey:    key,
		ExtractedText: cmd.ExtractedText,
		CreatedAt:     s.Clock.Now(),
	}
	if cmd.AnalysisResultID != "" {
		rid := report.ResultID(cmd.AnalysisResultID)
		f.AnalysisResultID = &rid
	}
	if err := s.Repo.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListByUser returns a user's uploads, newest first
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*files.UploadedFile, error) {
	return s.Repo.ListByUser(ctx, userID, limit)
}

// sanitizeName keeps object keys flat and shell-safe
func sanitizeName(name string) string {
	base := filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
