package chat

import (
	"context"
	"time"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// Repository port (interface for persistence)
type Repository interface {
	Append(ctx context.Context, m *Message) error
	Recent(ctx context.Context, userID string, analysisID *report.ResultID, limit int) ([]*Message, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}
