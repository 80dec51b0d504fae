package report

import (
	"context"
	"time"
)

// Repository port (interface for persistence)
type Repository interface {
	Save(ctx context.Context, r *AnalysisResult) error
	Get(ctx context.Context, userID string, id ResultID) (*AnalysisResult, error)
	Latest(ctx context.Context, userID string, limit int) ([]*AnalysisResult, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}
