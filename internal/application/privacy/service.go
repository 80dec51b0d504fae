package privacy

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/labinsight/labinsight-api/internal/application"
	"github.com/labinsight/labinsight-api/internal/domain/chat"
	"github.com/labinsight/labinsight-api/internal/domain/files"
	"github.com/labinsight/labinsight-api/internal/domain/profile"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// Service implements the user privacy actions: delete-everything and
// retention-window enforcement.
type Service struct {
	Results  report.Repository
	Messages chat.Repository
	Files    files.Repository
	Profiles profile.Repository
	Clock    application.Clock
}

type DeleteReport struct {
	AnalysesDeleted int64 `json:"analyses_deleted"`
	MessagesDeleted int64 `json:"messages_deleted"`
	FilesDeleted    int64 `json:"files_deleted"`
}

// DeleteAllData removes every record owned by the user. Chat messages go
// first so no message ever references a deleted analysis. Other users'
// rows are untouched by construction: every statement is user-scoped.
func (s *Service) DeleteAllData(ctx context.Context, userID string) (DeleteReport, error) {
	var rep DeleteReport

	n, err := s.Messages.DeleteByUser(ctx, userID)
	if err != nil {
		return rep, err
	}
	rep.MessagesDeleted = n

	n, err = s.Results.DeleteByUser(ctx, userID)
	if err != nil {
		return rep, err
	}
	rep.AnalysesDeleted = n

	if s.Files != nil {
		n, err = s.Files.DeleteByUser(ctx, userID)
		if err != nil {
			return rep, err
		}
		rep.FilesDeleted = n
	}
	return rep, nil
}

// SweepExpired enforces each user's auto-delete window. One user's
// failure does not stop the sweep for the rest.
func (s *Service) SweepExpired(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	profiles, err := s.Profiles.ListRetention(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("retention sweep: failed to list profiles")
		return
	}

	for _, p := range profiles {
		cutoff := s.Clock.Now().AddDate(0, 0, -p.AutoDeleteDays)

		msgs, err := s.Messages.DeleteOlderThan(ctx, p.UserID, cutoff)
		if err != nil {
			logger.Error().Err(err).Str("user_id", p.UserID).Msg("retention sweep: messages")
			continue
		}
		results, err := s.Results.DeleteOlderThan(ctx, p.UserID, cutoff)
		if err != nil {
			logger.Error().Err(err).Str("user_id", p.UserID).Msg("retention sweep: results")
			continue
		}
		if msgs > 0 || results > 0 {
			logger.Info().
				Str("user_id", p.UserID).
				Int64("messages", msgs).
				Int64("results", results).
				Msg("retention sweep removed expired records")
		}
	}
}
