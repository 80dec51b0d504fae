package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labinsight/labinsight-api/internal/application"
	domai "github.com/labinsight/labinsight-api/internal/domain/ai"
	"github.com/labinsight/labinsight-api/internal/domain/chat"
	"github.com/labinsight/labinsight-api/internal/domain/profile"
	"github.com/labinsight/labinsight-api/internal/domain/report"
	"github.com/labinsight/labinsight-api/internal/infra/ai/prompt"
)

// Service implements the follow-up assistant use case
type Service struct {
	Gen      domai.Generator
	Messages chat.Repository
	Results  report.Repository
	Profiles profile.Repository
	Clock    application.Clock
	// Pending mirrors each write's outcome so transcript readers can
	// distinguish stored messages from ones whose insert failed
	Pending *chat.PendingTracker
}

type ChatCommand struct {
	UserID           string // "" means demo mode, nothing is stored
	Message          string
	Language         string
	AnalysisResultID string
	History          []chat.Turn
}

func (s *Service) Send(ctx context.Context, cmd ChatCommand) (string, error) {
	if strings.TrimSpace(cmd.Message) == "" {
		return "", application.Validation("Message is required")
	}

	lang := report.NormalizeLanguage(cmd.Language)
	style := profile.StyleSimple
	if cmd.UserID != "" {
		p, err := s.Profiles.Get(ctx, cmd.UserID)
		switch {
		case err != nil:
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to load profile, using simple style")
		case p != nil:
			style = p.ExplanationStyle
		}
	}

	analysisContext, linkID := s.analysisContext(ctx, cmd)
	window := chat.Window(cmd.History, chat.HistoryWindow)

	reply, err := s.Gen.Generate(ctx, domai.Request{
		System:    prompt.ChatSystemPrompt(lang, style),
		User:      prompt.ChatUserPrompt(lang, analysisContext, window, cmd.Message),
		MaxTokens: prompt.ChatMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if cmd.UserID != "" {
		s.persistExchange(ctx, cmd.UserID, linkID, lang, cmd.Message, reply)
	}
	return reply, nil
}

// analysisContext embeds a prior stored analysis into the prompt, but
// only when the caller is authenticated and owns the record. Missing or
// foreign records are silently skipped, not errors.
func (s *Service) analysisContext(ctx context.Context, cmd ChatCommand) (string, *report.ResultID) {
	if cmd.UserID == "" || cmd.AnalysisResultID == "" {
		return "", nil
	}
	id := report.ResultID(cmd.AnalysisResultID)
	rec, err := s.Results.Get(ctx, cmd.UserID, id)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to load analysis context")
		return "", nil
	}
	if rec == nil {
		return "", nil
	}
	if rec.Structured != nil {
		b, err := json.MarshalIndent(rec.Structured, "", "  ")
		if err == nil {
			return string(b), &id
		}
	}
	return rec.RawOutput, &id
}

// persistExchange appends the user message then the assistant reply, in
// that order. Write failures are logged and swallowed; the reply has
// already been produced and is still returned.
func (s *Service) persistExchange(ctx context.Context, userID string, linkID *report.ResultID, lang report.Language, message, reply string) {
	userMsg := &chat.Message{
		ID:               chat.MessageID(uuid.New().String()),
		UserID:           userID,
		AnalysisResultID: linkID,
		Type:             chat.TypeUser,
		Content:          message,
		Language:         lang,
		CreatedAt:        s.Clock.Now(),
	}
	s.append(ctx, userMsg)

	assistantMsg := &chat.Message{
		ID:               chat.MessageID(uuid.New().String()),
		UserID:           userID,
		AnalysisResultID: linkID,
		Type:             chat.TypeAssistant,
		Content:          reply,
		Language:         lang,
		CreatedAt:        s.Clock.Now(),
	}
	s.append(ctx, assistantMsg)
}

// append writes one message through the pending tracker: added before
// the insert, committed on success, rolled back on failure.
func (s *Service) append(ctx context.Context, m *chat.Message) {
	if s.Pending != nil {
		s.Pending.Add(m.ID)
	}
	if err := s.Messages.Append(ctx, m); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("message_type", string(m.Type)).Msg("failed to persist chat message")
		if s.Pending != nil {
			s.Pending.Rollback(m.ID)
		}
		return
	}
	if s.Pending != nil {
		s.Pending.Commit(m.ID)
	}
}

// Recent returns the stored transcript for a user, oldest first
func (s *Service) Recent(ctx context.Context, userID string, analysisID *report.ResultID, limit int) ([]*chat.Message, error) {
	return s.Messages.Recent(ctx, userID, analysisID, limit)
}
