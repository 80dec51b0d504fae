package analysis

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labinsight/labinsight-api/internal/application"
	domai "github.com/labinsight/labinsight-api/internal/domain/ai"
	"github.com/labinsight/labinsight-api/internal/domain/report"
	"github.com/labinsight/labinsight-api/internal/infra/ai/prompt"
)

// Service implements the report-analysis use case: prompt assembly,
// model invocation, strict decode with degraded fallback, and
// best-effort persistence for authenticated callers.
type Service struct {
	Gen     domai.Generator
	Results report.Repository
	Clock   application.Clock
	Model   string
}

// AnalyzeCommand is the explicit, immutable per-request input; no
// ambient session state leaks into the service contract.
type AnalyzeCommand struct {
	UserID     string // "" means demo mode, nothing is stored
	ReportText string
	InputType  string
	UserAge    *int
	UserGender *string
	Language   string
}

type AnalyzeResult struct {
	Analysis     report.StructuredAnalysis `json:"analysis"`
	ResultID     string                    `json:"resultId,omitempty"`
	IsStructured bool                      `json:"isStructured"`
}

func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*AnalyzeResult, error) {
	if strings.TrimSpace(cmd.ReportText) == "" {
		return nil, application.Validation("Report text is required")
	}

	lang := report.NormalizeLanguage(cmd.Language)
	inputType := report.InputManual
	if cmd.InputType == string(report.InputFile) {
		inputType = report.InputFile
	}

	imageURL, text, _ := report.ExtractImage(cmd.ReportText)

	raw, err := s.Gen.Generate(ctx, domai.Request{
		System:       prompt.AnalyzeSystemPrompt(lang, cmd.UserAge, cmd.UserGender),
		User:         prompt.AnalyzeUserPrompt(lang, text),
		ImageDataURL: imageURL,
		MaxTokens:    prompt.AnalyzeMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	analysis, structured := report.Decode(raw, lang)
	out := &AnalyzeResult{Analysis: analysis, IsStructured: structured}

	if cmd.UserID == "" {
		return out, nil
	}

	rec := &report.AnalysisResult{
		ID:           report.ResultID(uuid.New().String()),
		UserID:       cmd.UserID,
		InputType:    inputType,
		OriginalText: cmd.ReportText,
		RawOutput:    raw,
		IsStructured: structured,
		RiskScore:    analysis.RiskScore,
		RiskLevel:    analysis.RiskLevel,
		UserAge:      cmd.UserAge,
		UserGender:   cmd.UserGender,
		Language:     lang,
		Model:        s.Model,
		CreatedAt:    s.Clock.Now(),
	}
	if structured {
		a := analysis
		rec.Structured = &a
	}

	// The analysis is still returned when the write fails; the caller
	// just gets no resultId to chat against.
	if err := s.Results.Save(ctx, rec); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", cmd.UserID).Msg("failed to persist analysis result")
		return out, nil
	}
	out.ResultID = string(rec.ID)
	return out, nil
}

// History returns a user's stored analyses, newest first
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*report.AnalysisResult, error) {
	return s.Results.Latest(ctx, userID, limit)
}

// Get returns one stored analysis scoped to its owner
func (s *Service) Get(ctx context.Context, userID string, id report.ResultID) (*report.AnalysisResult, error) {
	return s.Results.Get(ctx, userID, id)
}
