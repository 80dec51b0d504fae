package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domai "github.com/labinsight/labinsight-api/internal/domain/ai"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req domai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockResultRepo struct {
	mock.Mock
}

func (m *mockResultRepo) Save(ctx context.Context, r *report.AnalysisResult) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockResultRepo) Get(ctx context.Context, userID string, id report.ResultID) (*report.AnalysisResult, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.AnalysisResult), args.Error(1)
}

func (m *mockResultRepo) Latest(ctx context.Context, userID string, limit int) ([]*report.AnalysisResult, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.AnalysisResult), args.Error(1)
}

func (m *mockResultRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockResultRepo) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

const structuredOutput = `{"summary":"Looks healthy.","riskScore":82,"riskLevel":"low","testResults":[],"abnormalValues":[],"suggestions":[],"recommendedTests":[]}`

func newService(gen *mockGenerator, repo *mockResultRepo) *Service {
	return &Service{
		Gen:     gen,
		Results: repo,
		Clock:   fixedClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		Model:   "gpt-4o-mini",
	}
}

func TestAnalyze_EmptyReportText(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := svc.Analyze(context.Background(), AnalyzeCommand{UserID: "u1", ReportText: text})
		require.Error(t, err)
		assert.Equal(t, "Report text is required", err.Error())
		assert.Nil(t, res)
	}
	gen.AssertNotCalled(t, "Generate")
	repo.AssertNotCalled(t, "Save")
}

func TestAnalyze_StructuredPersisted(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req domai.Request) bool {
		return req.MaxTokens == 2048 && req.ImageDataURL == ""
	})).Return(structuredOutput, nil)

	var saved *report.AnalysisResult
	repo.On("Save", mock.Anything, mock.AnythingOfType("*report.AnalysisResult")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*report.AnalysisResult) }).
		Return(nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{
		UserID:     "u1",
		ReportText: "Hb 13.5 g/dL",
		Language:   "en",
	})
	require.NoError(t, err)
	assert.True(t, res.IsStructured)
	assert.NotEmpty(t, res.ResultID)
	assert.Equal(t, 82, res.Analysis.RiskScore)

	require.NotNil(t, saved)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, report.LanguageEnglish, saved.Language)
	assert.Equal(t, structuredOutput, saved.RawOutput)
	assert.NotNil(t, saved.Structured)
	assert.Equal(t, string(saved.ID), res.ResultID)
	assert.Equal(t, svc.Clock.Now(), saved.CreatedAt)
}

func TestAnalyze_DemoModeSkipsPersistence(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	gen.On("Generate", mock.Anything, mock.Anything).Return(structuredOutput, nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{ReportText: "Hb 13.5"})
	require.NoError(t, err)
	assert.True(t, res.IsStructured)
	assert.Empty(t, res.ResultID)
	repo.AssertNotCalled(t, "Save")
}

func TestAnalyze_UpstreamError(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	gen.On("Generate", mock.Anything, mock.Anything).Return("", domai.ErrUpstream)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{UserID: "u1", ReportText: "Hb 13.5"})
	require.ErrorIs(t, err, domai.ErrUpstream)
	assert.Nil(t, res)
	repo.AssertNotCalled(t, "Save")
}

func TestAnalyze_ProseFallsBackAndStillPersists(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	gen.On("Generate", mock.Anything, mock.Anything).Return("Everything looks fine overall.", nil)

	var saved *report.AnalysisResult
	repo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*report.AnalysisResult) }).
		Return(nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{UserID: "u1", ReportText: "Hb 13.5", Language: "en"})
	require.NoError(t, err)
	assert.False(t, res.IsStructured)
	assert.Equal(t, "Everything looks fine overall.", res.Analysis.Summary)
	assert.Equal(t, 50, res.Analysis.RiskScore)
	require.Len(t, res.Analysis.Suggestions, 1)

	require.NotNil(t, saved)
	assert.False(t, saved.IsStructured)
	assert.Nil(t, saved.Structured)
}

func TestAnalyze_PersistFailureSwallowed(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	gen.On("Generate", mock.Anything, mock.Anything).Return(structuredOutput, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{UserID: "u1", ReportText: "Hb 13.5"})
	require.NoError(t, err)
	assert.True(t, res.IsStructured)
	// analysis survives, only the handle to chat against is missing
	assert.Empty(t, res.ResultID)
}

func TestAnalyze_ImageMarkerForwarded(t *testing.T) {
	gen := new(mockGenerator)
	repo := new(mockResultRepo)
	svc := newService(gen, repo)

	var got domai.Request
	gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(domai.Request) }).
		Return(structuredOutput, nil)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		ReportText: "[IMAGE]data:image/png;base64,AAAA\nGlucose 95",
		Language:   "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", got.ImageDataURL)
	assert.Contains(t, got.User, "Glucose 95")
	assert.NotContains(t, got.User, "[IMAGE]")
}
