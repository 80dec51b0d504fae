package privacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/labinsight-api/internal/domain/chat"
	"github.com/labinsight/labinsight-api/internal/domain/files"
	"github.com/labinsight/labinsight-api/internal/domain/profile"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

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

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *chat.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepo) Recent(ctx context.Context, userID string, analysisID *report.ResultID, limit int) ([]*chat.Message, error) {
	args := m.Called(ctx, userID, analysisID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Message), args.Error(1)
}

func (m *mockMessageRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepo) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockFileRepo struct {
	mock.Mock
}

func (m *mockFileRepo) Save(ctx context.Context, f *files.UploadedFile) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFileRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*files.UploadedFile, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*files.UploadedFile), args.Error(1)
}

func (m *mockFileRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *mockProfileRepo) Upsert(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProfileRepo) ListRetention(ctx context.Context) ([]*profile.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*profile.Profile), args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestDeleteAllData_CountsAndScoping(t *testing.T) {
	results := new(mockResultRepo)
	messages := new(mockMessageRepo)
	fileRepo := new(mockFileRepo)

	// every statement carries the calling user's id
	messages.On("DeleteByUser", mock.Anything, "u1").Return(int64(7), nil)
	results.On("DeleteByUser", mock.Anything, "u1").Return(int64(3), nil)
	fileRepo.On("DeleteByUser", mock.Anything, "u1").Return(int64(2), nil)

	svc := &Service{Results: results, Messages: messages, Files: fileRepo}
	rep, err := svc.DeleteAllData(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.AnalysesDeleted)
	assert.Equal(t, int64(7), rep.MessagesDeleted)
	assert.Equal(t, int64(2), rep.FilesDeleted)

	results.AssertExpectations(t)
	messages.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
}

func TestDeleteAllData_MessagesBeforeResults(t *testing.T) {
	results := new(mockResultRepo)
	messages := new(mockMessageRepo)

	var order []string
	messages.On("DeleteByUser", mock.Anything, "u1").
		Run(func(mock.Arguments) { order = append(order, "messages") }).
		Return(int64(1), nil)
	results.On("DeleteByUser", mock.Anything, "u1").
		Run(func(mock.Arguments) { order = append(order, "results") }).
		Return(int64(1), nil)

	svc := &Service{Results: results, Messages: messages}
	_, err := svc.DeleteAllData(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"messages", "results"}, order)
}

func TestDeleteAllData_StopsOnError(t *testing.T) {
	results := new(mockResultRepo)
	messages := new(mockMessageRepo)

	messages.On("DeleteByUser", mock.Anything, "u1").Return(int64(0), errors.New("db down"))

	svc := &Service{Results: results, Messages: messages}
	_, err := svc.DeleteAllData(context.Background(), "u1")
	require.Error(t, err)
	results.AssertNotCalled(t, "DeleteByUser")
}

func TestSweepExpired_PerUserCutoff(t *testing.T) {
	results := new(mockResultRepo)
	messages := new(mockMessageRepo)
	profiles := new(mockProfileRepo)

	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	profiles.On("ListRetention", mock.Anything).Return([]*profile.Profile{
		{UserID: "u1", PrivacyMode: true, AutoDeleteDays: 30},
		{UserID: "u2", PrivacyMode: true, AutoDeleteDays: 7},
	}, nil)

	cutoff1 := now.AddDate(0, 0, -30)
	cutoff2 := now.AddDate(0, 0, -7)
	messages.On("DeleteOlderThan", mock.Anything, "u1", cutoff1).Return(int64(2), nil)
	results.On("DeleteOlderThan", mock.Anything, "u1", cutoff1).Return(int64(1), nil)
	messages.On("DeleteOlderThan", mock.Anything, "u2", cutoff2).Return(int64(0), nil)
	results.On("DeleteOlderThan", mock.Anything, "u2", cutoff2).Return(int64(0), nil)

	svc := &Service{Results: results, Messages: messages, Profiles: profiles, Clock: fixedClock{t: now}}
	svc.SweepExpired(context.Background())

	messages.AssertExpectations(t)
	results.AssertExpectations(t)
}

func TestSweepExpired_OneFailureDoesNotStopOthers(t *testing.T) {
	results := new(mockResultRepo)
	messages := new(mockMessageRepo)
	profiles := new(mockProfileRepo)

	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	profiles.On("ListRetention", mock.Anything).Return([]*profile.Profile{
		{UserID: "u1", PrivacyMode: true, AutoDeleteDays: 30},
		{UserID: "u2", PrivacyMode: true, AutoDeleteDays: 30},
	}, nil)

	cutoff := now.AddDate(0, 0, -30)
	messages.On("DeleteOlderThan", mock.Anything, "u1", cutoff).Return(int64(0), errors.New("db down"))
	messages.On("DeleteOlderThan", mock.Anything, "u2", cutoff).Return(int64(1), nil)
	results.On("DeleteOlderThan", mock.Anything, "u2", cutoff).Return(int64(1), nil)

	svc := &Service{Results: results, Messages: messages, Profiles: profiles, Clock: fixedClock{t: now}}
	svc.SweepExpired(context.Background())

	// u1's results delete was skipped after its messages delete failed
	results.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, "u1", cutoff)
	messages.AssertExpectations(t)
	results.AssertExpectations(t)
}
