package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) GetSubscription(ctx context.Context, userID, courseID int64) (*models.Subscription, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, userID, courseID int64) (int64, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) DeleteSubscription(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func int64Ptr(v int64) *int64 { return &v }

func TestToggle(t *testing.T) {
	actor := models.Actor{UserID: 7, Email: "s@example.com"}
	course := &models.Course{ID: 3, Title: "Go"}

	tests := []struct {
		name       string
		req        models.ToggleRequest
		setupMocks func(r *RepoMock)
		want       models.ToggleAction
		wantKind   apperr.Kind
		wantErr    bool
	}{
		{
			name: "subscribes when absent",
			req:  models.ToggleRequest{CourseID: int64Ptr(3)},
			setupMocks: func(r *RepoMock) {
				r.On("GetCourse", mock.Anything, int64(3)).Return(course, nil)
				r.On("GetSubscription", mock.Anything, int64(7), int64(3)).Return(nil, repository.ErrNotFound)
				r.On("CreateSubscription", mock.Anything, int64(7), int64(3)).Return(int64(11), nil)
			},
			want: models.SubscriptionAdded,
		},
		{
			name: "unsubscribes when present",
			req:  models.ToggleRequest{CourseID: int64Ptr(3)},
			setupMocks: func(r *RepoMock) {
				r.On("GetCourse", mock.Anything, int64(3)).Return(course, nil)
				r.On("GetSubscription", mock.Anything, int64(7), int64(3)).
					Return(&models.Subscription{ID: 11, UserID: 7, CourseID: 3}, nil)
				r.On("DeleteSubscription", mock.Anything, int64(11)).Return(nil)
			},
			want: models.SubscriptionRemoved,
		},
		{
			name: "already removed by a concurrent toggle",
			req:  models.ToggleRequest{CourseID: int64Ptr(3)},
			setupMocks: func(r *RepoMock) {
				r.On("GetCourse", mock.Anything, int64(3)).Return(course, nil)
				r.On("GetSubscription", mock.Anything, int64(7), int64(3)).
					Return(&models.Subscription{ID: 11}, nil)
				r.On("DeleteSubscription", mock.Anything, int64(11)).Return(repository.ErrNotFound)
			},
			want: models.SubscriptionRemoved,
		},
		{
			name:       "missing course id",
			req:        models.ToggleRequest{},
			setupMocks: func(_ *RepoMock) {},
			wantKind:   apperr.KindValidation,
			wantErr:    true,
		},
		{
			name:       "non-positive course id",
			req:        models.ToggleRequest{CourseID: int64Ptr(0)},
			setupMocks: func(_ *RepoMock) {},
			wantKind:   apperr.KindValidation,
			wantErr:    true,
		},
		{
			name: "unknown course",
			req:  models.ToggleRequest{CourseID: int64Ptr(99)},
			setupMocks: func(r *RepoMock) {
				r.On("GetCourse", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)
			},
			wantKind: apperr.KindNotFound,
			wantErr:  true,
		},
		{
			name: "concurrent create is a conflict",
			req:  models.ToggleRequest{CourseID: int64Ptr(3)},
			setupMocks: func(r *RepoMock) {
				r.On("GetCourse", mock.Anything, int64(3)).Return(course, nil)
				r.On("GetSubscription", mock.Anything, int64(7), int64(3)).Return(nil, repository.ErrNotFound)
				r.On("CreateSubscription", mock.Anything, int64(7), int64(3)).Return(int64(0), repository.ErrConflict)
			},
			wantKind: apperr.KindConflict,
			wantErr:  true,
		},
		{
			name: "storage failure",
			req:  models.ToggleRequest{CourseID: int64Ptr(3)},
			setupMocks: func(r *RepoMock) {
				r.On("GetCourse", mock.Anything, int64(3)).Return(course, nil)
				r.On("GetSubscription", mock.Anything, int64(7), int64(3)).Return(nil, errors.New("db down"))
			},
			wantKind: apperr.KindInternal,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			s := New(repo, newNoopLogger(), metrics.New(prometheus.NewRegistry()))

			got, err := s.Toggle(context.Background(), actor, tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestToggle_TwiceRestoresState(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetCourse", mock.Anything, int64(3)).Return(&models.Course{ID: 3}, nil)
	repo.On("GetSubscription", mock.Anything, int64(7), int64(3)).Return(nil, repository.ErrNotFound).Once()
	repo.On("CreateSubscription", mock.Anything, int64(7), int64(3)).Return(int64(5), nil).Once()
	repo.On("GetSubscription", mock.Anything, int64(7), int64(3)).Return(&models.Subscription{ID: 5}, nil).Once()
	repo.On("DeleteSubscription", mock.Anything, int64(5)).Return(nil).Once()

	s := New(repo, newNoopLogger(), metrics.New(prometheus.NewRegistry()))
	actor := models.Actor{UserID: 7}
	req := models.ToggleRequest{CourseID: int64Ptr(3)}

	first, err := s.Toggle(context.Background(), actor, req)
	require.NoError(t, err)
	second, err := s.Toggle(context.Background(), actor, req)
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionAdded, first)
	assert.Equal(t, models.SubscriptionRemoved, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.SubscriptionToggles.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.SubscriptionToggles.WithLabelValues("removed")))
	repo.AssertExpectations(t)
}
