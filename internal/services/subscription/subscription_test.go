package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) DeleteSubscription(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

// memRepo хранит подписки в памяти для проверки свойства двойного переключения.
type memRepo struct {
	subs map[[2]int64]bool
}

func (r *memRepo) GetCourse(_ context.Context, id int64) (*models.Course, error) {
	return &models.Course{ID: id}, nil
}

func (r *memRepo) CreateSubscription(_ context.Context, userID, courseID int64) (bool, error) {
	k := [2]int64{userID, courseID}
	if r.subs[k] {
		return false, nil
	}
	r.subs[k] = true
	return true, nil
}

func (r *memRepo) DeleteSubscription(_ context.Context, userID, courseID int64) (bool, error) {
	k := [2]int64{userID, courseID}
	if !r.subs[k] {
		return false, nil
	}
	delete(r.subs, k)
	return true, nil
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *RepoMock)
		want    models.ToggleResult
		wantErr error
	}{
		{
			name: "subscribes when absent",
			setup: func(m *RepoMock) {
				m.On("GetCourse", mock.Anything, int64(3)).Return(&models.Course{ID: 3}, nil)
				m.On("DeleteSubscription", mock.Anything, int64(1), int64(3)).Return(false, nil)
				m.On("CreateSubscription", mock.Anything, int64(1), int64(3)).Return(true, nil)
			},
			want: models.ToggleResult{Message: "subscription added", CourseID: 3, IsSubscribed: true},
		},
		{
			name: "unsubscribes when present",
			setup: func(m *RepoMock) {
				m.On("GetCourse", mock.Anything, int64(3)).Return(&models.Course{ID: 3}, nil)
				m.On("DeleteSubscription", mock.Anything, int64(1), int64(3)).Return(true, nil)
			},
			want: models.ToggleResult{Message: "subscription removed", CourseID: 3, IsSubscribed: false},
		},
		{
			name: "racing insert still reports subscribed",
			setup: func(m *RepoMock) {
				m.On("GetCourse", mock.Anything, int64(3)).Return(&models.Course{ID: 3}, nil)
				m.On("DeleteSubscription", mock.Anything, int64(1), int64(3)).Return(false, nil)
				m.On("CreateSubscription", mock.Anything, int64(1), int64(3)).Return(false, nil)
			},
			want: models.ToggleResult{Message: "subscription added", CourseID: 3, IsSubscribed: true},
		},
		{
			name: "missing course",
			setup: func(m *RepoMock) {
				m.On("GetCourse", mock.Anything, int64(3)).Return(nil, errdefs.ErrNotFound)
			},
			wantErr: errdefs.ErrNotFound,
		},
		{
			name: "storage error",
			setup: func(m *RepoMock) {
				m.On("GetCourse", mock.Anything, int64(3)).Return(&models.Course{ID: 3}, nil)
				m.On("DeleteSubscription", mock.Anything, int64(1), int64(3)).Return(false, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			got, err := NewService(repo).Toggle(context.Background(), 1, 3)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestToggle_TwiceRestoresState(t *testing.T) {
	repo := &memRepo{subs: map[[2]int64]bool{}}
	svc := NewService(repo)

	first, err := svc.Toggle(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, first.IsSubscribed)

	second, err := svc.Toggle(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.False(t, second.IsSubscribed)
	assert.Empty(t, repo.subs)
}
