package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

func TestStorage_Courses(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(storage)

	owner := f.CreateUser(t, "owner@example.com")
	other := f.CreateUser(t, "other@example.com")

	b := f.CreateCourse(t, "B course", &owner.ID)
	a := f.CreateCourse(t, "A course", &owner.ID)
	f.CreateCourse(t, "C course", &other.ID)
	f.CreateLesson(t, a.ID, "first", &owner.ID)
	f.CreateLesson(t, a.ID, "second", &owner.ID)

	t.Run("list all ordered by title", func(t *testing.T) {
		courses, total, err := storage.ListCourses(ctx, nil, models.PageRequest{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, courses, 3)
		assert.Equal(t, "A course", courses[0].Title)
		assert.Equal(t, "B course", courses[1].Title)
	})

	t.Run("list filtered by owner", func(t *testing.T) {
		courses, total, err := storage.ListCourses(ctx, &owner.ID, models.PageRequest{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, courses, 2)
	})

	t.Run("lessons grouped by course", func(t *testing.T) {
		grouped, err := storage.LessonsByCourseIDs(ctx, []int64{a.ID, b.ID})
		require.NoError(t, err)
		assert.Len(t, grouped[a.ID], 2)
		assert.Empty(t, grouped[b.ID])
	})

	t.Run("update", func(t *testing.T) {
		before := b.UpdatedAt
		b.Title = "B course v2"
		require.NoError(t, storage.UpdateCourse(ctx, b))
		got, err := storage.GetCourse(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "B course v2", got.Title)
		assert.False(t, got.UpdatedAt.Before(before))
	})

	t.Run("update missing", func(t *testing.T) {
		err := storage.UpdateCourse(ctx, &models.Course{ID: 999999, Title: "x"})
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})
}

func TestStorage_DeleteCourseCascades(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(storage)

	user := f.CreateUser(t, "student@example.com")
	course := f.CreateCourse(t, "Doomed", nil)
	lesson := f.CreateLesson(t, course.ID, "Doomed lesson", nil)
	_, err := storage.CreateSubscription(ctx, user.ID, course.ID)
	require.NoError(t, err)

	payment := &models.Payment{
		UserID:        user.ID,
		TargetType:    models.TargetCourse,
		CourseID:      &course.ID,
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      "usd",
		PaymentMethod: models.PaymentMethodTransfer,
		Status:        models.PaymentStatusPending,
	}
	require.NoError(t, storage.CreatePayment(ctx, payment))

	require.NoError(t, storage.DeleteCourse(ctx, course.ID))

	_, err = storage.GetLesson(ctx, lesson.ID)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	subscribed, err := storage.IsSubscribed(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	got, err := storage.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CourseID)
	assert.Nil(t, got.LessonID)
	assert.Equal(t, models.TargetCourse, got.TargetType)

	assert.ErrorIs(t, storage.DeleteCourse(ctx, course.ID), errdefs.ErrNotFound)
}

func TestStorage_ClaimNotificationWindow(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(storage)

	course := f.CreateCourse(t, "Notified", nil)
	window := 4 * time.Hour
	now := time.Now().UTC()

	claimed, err := storage.ClaimNotificationWindow(ctx, course.ID, now, window)
	require.NoError(t, err)
	assert.True(t, claimed, "null stamp must be claimable")

	claimed, err = storage.ClaimNotificationWindow(ctx, course.ID, now.Add(time.Hour), window)
	require.NoError(t, err)
	assert.False(t, claimed, "stamp within window must not be claimable")

	claimed, err = storage.ClaimNotificationWindow(ctx, course.ID, now.Add(5*time.Hour), window)
	require.NoError(t, err)
	assert.True(t, claimed, "stamp older than window must be claimable")

	got, err := storage.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastNotificationAt)
	assert.WithinDuration(t, now.Add(5*time.Hour), *got.LastNotificationAt, time.Millisecond)

	claimed, err = storage.ClaimNotificationWindow(ctx, 999999, now, window)
	require.NoError(t, err)
	assert.False(t, claimed)
}
