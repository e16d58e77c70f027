package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/online-learning/internal/migrations"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_INTEGRATION_TESTS") == "true" {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory создаёт тестовые записи.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создаёт активного пользователя.
func (f *TestDataFactory) CreateUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash", FirstName: "Test", LastName: "User", IsActive: true}
	require.NoError(t, f.storage.CreateUser(context.Background(), u))
	return u
}

// CreateCourse создаёт курс владельца ownerID.
func (f *TestDataFactory) CreateCourse(t *testing.T, title string, ownerID *int64) *models.Course {
	t.Helper()
	c := &models.Course{Title: title, OwnerID: ownerID}
	require.NoError(t, f.storage.CreateCourse(context.Background(), c))
	return c
}

// CreateLesson создаёт урок курса.
func (f *TestDataFactory) CreateLesson(t *testing.T, courseID int64, title string, ownerID *int64) *models.Lesson {
	t.Helper()
	l := &models.Lesson{CourseID: courseID, Title: title, VideoURL: "https://youtu.be/abc", OwnerID: ownerID}
	require.NoError(t, f.storage.CreateLesson(context.Background(), l))
	return l
}
