package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/lms-platform/internal/migrations"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, email string, moderator bool) int64 {
	id, err := f.storage.CreateUser(context.Background(), &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		IsModerator:  moderator,
		IsActive:     true,
	})
	require.NoError(t, err)
	return id
}

// CreateCourse создает тестовый курс
func (f *TestDataFactory) CreateCourse(t *testing.T, title string, ownerID int64) *models.Course {
	c, err := f.storage.CreateCourse(context.Background(), models.CourseInput{
		Title:       title,
		Description: "description of " + title,
	}, ownerID)
	require.NoError(t, err)
	return c
}

// CreateLesson создает тестовый урок
func (f *TestDataFactory) CreateLesson(t *testing.T, title string, courseID, ownerID int64) *models.Lesson {
	l, err := f.storage.CreateLesson(context.Background(), models.LessonInput{
		Title:       title,
		Description: "lesson " + title,
		VideoLink:   "https://www.youtube.com/watch?v=abc",
		CourseID:    courseID,
	}, ownerID)
	require.NoError(t, err)
	return l
}

// CreateCashPayment создает тестовый платёж наличными за курс
func (f *TestDataFactory) CreateCashPayment(t *testing.T, userID, courseID int64, amount string) int64 {
	id, err := f.storage.CreatePayment(context.Background(), &models.Payment{
		UserID:   userID,
		CourseID: &courseID,
		Amount:   decimal.RequireFromString(amount),
		Method:   models.PaymentMethodCash,
	})
	require.NoError(t, err)
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
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
		storage, err = New(ctx, connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
