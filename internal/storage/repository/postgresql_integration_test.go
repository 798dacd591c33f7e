package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-platform/internal/models"
)

func strPtr(s string) *string { return &s }

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	id := factory.CreateUser(t, "Student@Example.com", false)

	t.Run("email is case-insensitive and unique", func(t *testing.T) {
		u, err := storage.GetUserByEmail(ctx, "student@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.True(t, u.IsActive)

		_, err = storage.CreateUser(ctx, &models.User{Email: "student@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		u, err := storage.UpdateUser(ctx, id, models.UserUpdate{City: strPtr("Kazan")})
		require.NoError(t, err)
		assert.Equal(t, "Kazan", u.City)
		assert.Equal(t, "Test", u.FirstName)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := storage.GetUser(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list users is paged", func(t *testing.T) {
		factory.CreateUser(t, "second@example.com", false)
		items, total, err := storage.ListUsers(ctx, models.Page{Number: 1, Size: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)
	})

	t.Run("deactivate inactive users", func(t *testing.T) {
		require.NoError(t, storage.TouchLastLogin(ctx, id, time.Now().Add(-40*24*time.Hour)))
		fresh := factory.CreateUser(t, "fresh@example.com", false)
		require.NoError(t, storage.TouchLastLogin(ctx, fresh, time.Now()))

		n, err := storage.DeactivateInactiveUsers(ctx, time.Now().Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		u, err := storage.GetUser(ctx, id)
		require.NoError(t, err)
		assert.False(t, u.IsActive)
	})
}

func TestStorage_CoursesAndLessons(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	owner := factory.CreateUser(t, "owner@example.com", false)
	other := factory.CreateUser(t, "other@example.com", false)
	c1 := factory.CreateCourse(t, "Go", owner)
	factory.CreateCourse(t, "Rust", owner)
	factory.CreateCourse(t, "SQL", other)

	t.Run("list scoped by owner with pagination", func(t *testing.T) {
		items, total, err := storage.ListCourses(ctx, &owner, models.Page{Number: 1, Size: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, items, 1)
		assert.Equal(t, c1.ID, items[0].ID)

		_, total, err = storage.ListCourses(ctx, nil, models.Page{Number: 1, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("update does not move updated_at", func(t *testing.T) {
		before, err := storage.GetCourse(ctx, c1.ID)
		require.NoError(t, err)

		updated, err := storage.UpdateCourse(ctx, c1.ID, models.CoursePatch{Title: strPtr("Go 2")})
		require.NoError(t, err)
		assert.Equal(t, "Go 2", updated.Title)
		assert.Equal(t, before.Description, updated.Description)
		assert.True(t, before.UpdatedAt.Equal(updated.UpdatedAt))

		mark := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
		require.NoError(t, storage.SetCourseUpdatedAt(ctx, c1.ID, mark))
		after, err := storage.GetCourse(ctx, c1.ID)
		require.NoError(t, err)
		assert.True(t, mark.Equal(after.UpdatedAt))
	})

	t.Run("lessons belong to a course", func(t *testing.T) {
		l := factory.CreateLesson(t, "intro", c1.ID, owner)
		lessons, err := storage.ListCourseLessons(ctx, c1.ID)
		require.NoError(t, err)
		require.Len(t, lessons, 1)
		assert.Equal(t, l.ID, lessons[0].ID)

		_, err = storage.CreateLesson(ctx, models.LessonInput{
			Title: "x", Description: "x", VideoLink: "https://youtube.com/x", CourseID: 9999,
		}, owner)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete cascades lessons", func(t *testing.T) {
		require.NoError(t, storage.DeleteCourse(ctx, c1.ID))
		lessons, err := storage.ListCourseLessons(ctx, c1.ID)
		require.NoError(t, err)
		assert.Empty(t, lessons)
		assert.ErrorIs(t, storage.DeleteCourse(ctx, c1.ID), ErrNotFound)
	})
}

func TestStorage_Subscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	u1 := factory.CreateUser(t, "u1@example.com", false)
	u2 := factory.CreateUser(t, "u2@example.com", false)
	course := factory.CreateCourse(t, "Go", u1)

	_, err := storage.CreateSubscription(ctx, u1, course.ID)
	require.NoError(t, err)
	_, err = storage.CreateSubscription(ctx, u2, course.ID)
	require.NoError(t, err)

	_, err = storage.CreateSubscription(ctx, u1, course.ID)
	assert.ErrorIs(t, err, ErrConflict)

	emails, err := storage.ListSubscriberEmails(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1@example.com", "u2@example.com"}, emails)

	sub, err := storage.GetSubscription(ctx, u1, course.ID)
	require.NoError(t, err)
	require.NoError(t, storage.DeleteSubscription(ctx, sub.ID))

	ok, err := storage.IsSubscribed(ctx, u1, course.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = storage.GetSubscription(ctx, u1, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_Payments(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	u := factory.CreateUser(t, "payer@example.com", false)
	course := factory.CreateCourse(t, "Go", u)
	first := factory.CreateCashPayment(t, u, course.ID, "10.50")
	second := factory.CreateCashPayment(t, u, course.ID, "20.00")

	p, err := storage.GetPayment(ctx, first)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.50").Equal(p.Amount))
	assert.Equal(t, models.PaymentStatusPending, p.GatewayStatus)

	list, err := storage.ListPayments(ctx, models.PaymentFilter{UserID: &u}, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID, "newest first by default")

	method := models.PaymentMethodTransfer
	list, err = storage.ListPayments(ctx, models.PaymentFilter{Method: &method}, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, storage.UpdatePaymentStatus(ctx, first, "paid"))
	p, err = storage.GetPayment(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "paid", p.GatewayStatus)

	_, err = storage.CreatePayment(ctx, &models.Payment{
		UserID: u, Amount: decimal.NewFromInt(1), Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	lesson := factory.CreateLesson(t, "intro", course.ID, u)
	_, err = storage.CreatePayment(ctx, &models.Payment{
		UserID: u, CourseID: &course.ID, LessonID: &lesson.ID,
		Amount: decimal.NewFromInt(1), Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestStorage_DeletePurchasedTargets(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	u := factory.CreateUser(t, "buyer@example.com", false)
	course := factory.CreateCourse(t, "Go", u)
	lesson := factory.CreateLesson(t, "intro", course.ID, u)
	other := factory.CreateLesson(t, "advanced", course.ID, u)

	coursePayment := factory.CreateCashPayment(t, u, course.ID, "100.00")
	lessonPayment, err := storage.CreatePayment(ctx, &models.Payment{
		UserID: u, LessonID: &lesson.ID, Amount: decimal.NewFromInt(10), Method: models.PaymentMethodTransfer,
	})
	require.NoError(t, err)
	otherPayment, err := storage.CreatePayment(ctx, &models.Payment{
		UserID: u, LessonID: &other.ID, Amount: decimal.NewFromInt(15), Method: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	t.Run("delete purchased lesson keeps payment", func(t *testing.T) {
		require.NoError(t, storage.DeleteLesson(ctx, other.ID))

		p, err := storage.GetPayment(ctx, otherPayment)
		require.NoError(t, err)
		assert.Nil(t, p.LessonID)
		assert.Nil(t, p.CourseID)
	})

	t.Run("delete purchased course keeps payments", func(t *testing.T) {
		require.NoError(t, storage.DeleteCourse(ctx, course.ID))

		for _, id := range []int64{coursePayment, lessonPayment} {
			p, err := storage.GetPayment(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, p.CourseID)
			assert.Nil(t, p.LessonID)
		}
	})
}

func TestStorage_Intents(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	u := factory.CreateUser(t, "intent@example.com", false)
	course := factory.CreateCourse(t, "Go", u)

	key := uuid.NewString()
	require.NoError(t, storage.CreateIntent(ctx, &models.PaymentIntent{
		Key: key, UserID: u, ProductType: models.ProductCourse, ProductID: course.ID,
		Amount: decimal.RequireFromString("19.99"),
	}))
	require.NoError(t, storage.MarkIntentSessionCreated(ctx, key, "prod_1", "price_1", "cs_1", "https://pay/cs_1"))

	stale, err := storage.ListStaleIntents(ctx, models.IntentSessionCreated, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "cs_1", *stale[0].SessionID)

	payment := &models.Payment{
		UserID: u, CourseID: &course.ID, Amount: stale[0].Amount, Method: models.PaymentMethodGateway,
		GatewaySessionID: stale[0].SessionID, GatewayPaymentURL: stale[0].SessionURL,
	}
	id, err := storage.CompleteIntent(ctx, key, payment)
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = storage.CompleteIntent(ctx, key, payment)
	assert.ErrorIs(t, err, ErrConflict, "second completion must not duplicate the payment")

	in, err := storage.GetIntent(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, models.IntentCompleted, in.State)
	assert.Equal(t, id, *in.PaymentID)

	abandoned := uuid.NewString()
	require.NoError(t, storage.CreateIntent(ctx, &models.PaymentIntent{
		Key: abandoned, UserID: u, ProductType: models.ProductCourse, ProductID: course.ID, Amount: decimal.NewFromInt(5),
	}))
	n, err := storage.AbandonIntents(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
