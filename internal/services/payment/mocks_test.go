package payment

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/paymentprovider"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *RepoMock) CreatePayment(ctx context.Context, p *models.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *RepoMock) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *RepoMock) ListPayments(ctx context.Context, f models.PaymentFilter, limit int) ([]*models.Payment, error) {
	args := m.Called(ctx, f, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *RepoMock) CreateIntent(ctx context.Context, in *models.PaymentIntent) error {
	return m.Called(ctx, in).Error(0)
}

func (m *RepoMock) MarkIntentSessionCreated(ctx context.Context, key, productRef, priceRef, sessionID, sessionURL string) error {
	return m.Called(ctx, key, productRef, priceRef, sessionID, sessionURL).Error(0)
}

func (m *RepoMock) FailIntent(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *RepoMock) CompleteIntent(ctx context.Context, key string, p *models.Payment) (int64, error) {
	args := m.Called(ctx, key, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListStaleIntents(ctx context.Context, state models.IntentState, before time.Time, limit int) ([]*models.PaymentIntent, error) {
	args := m.Called(ctx, state, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PaymentIntent), args.Error(1)
}

func (m *RepoMock) AbandonIntents(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateProduct(ctx context.Context, name, description string) (*paymentprovider.Product, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Product), args.Error(1)
}

func (m *GatewayMock) CreatePrice(ctx context.Context, productID string, amount decimal.Decimal, currency string) (*paymentprovider.Price, error) {
	args := m.Called(ctx, productID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Price), args.Error(1)
}

func (m *GatewayMock) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string, metadata map[string]string) (*paymentprovider.Session, error) {
	args := m.Called(ctx, priceID, successURL, cancelURL, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Session), args.Error(1)
}

func (m *GatewayMock) GetSessionStatus(ctx context.Context, sessionID string) (*paymentprovider.SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SessionStatus), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, gw *GatewayMock) *Service {
	return New(repo, gw, "rub", newNoopLogger(), metrics.New(prometheus.NewRegistry()))
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string  { return &v }
