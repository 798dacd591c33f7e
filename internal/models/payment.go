package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod: способ оплаты.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodGateway  PaymentMethod = "gateway"
)

// Valid сообщает, известен ли способ оплаты.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodGateway:
		return true
	}
	return false
}

// PaymentStatusPending: статус платежа через провайдера до первой сверки.
const PaymentStatusPending = "pending"

// ProductType: тип оплачиваемого материала.
type ProductType string

const (
	ProductCourse ProductType = "course"
	ProductLesson ProductType = "lesson"
)

// Payment: платёж пользователя за курс либо урок (ровно одно из двух).
type Payment struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user"`
	PaymentDate       time.Time       `json:"payment_date"`
	CourseID          *int64          `json:"course"`
	LessonID          *int64          `json:"lesson"`
	Amount            decimal.Decimal `json:"amount"`
	Method            PaymentMethod   `json:"payment_method"`
	GatewayProductID  *string         `json:"gateway_product_id"`
	GatewayPriceID    *string         `json:"gateway_price_id"`
	GatewaySessionID  *string         `json:"gateway_session_id"`
	GatewayStatus     string          `json:"gateway_payment_status"`
	GatewayPaymentURL *string         `json:"gateway_payment_url"`
}

// GatewayPaymentRequest: запрос на оплату через платёжного провайдера.
type GatewayPaymentRequest struct {
	CourseID      *int64          `json:"course_id" validate:"omitempty,gt=0"`
	LessonID      *int64          `json:"lesson_id" validate:"omitempty,gt=0"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=gateway"`
}

// ManualPaymentRequest: запись платежа наличными или переводом.
type ManualPaymentRequest struct {
	CourseID      *int64          `json:"course_id" validate:"omitempty,gt=0"`
	LessonID      *int64          `json:"lesson_id" validate:"omitempty,gt=0"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash transfer"`
}

// GatewayPaymentResult: результат создания платежа через провайдера.
type GatewayPaymentResult struct {
	ID         int64  `json:"id"`
	PaymentURL string `json:"payment_url"`
	Message    string `json:"message"`
}

// PaymentStatus: сведения о статусе платежа после сверки с провайдером.
type PaymentStatus struct {
	PaymentID     int64   `json:"payment_id"`
	SessionID     string  `json:"session_id"`
	Status        string  `json:"status"`
	Paid          bool    `json:"paid"`
	AmountTotal   int64   `json:"amount_total"`
	Currency      string  `json:"currency"`
	CustomerEmail *string `json:"customer_email"`
}

// PaymentFilter: параметры выборки списка платежей.
type PaymentFilter struct {
	UserID    *int64
	CourseID  *int64
	LessonID  *int64
	Method    *PaymentMethod
	Ascending bool
}

// IntentState: состояние намерения оплаты.
type IntentState string

const (
	IntentCreated        IntentState = "created"
	IntentSessionCreated IntentState = "session_created"
	IntentCompleted      IntentState = "completed"
	IntentFailed         IntentState = "failed"
	IntentAbandoned      IntentState = "abandoned"
)

// PaymentIntent: долговременная запись о начатой оплате через провайдера.
// Пишется до первого обращения к провайдеру и позволяет восстановить
// локальный платёж, если процесс упал после создания сессии.
type PaymentIntent struct {
	Key         string
	UserID      int64
	ProductType ProductType
	ProductID   int64
	Amount      decimal.Decimal
	State       IntentState
	ProductRef  *string
	PriceRef    *string
	SessionID   *string
	SessionURL  *string
	PaymentID   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
