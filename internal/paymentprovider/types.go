package paymentprovider

// Product: продукт у провайдера.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price: цена продукта в минимальных единицах валюты.
type Price struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// Session: сессия оформления оплаты.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionStatus: сведения о статусе оплаты в сессии.
type SessionStatus struct {
	ID            string
	Status        string
	AmountTotal   int64
	Currency      string
	CustomerEmail *string
	Paid          bool
}

type sessionResponse struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	PaymentStatus   string `json:"payment_status"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerDetails *struct {
		Email *string `json:"email"`
	} `json:"customer_details"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
