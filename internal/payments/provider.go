// Package payments talks to the external payment provider. The shop never
// settles money itself: it creates payment intents, stores their ids, and
// reconciles state changes delivered back over the webhook.
package payments

// Payment mirrors the provider's intent object, trimmed to what orders store.
type Payment struct {
	ID              string
	Status          string // pending | succeeded | canceled
	ConfirmationURL string
}

// CreateRequest describes the intent the checkout transaction asks for.
type CreateRequest struct {
	OrderID     string
	Amount      int // whole currency units
	Description string
	ReturnURL   string
}

type Provider interface {
	CreatePayment(req CreateRequest) (Payment, error)
	FindPayment(paymentID string) (Payment, error)
	CancelPayment(paymentID string) (Payment, error)
}
