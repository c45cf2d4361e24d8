package payments

import (
	"sync"

	"github.com/google/uuid"
)

// Stub is an in-memory Provider used when no provider credentials are
// configured (local development) and by tests. Intents start pending; state
// changes arrive only through explicit Succeed/Cancel, matching the webhook
// model.
type Stub struct {
	mu       sync.Mutex
	payments map[string]Payment

	// FailCreate makes the next CreatePayment call fail, for exercising
	// rollback of the checkout transaction.
	FailCreate bool
}

func NewStub() *Stub {
	return &Stub{payments: map[string]Payment{}}
}

func (s *Stub) CreatePayment(req CreateRequest) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate {
		return Payment{}, ErrUnavailable
	}
	p := Payment{
		ID:              uuid.NewString(),
		Status:          "pending",
		ConfirmationURL: "https://pay.example/confirm/" + req.OrderID,
	}
	s.payments[p.ID] = p
	return p, nil
}

func (s *Stub) FindPayment(paymentID string) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return Payment{}, ErrUnknownPayment
	}
	return p, nil
}

func (s *Stub) CancelPayment(paymentID string) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return Payment{}, ErrUnknownPayment
	}
	p.Status = "canceled"
	s.payments[paymentID] = p
	return p, nil
}

// Succeed flips a stub payment to succeeded, standing in for the provider
// capturing the money.
func (s *Stub) Succeed(paymentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payments[paymentID]; ok {
		p.Status = "succeeded"
		s.payments[paymentID] = p
	}
}
