package services

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"stitchline/internal/domain"
	"stitchline/internal/metrics"
	"stitchline/internal/repos"
)

// Webhook event types the provider delivers.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

var ErrUnknownEvent = errors.New("unknown webhook event")

// WebhookService reconciles payment-provider notifications with order state.
// Delivery is at-least-once and may arrive out of order, so a terminal
// payment status is sticky: repeats of the applied event are no-ops and a
// conflicting late event is ignored rather than re-applied.
type WebhookService struct {
	DB     *sqlx.DB
	Orders *repos.OrderRepo
	Met    *metrics.Registry
}

func NewWebhookService(db *sqlx.DB, orders *repos.OrderRepo, met *metrics.Registry) *WebhookService {
	return &WebhookService{DB: db, Orders: orders, Met: met}
}

// Apply processes one webhook event against the order holding paymentID.
// Returns applied=false when the event was recognized but intentionally
// skipped (duplicate or out-of-order delivery).
func (s *WebhookService) Apply(event, paymentID string) (applied bool, err error) {
	var target string
	switch event {
	case EventPaymentSucceeded:
		target = domain.PaymentSucceeded
	case EventPaymentCanceled:
		target = domain.PaymentCanceled
	default:
		s.count(event, "rejected")
		return false, ErrUnknownEvent
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o, err := s.Orders.ByPaymentIDTx(tx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.count(event, "unknown_payment")
			return false, domain.ErrNotFound
		}
		return false, err
	}

	if o.PaymentStatus != domain.PaymentPending {
		// Terminal already; only delivery order can get us here.
		_ = tx.Rollback()
		if o.PaymentStatus == target {
			s.count(event, "duplicate")
		} else {
			s.count(event, "out_of_order")
		}
		return false, nil
	}

	switch target {
	case domain.PaymentSucceeded:
		var embroidered bool
		if embroidered, err = s.Orders.AnyItemEmbroideredTx(tx, o.ID); err != nil {
			return false, err
		}
		status := domain.StatusPaid
		if embroidered {
			status = domain.StatusInWork
		}
		if err = s.Orders.SetStatusTx(tx, o.ID, status, domain.PaymentSucceeded); err != nil {
			return false, err
		}
	case domain.PaymentCanceled:
		if err = s.Orders.SetStatusTx(tx, o.ID, domain.StatusCanceled, domain.PaymentCanceled); err != nil {
			return false, err
		}
		if s.Met != nil {
			s.Met.OrdersCanceled.Inc()
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	s.count(event, "applied")
	return true, nil
}

func (s *WebhookService) count(event, outcome string) {
	if s.Met != nil {
		s.Met.WebhookEvents.WithLabelValues(event, outcome).Inc()
	}
}
