package services_test

import (
	"errors"
	"testing"

	"stitchline/internal/domain"
	"stitchline/internal/metrics"
	"stitchline/internal/services"
)

type webhookEnv struct {
	*checkoutEnv
	hooks *services.WebhookService
}

// newWebhookEnv runs a checkout for u1 and returns the env plus the new
// order id and its payment id.
func newWebhookEnv(t *testing.T, productID string) (*webhookEnv, string, string) {
	t.Helper()
	e := newCheckout(t)
	w := &webhookEnv{
		checkoutEnv: e,
		hooks:       services.NewWebhookService(e.db, e.orders, metrics.NewUnregistered()),
	}
	e.fill(t, "u1", productID, "g-m", 2)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}
	o, _, err := e.orders.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	return w, oid, o.PaymentID
}

func (w *webhookEnv) order(t *testing.T, oid string) domain.Order {
	t.Helper()
	o, _, err := w.orders.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestWebhook_SucceededMarksPaid(t *testing.T) {
	w, oid, pid := newWebhookEnv(t, "p-print")

	applied, err := w.hooks.Apply(services.EventPaymentSucceeded, pid)
	if err != nil || !applied {
		t.Fatalf("want applied, got applied=%v err=%v", applied, err)
	}
	o := w.order(t, oid)
	if o.Status != domain.StatusPaid || o.PaymentStatus != domain.PaymentSucceeded {
		t.Fatalf("want PD/succeeded, got %s/%s", o.Status, o.PaymentStatus)
	}
}

func TestWebhook_EmbroideredOrderGoesToWork(t *testing.T) {
	w, oid, pid := newWebhookEnv(t, "p-stitch")

	applied, err := w.hooks.Apply(services.EventPaymentSucceeded, pid)
	if err != nil || !applied {
		t.Fatalf("want applied, got applied=%v err=%v", applied, err)
	}
	o := w.order(t, oid)
	if o.Status != domain.StatusInWork {
		t.Fatalf("embroidered order should go to IW, got %s", o.Status)
	}
}

func TestWebhook_CanceledCancelsOrder(t *testing.T) {
	w, oid, pid := newWebhookEnv(t, "p-print")

	applied, err := w.hooks.Apply(services.EventPaymentCanceled, pid)
	if err != nil || !applied {
		t.Fatalf("want applied, got applied=%v err=%v", applied, err)
	}
	o := w.order(t, oid)
	if o.Status != domain.StatusCanceled || o.PaymentStatus != domain.PaymentCanceled {
		t.Fatalf("want CN/canceled, got %s/%s", o.Status, o.PaymentStatus)
	}
}

func TestWebhook_DuplicateDeliveryIsNoOp(t *testing.T) {
	w, oid, pid := newWebhookEnv(t, "p-print")

	if _, err := w.hooks.Apply(services.EventPaymentSucceeded, pid); err != nil {
		t.Fatal(err)
	}
	applied, err := w.hooks.Apply(services.EventPaymentSucceeded, pid)
	if err != nil {
		t.Fatalf("duplicate delivery must succeed, got %v", err)
	}
	if applied {
		t.Fatal("duplicate delivery must not re-apply")
	}
	o := w.order(t, oid)
	if o.Status != domain.StatusPaid {
		t.Fatalf("order state changed by duplicate, got %s", o.Status)
	}
}

func TestWebhook_LateConflictingEventIgnored(t *testing.T) {
	w, oid, pid := newWebhookEnv(t, "p-print")

	if _, err := w.hooks.Apply(services.EventPaymentSucceeded, pid); err != nil {
		t.Fatal(err)
	}
	// a stale cancellation arriving after success must not flip the order
	applied, err := w.hooks.Apply(services.EventPaymentCanceled, pid)
	if err != nil || applied {
		t.Fatalf("late conflicting event must be ignored, got applied=%v err=%v", applied, err)
	}
	o := w.order(t, oid)
	if o.Status != domain.StatusPaid || o.PaymentStatus != domain.PaymentSucceeded {
		t.Fatalf("want PD/succeeded to stick, got %s/%s", o.Status, o.PaymentStatus)
	}
}

func TestWebhook_UnknownEvent(t *testing.T) {
	w, _, pid := newWebhookEnv(t, "p-print")

	if _, err := w.hooks.Apply("payment.refunded", pid); !errors.Is(err, services.ErrUnknownEvent) {
		t.Fatalf("want ErrUnknownEvent, got %v", err)
	}
}

func TestWebhook_UnknownPayment(t *testing.T) {
	w, _, _ := newWebhookEnv(t, "p-print")

	if _, err := w.hooks.Apply(services.EventPaymentSucceeded, "no-such-payment"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
