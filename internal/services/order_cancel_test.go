package services_test

import (
	"errors"
	"testing"

	"stitchline/internal/domain"
)

func TestCancel_RestoresStock(t *testing.T) {
	e := newCheckout(t)
	e.fill(t, "u1", "p-print", "g-m", 6)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if got := e.stock(t, "g-m"); got != 4 {
		t.Fatalf("want stock=4 before cancel, got %d", got)
	}

	if err := e.svc.Cancel("u1", oid); err != nil {
		t.Fatal(err)
	}

	if got := e.stock(t, "g-m"); got != 10 {
		t.Fatalf("cancel must restore exactly what checkout deducted, got %d", got)
	}
	o, _, err := e.orders.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusCanceled || o.PaymentStatus != domain.PaymentCanceled {
		t.Fatalf("want CN/canceled, got %s/%s", o.Status, o.PaymentStatus)
	}
}

func TestCancel_FreesWaitingPaymentSlot(t *testing.T) {
	e := newCheckout(t)
	e.fill(t, "u1", "p-print", "g-m", 1)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.svc.Cancel("u1", oid); err != nil {
		t.Fatal(err)
	}

	// a new order is allowed once the old one is no longer awaiting payment
	e.fill(t, "u1", "p-print", "g-m", 1)
	if _, err := e.svc.Place(placeInput("u1")); err != nil {
		t.Fatal(err)
	}
}

func TestCancel_OnlyWhileAwaitingPayment(t *testing.T) {
	e := newCheckout(t)
	e.fill(t, "u1", "p-print", "g-m", 2)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}
	e.db.MustExec(`UPDATE orders SET status='PD', payment_status='succeeded' WHERE id=?`, oid)

	if err := e.svc.Cancel("u1", oid); !errors.Is(err, domain.ErrNotCancelable) {
		t.Fatalf("want ErrNotCancelable, got %v", err)
	}
	if got := e.stock(t, "g-m"); got != 8 {
		t.Fatalf("refused cancel must not touch stock, got %d", got)
	}
}

func TestCancel_TwiceFails(t *testing.T) {
	e := newCheckout(t)
	e.fill(t, "u1", "p-print", "g-m", 2)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.svc.Cancel("u1", oid); err != nil {
		t.Fatal(err)
	}

	if err := e.svc.Cancel("u1", oid); !errors.Is(err, domain.ErrNotCancelable) {
		t.Fatalf("want ErrNotCancelable on second cancel, got %v", err)
	}
	// stock is restored once, not twice
	if got := e.stock(t, "g-m"); got != 10 {
		t.Fatalf("want stock=10, got %d", got)
	}
}

func TestPaymentState_TracksProvider(t *testing.T) {
	e := newCheckout(t)
	e.fill(t, "u1", "p-print", "g-m", 1)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}

	p, err := e.svc.PaymentState("u1", oid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != "pending" || p.ConfirmationURL == "" {
		t.Fatalf("fresh intent should be pending with a confirmation url: %+v", p)
	}

	e.stub.Succeed(p.ID)
	p, err = e.svc.PaymentState("u1", oid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != "succeeded" {
		t.Fatalf("want succeeded, got %s", p.Status)
	}

	if _, err := e.svc.PaymentState("u2", oid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign order must read as not found, got %v", err)
	}
}

func TestCancel_OtherUsersOrderHidden(t *testing.T) {
	e := newCheckout(t)
	e.fill(t, "u1", "p-print", "g-m", 1)
	oid, err := e.svc.Place(placeInput("u1"))
	if err != nil {
		t.Fatal(err)
	}

	if err := e.svc.Cancel("u2", oid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign order, got %v", err)
	}
	if err := e.svc.Cancel("u1", "no-such-order"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown order, got %v", err)
	}
}
