package handlers_test

import (
	"net/http"
	"testing"
)

func TestStaffAPI_FulfillmentTransitions(t *testing.T) {
	sa := newShopApp(t)
	oid, pid := sa.seedOrder(t, "u-alice")

	// fulfillment starts only after payment
	resp := sa.request(t, "PATCH", "/api/v1/staff/orders/"+oid, "sid-staff", `{"status":"ID"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unpaid order: want 400, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	sa.request(t, "POST", "/api/v1/payments/webhook", "", notification("payment.succeeded", pid)).Body.Close()

	resp = sa.request(t, "PATCH", "/api/v1/staff/orders/"+oid, "sid-staff",
		`{"status":"ID","tracking_code":"TRK-400123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("paid order: want 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	var got struct {
		Status       string `db:"status"`
		TrackingCode string `db:"tracking_code"`
	}
	if err := sa.db.Get(&got, `SELECT status, COALESCE(tracking_code,'') AS tracking_code FROM orders WHERE id=?`, oid); err != nil {
		t.Fatal(err)
	}
	if got.Status != "ID" || got.TrackingCode != "TRK-400123" {
		t.Fatalf("want ID/TRK-400123, got %+v", got)
	}
}

func TestStaffAPI_PaymentStatesNotReachable(t *testing.T) {
	sa := newShopApp(t)
	oid, pid := sa.seedOrder(t, "u-alice")
	sa.request(t, "POST", "/api/v1/payments/webhook", "", notification("payment.succeeded", pid)).Body.Close()

	for _, status := range []string{"WP", "CN", "XX"} {
		resp := sa.request(t, "PATCH", "/api/v1/staff/orders/"+oid, "sid-staff",
			`{"status":"`+status+`"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status %s: want 400, got %d", status, resp.StatusCode)
		}
		_ = resp.Body.Close()
	}
}

func TestStaffAPI_CanceledOrdersStayCanceled(t *testing.T) {
	sa := newShopApp(t)
	oid, pid := sa.seedOrder(t, "u-alice")
	sa.request(t, "POST", "/api/v1/payments/webhook", "", notification("payment.canceled", pid)).Body.Close()

	resp := sa.request(t, "PATCH", "/api/v1/staff/orders/"+oid, "sid-staff", `{"status":"PD"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("canceled order: want 400, got %d", resp.StatusCode)
	}
}
