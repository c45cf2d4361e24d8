package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"stitchline/internal/config"
	"stitchline/internal/http/handlers"
	"stitchline/internal/metrics"
	"stitchline/internal/payments"
	"stitchline/internal/repos"
	"stitchline/internal/services"
	"stitchline/internal/tasks"
)

type shopApp struct {
	app   *fiber.App
	db    *sqlx.DB
	stub  *payments.Stub
	queue *tasks.Queue
}

// newShopApp boots the API against a seeded in-memory database, with
// sessions for the demo users pre-bound so requests can authenticate with a
// plain sid cookie.
func newShopApp(t *testing.T) *shopApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.MustExec(`INSERT INTO sessions(id,user_id) VALUES
	  ('sid-alice','u-alice'),
	  ('sid-staff','u-staff')`)

	stub := payments.NewStub()
	met := metrics.NewUnregistered()
	queue := tasks.New(2, met)
	t.Cleanup(queue.Close)

	cfg := config.Config{SiteURL: "https://shop.test"}
	deps := handlers.NewDeps(db, cfg, stub, met, queue)
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/auth/login", authH.Login)
	api.Post("/payments/webhook", deps.WebhookHandler.HandlePayment)

	user := api.Group("", handlers.RequireUser(authSvc))
	user.Get("/cart", deps.CartHandler.View)
	user.Post("/cart/items", deps.CartHandler.Add)
	user.Patch("/cart/items/:id", deps.CartHandler.UpdateQuantity)
	user.Post("/orders", deps.OrderHandler.Place)
	user.Get("/orders", deps.OrderHandler.History)
	user.Get("/orders/:id", deps.OrderHandler.Detail)
	user.Delete("/orders/:id", deps.OrderHandler.Cancel)
	user.Get("/tasks/:id", deps.OrderHandler.TaskStatus)

	staff := api.Group("/staff", handlers.RequireStaff(authSvc))
	staff.Get("/orders", deps.StaffHandler.OrdersPage)
	staff.Patch("/orders/:id", deps.StaffHandler.UpdateOrderStatus)

	return &shopApp{app: app, db: db, stub: stub, queue: queue}
}

func (sa *shopApp) request(t *testing.T, method, path, sid, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := sa.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	_ = resp.Body.Close()
	return v
}

// pollTask polls the checkout task endpoint until it leaves the pending
// state and returns the final response.
func (sa *shopApp) pollTask(t *testing.T, sid, taskID string) *http.Response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp := sa.request(t, "GET", "/api/v1/tasks/"+taskID, sid, "")
		// 200 means still pending; any other status is terminal
		if resp.StatusCode != http.StatusOK {
			return resp
		}
		_ = resp.Body.Close()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never finished", taskID)
	return nil
}

func TestCheckoutAPI_FullFlow(t *testing.T) {
	sa := newShopApp(t)

	resp := sa.request(t, "POST", "/api/v1/cart/items", "sid-alice",
		`{"product_id":"fern-crest","garment_id":"tee-black-m"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart add: want 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	cart := decode[struct {
		Data struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"data"`
	}](t, sa.request(t, "GET", "/api/v1/cart", "sid-alice", ""))
	if len(cart.Data.Items) != 1 {
		t.Fatalf("want 1 cart line, got %d", len(cart.Data.Items))
	}

	resp = sa.request(t, "PATCH", "/api/v1/cart/items/"+cart.Data.Items[0].ID, "sid-alice",
		`{"quantity":6}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quantity update: want 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = sa.request(t, "POST", "/api/v1/orders", "sid-alice",
		`{"address":"12 Ladybird Lane, Apt 4","phone":"+7 999 123 45 67"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place: want 201, got %d", resp.StatusCode)
	}
	placed := decode[struct {
		Data struct {
			TaskID string `json:"task_id"`
		} `json:"data"`
	}](t, resp)
	if placed.Data.TaskID == "" {
		t.Fatal("no task id")
	}

	final := sa.pollTask(t, "sid-alice", placed.Data.TaskID)
	if final.StatusCode != http.StatusCreated {
		t.Fatalf("task: want 201, got %d", final.StatusCode)
	}
	done := decode[struct {
		Data struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}](t, final)
	if done.Data.OrderID == "" {
		t.Fatal("no order id in task result")
	}

	detail := decode[struct {
		Data struct {
			Order struct {
				TotalSum int    `json:"total_sum"`
				Status   string `json:"status"`
			} `json:"order"`
			StatusName string `json:"status_name"`
		} `json:"data"`
	}](t, sa.request(t, "GET", "/api/v1/orders/"+done.Data.OrderID, "sid-alice", ""))
	// 6 * (100 product + 50 garment)
	if detail.Data.Order.TotalSum != 900 {
		t.Fatalf("want total_sum=900, got %d", detail.Data.Order.TotalSum)
	}
	if detail.Data.Order.Status != "WP" || detail.Data.StatusName == "" {
		t.Fatalf("bad order status payload: %+v", detail.Data)
	}

	history := decode[struct {
		Data []struct {
			ID    string `json:"id"`
			Items []struct {
				Price    int `json:"price"`
				Quantity int `json:"quantity"`
			} `json:"items"`
		} `json:"data"`
	}](t, sa.request(t, "GET", "/api/v1/orders", "sid-alice", ""))
	if len(history.Data) != 1 || len(history.Data[0].Items) != 1 {
		t.Fatalf("history should list the order with its items: %+v", history.Data)
	}
	if history.Data[0].Items[0].Price != 150 || history.Data[0].Items[0].Quantity != 6 {
		t.Fatalf("bad item snapshot in history: %+v", history.Data[0].Items)
	}

	var stock int
	if err := sa.db.Get(&stock, `SELECT count FROM garments WHERE id='tee-black-m'`); err != nil {
		t.Fatal(err)
	}
	if stock != 4 {
		t.Fatalf("want stock=4 after checkout, got %d", stock)
	}
}

func TestCheckoutAPI_RejectsBadContact(t *testing.T) {
	sa := newShopApp(t)

	resp := sa.request(t, "POST", "/api/v1/orders", "sid-alice",
		`{"address":"ok","phone":"12345"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	body := decode[struct {
		Errors struct {
			Fields map[string]string `json:"fields"`
		} `json:"errors"`
	}](t, resp)
	if body.Errors.Fields["address"] == "" || body.Errors.Fields["phone"] == "" {
		t.Fatalf("want field errors for address and phone, got %+v", body.Errors.Fields)
	}
}

func TestCheckoutAPI_DoubleSubmitThrottled(t *testing.T) {
	sa := newShopApp(t)

	// hold the user's checkout slot, as a still-running first submit would
	release := make(chan struct{})
	if _, err := sa.queue.Enqueue("u-alice", func() (any, error) {
		<-release
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	defer close(release)

	resp := sa.request(t, "POST", "/api/v1/orders", "sid-alice",
		`{"address":"12 Ladybird Lane, Apt 4","phone":"+7 999 123 45 67"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want 429 while a checkout is in flight, got %d", resp.StatusCode)
	}
}

func TestCheckoutAPI_EmptyCartReportsFormError(t *testing.T) {
	sa := newShopApp(t)

	resp := sa.request(t, "POST", "/api/v1/orders", "sid-alice",
		`{"address":"12 Ladybird Lane, Apt 4","phone":"+7 999 123 45 67"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place: want 201, got %d", resp.StatusCode)
	}
	placed := decode[struct {
		Data struct {
			TaskID string `json:"task_id"`
		} `json:"data"`
	}](t, resp)

	final := sa.pollTask(t, "sid-alice", placed.Data.TaskID)
	if final.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for empty cart, got %d", final.StatusCode)
	}
	body := decode[struct {
		Errors struct {
			FormError string `json:"form_error"`
		} `json:"errors"`
	}](t, final)
	if body.Errors.FormError == "" {
		t.Fatal("want form_error for empty cart")
	}
}
