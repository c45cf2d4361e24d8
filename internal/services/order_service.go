package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stitchline/internal/domain"
	"stitchline/internal/metrics"
	"stitchline/internal/payments"
	"stitchline/internal/repos"
)

type OrderService struct {
	DB       *sqlx.DB
	Carts    *repos.CartRepo
	Garments *repos.GarmentRepo
	Orders   *repos.OrderRepo
	Pay      payments.Provider
	SiteURL  string
	Met      *metrics.Registry
}

func NewOrderService(db *sqlx.DB, carts *repos.CartRepo, garments *repos.GarmentRepo,
	orders *repos.OrderRepo, pay payments.Provider, siteURL string, met *metrics.Registry) *OrderService {
	return &OrderService{
		DB: db, Carts: carts, Garments: garments, Orders: orders,
		Pay: pay, SiteURL: siteURL, Met: met,
	}
}

type PlaceInput struct {
	UserID  string
	Address string
	Phone   string
}

// Place turns the user's cart into an order. Everything runs in one
// transaction: stock checks and decrements, order and item inserts with price
// snapshots, the total, and the payment intent. A provider failure rolls the
// whole thing back, so a decremented count is never observable without its
// order.
func (s *OrderService) Place(in PlaceInput) (orderID string, err error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cartID, err := s.Carts.EnsureCartTx(tx, in.UserID)
	if err != nil {
		return "", err
	}

	busy, err := s.Orders.HasWaitingPaymentTx(tx, in.UserID)
	if err != nil {
		return "", err
	}
	if busy {
		return "", domain.FormError("you already have an order awaiting payment")
	}

	lines, err := s.Carts.LinesTx(tx, cartID)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", domain.FormError("cart is empty")
	}

	for _, l := range lines {
		if l.GarmentCount < l.Quantity {
			return "", domain.FieldError("count", "not enough stock")
		}
	}

	orderID = uuid.NewString()
	if err = s.Orders.CreateTx(tx, orderID, in.UserID, in.Address, in.Phone); err != nil {
		return "", err
	}

	total := 0
	for _, l := range lines {
		// The conditional decrement is the hard no-oversell guard; a
		// concurrent order landing between the read above and here fails
		// the WHERE and rolls us back.
		if err = s.Garments.DecrementTx(tx, l.GarmentID, l.Quantity); err != nil {
			return "", domain.FieldError("count", "not enough stock")
		}
		item := domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: l.ProductID,
			GarmentID: l.GarmentID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice(),
		}
		if err = s.Orders.InsertItemTx(tx, item); err != nil {
			return "", err
		}
		total += item.TotalPrice()
	}

	payment, err := s.Pay.CreatePayment(payments.CreateRequest{
		OrderID:     orderID,
		Amount:      total,
		Description: fmt.Sprintf("Order %s", orderID),
		ReturnURL:   s.SiteURL + "/orders/" + orderID,
	})
	if err != nil {
		return "", fmt.Errorf("create payment: %w", err)
	}

	if err = s.Orders.SetPaymentTx(tx, orderID, total, payment.ID, payment.Status, payment.ConfirmationURL); err != nil {
		return "", err
	}
	if err = s.Carts.ClearTx(tx, cartID); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	if s.Met != nil {
		s.Met.OrdersPlaced.Inc()
	}
	return orderID, nil
}

// Cancel restores the quantities the order deducted at creation and moves the
// order to canceled. Only orders still awaiting payment can be canceled.
func (s *OrderService) Cancel(userID, orderID string) (err error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o, err := s.Orders.GetTx(tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if o.UserID != userID {
		return domain.ErrNotFound
	}
	if o.Status != domain.StatusWaitingPayment {
		return domain.ErrNotCancelable
	}

	items, err := s.Orders.ItemsTx(tx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err = s.Garments.RestockTx(tx, it.GarmentID, it.Quantity); err != nil {
			return err
		}
	}
	if err = s.Orders.SetStatusTx(tx, orderID, domain.StatusCanceled, domain.PaymentCanceled); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	if s.Met != nil {
		s.Met.OrdersCanceled.Inc()
	}

	// Best effort: the webhook reconciles the provider side if this fails.
	if o.PaymentID != "" {
		_, _ = s.Pay.CancelPayment(o.PaymentID)
	}
	return nil
}

// Detail returns an order with its items, owner-scoped.
func (s *OrderService) Detail(userID, orderID string) (domain.Order, []domain.OrderItem, error) {
	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, nil, domain.ErrNotFound
		}
		return domain.Order{}, nil, err
	}
	if o.UserID != userID {
		return domain.Order{}, nil, domain.ErrNotFound
	}
	return o, items, nil
}

type OrderWithItems struct {
	domain.Order
	Items []domain.OrderItem `json:"items"`
}

// PaymentState asks the provider for the live state of an order's payment
// intent, owner-scoped. Useful while a webhook delivery is still in flight.
func (s *OrderService) PaymentState(userID, orderID string) (payments.Payment, error) {
	o, _, err := s.Detail(userID, orderID)
	if err != nil {
		return payments.Payment{}, err
	}
	if o.PaymentID == "" {
		return payments.Payment{}, domain.ErrNotFound
	}
	return s.Pay.FindPayment(o.PaymentID)
}

func (s *OrderService) History(userID string, limit, offset int) ([]OrderWithItems, error) {
	orders, err := s.Orders.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]OrderWithItems, 0, len(orders))
	for _, o := range orders {
		items, err := s.Orders.Items(o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, OrderWithItems{Order: o, Items: items})
	}
	return out, nil
}
