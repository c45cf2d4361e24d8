package domain

// Order status lifecycle codes. An order is created in StatusWaitingPayment
// and only ever transitions; rows are never deleted.
const (
	StatusWaitingPayment = "WP"
	StatusPaid           = "PD"
	StatusInWork         = "IW"
	StatusDraft          = "DR"
	StatusInDelivery     = "ID"
	StatusDelivered      = "DV"
	StatusCanceled       = "CN"
)

const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentCanceled  = "canceled"
)

var statusNames = map[string]string{
	StatusWaitingPayment: "waiting_payment",
	StatusPaid:           "paid",
	StatusInWork:         "in_work",
	StatusDraft:          "draft",
	StatusInDelivery:     "in_delivery",
	StatusDelivered:      "delivered",
	StatusCanceled:       "canceled",
}

func ValidStatus(code string) bool {
	_, ok := statusNames[code]
	return ok
}

func StatusName(code string) string { return statusNames[code] }

type Order struct {
	ID              string `db:"id" json:"id"`
	UserID          string `db:"user_id" json:"-"`
	Address         string `db:"address" json:"address"`
	Phone           string `db:"phone" json:"phone"`
	Status          string `db:"status" json:"status"`
	TotalSum        int    `db:"total_sum" json:"total_sum"`
	PaymentID       string `db:"payment_id" json:"payment_id,omitempty"`
	PaymentStatus   string `db:"payment_status" json:"payment_status"`
	ConfirmationURL string `db:"confirmation_url" json:"confirmation_url,omitempty"`
	TrackingCode    string `db:"tracking_code" json:"tracking_code,omitempty"`
	CreatedAt       string `db:"created_at" json:"created_at"`
	UpdatedAt       string `db:"updated_at" json:"-"`
}

// OrderItem snapshots a cart line at order-creation time. Price is copied
// (product price + garment price), never referenced, so later price edits do
// not rewrite history.
type OrderItem struct {
	ID        string `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"-"`
	ProductID string `db:"product_id" json:"product_id"`
	GarmentID string `db:"garment_id" json:"garment_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Price     int    `db:"price" json:"price"`
}

func (i OrderItem) TotalPrice() int { return i.Price * i.Quantity }
