package payments

import "errors"

var (
	ErrUnavailable    = errors.New("payment provider unavailable")
	ErrUnknownPayment = errors.New("unknown payment id")
)
