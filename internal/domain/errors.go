package domain

import (
	"errors"
	"fmt"
)

// ErrShopNotFound is returned when a metrics or disconnect request
// names a store id with no record behind it.
var ErrShopNotFound = errors.New("shop not found")

// ErrTokenExchangeFailed is the single value surfaced for any failure
// of the OAuth code-for-token exchange. The underlying cause is logged
// (redacted) but never exposed to the caller.
var ErrTokenExchangeFailed = errors.New("token exchange failed")

// OrderFetchError is raised when the order listing call itself fails.
// It carries the provider's HTTP status and response body when they are
// available; transport-level failures leave Status at zero.
type OrderFetchError struct {
	Status int
	Body   string
	Err    error
}

func (e *OrderFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("order fetch failed: status %d, body: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("order fetch failed: %v", e.Err)
}

func (e *OrderFetchError) Unwrap() error { return e.Err }
