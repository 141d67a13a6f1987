package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation and state-machine failures are surfaced to callers as typed
// errors so the HTTP layer (or any other wrapper) can map them without
// string matching. They are never retried automatically.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product is inactive")
	ErrRegisterNotFound    = errors.New("cash register not found")
	ErrRegisterNotOpen     = errors.New("no open cash register")
	ErrRegisterAlreadyOpen = errors.New("operator already has an open cash register")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrDuplicateCode       = errors.New("product code already exists")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrSaleAlreadyVoided   = errors.New("sale is already voided")
	ErrInsufficientPayment = errors.New("amount paid is less than the sale total")
)

// InsufficientStockError names the offending product and the requested vs
// available quantities. A sale containing any such line is rejected in full.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.ProductName, e.Requested.String(), e.Available.String())
}

// PersistenceError wraps an underlying store failure. During the sale
// cascade it triggers the compensation path instead of a blind retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
