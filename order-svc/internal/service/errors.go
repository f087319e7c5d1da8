package service

import (
	"errors"

	"restaurant-app/order-svc/internal/domain"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingCuisine       = errors.New("dish has no cuisine id")
	ErrSubmissionInProgress = errors.New("an order submission is already in progress")
	ErrSubmissionCanceled   = errors.New("order submission canceled")
	ErrBusinessRejected     = errors.New("order rejected by payment gateway")
	ErrUnexpected           = errors.New("an unknown error occurred")

	ErrCatalogRejected     = errors.New("catalog request rejected")
	ErrInvalidCatalogQuery = errors.New("invalid catalog query")
)

// SubmitError is the classified failure of one checkout attempt.
type SubmitError struct {
	Kind   domain.ErrorKind
	Reason string
	Err    error
}

func (e *SubmitError) Error() string {
	return e.Reason
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func validationError(reason string, err error) *SubmitError {
	return &SubmitError{Kind: domain.KindValidation, Reason: reason, Err: err}
}
