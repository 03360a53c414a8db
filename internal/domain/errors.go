package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when checkout starts with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrDuplicatePaymentIntent is returned when an order already carries a payment id.
	ErrDuplicatePaymentIntent = errors.New("payment intent already created for order")
	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid input")
	// ErrInvalidCredentials covers both a wrong password and an unknown
	// account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
