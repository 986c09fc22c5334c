package commons

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSameAccount         = errors.New("source and destination accounts must be different")
	ErrNoPendingOperation  = errors.New("no pending operation for this interaction")
	ErrOTPRejected         = errors.New("otp rejected")
	ErrDeliveryFailed      = errors.New("otp delivery failed")
	ErrForbidden           = errors.New("caller is not permitted to perform this operation")
)
