package notification

import "context"

// Gateway delivers a message to an address and reports success or failure.
// The core never retries a delivery: a failed phase-1 delivery fails the
// whole request and the persisted OTP is left to expire.
type Gateway interface {
	Deliver(ctx context.Context, address, subject, body string) error
}
