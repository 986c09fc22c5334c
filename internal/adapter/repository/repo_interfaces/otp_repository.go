package repo_interfaces

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type OTPRepository interface {
	Create(ctx context.Context, otp domain.OTP) (domain.OTP, error)
	// GetLatest returns the most recently created record for the pair,
	// ordered by creation time then insertion id so the winner is
	// deterministic among equal timestamps.
	GetLatest(ctx context.Context, accountNumber string, purpose domain.OTPPurpose) (domain.OTP, error)
	// MarkVerified flips verified on a still-unverified record. It returns
	// commons.ErrRecordNotFound when the record is missing or already
	// verified, which is what makes a code single-use even under races.
	MarkVerified(ctx context.Context, id int64) error
}
