package service_interfaces

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type OTPService interface {
	// Issue persists a new code for the pair and returns the plaintext for
	// delivery. Earlier unverified codes are superseded, not deleted.
	Issue(ctx context.Context, accountNumber string, purpose domain.OTPPurpose) (string, error)
	// Verify checks the submitted code against the latest record. Only
	// VerifyOutcomeOK consumes the record; every other outcome leaves it
	// untouched.
	Verify(ctx context.Context, accountNumber string, purpose domain.OTPPurpose, code string) (domain.VerifyOutcome, error)
}
