package domain

import "time"

type OTPPurpose string

const (
	OTPPurposeCredit   OTPPurpose = "credit"
	OTPPurposeDebit    OTPPurpose = "debit"
	OTPPurposeTransfer OTPPurpose = "transfer"
)

// OTP stores a bcrypt hash of the delivered code, never the code itself.
// Rows are never deleted; verification targets the newest row per
// (account, purpose) and older rows simply go stale.
type OTP struct {
	ID            int64
	AccountNumber string
	Purpose       OTPPurpose
	CodeHash      string
	CreatedAt     time.Time
	Verified      bool
}

type VerifyOutcome string

const (
	VerifyOutcomeOK          VerifyOutcome = "OK"
	VerifyOutcomeNotFound    VerifyOutcome = "NOT_FOUND"
	VerifyOutcomeExpired     VerifyOutcome = "EXPIRED"
	VerifyOutcomeAlreadyUsed VerifyOutcome = "ALREADY_USED"
	VerifyOutcomeMismatch    VerifyOutcome = "MISMATCH"
)
