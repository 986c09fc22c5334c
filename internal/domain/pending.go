package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingOperation holds the staged parameters of an in-flight OTP-guarded
// mutation between phase 1 and phase 2. CounterpartyNumber is only set for
// transfers.
type PendingOperation struct {
	Purpose            OTPPurpose
	AccountNumber      string
	CounterpartyNumber string
	Amount             decimal.Decimal
	StagedAt           time.Time
}
