package domain

import "fmt"

// TransferLegRemarks returns the debit-leg and credit-leg remarks for a
// transfer so that each leg names its counterparty.
func TransferLegRemarks(from, to string) (debitRemarks, creditRemarks string) {
	return fmt.Sprintf("Transferred to %s", to), fmt.Sprintf("Received from %s", from)
}
