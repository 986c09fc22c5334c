package notification

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

// Composer renders the OTP delivery message for each operation kind.
type Composer struct {
	bankName string
}

func NewComposer(bankName string) Composer {
	return Composer{bankName: bankName}
}

func (c Composer) Subject() string {
	return fmt.Sprintf("Your OTP for %s", c.bankName)
}

func (c Composer) Body(code string, op domain.PendingOperation) string {
	body := fmt.Sprintf("Dear Customer,\n\nYour OTP is: %s\nIt is valid for 5 minutes.", code)
	body += transactionDetails(op)
	body += fmt.Sprintf("\n\nPlease do not share this OTP with anyone.\n\nThank you,\n%s", c.bankName)
	return body
}

func transactionDetails(op domain.PendingOperation) string {
	switch op.Purpose {
	case domain.OTPPurposeCredit:
		return fmt.Sprintf(
			"\n\nTransaction Details:\n- Account Number: %s\n- Amount to Credit: %s",
			op.AccountNumber, formatAmount(op.Amount),
		)
	case domain.OTPPurposeDebit:
		return fmt.Sprintf(
			"\n\nTransaction Details:\n- Account Number: %s\n- Amount to Debit: %s",
			op.AccountNumber, formatAmount(op.Amount),
		)
	case domain.OTPPurposeTransfer:
		return fmt.Sprintf(
			"\n\nTransaction Details:\n- From Account: %s\n- To Account: %s\n- Amount: %s",
			op.AccountNumber, op.CounterpartyNumber, formatAmount(op.Amount),
		)
	default:
		return ""
	}
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
