package repo_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

// LedgerRepository applies balance mutations and their history entries as
// single atomic units: either every write of an operation commits or none
// does. Debit and Transfer re-check balance sufficiency inside the same
// atomic scope as the mutation.
type LedgerRepository interface {
	Credit(ctx context.Context, accountNumber string, amount decimal.Decimal, remarks string) error
	Debit(ctx context.Context, accountNumber string, amount decimal.Decimal, remarks string) error
	Transfer(ctx context.Context, fromAccountNumber, toAccountNumber string, amount decimal.Decimal, reference string) error
	ListByAccount(ctx context.Context, accountNumber string, limit int) ([]domain.LedgerEntry, error)
}
