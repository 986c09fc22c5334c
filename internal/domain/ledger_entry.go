package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindCredit      EntryKind = "credit"
	EntryKindDebit       EntryKind = "debit"
	EntryKindTransferIn  EntryKind = "transfer-in"
	EntryKindTransferOut EntryKind = "transfer-out"
)

// LedgerEntry is an append-only record of a committed balance mutation.
// Both legs of a transfer share the same Reference.
type LedgerEntry struct {
	ID            int64
	AccountNumber string
	Kind          EntryKind
	Amount        decimal.Decimal
	Remarks       string
	Reference     string
	CreatedAt     time.Time
}
