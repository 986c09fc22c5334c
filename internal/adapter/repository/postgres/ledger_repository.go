package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

// LedgerRepository posts balance mutations together with their history
// entries in a single database transaction. The sufficiency re-check for
// debits rides in the UPDATE guard itself, so check and mutation cannot be
// interleaved by a concurrent writer.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const creditAccountQuery = `
UPDATE accounts
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE account_number = $1
  AND status = 'ACTIVE'`

const debitAccountQuery = `
UPDATE accounts
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE account_number = $1
  AND status = 'ACTIVE'
  AND balance >= $2::numeric`

const insertEntryQuery = `
INSERT INTO ledger_entries (account_number, kind, amount, remarks, reference)
VALUES ($1, $2, $3::numeric, $4, $5)`

func (r *LedgerRepository) Credit(ctx context.Context, accountNumber string, amount decimal.Decimal, remarks string) error {
	logger.Info("ledger repository credit", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amount.StringFixed(2),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin credit tx failed", err, nil)
		return fmt.Errorf("begin credit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = execRequiredRows(ctx, tx, creditAccountQuery, accountNumber, amount.StringFixed(2)); err != nil {
		err = r.classifyPostingFailure(ctx, accountNumber, decimal.Zero, err)
		return err
	}

	if _, err = tx.ExecContext(ctx, insertEntryQuery, accountNumber, domain.EntryKindCredit, amount.StringFixed(2), remarks, ""); err != nil {
		return fmt.Errorf("insert credit entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit credit tx failed", err, nil)
		return fmt.Errorf("commit credit transaction: %w", err)
	}

	return nil
}

func (r *LedgerRepository) Debit(ctx context.Context, accountNumber string, amount decimal.Decimal, remarks string) error {
	logger.Info("ledger repository debit", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amount.StringFixed(2),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin debit tx failed", err, nil)
		return fmt.Errorf("begin debit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = execRequiredRows(ctx, tx, debitAccountQuery, accountNumber, amount.StringFixed(2)); err != nil {
		err = r.classifyPostingFailure(ctx, accountNumber, amount, err)
		return err
	}

	if _, err = tx.ExecContext(ctx, insertEntryQuery, accountNumber, domain.EntryKindDebit, amount.StringFixed(2), remarks, ""); err != nil {
		return fmt.Errorf("insert debit entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit debit tx failed", err, nil)
		return fmt.Errorf("commit debit transaction: %w", err)
	}

	return nil
}

func (r *LedgerRepository) Transfer(ctx context.Context, fromAccountNumber, toAccountNumber string, amount decimal.Decimal, reference string) error {
	logger.Info("ledger repository transfer", logger.Fields{
		"fromAccountNumber": fromAccountNumber,
		"toAccountNumber":   toAccountNumber,
		"amount":            amount.StringFixed(2),
		"reference":         reference,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin transfer tx failed", err, nil)
		return fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Row locks are taken in lexical account-number order so two opposite
	// transfers between the same pair cannot deadlock.
	steps := []struct {
		query         string
		accountNumber string
	}{
		{debitAccountQuery, fromAccountNumber},
		{creditAccountQuery, toAccountNumber},
	}
	if toAccountNumber < fromAccountNumber {
		steps[0], steps[1] = steps[1], steps[0]
	}

	for _, step := range steps {
		if err = execRequiredRows(ctx, tx, step.query, step.accountNumber, amount.StringFixed(2)); err != nil {
			guardAmount := decimal.Zero
			if step.accountNumber == fromAccountNumber {
				guardAmount = amount
			}
			err = r.classifyPostingFailure(ctx, step.accountNumber, guardAmount, err)
			return err
		}
	}

	debitRemarks, creditRemarks := domain.TransferLegRemarks(fromAccountNumber, toAccountNumber)
	if _, err = tx.ExecContext(ctx, insertEntryQuery, fromAccountNumber, domain.EntryKindTransferOut, amount.StringFixed(2), debitRemarks, reference); err != nil {
		return fmt.Errorf("insert transfer-out entry: %w", err)
	}
	if _, err = tx.ExecContext(ctx, insertEntryQuery, toAccountNumber, domain.EntryKindTransferIn, amount.StringFixed(2), creditRemarks, reference); err != nil {
		return fmt.Errorf("insert transfer-in entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit transfer tx failed", err, nil)
		return fmt.Errorf("commit transfer transaction: %w", err)
	}

	logger.Info("ledger repository transfer success", logger.Fields{
		"fromAccountNumber": fromAccountNumber,
		"toAccountNumber":   toAccountNumber,
		"reference":         reference,
	})
	return nil
}

func (r *LedgerRepository) ListByAccount(ctx context.Context, accountNumber string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
SELECT id, account_number, kind, amount, remarks, reference, created_at
FROM ledger_entries
WHERE account_number = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountNumber, limit)
	if err != nil {
		logger.Error("ledger repository list failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit)
	for rows.Next() {
		var (
			entry  domain.LedgerEntry
			amount string
		)
		if err := rows.Scan(&entry.ID, &entry.AccountNumber, &entry.Kind, &amount, &entry.Remarks, &entry.Reference, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse ledger entry amount: %w", err)
		}
		entry.Amount = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return entries, nil
}

// classifyPostingFailure turns a zero-row guard failure into the sentinel
// the coordinator reports: missing account, inactive account, or balance
// below the debit amount. The surrounding transaction is already doomed, so
// the lookup runs on the pool connection.
func (r *LedgerRepository) classifyPostingFailure(ctx context.Context, accountNumber string, debitAmount decimal.Decimal, cause error) error {
	if cause == nil || cause != errPostingGuard {
		return cause
	}

	var (
		status  string
		balance string
	)
	lookupErr := r.db.QueryRowContext(ctx, `SELECT status, balance FROM accounts WHERE account_number = $1`, accountNumber).Scan(&status, &balance)
	if lookupErr == sql.ErrNoRows {
		return commons.ErrRecordNotFound
	}
	if lookupErr != nil {
		return fmt.Errorf("classify posting failure: %w", lookupErr)
	}

	if status != string(domain.AccountStatusActive) {
		return fmt.Errorf("account %s is not active", accountNumber)
	}

	if debitAmount.IsPositive() {
		current, parseErr := decimal.NewFromString(balance)
		if parseErr == nil && current.LessThan(debitAmount) {
			return commons.ErrInsufficientBalance
		}
	}

	return cause
}

var errPostingGuard = fmt.Errorf("ledger posting failed: record not found, inactive, or insufficient balance")

func execRequiredRows(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("execute posting statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return errPostingGuard
	}
	return nil
}
