package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"accountNumber": account.AccountNumber,
		"accountType":   account.AccountType,
	})

	const query = `
INSERT INTO accounts (
	account_number,
	first_name,
	middle_name,
	last_name,
	gender,
	phone,
	email,
	dob,
	aadhar,
	pan,
	ifsc,
	branch,
	address,
	city,
	pincode,
	balance,
	account_type,
	status
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
)
RETURNING id, created_at, updated_at`

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.FirstName,
		account.MiddleName,
		account.LastName,
		account.Gender,
		account.Phone,
		account.Email,
		account.DOB,
		account.Aadhar,
		account.PAN,
		account.IFSC,
		account.Branch,
		account.Address,
		account.City,
		account.Pincode,
		account.Balance.StringFixed(2),
		account.AccountType,
		account.Status,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	logger.Info("account repository create success", logger.Fields{
		"accountId":     account.ID,
		"accountNumber": account.AccountNumber,
	})

	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT id,
       account_number,
       first_name,
       middle_name,
       last_name,
       gender,
       phone,
       email,
       dob,
       aadhar,
       pan,
       ifsc,
       branch,
       address,
       city,
       pincode,
       balance,
       account_type,
       status,
       created_at,
       updated_at
FROM accounts
WHERE account_number = $1`

	var (
		account    domain.Account
		middleName sql.NullString
		pan        sql.NullString
		balance    string
	)

	if err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.ID,
		&account.AccountNumber,
		&account.FirstName,
		&middleName,
		&account.LastName,
		&account.Gender,
		&account.Phone,
		&account.Email,
		&account.DOB,
		&account.Aadhar,
		&pan,
		&account.IFSC,
		&account.Branch,
		&account.Address,
		&account.City,
		&account.Pincode,
		&balance,
		&account.AccountType,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	if middleName.Valid {
		value := middleName.String
		account.MiddleName = &value
	}
	if pan.Valid {
		value := pan.String
		account.PAN = &value
	}

	parsedBalance, err := decimal.NewFromString(balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse account balance: %w", err)
	}
	account.Balance = parsedBalance

	return account, nil
}

func (r *AccountRepository) UpdateDetails(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository update details", logger.Fields{
		"accountNumber": account.AccountNumber,
	})

	const query = `
UPDATE accounts
SET first_name = $2,
    middle_name = $3,
    last_name = $4,
    gender = $5,
    phone = $6,
    email = $7,
    ifsc = $8,
    branch = $9,
    address = $10,
    city = $11,
    pincode = $12,
    account_type = $13,
    status = $14,
    updated_at = NOW()
WHERE account_number = $1
RETURNING id, created_at, updated_at`

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.FirstName,
		account.MiddleName,
		account.LastName,
		account.Gender,
		account.Phone,
		account.Email,
		account.IFSC,
		account.Branch,
		account.Address,
		account.City,
		account.Pincode,
		account.AccountType,
		account.Status,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		logger.Error("account repository update details failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("update account details: %w", err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return account, nil
}

func (r *AccountRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE phone = $1`, phone).Scan(&count); err != nil {
		return false, fmt.Errorf("check phone exists: %w", err)
	}

	return count > 0, nil
}
