package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

type OTPRepository struct {
	db *sql.DB
}

func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp domain.OTP) (domain.OTP, error) {
	logger.Info("otp repository create", logger.Fields{
		"accountNumber": otp.AccountNumber,
		"purpose":       otp.Purpose,
	})

	const query = `
INSERT INTO otps (account_number, purpose, code_hash, verified)
VALUES ($1, $2, $3, FALSE)
RETURNING id, created_at`

	var (
		id        int64
		createdAt time.Time
	)

	if err := r.db.QueryRowContext(ctx, query, otp.AccountNumber, otp.Purpose, otp.CodeHash).Scan(&id, &createdAt); err != nil {
		logger.Error("otp repository create failed", err, logger.Fields{
			"accountNumber": otp.AccountNumber,
			"purpose":       otp.Purpose,
		})
		return domain.OTP{}, fmt.Errorf("create otp: %w", err)
	}

	otp.ID = id
	otp.CreatedAt = createdAt
	otp.Verified = false

	return otp, nil
}

func (r *OTPRepository) GetLatest(ctx context.Context, accountNumber string, purpose domain.OTPPurpose) (domain.OTP, error) {
	const query = `
SELECT id, account_number, purpose, code_hash, created_at, verified
FROM otps
WHERE account_number = $1
  AND purpose = $2
ORDER BY created_at DESC, id DESC
LIMIT 1`

	var otp domain.OTP
	if err := r.db.QueryRowContext(ctx, query, accountNumber, purpose).Scan(
		&otp.ID,
		&otp.AccountNumber,
		&otp.Purpose,
		&otp.CodeHash,
		&otp.CreatedAt,
		&otp.Verified,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.OTP{}, commons.ErrRecordNotFound
		}
		logger.Error("otp repository get latest failed", err, logger.Fields{
			"accountNumber": accountNumber,
			"purpose":       purpose,
		})
		return domain.OTP{}, fmt.Errorf("get latest otp: %w", err)
	}

	return otp, nil
}

func (r *OTPRepository) MarkVerified(ctx context.Context, id int64) error {
	const query = `
UPDATE otps
SET verified = TRUE
WHERE id = $1
  AND verified = FALSE`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("otp repository mark verified failed", err, logger.Fields{
			"otpId": id,
		})
		return fmt.Errorf("mark otp verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark otp verified rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrRecordNotFound
	}

	logger.Info("otp repository mark verified success", logger.Fields{
		"otpId": id,
	})
	return nil
}
