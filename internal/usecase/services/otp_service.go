package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
	"github.com/api-sage/mini-bank-ledger/internal/usecase/service_interfaces"
)

// OTPService issues and verifies one-time codes scoped to an account and a
// purpose. Codes are stored as bcrypt hashes; the plaintext exists only in
// the Issue return value on its way to the notification gateway.
// Verify that OTPService implements the service_interfaces.OTPService interface
var _ service_interfaces.OTPService = (*OTPService)(nil)

type OTPService struct {
	otpRepo repo_interfaces.OTPRepository
	ttl     time.Duration
	now     func() time.Time
}

func NewOTPService(otpRepo repo_interfaces.OTPRepository, ttl time.Duration) *OTPService {
	return &OTPService{
		otpRepo: otpRepo,
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the service clock for expiry tests.
func (s *OTPService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *OTPService) Issue(ctx context.Context, accountNumber string, purpose domain.OTPPurpose) (string, error) {
	code, err := generateCode()
	if err != nil {
		logger.Error("otp service generate code failed", err, nil)
		return "", fmt.Errorf("generate otp code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("otp service hash code failed", err, nil)
		return "", fmt.Errorf("hash otp code: %w", err)
	}

	record := domain.OTP{
		AccountNumber: accountNumber,
		Purpose:       purpose,
		CodeHash:      string(hash),
	}

	created, err := s.otpRepo.Create(ctx, record)
	if err != nil {
		return "", fmt.Errorf("persist otp: %w", err)
	}

	logger.Info("otp service issued", logger.Fields{
		"otpId":         created.ID,
		"accountNumber": accountNumber,
		"purpose":       purpose,
	})

	return code, nil
}

func (s *OTPService) Verify(ctx context.Context, accountNumber string, purpose domain.OTPPurpose, code string) (domain.VerifyOutcome, error) {
	record, err := s.otpRepo.GetLatest(ctx, accountNumber, purpose)
	if err != nil {
		if err == commons.ErrRecordNotFound {
			logger.Info("otp service verify no record", logger.Fields{
				"accountNumber": accountNumber,
				"purpose":       purpose,
			})
			return domain.VerifyOutcomeNotFound, nil
		}
		return "", fmt.Errorf("load otp: %w", err)
	}

	if s.now().After(record.CreatedAt.Add(s.ttl)) {
		logger.Info("otp service verify expired", logger.Fields{
			"otpId":         record.ID,
			"accountNumber": accountNumber,
			"purpose":       purpose,
		})
		return domain.VerifyOutcomeExpired, nil
	}

	if record.Verified {
		logger.Info("otp service verify already used", logger.Fields{
			"otpId":         record.ID,
			"accountNumber": accountNumber,
			"purpose":       purpose,
		})
		return domain.VerifyOutcomeAlreadyUsed, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		logger.Info("otp service verify mismatch", logger.Fields{
			"otpId":         record.ID,
			"accountNumber": accountNumber,
			"purpose":       purpose,
		})
		return domain.VerifyOutcomeMismatch, nil
	}

	if err := s.otpRepo.MarkVerified(ctx, record.ID); err != nil {
		if err == commons.ErrRecordNotFound {
			// A concurrent verify consumed the record between the read and
			// the guarded update.
			return domain.VerifyOutcomeAlreadyUsed, nil
		}
		return "", fmt.Errorf("mark otp verified: %w", err)
	}

	logger.Info("otp service verify success", logger.Fields{
		"otpId":         record.ID,
		"accountNumber": accountNumber,
		"purpose":       purpose,
	})

	return domain.VerifyOutcomeOK, nil
}

// generateCode draws a 6-digit code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
