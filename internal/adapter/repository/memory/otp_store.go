package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

// OTPStore keeps issued codes in memory. Records are never deleted; the
// newest row per (account, purpose) wins, ties broken by insertion id.
type OTPStore struct {
	mu     sync.Mutex
	otps   []domain.OTP
	nextID int64
	now    func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{now: time.Now}
}

func (s *OTPStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *OTPStore) Create(_ context.Context, otp domain.OTP) (domain.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	otp.ID = s.nextID
	otp.CreatedAt = s.now()
	otp.Verified = false
	s.otps = append(s.otps, otp)
	return otp, nil
}

func (s *OTPStore) GetLatest(_ context.Context, accountNumber string, purpose domain.OTPPurpose) (domain.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := -1
	for i, otp := range s.otps {
		if otp.AccountNumber != accountNumber || otp.Purpose != purpose {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		current := s.otps[best]
		if otp.CreatedAt.After(current.CreatedAt) || (otp.CreatedAt.Equal(current.CreatedAt) && otp.ID > current.ID) {
			best = i
		}
	}
	if best == -1 {
		return domain.OTP{}, commons.ErrRecordNotFound
	}
	return s.otps[best], nil
}

func (s *OTPStore) MarkVerified(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.otps {
		if s.otps[i].ID == id && !s.otps[i].Verified {
			s.otps[i].Verified = true
			return nil
		}
	}
	return commons.ErrRecordNotFound
}
