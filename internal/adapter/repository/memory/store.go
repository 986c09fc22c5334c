package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

// Store is an in-memory ledger store satisfying the account, ledger and otp
// repository contracts. One mutex serializes every mutation, so each
// operation is atomic: a failed guard leaves no partial writes behind.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*domain.Account
	entries     []domain.LedgerEntry
	nextAccount int64
	nextEntry   int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		now:      time.Now,
	}
}

// SetClock overrides the store clock. Tests use it to cross the OTP expiry
// window without sleeping.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccount++
	account.ID = s.nextAccount
	account.CreatedAt = s.now()
	account.UpdatedAt = account.CreatedAt

	stored := account
	s.accounts[account.AccountNumber] = &stored
	return account, nil
}

func (s *Store) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return *account, nil
}

func (s *Store) UpdateDetails(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.AccountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}

	stored.FirstName = account.FirstName
	stored.MiddleName = account.MiddleName
	stored.LastName = account.LastName
	stored.Gender = account.Gender
	stored.Phone = account.Phone
	stored.Email = account.Email
	stored.IFSC = account.IFSC
	stored.Branch = account.Branch
	stored.Address = account.Address
	stored.City = account.City
	stored.Pincode = account.Pincode
	stored.AccountType = account.AccountType
	stored.Status = account.Status
	stored.UpdatedAt = s.now()

	return *stored, nil
}

func (s *Store) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Credit(_ context.Context, accountNumber string, amount decimal.Decimal, remarks string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.activeAccount(accountNumber)
	if err != nil {
		return err
	}

	account.Balance = account.Balance.Add(amount)
	account.UpdatedAt = s.now()
	s.appendEntry(accountNumber, domain.EntryKindCredit, amount, remarks, "")
	return nil
}

func (s *Store) Debit(_ context.Context, accountNumber string, amount decimal.Decimal, remarks string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.activeAccount(accountNumber)
	if err != nil {
		return err
	}
	if account.Balance.LessThan(amount) {
		return commons.ErrInsufficientBalance
	}

	account.Balance = account.Balance.Sub(amount)
	account.UpdatedAt = s.now()
	s.appendEntry(accountNumber, domain.EntryKindDebit, amount, remarks, "")
	return nil
}

func (s *Store) Transfer(_ context.Context, fromAccountNumber, toAccountNumber string, amount decimal.Decimal, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.activeAccount(fromAccountNumber)
	if err != nil {
		return err
	}
	to, err := s.activeAccount(toAccountNumber)
	if err != nil {
		return err
	}
	if from.Balance.LessThan(amount) {
		return commons.ErrInsufficientBalance
	}

	now := s.now()
	from.Balance = from.Balance.Sub(amount)
	from.UpdatedAt = now
	to.Balance = to.Balance.Add(amount)
	to.UpdatedAt = now

	debitRemarks, creditRemarks := domain.TransferLegRemarks(fromAccountNumber, toAccountNumber)
	s.appendEntry(fromAccountNumber, domain.EntryKindTransferOut, amount, debitRemarks, reference)
	s.appendEntry(toAccountNumber, domain.EntryKindTransferIn, amount, creditRemarks, reference)
	return nil
}

func (s *Store) ListByAccount(_ context.Context, accountNumber string, limit int) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	matched := make([]domain.LedgerEntry, 0, limit)
	for _, entry := range s.entries {
		if entry.AccountNumber == accountNumber {
			matched = append(matched, entry)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) activeAccount(accountNumber string) (*domain.Account, error) {
	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, commons.ErrRecordNotFound
	}
	if account.Status != domain.AccountStatusActive {
		return nil, commons.ErrRecordNotFound
	}
	return account, nil
}

func (s *Store) appendEntry(accountNumber string, kind domain.EntryKind, amount decimal.Decimal, remarks, reference string) {
	s.nextEntry++
	s.entries = append(s.entries, domain.LedgerEntry{
		ID:            s.nextEntry,
		AccountNumber: accountNumber,
		Kind:          kind,
		Amount:        amount,
		Remarks:       remarks,
		Reference:     reference,
		CreatedAt:     s.now(),
	})
}
