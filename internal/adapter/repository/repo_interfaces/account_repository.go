package repo_interfaces

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	// UpdateDetails persists contact and KYC fields only. Balances move
	// exclusively through the LedgerRepository.
	UpdateDetails(ctx context.Context, account domain.Account) (domain.Account, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}
