package service_interfaces

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type AccountService interface {
	CreateAccount(ctx context.Context, principal domain.Principal, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, principal domain.Principal, accountNumber string) (commons.Response[models.AccountResponse], error)
	UpdateAccount(ctx context.Context, principal domain.Principal, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error)
	Statement(ctx context.Context, principal domain.Principal, accountNumber string, limit int) (commons.Response[models.StatementResponse], error)
}
