package service_interfaces

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type FundsService interface {
	RequestCredit(ctx context.Context, principal domain.Principal, req models.CreditRequest) (commons.Response[models.OTPChallengeResponse], error)
	ConfirmCredit(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.MovementResponse], error)
	RequestDebit(ctx context.Context, principal domain.Principal, req models.DebitRequest) (commons.Response[models.OTPChallengeResponse], error)
	ConfirmDebit(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.MovementResponse], error)
	RequestTransfer(ctx context.Context, principal domain.Principal, req models.TransferRequest) (commons.Response[models.OTPChallengeResponse], error)
	ConfirmTransfer(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.TransferResponse], error)
}
