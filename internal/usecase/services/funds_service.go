package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/notification"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
	"github.com/api-sage/mini-bank-ledger/internal/usecase/service_interfaces"
)

// FundsService coordinates the two-phase OTP-gated mutations. Phase 1
// validates and stages the operation, then issues and delivers a code.
// Phase 2 pops the staged operation, verifies the code and applies the
// mutation through the ledger repository as one atomic unit. The delivery
// call happens before any balance lock is taken; no lock is ever held
// across it.
// Verify that FundsService implements the service_interfaces.FundsService interface
var _ service_interfaces.FundsService = (*FundsService)(nil)

type FundsService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
	pending     repo_interfaces.PendingStore
	otpService  service_interfaces.OTPService
	gateway     notification.Gateway
	composer    notification.Composer
	newToken    func() string
}

func NewFundsService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	pending repo_interfaces.PendingStore,
	otpService service_interfaces.OTPService,
	gateway notification.Gateway,
	composer notification.Composer,
) *FundsService {
	return &FundsService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		pending:     pending,
		otpService:  otpService,
		gateway:     gateway,
		composer:    composer,
		newToken:    uuid.NewString,
	}
}

func (s *FundsService) RequestCredit(ctx context.Context, principal domain.Principal, req models.CreditRequest) (commons.Response[models.OTPChallengeResponse], error) {
	logger.Info("funds service credit request", logger.Fields{
		"channelId": principal.ChannelID,
		"payload":   logger.SanitizePayload(req),
	})

	if !principal.Can(domain.CapabilityFundsMovement) {
		return commons.ErrorResponse[models.OTPChallengeResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.OTPChallengeResponse]("validation failed", err.Error()), err
	}

	amount, _ := decimal.NewFromString(strings.TrimSpace(req.Amount))
	accountNumber := strings.TrimSpace(req.AccountNumber)

	account, resp, err := s.fetchActiveAccount(ctx, accountNumber, "Account not found")
	if err != nil {
		return resp, err
	}

	op := domain.PendingOperation{
		Purpose:       domain.OTPPurposeCredit,
		AccountNumber: account.AccountNumber,
		Amount:        amount,
	}

	return s.issueChallenge(ctx, account, op)
}

func (s *FundsService) ConfirmCredit(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.MovementResponse], error) {
	op, resp, err := s.takePending(ctx, principal, req, domain.OTPPurposeCredit)
	if err != nil {
		return resp, err
	}

	if postErr := s.ledgerRepo.Credit(ctx, op.AccountNumber, op.Amount, "Amount credited"); postErr != nil {
		return s.mapPostingError(op, postErr)
	}

	logger.Info("funds service credit committed", logger.Fields{
		"accountNumber": op.AccountNumber,
		"amount":        op.Amount.StringFixed(2),
	})

	return commons.SuccessResponse("credit successful", s.movementResponse(ctx, op, domain.EntryKindCredit)), nil
}

func (s *FundsService) RequestDebit(ctx context.Context, principal domain.Principal, req models.DebitRequest) (commons.Response[models.OTPChallengeResponse], error) {
	logger.Info("funds service debit request", logger.Fields{
		"channelId": principal.ChannelID,
		"payload":   logger.SanitizePayload(req),
	})

	if !principal.Can(domain.CapabilityFundsMovement) {
		return commons.ErrorResponse[models.OTPChallengeResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.OTPChallengeResponse]("validation failed", err.Error()), err
	}

	amount, _ := decimal.NewFromString(strings.TrimSpace(req.Amount))
	accountNumber := strings.TrimSpace(req.AccountNumber)

	account, resp, err := s.fetchActiveAccount(ctx, accountNumber, "Account not found")
	if err != nil {
		return resp, err
	}

	// No OTP is issued when the balance already falls short; the balance is
	// re-checked inside the phase-2 posting because it may move in between.
	if account.Balance.LessThan(amount) {
		return commons.ErrorResponse[models.OTPChallengeResponse]("Insufficient balance", commons.ErrInsufficientBalance.Error()), commons.ErrInsufficientBalance
	}

	op := domain.PendingOperation{
		Purpose:       domain.OTPPurposeDebit,
		AccountNumber: account.AccountNumber,
		Amount:        amount,
	}

	return s.issueChallenge(ctx, account, op)
}

func (s *FundsService) ConfirmDebit(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.MovementResponse], error) {
	op, resp, err := s.takePending(ctx, principal, req, domain.OTPPurposeDebit)
	if err != nil {
		return resp, err
	}

	if postErr := s.ledgerRepo.Debit(ctx, op.AccountNumber, op.Amount, "Amount debited"); postErr != nil {
		return s.mapPostingError(op, postErr)
	}

	logger.Info("funds service debit committed", logger.Fields{
		"accountNumber": op.AccountNumber,
		"amount":        op.Amount.StringFixed(2),
	})

	return commons.SuccessResponse("debit successful", s.movementResponse(ctx, op, domain.EntryKindDebit)), nil
}

func (s *FundsService) RequestTransfer(ctx context.Context, principal domain.Principal, req models.TransferRequest) (commons.Response[models.OTPChallengeResponse], error) {
	logger.Info("funds service transfer request", logger.Fields{
		"channelId": principal.ChannelID,
		"payload":   logger.SanitizePayload(req),
	})

	if !principal.Can(domain.CapabilityFundsMovement) {
		return commons.ErrorResponse[models.OTPChallengeResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.OTPChallengeResponse]("validation failed", err.Error()), err
	}

	fromNumber := strings.TrimSpace(req.FromAccountNumber)
	toNumber := strings.TrimSpace(req.ToAccountNumber)
	if fromNumber == toNumber {
		return commons.ErrorResponse[models.OTPChallengeResponse]("validation failed", commons.ErrSameAccount.Error()), commons.ErrSameAccount
	}

	amount, _ := decimal.NewFromString(strings.TrimSpace(req.Amount))

	from, resp, err := s.fetchActiveAccount(ctx, fromNumber, "Source account not found")
	if err != nil {
		return resp, err
	}
	_, resp, err = s.fetchActiveAccount(ctx, toNumber, "Destination account not found")
	if err != nil {
		return resp, err
	}

	if from.Balance.LessThan(amount) {
		return commons.ErrorResponse[models.OTPChallengeResponse]("Insufficient balance", commons.ErrInsufficientBalance.Error()), commons.ErrInsufficientBalance
	}

	// The code goes to the source holder only; the destination holder is
	// not involved until the ledger entries land.
	op := domain.PendingOperation{
		Purpose:            domain.OTPPurposeTransfer,
		AccountNumber:      from.AccountNumber,
		CounterpartyNumber: toNumber,
		Amount:             amount,
	}

	return s.issueChallenge(ctx, from, op)
}

func (s *FundsService) ConfirmTransfer(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.TransferResponse], error) {
	op, resp, err := s.takePending(ctx, principal, req, domain.OTPPurposeTransfer)
	if err != nil {
		return commons.AsError[models.TransferResponse](resp), err
	}

	reference := s.newToken()
	if postErr := s.ledgerRepo.Transfer(ctx, op.AccountNumber, op.CounterpartyNumber, op.Amount, reference); postErr != nil {
		mapped, _ := s.mapPostingError(op, postErr)
		return commons.AsError[models.TransferResponse](mapped), postErr
	}

	logger.Info("funds service transfer committed", logger.Fields{
		"fromAccountNumber": op.AccountNumber,
		"toAccountNumber":   op.CounterpartyNumber,
		"amount":            op.Amount.StringFixed(2),
		"reference":         reference,
	})

	return commons.SuccessResponse("transfer successful", models.TransferResponse{
		FromAccountNumber: op.AccountNumber,
		ToAccountNumber:   op.CounterpartyNumber,
		Amount:            op.Amount.StringFixed(2),
		Reference:         reference,
	}), nil
}

// issueChallenge stages the operation, issues a code and delivers it. Any
// failure clears the staged operation so no dangling pending state remains;
// an already-persisted code is left to expire unused.
func (s *FundsService) issueChallenge(ctx context.Context, account domain.Account, op domain.PendingOperation) (commons.Response[models.OTPChallengeResponse], error) {
	if strings.TrimSpace(account.Email) == "" {
		err := fmt.Errorf("account %s has no contact address", account.AccountNumber)
		return commons.ErrorResponse[models.OTPChallengeResponse]("Failed to deliver OTP", err.Error()), commons.ErrDeliveryFailed
	}

	token := s.newToken()
	if err := s.pending.Stage(ctx, token, op); err != nil {
		return commons.ErrorResponse[models.OTPChallengeResponse]("failed to process request", "Unable to stage operation right now"), err
	}

	code, err := s.otpService.Issue(ctx, account.AccountNumber, op.Purpose)
	if err != nil {
		_ = s.pending.Clear(ctx, token)
		return commons.ErrorResponse[models.OTPChallengeResponse]("failed to process request", "Unable to issue OTP right now"), err
	}

	if err := s.gateway.Deliver(ctx, account.Email, s.composer.Subject(), s.composer.Body(code, op)); err != nil {
		_ = s.pending.Clear(ctx, token)
		logger.Error("funds service otp delivery failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
			"purpose":       op.Purpose,
		})
		return commons.ErrorResponse[models.OTPChallengeResponse]("Failed to deliver OTP", err.Error()), commons.ErrDeliveryFailed
	}

	logger.Info("funds service otp challenge issued", logger.Fields{
		"accountNumber": account.AccountNumber,
		"purpose":       op.Purpose,
	})

	return commons.SuccessResponse("OTP sent to registered contact", models.OTPChallengeResponse{
		InteractionToken: token,
		AccountNumber:    account.AccountNumber,
		Purpose:          string(op.Purpose),
		Amount:           op.Amount.StringFixed(2),
	}), nil
}

// takePending pops the staged operation and verifies the submitted code.
// The pop happens before verification, so a failed attempt always discards
// the staged parameters and the caller must restart from phase 1.
func (s *FundsService) takePending(ctx context.Context, principal domain.Principal, req models.ConfirmRequest, purpose domain.OTPPurpose) (domain.PendingOperation, commons.Response[models.MovementResponse], error) {
	logger.Info("funds service confirm request", logger.Fields{
		"channelId": principal.ChannelID,
		"purpose":   purpose,
		"payload":   logger.SanitizePayload(req),
	})

	if !principal.Can(domain.CapabilityFundsMovement) {
		return domain.PendingOperation{}, commons.ErrorResponse[models.MovementResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return domain.PendingOperation{}, commons.ErrorResponse[models.MovementResponse]("validation failed", err.Error()), err
	}

	op, ok, err := s.pending.Take(ctx, strings.TrimSpace(req.InteractionToken))
	if err != nil {
		return domain.PendingOperation{}, commons.ErrorResponse[models.MovementResponse]("failed to process request", "Unable to load pending operation right now"), err
	}
	if !ok || op.Purpose != purpose {
		return domain.PendingOperation{}, commons.ErrorResponse[models.MovementResponse]("No pending operation", commons.ErrNoPendingOperation.Error()), commons.ErrNoPendingOperation
	}

	outcome, err := s.otpService.Verify(ctx, op.AccountNumber, purpose, req.OTP)
	if err != nil {
		return domain.PendingOperation{}, commons.ErrorResponse[models.MovementResponse]("failed to process request", "Unable to verify OTP right now"), err
	}
	if outcome != domain.VerifyOutcomeOK {
		logger.Info("funds service otp rejected", logger.Fields{
			"accountNumber": op.AccountNumber,
			"purpose":       purpose,
			"outcome":       outcome,
		})
		return domain.PendingOperation{}, commons.ErrorResponse[models.MovementResponse]("OTP rejected", string(outcome)), commons.ErrOTPRejected
	}

	return op, commons.Response[models.MovementResponse]{}, nil
}

// mapPostingError reports a phase-2 posting failure. The OTP is already
// consumed at this point, so the caller has to restart the whole flow; a
// commit-stage failure is the severest case the coordinator logs.
func (s *FundsService) mapPostingError(op domain.PendingOperation, err error) (commons.Response[models.MovementResponse], error) {
	logger.Error("funds service posting failed after otp consumed", err, logger.Fields{
		"accountNumber": op.AccountNumber,
		"purpose":       op.Purpose,
		"amount":        op.Amount.StringFixed(2),
	})

	return commons.ErrorResponse[models.MovementResponse](postingFailureMessage(err), err.Error()), err
}

func postingFailureMessage(err error) string {
	switch {
	case errors.Is(err, commons.ErrInsufficientBalance):
		return "Insufficient balance"
	case errors.Is(err, commons.ErrRecordNotFound):
		return "Account not found"
	default:
		return "failed to commit operation"
	}
}

func (s *FundsService) movementResponse(ctx context.Context, op domain.PendingOperation, kind domain.EntryKind) models.MovementResponse {
	response := models.MovementResponse{
		AccountNumber: op.AccountNumber,
		Kind:          string(kind),
		Amount:        op.Amount.StringFixed(2),
	}

	if account, err := s.accountRepo.GetByAccountNumber(ctx, op.AccountNumber); err == nil {
		response.Balance = account.Balance.StringFixed(2)
	}

	return response
}

func (s *FundsService) fetchActiveAccount(ctx context.Context, accountNumber, notFoundMessage string) (domain.Account, commons.Response[models.OTPChallengeResponse], error) {
	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, commons.ErrorResponse[models.OTPChallengeResponse](notFoundMessage), err
		}
		return domain.Account{}, commons.ErrorResponse[models.OTPChallengeResponse]("failed to process request", "Unable to load account right now"), err
	}

	if account.Status != domain.AccountStatusActive {
		err := fmt.Errorf("account %s is not active", accountNumber)
		return domain.Account{}, commons.ErrorResponse[models.OTPChallengeResponse]("validation failed", err.Error()), err
	}

	return account, commons.Response[models.OTPChallengeResponse]{}, nil
}
