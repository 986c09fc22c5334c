package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
	"github.com/api-sage/mini-bank-ledger/internal/usecase/service_interfaces"
)

// Verify that AccountService implements the service_interfaces.AccountService interface
var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
}

func NewAccountService(accountRepo repo_interfaces.AccountRepository, ledgerRepo repo_interfaces.LedgerRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, principal domain.Principal, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"channelId": principal.ChannelID,
		"payload":   logger.SanitizePayload(req),
	})

	if !principal.Can(domain.CapabilityAccountAdmin) {
		return commons.ErrorResponse[models.AccountResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		logger.Error("account service create account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	dob, err := time.Parse("2006-01-02", strings.TrimSpace(req.DOB))
	if err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", "dob must be in YYYY-MM-DD format"), err
	}

	phone := strings.TrimSpace(req.Phone)
	phoneExists, err := s.accountRepo.ExistsByPhone(ctx, phone)
	if err != nil {
		logger.Error("account service create account phone check failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}
	if phoneExists {
		err := fmt.Errorf("phone %s already belongs to an account", phone)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	initialDeposit := decimal.Zero
	if trimmed := strings.TrimSpace(req.InitialDeposit); trimmed != "" {
		initialDeposit, err = decimal.NewFromString(trimmed)
		if err != nil {
			return commons.ErrorResponse[models.AccountResponse]("validation failed", "initialDeposit must be a number"), err
		}
	}

	var middleName *string
	if trimmed := strings.TrimSpace(req.MiddleName); trimmed != "" {
		middleName = &trimmed
	}
	var pan *string
	if trimmed := strings.TrimSpace(req.PAN); trimmed != "" {
		pan = &trimmed
	}

	accountNumber, err := generateAccountNumber()
	if err != nil {
		logger.Error("account service generate account number failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	account := domain.Account{
		AccountNumber: accountNumber,
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    middleName,
		LastName:      strings.TrimSpace(req.LastName),
		Gender:        strings.TrimSpace(req.Gender),
		Phone:         phone,
		Email:         strings.TrimSpace(req.Email),
		DOB:           dob,
		Aadhar:        strings.TrimSpace(req.Aadhar),
		PAN:           pan,
		IFSC:          strings.TrimSpace(req.IFSC),
		Branch:        strings.TrimSpace(req.Branch),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		Pincode:       strings.TrimSpace(req.Pincode),
		Balance:       decimal.Zero,
		AccountType:   domain.AccountType(strings.ToUpper(strings.TrimSpace(req.AccountType))),
		Status:        domain.AccountStatusActive,
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		logger.Error("account service create account repository failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	// The opening balance lands through the ledger so the first statement
	// line matches the funds on the account.
	if initialDeposit.IsPositive() {
		if err := s.ledgerRepo.Credit(ctx, created.AccountNumber, initialDeposit, "Initial deposit"); err != nil {
			logger.Error("account service initial deposit failed", err, logger.Fields{
				"accountNumber": created.AccountNumber,
			})
			return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Account created but initial deposit failed"), err
		}
		created.Balance = initialDeposit
	}

	logger.Info("account service create account success", logger.Fields{
		"accountId":     created.ID,
		"accountNumber": created.AccountNumber,
	})

	return commons.SuccessResponse("account created successfully", mapAccountToResponse(created)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, principal domain.Principal, accountNumber string) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service get account request", logger.Fields{
		"channelId":     principal.ChannelID,
		"accountNumber": accountNumber,
	})

	if !principal.Can(domain.CapabilityAccountAdmin) {
		return commons.ErrorResponse[models.AccountResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}

	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", "accountNumber is required"), fmt.Errorf("accountNumber is required")
	}

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		logger.Error("account service get account failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, principal domain.Principal, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service update account request", logger.Fields{
		"channelId": principal.ChannelID,
		"payload":   logger.SanitizePayload(req),
	})

	if !principal.Can(domain.CapabilityAccountAdmin) {
		return commons.ErrorResponse[models.AccountResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	existing, err := s.accountRepo.GetByAccountNumber(ctx, strings.TrimSpace(req.AccountNumber))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to update account", "Unable to update account right now"), err
	}

	var middleName *string
	if trimmed := strings.TrimSpace(req.MiddleName); trimmed != "" {
		middleName = &trimmed
	}

	existing.FirstName = strings.TrimSpace(req.FirstName)
	existing.MiddleName = middleName
	existing.LastName = strings.TrimSpace(req.LastName)
	existing.Gender = strings.TrimSpace(req.Gender)
	existing.Phone = strings.TrimSpace(req.Phone)
	existing.Email = strings.TrimSpace(req.Email)
	existing.IFSC = strings.TrimSpace(req.IFSC)
	existing.Branch = strings.TrimSpace(req.Branch)
	existing.Address = strings.TrimSpace(req.Address)
	existing.City = strings.TrimSpace(req.City)
	existing.Pincode = strings.TrimSpace(req.Pincode)
	existing.AccountType = domain.AccountType(strings.ToUpper(strings.TrimSpace(req.AccountType)))

	updated, err := s.accountRepo.UpdateDetails(ctx, existing)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		logger.Error("account service update account failed", err, logger.Fields{
			"accountNumber": existing.AccountNumber,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to update account", "Unable to update account right now"), err
	}

	logger.Info("account service update account success", logger.Fields{
		"accountNumber": updated.AccountNumber,
	})

	return commons.SuccessResponse("account updated successfully", mapAccountToResponse(updated)), nil
}

func (s *AccountService) Statement(ctx context.Context, principal domain.Principal, accountNumber string, limit int) (commons.Response[models.StatementResponse], error) {
	logger.Info("account service statement request", logger.Fields{
		"channelId":     principal.ChannelID,
		"accountNumber": accountNumber,
		"limit":         limit,
	})

	if !principal.Can(domain.CapabilityAccountAdmin) {
		return commons.ErrorResponse[models.StatementResponse]("forbidden", commons.ErrForbidden.Error()), commons.ErrForbidden
	}

	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return commons.ErrorResponse[models.StatementResponse]("validation failed", "accountNumber is required"), fmt.Errorf("accountNumber is required")
	}

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.StatementResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.StatementResponse]("failed to get statement", "Unable to fetch statement right now"), err
	}

	entries, err := s.ledgerRepo.ListByAccount(ctx, accountNumber, limit)
	if err != nil {
		logger.Error("account service statement list failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return commons.ErrorResponse[models.StatementResponse]("failed to get statement", "Unable to fetch statement right now"), err
	}

	statement := models.StatementResponse{
		AccountNumber: account.AccountNumber,
		HolderName:    holderName(account),
		Balance:       account.Balance.StringFixed(2),
		Entries:       make([]models.LedgerEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		statement.Entries = append(statement.Entries, models.LedgerEntryResponse{
			Kind:      string(entry.Kind),
			Amount:    entry.Amount.StringFixed(2),
			Remarks:   entry.Remarks,
			Reference: entry.Reference,
			Timestamp: entry.CreatedAt.Format(time.RFC3339),
		})
	}

	return commons.SuccessResponse("statement fetched successfully", statement), nil
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	response := models.AccountResponse{
		AccountNumber: account.AccountNumber,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		Gender:        account.Gender,
		Phone:         account.Phone,
		Email:         account.Email,
		DOB:           account.DOB.Format("2006-01-02"),
		Aadhar:        account.Aadhar,
		IFSC:          account.IFSC,
		Branch:        account.Branch,
		Address:       account.Address,
		City:          account.City,
		Pincode:       account.Pincode,
		Balance:       account.Balance.StringFixed(2),
		AccountType:   string(account.AccountType),
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
	if account.MiddleName != nil {
		response.MiddleName = *account.MiddleName
	}
	if account.PAN != nil {
		response.PAN = *account.PAN
	}
	return response
}

func holderName(account domain.Account) string {
	parts := []string{account.FirstName}
	if account.MiddleName != nil {
		parts = append(parts, *account.MiddleName)
	}
	parts = append(parts, account.LastName)
	return strings.Join(parts, " ")
}

// generateAccountNumber produces the branch's MINI-prefixed 10-digit
// account number format.
func generateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000_000_000))
	if err != nil {
		return "", fmt.Errorf("generate account number: %w", err)
	}
	return fmt.Sprintf("MINI%010d", n.Int64()), nil
}
