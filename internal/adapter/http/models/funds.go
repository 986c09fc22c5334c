package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type CreditRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
}

func (r CreditRequest) Validate() error {
	return validateSingleAccountRequest(r.AccountNumber, r.Amount)
}

type DebitRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
}

func (r DebitRequest) Validate() error {
	return validateSingleAccountRequest(r.AccountNumber, r.Amount)
}

type TransferRequest struct {
	FromAccountNumber string `json:"fromAccountNumber"`
	ToAccountNumber   string `json:"toAccountNumber"`
	Amount            string `json:"amount"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if !isAccountNumber(r.FromAccountNumber) {
		errs = append(errs, "fromAccountNumber must be MINI followed by 10 digits")
	}
	if !isAccountNumber(r.ToAccountNumber) {
		errs = append(errs, "toAccountNumber must be MINI followed by 10 digits")
	}
	if !isPositiveAmount(r.Amount) {
		errs = append(errs, "amount must be a positive number with at most two decimal places")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// OTPChallengeResponse is the phase-1 reply: the caller echoes the
// interaction token together with the delivered code in phase 2.
type OTPChallengeResponse struct {
	InteractionToken string `json:"interactionToken"`
	AccountNumber    string `json:"accountNumber"`
	Purpose          string `json:"purpose"`
	Amount           string `json:"amount"`
}

type ConfirmRequest struct {
	InteractionToken string `json:"interactionToken"`
	OTP              string `json:"otp"`
}

func (r ConfirmRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.InteractionToken) == "" {
		errs = append(errs, "interactionToken is required")
	}
	code := strings.TrimSpace(r.OTP)
	if len(code) != 6 || !digitsOnly(code) {
		errs = append(errs, "otp must be exactly 6 digits")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type MovementResponse struct {
	AccountNumber string `json:"accountNumber"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance,omitempty"`
}

type TransferResponse struct {
	FromAccountNumber string `json:"fromAccountNumber"`
	ToAccountNumber   string `json:"toAccountNumber"`
	Amount            string `json:"amount"`
	Reference         string `json:"reference"`
}

func validateSingleAccountRequest(accountNumber, amount string) error {
	var errs []string

	if !isAccountNumber(accountNumber) {
		errs = append(errs, "accountNumber must be MINI followed by 10 digits")
	}
	if !isPositiveAmount(amount) {
		errs = append(errs, "amount must be a positive number with at most two decimal places")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Amounts are posted at cent precision. Sub-cent input is rejected here so
// the amount the OTP authorizes is exactly the amount that commits.
func isPositiveAmount(value string) bool {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return amount.GreaterThan(decimal.Zero) && amount.Exponent() >= -2
}

func isNonNegativeAmount(value string) bool {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return !amount.IsNegative() && amount.Exponent() >= -2
}
