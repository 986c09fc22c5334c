package models

import (
	"errors"
	"strings"
)

type CreateAccountRequest struct {
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName"`
	LastName       string `json:"lastName"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	DOB            string `json:"dob"`
	Aadhar         string `json:"aadhar"`
	PAN            string `json:"pan"`
	IFSC           string `json:"ifsc"`
	Branch         string `json:"branch"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Pincode        string `json:"pincode"`
	InitialDeposit string `json:"initialDeposit"`
	AccountType    string `json:"accountType"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, "firstName is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs = append(errs, "lastName is required")
	}
	if strings.TrimSpace(r.Gender) == "" {
		errs = append(errs, "gender is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		errs = append(errs, "phone is required")
	}
	if strings.TrimSpace(r.DOB) == "" {
		errs = append(errs, "dob is required")
	}
	if strings.TrimSpace(r.Aadhar) == "" {
		errs = append(errs, "aadhar is required")
	}
	if strings.TrimSpace(r.IFSC) == "" {
		errs = append(errs, "ifsc is required")
	}
	if strings.TrimSpace(r.Branch) == "" {
		errs = append(errs, "branch is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		errs = append(errs, "address is required")
	}
	if strings.TrimSpace(r.City) == "" {
		errs = append(errs, "city is required")
	}
	if strings.TrimSpace(r.Pincode) == "" {
		errs = append(errs, "pincode is required")
	}
	if !isAccountType(r.AccountType) {
		errs = append(errs, "accountType must be SAVINGS or CURRENT")
	}
	if strings.TrimSpace(r.InitialDeposit) != "" && !isNonNegativeAmount(r.InitialDeposit) {
		errs = append(errs, "initialDeposit must be a non-negative amount with at most two decimal places")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	AccountNumber string `json:"accountNumber"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	DOB           string `json:"dob"`
	Aadhar        string `json:"aadhar"`
	PAN           string `json:"pan,omitempty"`
	IFSC          string `json:"ifsc"`
	Branch        string `json:"branch"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
	Balance       string `json:"balance"`
	AccountType   string `json:"accountType"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type UpdateAccountRequest struct {
	AccountNumber string `json:"accountNumber"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	IFSC          string `json:"ifsc"`
	Branch        string `json:"branch"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
	AccountType   string `json:"accountType"`
}

func (r UpdateAccountRequest) Validate() error {
	var errs []string

	if !isAccountNumber(r.AccountNumber) {
		errs = append(errs, "accountNumber must be MINI followed by 10 digits")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, "firstName is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs = append(errs, "lastName is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		errs = append(errs, "phone is required")
	}
	if !isAccountType(r.AccountType) {
		errs = append(errs, "accountType must be SAVINGS or CURRENT")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type LedgerEntryResponse struct {
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	Remarks   string `json:"remarks"`
	Reference string `json:"reference,omitempty"`
	Timestamp string `json:"timestamp"`
}

type StatementResponse struct {
	AccountNumber string                `json:"accountNumber"`
	HolderName    string                `json:"holderName"`
	Balance       string                `json:"balance"`
	Entries       []LedgerEntryResponse `json:"entries"`
}

func isAccountType(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	return v == "SAVINGS" || v == "CURRENT"
}

func isAccountNumber(value string) bool {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 14 || !strings.HasPrefix(trimmed, "MINI") {
		return false
	}
	return digitsOnly(trimmed[4:])
}

func digitsOnly(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
