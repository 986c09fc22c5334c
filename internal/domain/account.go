package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

type Account struct {
	ID            int64
	AccountNumber string
	FirstName     string
	MiddleName    *string
	LastName      string
	Gender        string
	Phone         string
	Email         string
	DOB           time.Time
	Aadhar        string
	PAN           *string
	IFSC          string
	Branch        string
	Address       string
	City          string
	Pincode       string
	Balance       decimal.Decimal
	AccountType   AccountType
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
