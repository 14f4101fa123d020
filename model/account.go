package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountInactive AccountStatus = "Inactive"
)

type Account struct {
	ID                int             `json:"id"`
	CustomerID        int             `json:"customer_id"`
	AccountNumber     string          `json:"account_number"`
	Balance           decimal.Decimal `json:"balance"`
	AccountType       string          `json:"account_type"`
	AccountName       string          `json:"account_name"`
	PhoneNumberLinked string          `json:"phone_number_linked"`
	IFSCCode          string          `json:"ifsc_code"`
	BankName          string          `json:"bank_name"`
	Status            AccountStatus   `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	ModifiedAt        time.Time       `json:"modified_at"`
}

// Contact is the notification-facing projection of an account: the holder's
// name and email resolved through the owning customer, plus the bank name.
type Contact struct {
	HolderName string
	Email      string
	BankName   string
}
