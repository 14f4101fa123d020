package model

import "github.com/shopspring/decimal"

// TransferRequest is the ephemeral payload for one transfer. It exists only
// for the duration of a single engine invocation and is never persisted.
type TransferRequest struct {
	SenderAccountNumber   string          `json:"sender_account_number" validate:"required,len=12,numeric"`
	ReceiverAccountNumber string          `json:"receiver_account_number" validate:"required,len=12,numeric"`
	Amount                decimal.Decimal `json:"amount" validate:"required"`
	Pin                   string          `json:"pin" validate:"required,len=6,numeric"`
	Description           string          `json:"description" validate:"max=255"`
}

// CreateCustomerRequest defines the payload for registering a new customer.
// Validation tags mirror the constraints enforced at the schema level; mobile
// and alphaspace are registered in common.
type CreateCustomerRequest struct {
	Name         string `json:"name" validate:"required,max=100,alphaspace"`
	PhoneNumber  string `json:"phone_number" validate:"required,mobile"`
	Email        string `json:"email" validate:"required,email"`
	Address      string `json:"address" validate:"required,min=5,max=200"`
	Pin          string `json:"pin" validate:"required,len=6,numeric"`
	AadharNumber string `json:"aadhar_number" validate:"required,len=12,numeric"`
	DOB          string `json:"dob" validate:"required,datetime=2006-01-02"`
}

// CreateAccountRequest defines the payload for provisioning a new account for
// an existing customer, looked up by aadhar number.
type CreateAccountRequest struct {
	AadharNumber      string          `json:"aadhar_number" validate:"required,len=12,numeric"`
	AccountType       string          `json:"account_type" validate:"required,oneof=Savings Current Salary"`
	AccountName       string          `json:"account_name" validate:"required,max=100"`
	PhoneNumberLinked string          `json:"phone_number_linked" validate:"required,mobile"`
	IFSCCode          string          `json:"ifsc_code" validate:"required,ifsc"`
	BankName          string          `json:"bank_name" validate:"required,max=100"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
}

// CreateQueryRequest defines the payload for submitting a customer support
// query. Submissions are open; they are not tied to a registered customer.
type CreateQueryRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=150"`
	Message string `json:"message" validate:"required"`
}
