package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one immutable row of the ledger's transaction log. The ID and
// TransactionTime are assigned by the database at commit time.
type Transaction struct {
	ID                    int             `json:"id"`
	SenderAccountNumber   string          `json:"sender_account_number"`
	ReceiverAccountNumber string          `json:"receiver_account_number"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description"`
	TransactionTime       time.Time       `json:"transaction_time"`
}
