package domain

import "time"

type TransactionDirection string

const (
	DirectionSent     TransactionDirection = "sent"
	DirectionReceived TransactionDirection = "received"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCanceled  TransactionStatus = "canceled"
)

// Transaction amounts are fixed-point micro-units; the ledger never sees a
// decimal.
type Transaction struct {
	ID          string               `json:"id" validate:"required,uuid"`
	AccountID   string               `json:"account_id" validate:"required,uuid"`
	Direction   TransactionDirection `json:"direction" validate:"required,oneof=sent received"`
	Source      string               `json:"source" validate:"required"`
	Destination string               `json:"destination" validate:"required"`
	Currency    string               `json:"currency" validate:"required,len=3"`
	Amount      int64                `json:"amount" validate:"required,gt=0"`
	Status      TransactionStatus    `json:"status" validate:"required,oneof=pending completed canceled"`
	Timestamp   time.Time            `json:"timestamp" validate:"required"`
}
