package domain

import "time"

// SettlementEvent is published by the settlement pipeline when incoming
// funds land for one of our accounts. It becomes a received transaction.
type SettlementEvent struct {
	ReferenceID string    `json:"reference_id" validate:"required,uuid"`
	AccountID   string    `json:"account_id" validate:"required,uuid"`
	VaspAddress string    `json:"vasp_address" validate:"required"`
	Source      string    `json:"source" validate:"required"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	OccurredAt  time.Time `json:"occurred_at" validate:"required"`
}

// PaymentDetails is what the backend returns for a partial payment link
// that carried only a reference id and VASP address.
type PaymentDetails struct {
	ReferenceID  string    `json:"reference_id" validate:"required,uuid"`
	VaspAddress  string    `json:"vasp_address" validate:"required"`
	MerchantName string    `json:"merchant_name" validate:"required"`
	Action       string    `json:"action" validate:"required"`
	Currency     string    `json:"currency" validate:"required,len=3"`
	Amount       int64     `json:"amount" validate:"required,gt=0"`
	Expiration   time.Time `json:"expiration" validate:"required"`
}
