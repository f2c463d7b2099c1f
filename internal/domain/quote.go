package domain

import "time"

// Quote is a fixed conversion offer between two currency domains. Rate is
// fixed-point (10^-6), the same grid as amounts, so a 1.2345 rate is stored
// as 1234500.
type Quote struct {
	ID           string    `json:"id" validate:"required,uuid"`
	AccountID    string    `json:"account_id" validate:"required,uuid"`
	SellCurrency string    `json:"sell_currency" validate:"required,len=3"`
	BuyCurrency  string    `json:"buy_currency" validate:"required,len=3"`
	SellAmount   int64     `json:"sell_amount" validate:"required,gt=0"`
	BuyAmount    int64     `json:"buy_amount" validate:"required,gt=0"`
	Rate         int64     `json:"rate" validate:"required,gt=0"`
	ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	Executed     bool      `json:"executed"`
}

// Rate is a published exchange rate for a currency pair, fixed-point 10^-6.
type Rate struct {
	SellCurrency string `json:"sell_currency" validate:"required,len=3"`
	BuyCurrency  string `json:"buy_currency" validate:"required,len=3"`
	Rate         int64  `json:"rate" validate:"required,gt=0"`
}
