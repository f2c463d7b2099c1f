package domain

// Balance is a per-currency fixed-point balance in 10^-6 units.
type Balance struct {
	Currency string `json:"currency" validate:"required,len=3"`
	Amount   int64  `json:"amount" validate:"min=0"`
}

type Account struct {
	ID          string    `json:"account_id" validate:"required,uuid"`
	UserID      string    `json:"user_id" validate:"required"`
	VaspAddress string    `json:"vasp_address" validate:"required"`
	Balances    []Balance `json:"balances" validate:"dive"`
}
