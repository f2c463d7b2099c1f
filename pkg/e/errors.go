package e

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrQuoteExpired      = errors.New("quote expired")
	ErrQuoteExecuted     = errors.New("quote already executed")
	ErrCacheMiss         = errors.New("cache miss")
)

func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
