package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/diem/reference-wallet-sub000/internal/config"
	"github.com/diem/reference-wallet-sub000/internal/domain"
	"github.com/diem/reference-wallet-sub000/internal/money"
	"github.com/diem/reference-wallet-sub000/pkg/e"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go
type DB interface {
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error)
	CreateTransaction(ctx context.Context, t domain.Transaction) error
	CreditAccount(ctx context.Context, t domain.Transaction) error
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
	GetRate(ctx context.Context, sellCurrency, buyCurrency string) (int64, error)
	ListRates(ctx context.Context) ([]domain.Rate, error)
	CreateQuote(ctx context.Context, q domain.Quote) error
	GetQuote(ctx context.Context, id string) (domain.Quote, error)
	ExecuteQuote(ctx context.Context, q domain.Quote) error
	GetPaymentDetails(ctx context.Context, referenceID, vaspAddress string) (domain.PaymentDetails, error)
}

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	Get(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	db     DB
	cache  Cache
	cfg    config.WalletConfig
	logger *slog.Logger
}

func NewService(logger *slog.Logger, db DB, cache Cache, cfg config.WalletConfig) *Service {
	return &Service{
		db:     db,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.db.GetAccount(ctx, id)
	if err != nil {
		s.logger.Error("failed to perform GetAccount", slog.String("error", err.Error()))
		return domain.Account{}, e.Wrap("service.GetAccount", err)
	}
	return account, nil
}

func (s *Service) GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error) {
	key := balancesKey(accountID)

	var cached []domain.Balance
	if s.cache != nil {
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, e.ErrCacheMiss) {
			s.logger.Warn("balance cache read failed", slog.String("error", err.Error()))
		}
	}

	balances, err := s.db.GetBalances(ctx, accountID)
	if err != nil {
		return nil, e.Wrap("service.GetBalances", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, balances, s.cfg.TransactionsTTL); err != nil {
			s.logger.Warn("balance cache write failed", slog.String("error", err.Error()))
		}
	}

	return balances, nil
}

// Transfer debits the account and records a sent transaction. The amount is
// already fixed-point micro-units; the ledger rejects overdrafts.
func (s *Service) Transfer(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if t.Amount <= 0 {
		return domain.Transaction{}, e.Wrap("service.Transfer", money.ErrParse)
	}

	t.ID = uuid.NewString()
	t.Direction = domain.DirectionSent
	t.Status = domain.StatusCompleted
	t.Timestamp = time.Now().UTC()

	if err := s.db.CreateTransaction(ctx, t); err != nil {
		s.logger.Error("failed to create transaction", slog.String("error", err.Error()))
		return domain.Transaction{}, e.Wrap("service.Transfer", err)
	}

	s.invalidateBalances(ctx, t.AccountID)

	return t, nil
}

// RecordSettlement turns an incoming settlement event into a received,
// completed transaction. The settlement reference id doubles as the
// transaction id, which makes redelivered events collide on the primary key
// instead of crediting twice.
func (s *Service) RecordSettlement(ctx context.Context, ev domain.SettlementEvent) error {
	t := domain.Transaction{
		ID:          ev.ReferenceID,
		AccountID:   ev.AccountID,
		Direction:   domain.DirectionReceived,
		Source:      ev.Source,
		Destination: ev.VaspAddress,
		Currency:    ev.Currency,
		Amount:      ev.Amount,
		Status:      domain.StatusCompleted,
		Timestamp:   ev.OccurredAt,
	}

	if err := s.db.CreditAccount(ctx, t); err != nil {
		s.logger.Error("failed to record settlement", slog.String("error", err.Error()),
			slog.String("reference_id", ev.ReferenceID))
		return e.Wrap("service.RecordSettlement", err)
	}

	s.invalidateBalances(ctx, ev.AccountID)

	return nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	key := transactionKey(id)

	var cached domain.Transaction
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	t, err := s.db.GetTransaction(ctx, id)
	if err != nil {
		return domain.Transaction{}, e.Wrap("service.GetTransaction", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, t, s.cfg.TransactionsTTL); err != nil {
			s.logger.Warn("transaction cache write failed", slog.String("error", err.Error()))
		}
	}

	return t, nil
}

func (s *Service) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	transactions, err := s.db.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, e.Wrap("service.ListTransactions", err)
	}
	return transactions, nil
}

func (s *Service) ListRates(ctx context.Context) ([]domain.Rate, error) {
	rates, err := s.db.ListRates(ctx)
	if err != nil {
		return nil, e.Wrap("service.ListRates", err)
	}
	return rates, nil
}

// CreateQuote prices a conversion at the current rate. The bought amount is
// truncated onto the fixed-point grid, never rounded up, so a quote cannot
// overstate what the account will receive.
func (s *Service) CreateQuote(ctx context.Context, accountID, sellCurrency, buyCurrency string, sellAmount int64) (domain.Quote, error) {
	if sellAmount <= 0 {
		return domain.Quote{}, e.Wrap("service.CreateQuote", money.ErrParse)
	}

	rate, err := s.db.GetRate(ctx, sellCurrency, buyCurrency)
	if err != nil {
		return domain.Quote{}, e.Wrap("service.CreateQuote", err)
	}

	buyAmount := decimal.NewFromInt(sellAmount).
		Mul(decimal.NewFromInt(rate)).
		Div(decimal.NewFromInt(money.Scale)).
		IntPart()

	quote := domain.Quote{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		SellCurrency: sellCurrency,
		BuyCurrency:  buyCurrency,
		SellAmount:   sellAmount,
		BuyAmount:    buyAmount,
		Rate:         rate,
		ExpiresAt:    time.Now().UTC().Add(s.cfg.QuoteTTL),
	}

	if err := s.db.CreateQuote(ctx, quote); err != nil {
		return domain.Quote{}, e.Wrap("service.CreateQuote", err)
	}

	return quote, nil
}

func (s *Service) ExecuteQuote(ctx context.Context, id string) (domain.Quote, error) {
	quote, err := s.db.GetQuote(ctx, id)
	if err != nil {
		return domain.Quote{}, e.Wrap("service.ExecuteQuote", err)
	}

	if quote.Executed {
		return domain.Quote{}, e.Wrap("service.ExecuteQuote", e.ErrQuoteExecuted)
	}
	if time.Now().UTC().After(quote.ExpiresAt) {
		return domain.Quote{}, e.Wrap("service.ExecuteQuote", e.ErrQuoteExpired)
	}

	if err := s.db.ExecuteQuote(ctx, quote); err != nil {
		s.logger.Error("failed to execute quote", slog.String("error", err.Error()),
			slog.String("quote_id", quote.ID))
		return domain.Quote{}, e.Wrap("service.ExecuteQuote", err)
	}

	s.invalidateBalances(ctx, quote.AccountID)

	quote.Executed = true
	return quote, nil
}

func (s *Service) GetPaymentDetails(ctx context.Context, referenceID, vaspAddress string) (domain.PaymentDetails, error) {
	details, err := s.db.GetPaymentDetails(ctx, referenceID, vaspAddress)
	if err != nil {
		return domain.PaymentDetails{}, e.Wrap("service.GetPaymentDetails", err)
	}
	return details, nil
}

func (s *Service) invalidateBalances(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, balancesKey(accountID)); err != nil {
		s.logger.Warn("balance cache invalidation failed", slog.String("error", err.Error()))
	}
}

func balancesKey(accountID string) string {
	return "balances:" + accountID
}

func transactionKey(id string) string {
	return "tx:" + id
}
