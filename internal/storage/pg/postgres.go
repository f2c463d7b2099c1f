package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diem/reference-wallet-sub000/internal/domain"
	"github.com/diem/reference-wallet-sub000/pkg/e"
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgres(ctx context.Context, logger *slog.Logger, postgresURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, postgresURL)
	if err != nil {
		return nil, fmt.Errorf("storage.pg.NewPostgres: failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage.pg.NewPostgres: ping failed: %w", err)
	}

	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) CloseConnection() {
	p.pool.Close()
}

func (p *Postgres) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	var account domain.Account
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, vasp_address FROM accounts WHERE id = $1`, id).
		Scan(&account.ID, &account.UserID, &account.VaspAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, e.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, e.Wrap("storage.pg.GetAccount", err)
	}

	account.Balances, err = p.GetBalances(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

func (p *Postgres) GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT currency, amount FROM balances WHERE account_id = $1 ORDER BY currency`, accountID)
	if err != nil {
		return nil, e.Wrap("storage.pg.GetBalances", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.Currency, &b.Amount); err != nil {
			return nil, e.Wrap("storage.pg.GetBalances: scan", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap("storage.pg.GetBalances: rows", err)
	}

	return balances, nil
}

// CreateTransaction debits the source balance and records the transaction in
// one database transaction. The debit is conditional on sufficient funds so
// two concurrent sends cannot overdraw.
func (p *Postgres) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.Wrap("storage.pg.CreateTransaction: begin", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE balances SET amount = amount - $1
		 WHERE account_id = $2 AND currency = $3 AND amount >= $1`,
		t.Amount, t.AccountID, t.Currency)
	if err != nil {
		return e.Wrap("storage.pg.CreateTransaction: debit", err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrInsufficientFunds
	}

	if err := insertTransaction(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return e.Wrap("storage.pg.CreateTransaction: commit", err)
	}
	return nil
}

// CreditAccount applies an incoming settlement: balance upsert plus a
// received transaction row.
func (p *Postgres) CreditAccount(ctx context.Context, t domain.Transaction) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.Wrap("storage.pg.CreditAccount: begin", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO balances (account_id, currency, amount) VALUES ($1, $2, $3)
		 ON CONFLICT (account_id, currency) DO UPDATE SET amount = balances.amount + $3`,
		t.AccountID, t.Currency, t.Amount)
	if err != nil {
		return e.Wrap("storage.pg.CreditAccount: credit", err)
	}

	if err := insertTransaction(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return e.Wrap("storage.pg.CreditAccount: commit", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, t domain.Transaction) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, account_id, direction, source, destination, currency, amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.AccountID, t.Direction, t.Source, t.Destination, t.Currency, t.Amount, t.Status, t.Timestamp)
	if err != nil {
		return e.Wrap("storage.pg: insert transaction", err)
	}
	return nil
}

func (p *Postgres) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	var t domain.Transaction
	err := p.pool.QueryRow(ctx,
		`SELECT id, account_id, direction, source, destination, currency, amount, status, created_at
		 FROM transactions WHERE id = $1`, id).
		Scan(&t.ID, &t.AccountID, &t.Direction, &t.Source, &t.Destination, &t.Currency, &t.Amount, &t.Status, &t.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, e.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, e.Wrap("storage.pg.GetTransaction", err)
	}
	return t, nil
}

func (p *Postgres) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, account_id, direction, source, destination, currency, amount, status, created_at
		 FROM transactions WHERE account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, e.Wrap("storage.pg.ListTransactions", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Direction, &t.Source, &t.Destination,
			&t.Currency, &t.Amount, &t.Status, &t.Timestamp); err != nil {
			return nil, e.Wrap("storage.pg.ListTransactions: scan", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap("storage.pg.ListTransactions: rows", err)
	}

	return transactions, nil
}

func (p *Postgres) GetRate(ctx context.Context, sellCurrency, buyCurrency string) (int64, error) {
	var rate int64
	err := p.pool.QueryRow(ctx,
		`SELECT rate FROM rates WHERE sell_currency = $1 AND buy_currency = $2`,
		sellCurrency, buyCurrency).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, e.ErrNotFound
	}
	if err != nil {
		return 0, e.Wrap("storage.pg.GetRate", err)
	}
	return rate, nil
}

func (p *Postgres) ListRates(ctx context.Context) ([]domain.Rate, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT sell_currency, buy_currency, rate FROM rates ORDER BY sell_currency, buy_currency`)
	if err != nil {
		return nil, e.Wrap("storage.pg.ListRates", err)
	}
	defer rows.Close()

	var rates []domain.Rate
	for rows.Next() {
		var r domain.Rate
		if err := rows.Scan(&r.SellCurrency, &r.BuyCurrency, &r.Rate); err != nil {
			return nil, e.Wrap("storage.pg.ListRates: scan", err)
		}
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap("storage.pg.ListRates: rows", err)
	}

	return rates, nil
}

func (p *Postgres) CreateQuote(ctx context.Context, q domain.Quote) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO quotes (id, account_id, sell_currency, buy_currency, sell_amount, buy_amount, rate, expires_at, executed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)`,
		q.ID, q.AccountID, q.SellCurrency, q.BuyCurrency, q.SellAmount, q.BuyAmount, q.Rate, q.ExpiresAt)
	if err != nil {
		return e.Wrap("storage.pg.CreateQuote", err)
	}
	return nil
}

func (p *Postgres) GetQuote(ctx context.Context, id string) (domain.Quote, error) {
	var q domain.Quote
	err := p.pool.QueryRow(ctx,
		`SELECT id, account_id, sell_currency, buy_currency, sell_amount, buy_amount, rate, expires_at, executed
		 FROM quotes WHERE id = $1`, id).
		Scan(&q.ID, &q.AccountID, &q.SellCurrency, &q.BuyCurrency, &q.SellAmount, &q.BuyAmount, &q.Rate, &q.ExpiresAt, &q.Executed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, e.ErrNotFound
	}
	if err != nil {
		return domain.Quote{}, e.Wrap("storage.pg.GetQuote", err)
	}
	return q, nil
}

// ExecuteQuote moves the sold amount out and the bought amount in, and marks
// the quote spent. The executed flag flip is conditional so a quote cannot
// be executed twice.
func (p *Postgres) ExecuteQuote(ctx context.Context, q domain.Quote) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.Wrap("storage.pg.ExecuteQuote: begin", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE quotes SET executed = true WHERE id = $1 AND executed = false`, q.ID)
	if err != nil {
		return e.Wrap("storage.pg.ExecuteQuote: mark", err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrQuoteExecuted
	}

	tag, err = tx.Exec(ctx,
		`UPDATE balances SET amount = amount - $1
		 WHERE account_id = $2 AND currency = $3 AND amount >= $1`,
		q.SellAmount, q.AccountID, q.SellCurrency)
	if err != nil {
		return e.Wrap("storage.pg.ExecuteQuote: debit", err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO balances (account_id, currency, amount) VALUES ($1, $2, $3)
		 ON CONFLICT (account_id, currency) DO UPDATE SET amount = balances.amount + $3`,
		q.AccountID, q.BuyCurrency, q.BuyAmount)
	if err != nil {
		return e.Wrap("storage.pg.ExecuteQuote: credit", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return e.Wrap("storage.pg.ExecuteQuote: commit", err)
	}
	return nil
}

func (p *Postgres) GetPaymentDetails(ctx context.Context, referenceID, vaspAddress string) (domain.PaymentDetails, error) {
	var d domain.PaymentDetails
	err := p.pool.QueryRow(ctx,
		`SELECT reference_id, vasp_address, merchant_name, action, currency, amount, expiration
		 FROM payment_requests WHERE reference_id = $1 AND vasp_address = $2`,
		referenceID, vaspAddress).
		Scan(&d.ReferenceID, &d.VaspAddress, &d.MerchantName, &d.Action, &d.Currency, &d.Amount, &d.Expiration)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PaymentDetails{}, e.ErrNotFound
	}
	if err != nil {
		return domain.PaymentDetails{}, e.Wrap("storage.pg.GetPaymentDetails", err)
	}
	return d, nil
}
