package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/diem/reference-wallet-sub000/internal/domain"
	"github.com/diem/reference-wallet-sub000/internal/money"
	"github.com/diem/reference-wallet-sub000/internal/paymentlink"
	"github.com/diem/reference-wallet-sub000/pkg/e"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type WalletService interface {
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error)
	Transfer(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
	ListRates(ctx context.Context) ([]domain.Rate, error)
	CreateQuote(ctx context.Context, accountID, sellCurrency, buyCurrency string, sellAmount int64) (domain.Quote, error)
	ExecuteQuote(ctx context.Context, id string) (domain.Quote, error)
	GetPaymentDetails(ctx context.Context, referenceID, vaspAddress string) (domain.PaymentDetails, error)
}

type Handler struct {
	wallet       WalletService
	baseCurrency string
	logger       *slog.Logger
}

func NewHandler(logger *slog.Logger, wallet WalletService, baseCurrency string) *Handler {
	return &Handler{
		wallet:       wallet,
		baseCurrency: baseCurrency,
		logger:       logger,
	}
}

// BalanceResponse carries the raw fixed-point amount plus its display form.
// Base-currency amounts show up to six fractional digits, fiat exactly two.
type BalanceResponse struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Display  string `json:"display"`
}

// TransferRequest is a send form submission. Amount is the decimal text the
// user typed; it is snapped onto the fixed-point grid server-side.
type TransferRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

type QuoteRequest struct {
	AccountID    string `json:"account_id" binding:"required"`
	SellCurrency string `json:"sell_currency" binding:"required"`
	BuyCurrency  string `json:"buy_currency" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
}

type RateResponse struct {
	SellCurrency string `json:"sell_currency"`
	BuyCurrency  string `json:"buy_currency"`
	Rate         int64  `json:"rate"`
	Display      string `json:"display"`
}

// PaymentLinkResponse is what the confirmation dialog renders. IsFull
// distinguishes links that carried every field from partial ones that were
// resolved through the backend.
type PaymentLinkResponse struct {
	VaspAddress  string  `json:"vasp_address"`
	ReferenceID  string  `json:"reference_id"`
	MerchantName string  `json:"merchant_name"`
	Action       string  `json:"action"`
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	Expiration   string  `json:"expiration"`
	RedirectURL  string  `json:"redirect_url,omitempty"`
	IsFull       bool    `json:"is_full"`
}

func (h *Handler) display(currency string, amount int64) string {
	if currency == h.baseCurrency {
		return money.Base(amount).Format(true)
	}
	return money.Fiat(amount).Format(true)
}

// GetAccount godoc
// @Summary Get account
// @Description Get an account with its balances.
// @ID get-account
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} domain.Account "Successful operation"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /accounts/{id} [get]
func (h *Handler) GetAccount(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.logger.Error("invalid account id", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	account, err := h.wallet.GetAccount(c, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
			return
		}
		h.logger.Error("failed to get account", slog.String("id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// GetBalances godoc
// @Summary List account balances
// @Description Per-currency balances with display strings.
// @ID get-balances
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]interface{} "Successful operation"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /accounts/{id}/balances [get]
func (h *Handler) GetBalances(c *gin.Context) {
	id := c.Param("id")

	balances, err := h.wallet.GetBalances(c, id)
	if err != nil {
		h.logger.Error("failed to get balances", slog.String("id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balances"})
		return
	}

	response := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		response = append(response, BalanceResponse{
			Currency: b.Currency,
			Amount:   b.Amount,
			Display:  h.display(b.Currency, b.Amount),
		})
	}

	c.JSON(http.StatusOK, gin.H{"balances": response})
}

// CreateTransfer godoc
// @Summary Send funds
// @Description Create an outgoing transaction from a decimal amount.
// @ID create-transfer
// @Accept json
// @Produce json
// @Param transfer body TransferRequest true "Transfer to create"
// @Success 200 {object} map[string]interface{} "Successful operation"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /transactions [post]
func (h *Handler) CreateTransfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("failed to bind transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := money.BaseFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	account, err := h.wallet.GetAccount(c, req.AccountID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
		return
	}

	created, err := h.wallet.Transfer(c, domain.Transaction{
		AccountID:   req.AccountID,
		Source:      account.VaspAddress,
		Destination: req.Destination,
		Currency:    req.Currency,
		Amount:      int64(amount),
	})
	if err != nil {
		if errors.Is(err, e.ErrInsufficientFunds) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.ErrInsufficientFunds.Error()})
			return
		}
		if errors.Is(err, money.ErrParse) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		h.logger.Error("failed to create transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create transfer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": created})
}

// GetTransaction godoc
// @Summary Get transaction by id
// @ID get-transaction
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} domain.Transaction "Successful operation"
// @Failure 400 {object} map[string]string "Invalid ID supplied"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{id} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	transaction, err := h.wallet.GetTransaction(c, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
			return
		}
		h.logger.Error("failed to get transaction", slog.String("id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// ListTransactions godoc
// @Summary List account transactions
// @ID list-transactions
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]interface{} "Successful operation"
// @Failure 404 {object} map[string]string "No transactions"
// @Router /accounts/{id}/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	transactions, err := h.wallet.ListTransactions(c, c.Param("id"))
	if err != nil {
		h.logger.Error("failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}

	if transactions == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// ListRates godoc
// @Summary List exchange rates
// @Description Current rates, displayed with four fractional digits.
// @ID list-rates
// @Produce json
// @Success 200 {object} map[string]interface{} "Successful operation"
// @Router /rates [get]
func (h *Handler) ListRates(c *gin.Context) {
	rates, err := h.wallet.ListRates(c)
	if err != nil {
		h.logger.Error("failed to list rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rates"})
		return
	}

	response := make([]RateResponse, 0, len(rates))
	for _, r := range rates {
		response = append(response, RateResponse{
			SellCurrency: r.SellCurrency,
			BuyCurrency:  r.BuyCurrency,
			Rate:         r.Rate,
			Display:      money.Fiat(r.Rate).FormatRate(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"rates": response})
}

// CreateQuote godoc
// @Summary Create a conversion quote
// @ID create-quote
// @Accept json
// @Produce json
// @Param quote body QuoteRequest true "Quote to create"
// @Success 200 {object} domain.Quote "Successful operation"
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /quotes [post]
func (h *Handler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := money.BaseFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	quote, err := h.wallet.CreateQuote(c, req.AccountID, req.SellCurrency, req.BuyCurrency, int64(amount))
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown currency pair"})
			return
		}
		if errors.Is(err, money.ErrParse) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		h.logger.Error("failed to create quote", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// ExecuteQuote godoc
// @Summary Execute a conversion quote
// @ID execute-quote
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.Quote "Successful operation"
// @Failure 409 {object} map[string]string "Quote expired or already executed"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /quotes/{id}/execute [post]
func (h *Handler) ExecuteQuote(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return
	}

	quote, err := h.wallet.ExecuteQuote(c, id)
	if err != nil {
		switch {
		case errors.Is(err, e.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
		case errors.Is(err, e.ErrQuoteExpired), errors.Is(err, e.ErrQuoteExecuted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, e.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.ErrInsufficientFunds.Error()})
		default:
			h.logger.Error("failed to execute quote", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to execute quote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// ParsePaymentLink godoc
// @Summary Parse a payment deep-link
// @Description Validate a merchant payment link. Full links are validated
// @Description locally; partial links (referenceId + vaspAddress only) are
// @Description resolved through the payment backend.
// @ID parse-payment-link
// @Produce json
// @Success 200 {object} PaymentLinkResponse "Successful operation"
// @Failure 400 {object} map[string]string "Invalid link, error names the offending field"
// @Router /payments/link [get]
func (h *Handler) ParsePaymentLink(c *gin.Context) {
	query := c.Request.URL.Query()

	// A link carrying an amount is a full link and must validate end to end.
	if query.Get("amount") != "" {
		req, err := paymentlink.Parse(c.Request.URL.RawQuery)
		if err != nil {
			var paramErr *paymentlink.ParamError
			if errors.As(err, &paramErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": paramErr.Field})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, PaymentLinkResponse{
			VaspAddress:  req.VaspAddress,
			ReferenceID:  req.ReferenceID.String(),
			MerchantName: req.MerchantName,
			Action:       req.Action,
			Currency:     req.Currency,
			Amount:       req.Amount,
			Expiration:   req.Expiration.Format("2006-01-02T15:04:05.000Z07:00"),
			RedirectURL:  req.RedirectURL.String(),
			IsFull:       true,
		})
		return
	}

	vaspAddress := query.Get("vaspAddress")
	if vaspAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment params: vaspAddress", "field": "vaspAddress"})
		return
	}
	referenceID := query.Get("referenceId")
	if _, err := uuid.Parse(referenceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment params: referenceId", "field": "referenceId"})
		return
	}

	details, err := h.wallet.GetPaymentDetails(c, referenceID, vaspAddress)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
			return
		}
		h.logger.Error("failed to get payment details", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get payment details"})
		return
	}

	c.JSON(http.StatusOK, PaymentLinkResponse{
		VaspAddress:  details.VaspAddress,
		ReferenceID:  details.ReferenceID,
		MerchantName: details.MerchantName,
		Action:       details.Action,
		Currency:     details.Currency,
		Amount:       float64(details.Amount),
		Expiration:   details.Expiration.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		IsFull:       false,
	})
}
