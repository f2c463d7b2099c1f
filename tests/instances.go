package tests

import (
	"encoding/json"
	"log"
	"time"

	"github.com/diem/reference-wallet-sub000/internal/domain"
)

var (
	InstanceAccount = domain.Account{
		ID:          "7d5f9b38-3c5b-4f8e-9c59-282b6c8eaf32",
		UserID:      "f0f9c8f2-6c9e-4f25-9d39-1f0e6a72f94e",
		VaspAddress: "tdm1pzmhcxpnyns7m035gkdv8nzmyvu",
		Balances: []domain.Balance{
			{Currency: "XUS", Amount: 120_000_000},
			{Currency: "USD", Amount: 50_000_000},
		},
	}

	InstanceTransaction = domain.Transaction{
		ID:          "ce74d678-d014-48fc-b61d-2c36683feb29",
		AccountID:   "7d5f9b38-3c5b-4f8e-9c59-282b6c8eaf32",
		Direction:   domain.DirectionSent,
		Source:      "tdm1pzmhcxpnyns7m035gkdv8nzmyvu",
		Destination: "tdm1p33klj2euu3zhqer2vp5y3kcxu",
		Currency:    "XUS",
		Amount:      5_000_000,
		Status:      domain.StatusCompleted,
		Timestamp:   time.Date(2024, 11, 26, 6, 22, 19, 0, time.UTC),
	}

	InstanceSettlement = domain.SettlementEvent{
		ReferenceID: "5a3b06cf-52ef-4cbb-bf1c-5b786bee0486",
		AccountID:   "7d5f9b38-3c5b-4f8e-9c59-282b6c8eaf32",
		VaspAddress: "tdm1pzmhcxpnyns7m035gkdv8nzmyvu",
		Source:      "tdm1p33klj2euu3zhqer2vp5y3kcxu",
		Currency:    "XUS",
		Amount:      25_000_000,
		OccurredAt:  time.Date(2024, 11, 26, 8, 0, 0, 0, time.UTC),
	}

	InstanceQuote = domain.Quote{
		ID:           "9f23a7e3-61a3-4e1f-8f4e-1a26bb1bd5f1",
		AccountID:    "7d5f9b38-3c5b-4f8e-9c59-282b6c8eaf32",
		SellCurrency: "XUS",
		BuyCurrency:  "USD",
		SellAmount:   10_000_000,
		BuyAmount:    9_985_000,
		Rate:         998_500,
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	InstanceTransactionString string
	InstanceAccountString     string
)

func init() {
	transactionJSON, err := json.Marshal(InstanceTransaction)
	if err != nil {
		log.Fatalf("failed to marshal InstanceTransaction: %s", err)
	}
	InstanceTransactionString = string(transactionJSON)

	accountJSON, err := json.Marshal(InstanceAccount)
	if err != nil {
		log.Fatalf("failed to marshal InstanceAccount: %s", err)
	}
	InstanceAccountString = string(accountJSON)
}
