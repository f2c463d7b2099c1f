// Package paymentlink parses merchant payment deep-links into validated
// requests. A link is a URL query string produced by a VASP integration;
// nothing in it is trusted until every field has been checked.
package paymentlink

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type CheckoutDataType string

const CheckoutPaymentRequest CheckoutDataType = "PAYMENT_REQUEST"

// ActionCharge is the only action merchants send today. Presence of the
// action field is enforced, its value is not.
const ActionCharge = "CHARGE"

// expirationLayout is the canonical serialization a link must carry:
// millisecond precision, UTC, literal Z. A parseable date in any other
// shape is rejected.
const expirationLayout = "2006-01-02T15:04:05.000Z07:00"

// Request is a validated payment deep-link. Immutable once parsed.
type Request struct {
	VaspAddress      string
	ReferenceID      uuid.UUID
	MerchantName     string
	CheckoutDataType CheckoutDataType
	Action           string
	Currency         string
	Amount           float64
	Expiration       time.Time
	RedirectURL      *url.URL
}

// ParamError names the single query parameter that failed validation.
// Validation stops at the first offending field.
type ParamError struct {
	Field string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid payment params: %s", e.Field)
}

var requiredFields = []string{
	"vaspAddress",
	"referenceId",
	"merchantName",
	"checkoutDataType",
	"action",
	"currency",
	"amount",
	"expiration",
	"redirectUrl",
}

// Parse validates rawQuery and builds the payment request from it.
// The error is always a *ParamError carrying the offending field name.
func Parse(rawQuery string) (*Request, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Broken percent-encoding. The nested redirect URL is the only
		// field that carries reserved characters in practice.
		return nil, &ParamError{Field: "redirectUrl"}
	}

	for _, field := range requiredFields {
		if values.Get(field) == "" {
			return nil, &ParamError{Field: field}
		}
	}

	redirect, err := url.Parse(values.Get("redirectUrl"))
	if err != nil || redirect.Scheme == "" || redirect.Host == "" {
		return nil, &ParamError{Field: "redirectUrl"}
	}

	reference, err := uuid.Parse(values.Get("referenceId"))
	if err != nil {
		return nil, &ParamError{Field: "referenceId"}
	}

	amount, err := strconv.ParseFloat(values.Get("amount"), 64)
	if err != nil || math.IsNaN(amount) || amount == 0 {
		// A literal zero amount is rejected on purpose: merchants never
		// issue one and a zero charge is treated as a malformed link.
		return nil, &ParamError{Field: "amount"}
	}

	if CheckoutDataType(values.Get("checkoutDataType")) != CheckoutPaymentRequest {
		return nil, &ParamError{Field: "checkoutDataType"}
	}

	rawExpiration := values.Get("expiration")
	expiration, err := time.Parse(expirationLayout, rawExpiration)
	if err != nil || expiration.UTC().Format(expirationLayout) != rawExpiration {
		return nil, &ParamError{Field: "expiration"}
	}

	return &Request{
		VaspAddress:      values.Get("vaspAddress"),
		ReferenceID:      reference,
		MerchantName:     values.Get("merchantName"),
		CheckoutDataType: CheckoutPaymentRequest,
		Action:           values.Get("action"),
		Currency:         values.Get("currency"),
		Amount:           amount,
		Expiration:       expiration.UTC(),
		RedirectURL:      redirect,
	}, nil
}
