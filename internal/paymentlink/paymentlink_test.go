package paymentlink

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func fullLinkQuery() url.Values {
	return url.Values{
		"vaspAddress":      {"tdm1pzmhcxpnyns7m035gkdv8nzmyvu"},
		"referenceId":      {"ce74d678-d014-48fc-b61d-2c36683feb29"},
		"merchantName":     {"merchant-name"},
		"checkoutDataType": {"PAYMENT_REQUEST"},
		"action":           {"CHARGE"},
		"currency":         {"XUS"},
		"amount":           {"1000000000"},
		"expiration":       {"2020-01-21T00:00:00.000Z"},
		"redirectUrl":      {"https://merchant.com/order/93c4963f-7f9e-4f9d-983e-7080ef782534/checkout/complete"},
	}
}

func TestParseFullLink(t *testing.T) {
	req, err := Parse(fullLinkQuery().Encode())
	assert.NoError(t, err)

	assert.Equal(t, "tdm1pzmhcxpnyns7m035gkdv8nzmyvu", req.VaspAddress)
	assert.Equal(t, uuid.MustParse("ce74d678-d014-48fc-b61d-2c36683feb29"), req.ReferenceID)
	assert.Equal(t, "merchant-name", req.MerchantName)
	assert.Equal(t, CheckoutPaymentRequest, req.CheckoutDataType)
	assert.Equal(t, "CHARGE", req.Action)
	assert.Equal(t, "XUS", req.Currency)
	assert.Equal(t, float64(1000000000), req.Amount)
	assert.Equal(t, "2020-01-21T00:00:00.000Z", req.Expiration.Format(expirationLayout))
	assert.Equal(t, "https", req.RedirectURL.Scheme)
	assert.Equal(t, "merchant.com", req.RedirectURL.Host)
}

func TestParseFieldErrors(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(url.Values)
		expectedField string
	}{
		{
			name:          "missing merchantName",
			mutate:        func(v url.Values) { v.Del("merchantName") },
			expectedField: "merchantName",
		},
		{
			name:          "empty vaspAddress",
			mutate:        func(v url.Values) { v.Set("vaspAddress", "") },
			expectedField: "vaspAddress",
		},
		{
			name:          "missing expiration",
			mutate:        func(v url.Values) { v.Del("expiration") },
			expectedField: "expiration",
		},
		{
			name:          "malformed uuid",
			mutate:        func(v url.Values) { v.Set("referenceId", "ce74d678-d014-48fc-b61d--2c36683feb29") },
			expectedField: "referenceId",
		},
		{
			name:          "amount not numeric",
			mutate:        func(v url.Values) { v.Set("amount", "rrr100000xxx0000") },
			expectedField: "amount",
		},
		{
			name:          "amount zero",
			mutate:        func(v url.Values) { v.Set("amount", "0") },
			expectedField: "amount",
		},
		{
			name:          "amount NaN",
			mutate:        func(v url.Values) { v.Set("amount", "NaN") },
			expectedField: "amount",
		},
		{
			name:          "unknown checkout data type",
			mutate:        func(v url.Values) { v.Set("checkoutDataType", "INVOICE") },
			expectedField: "checkoutDataType",
		},
		{
			name:          "expiration with non-utc offset",
			mutate:        func(v url.Values) { v.Set("expiration", "2020-01-21T00:00:00.000+0200") },
			expectedField: "expiration",
		},
		{
			name:          "expiration parseable but not canonical",
			mutate:        func(v url.Values) { v.Set("expiration", "2020-01-21T02:00:00.000+02:00") },
			expectedField: "expiration",
		},
		{
			name:          "expiration without milliseconds",
			mutate:        func(v url.Values) { v.Set("expiration", "2020-01-21T00:00:00Z") },
			expectedField: "expiration",
		},
		{
			name:          "expiration epoch number",
			mutate:        func(v url.Values) { v.Set("expiration", "1579564800") },
			expectedField: "expiration",
		},
		{
			name:          "redirect url without scheme",
			mutate:        func(v url.Values) { v.Set("redirectUrl", "merchant.com/order/checkout") },
			expectedField: "redirectUrl",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			values := fullLinkQuery()
			testCase.mutate(values)

			req, err := Parse(values.Encode())
			assert.Nil(t, req)
			assert.Error(t, err)

			var paramErr *ParamError
			assert.ErrorAs(t, err, &paramErr)
			assert.Equal(t, testCase.expectedField, paramErr.Field)
			assert.Contains(t, err.Error(), testCase.expectedField)
		})
	}
}

func TestParsePresenceCheckedBeforeFormat(t *testing.T) {
	// Two invalid fields: the missing one listed earlier wins.
	values := fullLinkQuery()
	values.Del("referenceId")
	values.Set("amount", "garbage")

	_, err := Parse(values.Encode())
	var paramErr *ParamError
	assert.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "referenceId", paramErr.Field)
}

func TestParseBadPercentEncoding(t *testing.T) {
	_, err := Parse("redirectUrl=%zz&vaspAddress=x")
	var paramErr *ParamError
	assert.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "redirectUrl", paramErr.Field)
}

func TestParseActionNotEnforced(t *testing.T) {
	values := fullLinkQuery()
	values.Set("action", "REFUND")

	req, err := Parse(values.Encode())
	assert.NoError(t, err)
	assert.Equal(t, "REFUND", req.Action)
}

func TestParseRawQueryString(t *testing.T) {
	raw := "vaspAddress=tdm1pzmhcxpnyns7m035gkdv8nzmyvu" +
		"&referenceId=ce74d678-d014-48fc-b61d-2c36683feb29" +
		"&merchantName=merchant-name" +
		"&checkoutDataType=PAYMENT_REQUEST" +
		"&action=CHARGE" +
		"&amount=1000000000" +
		"&currency=XUS" +
		"&expiration=2020-01-21T00%3A00%3A00.000Z" +
		"&redirectUrl=https%3A%2F%2Fmerchant.com%2Fcheckout%2Fcomplete"

	req, err := Parse(raw)
	assert.NoError(t, err)
	assert.Equal(t, float64(1000000000), req.Amount)
	assert.Equal(t, "2020-01-21T00:00:00.000Z", req.Expiration.UTC().Format(expirationLayout))
}
