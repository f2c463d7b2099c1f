package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/diem/reference-wallet-sub000/internal/domain"
	handler_mocks "github.com/diem/reference-wallet-sub000/internal/ports/rest/mocks"
	"github.com/diem/reference-wallet-sub000/pkg/e"
	"github.com/diem/reference-wallet-sub000/pkg/logger"
	"github.com/diem/reference-wallet-sub000/tests"
)

func setupHandler(t *testing.T) (*Handler, *handler_mocks.MockWalletService, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	mockWallet := handler_mocks.NewMockWalletService(ctrl)
	handler := NewHandler(logger.SetupPrettySlog(), mockWallet, "XUS")
	return handler, mockWallet, ctrl
}

func Test_GetAccountHandler(t *testing.T) {
	type mockBehavior func(r *handler_mocks.MockWalletService)
	testCases := []struct {
		name               string
		mockBehavior       mockBehavior
		expectedStatusCode int
		expectedResponse   string
		requestURL         string
	}{
		{
			name: "OK",
			mockBehavior: func(r *handler_mocks.MockWalletService) {
				r.EXPECT().GetAccount(gomock.Any(), tests.InstanceAccount.ID).Return(tests.InstanceAccount, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedResponse:   fmt.Sprintf(`{"account": %s}`, tests.InstanceAccountString),
			requestURL:         "/accounts/" + tests.InstanceAccount.ID,
		},
		{
			name: "Not Found",
			mockBehavior: func(r *handler_mocks.MockWalletService) {
				r.EXPECT().GetAccount(gomock.Any(), "3cc3c4d1-92d5-47d0-abb3-53c2e4d4a1f7").Return(domain.Account{}, e.ErrNotFound)
			},
			expectedStatusCode: http.StatusNotFound,
			expectedResponse:   fmt.Sprintf(`{"error":"%s"}`, e.ErrNotFound.Error()),
			requestURL:         "/accounts/3cc3c4d1-92d5-47d0-abb3-53c2e4d4a1f7",
		},
		{
			name:               "Invalid id - not a uuid",
			mockBehavior:       nil,
			expectedStatusCode: http.StatusBadRequest,
			expectedResponse:   `{"error":"invalid account id"}`,
			requestURL:         "/accounts/abc",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			handler, mockWallet, ctrl := setupHandler(t)
			defer ctrl.Finish()

			if testCase.mockBehavior != nil {
				testCase.mockBehavior(mockWallet)
			}

			r := gin.Default()
			r.GET("/accounts/:id", handler.GetAccount)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", testCase.requestURL, nil)

			r.ServeHTTP(w, req)

			assert.Equal(t, testCase.expectedStatusCode, w.Code)
			if testCase.expectedStatusCode == http.StatusOK {
				assert.JSONEq(t, testCase.expectedResponse, w.Body.String())
			} else {
				assert.Equal(t, testCase.expectedResponse, w.Body.String())
			}
		})
	}
}

func Test_GetBalancesHandler(t *testing.T) {
	handler, mockWallet, ctrl := setupHandler(t)
	defer ctrl.Finish()

	mockWallet.EXPECT().GetBalances(gomock.Any(), tests.InstanceAccount.ID).
		Return([]domain.Balance{
			{Currency: "XUS", Amount: 123456123456},
			{Currency: "USD", Amount: 50_000_000},
		}, nil)

	r := gin.Default()
	r.GET("/accounts/:id/balances", handler.GetBalances)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/accounts/"+tests.InstanceAccount.ID+"/balances", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balances":[
		{"currency":"XUS","amount":123456123456,"display":"123,456.123456"},
		{"currency":"USD","amount":50000000,"display":"50.00"}
	]}`, w.Body.String())
}

func Test_CreateTransferHandler(t *testing.T) {
	type mockBehavior func(r *handler_mocks.MockWalletService)

	testCases := []struct {
		name               string
		body               TransferRequest
		mockBehavior       mockBehavior
		expectedStatusCode int
	}{
		{
			name: "OK",
			body: TransferRequest{
				AccountID:   tests.InstanceAccount.ID,
				Destination: "tdm1p33klj2euu3zhqer2vp5y3kcxu",
				Currency:    "XUS",
				Amount:      "5",
			},
			mockBehavior: func(r *handler_mocks.MockWalletService) {
				r.EXPECT().GetAccount(gomock.Any(), tests.InstanceAccount.ID).Return(tests.InstanceAccount, nil)
				r.EXPECT().Transfer(gomock.Any(), domain.Transaction{
					AccountID:   tests.InstanceAccount.ID,
					Source:      tests.InstanceAccount.VaspAddress,
					Destination: "tdm1p33klj2euu3zhqer2vp5y3kcxu",
					Currency:    "XUS",
					Amount:      5_000_000,
				}).Return(tests.InstanceTransaction, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name: "Invalid amount",
			body: TransferRequest{
				AccountID:   tests.InstanceAccount.ID,
				Destination: "tdm1p33klj2euu3zhqer2vp5y3kcxu",
				Currency:    "XUS",
				Amount:      "12a.4",
			},
			mockBehavior:       nil,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Insufficient funds",
			body: TransferRequest{
				AccountID:   tests.InstanceAccount.ID,
				Destination: "tdm1p33klj2euu3zhqer2vp5y3kcxu",
				Currency:    "XUS",
				Amount:      "999999",
			},
			mockBehavior: func(r *handler_mocks.MockWalletService) {
				r.EXPECT().GetAccount(gomock.Any(), tests.InstanceAccount.ID).Return(tests.InstanceAccount, nil)
				r.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(domain.Transaction{}, e.ErrInsufficientFunds)
			},
			expectedStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			handler, mockWallet, ctrl := setupHandler(t)
			defer ctrl.Finish()

			if testCase.mockBehavior != nil {
				testCase.mockBehavior(mockWallet)
			}

			r := gin.Default()
			r.POST("/transactions", handler.CreateTransfer)

			body, err := json.Marshal(testCase.body)
			assert.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/transactions", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			r.ServeHTTP(w, req)

			assert.Equal(t, testCase.expectedStatusCode, w.Code)
		})
	}
}

func Test_ListRatesHandler(t *testing.T) {
	handler, mockWallet, ctrl := setupHandler(t)
	defer ctrl.Finish()

	mockWallet.EXPECT().ListRates(gomock.Any()).Return([]domain.Rate{
		{SellCurrency: "XUS", BuyCurrency: "USD", Rate: 998_500},
		{SellCurrency: "USD", BuyCurrency: "XUS", Rate: 1},
	}, nil)

	r := gin.Default()
	r.GET("/rates", handler.ListRates)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/rates", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rates":[
		{"sell_currency":"XUS","buy_currency":"USD","rate":998500,"display":"0.9985"},
		{"sell_currency":"USD","buy_currency":"XUS","rate":1,"display":"0.0000"}
	]}`, w.Body.String())
}

func Test_ParsePaymentLinkHandler(t *testing.T) {
	fullQuery := url.Values{
		"vaspAddress":      {"tdm1pzmhcxpnyns7m035gkdv8nzmyvu"},
		"referenceId":      {"ce74d678-d014-48fc-b61d-2c36683feb29"},
		"merchantName":     {"merchant-name"},
		"checkoutDataType": {"PAYMENT_REQUEST"},
		"action":           {"CHARGE"},
		"currency":         {"XUS"},
		"amount":           {"1000000000"},
		"expiration":       {"2020-01-21T00:00:00.000Z"},
		"redirectUrl":      {"https://merchant.com/checkout/complete"},
	}

	t.Run("full link parses locally", func(t *testing.T) {
		handler, _, ctrl := setupHandler(t)
		defer ctrl.Finish()

		r := gin.Default()
		r.GET("/payments/link", handler.ParsePaymentLink)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/payments/link?"+fullQuery.Encode(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response PaymentLinkResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.IsFull)
		assert.Equal(t, "merchant-name", response.MerchantName)
		assert.Equal(t, float64(1000000000), response.Amount)
		assert.Equal(t, "2020-01-21T00:00:00.000Z", response.Expiration)
	})

	t.Run("invalid field is named in the response", func(t *testing.T) {
		handler, _, ctrl := setupHandler(t)
		defer ctrl.Finish()

		query := url.Values{}
		for k, v := range fullQuery {
			query[k] = v
		}
		query.Del("merchantName")

		r := gin.Default()
		r.GET("/payments/link", handler.ParsePaymentLink)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/payments/link?"+query.Encode(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "merchantName")
	})

	t.Run("partial link is resolved through the backend", func(t *testing.T) {
		handler, mockWallet, ctrl := setupHandler(t)
		defer ctrl.Finish()

		details := domain.PaymentDetails{
			ReferenceID:  "ce74d678-d014-48fc-b61d-2c36683feb29",
			VaspAddress:  "tdm1pzmhcxpnyns7m035gkdv8nzmyvu",
			MerchantName: "merchant-name",
			Action:       "CHARGE",
			Currency:     "XUS",
			Amount:       1000000000,
			Expiration:   tests.InstanceTransaction.Timestamp,
		}
		mockWallet.EXPECT().
			GetPaymentDetails(gomock.Any(), details.ReferenceID, details.VaspAddress).
			Return(details, nil)

		r := gin.Default()
		r.GET("/payments/link", handler.ParsePaymentLink)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET",
			"/payments/link?vaspAddress="+details.VaspAddress+"&referenceId="+details.ReferenceID, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response PaymentLinkResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.IsFull)
		assert.Equal(t, "merchant-name", response.MerchantName)
	})
}
