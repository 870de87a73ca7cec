package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/middleware"
	"github.com/cofinco/backoffice/internal/domain/account"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/ledger"
	"github.com/cofinco/backoffice/internal/domain/otp"
	"github.com/cofinco/backoffice/internal/domain/settings"
	"github.com/cofinco/backoffice/internal/domain/user"
)

type noopSender struct{}

func (noopSender) SendCode(ctx context.Context, d otp.Delivery) error { return nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestAPI(t *testing.T) middleware.APIGatewayHandler {
	t.Helper()
	session := document.NewSession(document.NewJSONRepository(document.NewMemoryStorage()))
	logger := zap.NewNop()
	h := NewBackofficeHandler(Services{
		Users:    user.NewService(session),
		Settings: settings.NewService(session),
		Otp:      otp.NewService(session, noopSender{}, logger, otp.Config{RevealCode: true}),
		Accounts: account.NewService(session, logger),
		Ledger:   ledger.NewService(session, logger, ledger.Config{}),
		Audit:    audit.NewService(session),
	})
	return middleware.Chain(h.Handle, middleware.NewRecoveryMiddleware())
}

func call(t *testing.T, api middleware.APIGatewayHandler, method, path, body string, out interface{}) (int, envelope) {
	t.Helper()
	resp, err := api(context.Background(), zap.NewNop(), events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
	})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &env), resp.Body)
	if out != nil && env.Success {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode, env
}

func callQuery(t *testing.T, api middleware.APIGatewayHandler, path string, query map[string]string, out interface{}) int {
	t.Helper()
	resp, err := api(context.Background(), zap.NewNop(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  path,
		QueryStringParameters: query,
	})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &env))
	if out != nil && env.Success {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func rawGet(t *testing.T, api middleware.APIGatewayHandler, path string) string {
	t.Helper()
	resp, err := api(context.Background(), zap.NewNop(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       path,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	return resp.Body
}

func TestMatch(t *testing.T) {
	params, ok := match("/api/accounts/{id}/approve", "/api/accounts/abc/approve")
	require.True(t, ok)
	assert.Equal(t, "abc", params["id"])

	_, ok = match("/api/accounts/{id}/approve", "/api/accounts/abc/confirm")
	assert.False(t, ok)

	_, ok = match("/api/accounts", "/api/accounts/")
	assert.True(t, ok)
}

func TestRouting(t *testing.T) {
	api := newTestAPI(t)

	status, env := call(t, api, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error)

	status, _ = call(t, api, http.MethodDelete, "/api/accounts", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, env = call(t, api, http.MethodPost, "/api/accounts", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)

	resp, err := api(context.Background(), zap.NewNop(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions, Path: "/api/accounts"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	var res user.LoginResult
	status, _ := call(t, api, http.MethodPost, "/api/auth/login", `{"username":"chefA"}`, &res)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ChefAgence", res.User.Role)
	assert.NotEmpty(t, res.Token)

	status, env := call(t, api, http.MethodPost, "/api/auth/login", `{"username":"ghost"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTHENTICATION_ERROR", env.Error)
}

func TestSettingsRoutes(t *testing.T) {
	api := newTestAPI(t)

	var cfg document.OtpConfig
	status, _ := call(t, api, http.MethodPut, "/api/settings/otp", `{"length":4,"enable_cash":false}`, &cfg)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, cfg.CodeLength)
	assert.False(t, cfg.EnableCash)
	assert.True(t, cfg.EnableOpen)

	status, env := call(t, api, http.MethodPost, "/api/otp/send", `{"phone":"061234567","purpose":"cash"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "PURPOSE_DISABLED", env.Error)

	var sms document.SmsConfig
	status, _ = call(t, api, http.MethodPut, "/api/settings/sms", `{"sender":"MFI"}`, &sms)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "MFI", sms.Sender)
	assert.Equal(t, "Twilio", sms.Provider)

	var all document.Settings
	callQuery(t, api, "/api/settings", nil, &all)
	assert.Equal(t, "MFI", all.SMS.Sender)
	assert.Equal(t, 4, all.OTP.CodeLength)
}

func TestAccountOpeningOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	var acc document.AccountRequest
	status, _ := call(t, api, http.MethodPost, "/api/accounts", `{"nom":"Jean","tel":"061234567","type":"savings","createdBy":"chefA"}`, &acc)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, document.StatusPending, acc.Status)

	status, _ = call(t, api, http.MethodPost, "/api/accounts/"+acc.ID+"/approve", `{"approvedBy":"chefA"}`, &acc)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, document.StatusAwaitingOtp, acc.Status)

	var issued otp.IssueResult
	status, _ = call(t, api, http.MethodPost, "/api/otp/send", `{"phone":"`+acc.Phone+`","purpose":"open"}`, &issued)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, issued.DemoCode)

	confirm := `{"otpTxnId":"` + issued.TransactionID + `","code":"` + issued.DemoCode + `"}`
	status, env := call(t, api, http.MethodPost, "/api/accounts/"+acc.ID+"/confirm", confirm, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "OTP_NOT_VERIFIED", env.Error)

	status, _ = call(t, api, http.MethodPost, "/api/otp/verify", `{"txnId":"`+issued.TransactionID+`","code":"`+issued.DemoCode+`"}`, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, api, http.MethodPost, "/api/accounts/"+acc.ID+"/confirm", confirm, &acc)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, document.StatusActive, acc.Status)

	var active []*document.AccountRequest
	assert.Equal(t, http.StatusOK, callQuery(t, api, "/api/accounts", map[string]string{"status": "active"}, &active))
	assert.Len(t, active, 1)

	var listing account.Listing
	callQuery(t, api, "/api/accounts", nil, &listing)
	assert.Empty(t, listing.Pending)
	assert.Len(t, listing.Active, 1)

	var entries []*document.AuditEntry
	callQuery(t, api, "/api/audit", nil, &entries)
	require.Len(t, entries, 5)
	assert.Equal(t, audit.ActionAccountConfirmed, entries[0].Action)
	assert.Equal(t, audit.ActionAccountCreated, entries[4].Action)
}

func TestRejectOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	var acc document.AccountRequest
	_, _ = call(t, api, http.MethodPost, "/api/accounts", `{"nom":"Awa","tel":"055000000","type":"tontine"}`, &acc)

	status, _ := call(t, api, http.MethodPost, "/api/accounts/"+acc.ID+"/reject", `{"rejectedBy":"chefA","reason":"doublon"}`, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := call(t, api, http.MethodPost, "/api/accounts/"+acc.ID+"/approve", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error)
}

func TestOperationsOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	var res ledger.RecordResult
	body := `{"agence":"AG01","type":"Dépôt caisse","produit":"Epargne libre","montant":15000,"acteur":"caisse1","client":"061234567"}`
	status, _ := call(t, api, http.MethodPost, "/api/operations", body, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, res.Entries, 2)

	status, env := call(t, api, http.MethodPost, "/api/operations", `{"agence":"AG01","type":"Dépôt caisse","produit":"x","acteur":"caisse1","client":"0612"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MISSING_FIELD", env.Error)

	var ops []*document.Operation
	callQuery(t, api, "/api/operations", nil, &ops)
	assert.Len(t, ops, 1)

	var journal []*document.JournalEntry
	callQuery(t, api, "/api/accounting/journal", nil, &journal)
	assert.Len(t, journal, 2)

	var tb struct {
		Rows   []ledger.BalanceRow `json:"rows"`
		Closes bool                `json:"closes"`
	}
	callQuery(t, api, "/api/accounting/balance", nil, &tb)
	assert.True(t, tb.Closes)
	assert.Len(t, tb.Rows, 2)
}

func TestAmountsAreNumbersOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	body := `{"agence":"AG01","type":"Dépôt caisse","produit":"Epargne libre","montant":1000,"acteur":"caisse1","client":"061234567"}`
	status, _ := call(t, api, http.MethodPost, "/api/operations", body, nil)
	require.Equal(t, http.StatusCreated, status)

	assert.Contains(t, rawGet(t, api, "/api/operations"), `"montant":1000`)

	journal := rawGet(t, api, "/api/accounting/journal")
	assert.Contains(t, journal, `"debit":1000`)
	assert.Contains(t, journal, `"credit":0`)
	assert.NotContains(t, journal, `"debit":"`)

	balance := rawGet(t, api, "/api/accounting/balance")
	assert.Contains(t, balance, `"solde":1000`)
	assert.Contains(t, balance, `"solde":-1000`)
	assert.Contains(t, balance, `"total":0`)
}
