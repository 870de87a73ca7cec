package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/middleware"
	"github.com/cofinco/backoffice/internal/api/response"
	"github.com/cofinco/backoffice/internal/domain/account"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
	"github.com/cofinco/backoffice/internal/domain/ledger"
	"github.com/cofinco/backoffice/internal/domain/otp"
	"github.com/cofinco/backoffice/internal/domain/settings"
	"github.com/cofinco/backoffice/internal/domain/user"
)

// Services groups the domain services the API exposes
type Services struct {
	Users    *user.Service
	Settings *settings.Service
	Otp      *otp.Service
	Accounts *account.Service
	Ledger   *ledger.Service
	Audit    *audit.Service
}

type route struct {
	method  string
	pattern string
	handle  middleware.APIGatewayHandler
}

// BackofficeHandler routes API Gateway proxy requests to the domain services
type BackofficeHandler struct {
	svc    Services
	routes []route
}

// NewBackofficeHandler creates a new handler
func NewBackofficeHandler(svc Services) *BackofficeHandler {
	h := &BackofficeHandler{svc: svc}
	h.routes = []route{
		{http.MethodPost, "/api/auth/login", h.Login},
		{http.MethodGet, "/api/settings", h.GetSettings},
		{http.MethodPut, "/api/settings/otp", h.UpdateOtpSettings},
		{http.MethodPut, "/api/settings/sms", h.UpdateSmsSettings},
		{http.MethodPost, "/api/otp/send", h.SendOtp},
		{http.MethodPost, "/api/otp/verify", h.VerifyOtp},
		{http.MethodPost, "/api/accounts", h.OpenAccount},
		{http.MethodGet, "/api/accounts", h.ListAccounts},
		{http.MethodPost, "/api/accounts/{id}/approve", h.ApproveAccount},
		{http.MethodPost, "/api/accounts/{id}/confirm", h.ConfirmAccount},
		{http.MethodPost, "/api/accounts/{id}/reject", h.RejectAccount},
		{http.MethodPost, "/api/operations", h.RecordOperation},
		{http.MethodGet, "/api/operations", h.ListOperations},
		{http.MethodGet, "/api/accounting/journal", h.Journal},
		{http.MethodGet, "/api/accounting/balance", h.TrialBalance},
		{http.MethodGet, "/api/audit", h.Audit},
	}
	return h
}

// Handle dispatches on method and path. Path parameters found in the path
// are merged into the request before the route handler runs.
func (h *BackofficeHandler) Handle(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return response.Preflight(), nil
	}

	path := request.Path
	if path == "" {
		path = request.Resource
	}

	pathMatched := false
	for _, rt := range h.routes {
		params, ok := match(rt.pattern, path)
		if !ok {
			continue
		}
		pathMatched = true
		if rt.method != request.HTTPMethod {
			continue
		}
		if len(params) > 0 {
			merged := make(map[string]string, len(params)+len(request.PathParameters))
			for k, v := range request.PathParameters {
				merged[k] = v
			}
			for k, v := range params {
				merged[k] = v
			}
			request.PathParameters = merged
		}
		return rt.handle(ctx, logger, request)
	}

	if pathMatched {
		return response.Error(errors.AppError{
			Code:       "METHOD_NOT_ALLOWED",
			Message:    request.HTTPMethod + " is not supported on " + path,
			StatusCode: http.StatusMethodNotAllowed,
		}, request.RequestContext.RequestID), nil
	}
	return response.NotFound("route not found", request.RequestContext.RequestID), nil
}

// match compares a pattern such as /api/accounts/{id}/approve with a path
func match(pattern, path string) (map[string]string, bool) {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[strings.Trim(seg, "{}")] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

// decode reads a JSON body. An empty body decodes to the zero value.
func decode(request events.APIGatewayProxyRequest, v interface{}) error {
	if strings.TrimSpace(request.Body) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(request.Body), v); err != nil {
		return errors.NewValidationError("invalid JSON body").WithDetail("cause", err.Error())
	}
	return nil
}

// Login handles POST /api/auth/login
func (h *BackofficeHandler) Login(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	res, err := h.svc.Users.Login(ctx, req.Username)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(res, request.RequestContext.RequestID), nil
}

// GetSettings handles GET /api/settings
func (h *BackofficeHandler) GetSettings(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	s, err := h.svc.Settings.Get(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(s, request.RequestContext.RequestID), nil
}

// UpdateOtpSettings handles PUT /api/settings/otp
func (h *BackofficeHandler) UpdateOtpSettings(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var patch settings.OtpConfigPatch
	if err := decode(request, &patch); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	cfg, err := h.svc.Settings.MergeOtpConfig(ctx, patch)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(cfg, request.RequestContext.RequestID), nil
}

// UpdateSmsSettings handles PUT /api/settings/sms
func (h *BackofficeHandler) UpdateSmsSettings(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var patch settings.SmsConfigPatch
	if err := decode(request, &patch); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	cfg, err := h.svc.Settings.MergeSmsConfig(ctx, patch)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(cfg, request.RequestContext.RequestID), nil
}

// SendOtp handles POST /api/otp/send
func (h *BackofficeHandler) SendOtp(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req otp.IssueRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	res, err := h.svc.Otp.Issue(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.Created(res, request.RequestContext.RequestID), nil
}

// VerifyOtp handles POST /api/otp/verify
func (h *BackofficeHandler) VerifyOtp(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req otp.VerifyRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	if err := h.svc.Otp.Verify(ctx, req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(map[string]bool{"verified": true}, request.RequestContext.RequestID), nil
}

// OpenAccount handles POST /api/accounts
func (h *BackofficeHandler) OpenAccount(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req account.OpenRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	acc, err := h.svc.Accounts.Open(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.Created(acc, request.RequestContext.RequestID), nil
}

// ListAccounts handles GET /api/accounts?status=
func (h *BackofficeHandler) ListAccounts(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	status := document.AccountStatus(strings.ToUpper(request.QueryStringParameters["status"]))

	listing, err := h.svc.Accounts.List(ctx, status)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	switch status {
	case document.StatusActive:
		return response.OK(listing.Active, request.RequestContext.RequestID), nil
	case document.StatusPending:
		return response.OK(listing.Pending, request.RequestContext.RequestID), nil
	default:
		return response.OK(listing, request.RequestContext.RequestID), nil
	}
}

// ApproveAccount handles POST /api/accounts/{id}/approve
func (h *BackofficeHandler) ApproveAccount(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req struct {
		ApprovedBy string `json:"approvedBy"`
	}
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	acc, err := h.svc.Accounts.Approve(ctx, request.PathParameters["id"], req.ApprovedBy)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(acc, request.RequestContext.RequestID), nil
}

// ConfirmAccount handles POST /api/accounts/{id}/confirm
func (h *BackofficeHandler) ConfirmAccount(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req account.ConfirmRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	req.ID = request.PathParameters["id"]

	acc, err := h.svc.Accounts.Confirm(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(acc, request.RequestContext.RequestID), nil
}

// RejectAccount handles POST /api/accounts/{id}/reject
func (h *BackofficeHandler) RejectAccount(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req struct {
		RejectedBy string `json:"rejectedBy"`
		Reason     string `json:"reason"`
	}
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	id := request.PathParameters["id"]
	if err := h.svc.Accounts.Reject(ctx, id, req.RejectedBy, req.Reason); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(map[string]string{"id": id, "status": string(document.StatusRejected)}, request.RequestContext.RequestID), nil
}

// RecordOperation handles POST /api/operations
func (h *BackofficeHandler) RecordOperation(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req ledger.RecordRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	res, err := h.svc.Ledger.Record(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.Created(res, request.RequestContext.RequestID), nil
}

// ListOperations handles GET /api/operations
func (h *BackofficeHandler) ListOperations(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ops, err := h.svc.Ledger.Operations(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(ops, request.RequestContext.RequestID), nil
}

// Journal handles GET /api/accounting/journal
func (h *BackofficeHandler) Journal(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	journal, err := h.svc.Ledger.Journal(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(journal, request.RequestContext.RequestID), nil
}

// TrialBalance handles GET /api/accounting/balance
func (h *BackofficeHandler) TrialBalance(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	tb, err := h.svc.Ledger.TrialBalance(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(map[string]interface{}{
		"rows":   tb,
		"total":  tb.Total(),
		"closes": tb.Closes(),
	}, request.RequestContext.RequestID), nil
}

// Audit handles GET /api/audit
func (h *BackofficeHandler) Audit(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	entries, err := h.svc.Audit.List(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(entries, request.RequestContext.RequestID), nil
}
