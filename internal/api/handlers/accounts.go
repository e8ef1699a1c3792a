package handlers

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	includeInactive, err := queryBool(request, "includeInactive")
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	filter := &account.AccountFilter{
		AccountType:     account.AccountType(request.QueryStringParameters["type"]),
		SearchTerm:      request.QueryStringParameters["search"],
		IncludeInactive: includeInactive,
	}

	resp, err := h.app.Accounts.GetAccounts(ctx, owner, filter)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(resp, request.RequestContext.RequestID), nil
}

// CreateAccount handles POST /accounts
func (h *Handler) CreateAccount(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	var req account.CreateAccountRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	acc, err := h.app.Accounts.CreateAccount(ctx, owner, &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	logger.Info("Account created", "accountId", acc.AccountID)
	return response.Created(acc, request.RequestContext.RequestID), nil
}

// GetAccount handles GET /accounts/{accountId}
func (h *Handler) GetAccount(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	acc, err := h.app.Accounts.GetAccount(ctx, owner, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(acc, request.RequestContext.RequestID), nil
}

// UpdateAccount handles PUT /accounts/{accountId}
func (h *Handler) UpdateAccount(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	var req account.UpdateAccountRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	acc, err := h.app.Accounts.UpdateAccount(ctx, owner, params[0], &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(acc, request.RequestContext.RequestID), nil
}

// DeactivateAccount handles POST /accounts/{accountId}/deactivate
func (h *Handler) DeactivateAccount(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	acc, err := h.app.Accounts.DeactivateAccount(ctx, owner, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(acc, request.RequestContext.RequestID), nil
}

// DeleteAccount handles DELETE /accounts/{accountId}
func (h *Handler) DeleteAccount(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	if err := h.app.Accounts.DeleteAccount(ctx, owner, params[0]); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	logger.Info("Account deleted", "accountId", params[0])
	return response.NoContent(), nil
}

// AuditAccount handles GET /accounts/{accountId}/audit
func (h *Handler) AuditAccount(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	result, err := h.app.Auditor.AuditAccount(ctx, owner.UserID, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(result, request.RequestContext.RequestID), nil
}
