package handlers

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// ListTransactions handles GET /transactions
func (h *Handler) ListTransactions(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	limit, err := queryInt(request, "limit")
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	q := request.QueryStringParameters
	filter := &transaction.TransactionFilter{
		StartDate:       q["startDate"],
		EndDate:         q["endDate"],
		AccountID:       q["accountId"],
		CategoryID:      q["categoryId"],
		TransactionType: entry.Type(q["type"]),
		Limit:           limit,
	}

	resp, err := h.app.Transactions.ListTransactions(ctx, owner, filter)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(resp, request.RequestContext.RequestID), nil
}

// CreateTransaction handles POST /transactions. The response carries the
// refreshed balances of the affected account.
func (h *Handler) CreateTransaction(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	var req transaction.CreateTransactionRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	result, err := h.app.Transactions.CreateTransaction(ctx, owner, &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	logger.Info("Transaction created", "transactionId", result.Transaction.TransactionID)
	return response.Created(result, request.RequestContext.RequestID), nil
}

// GetTransaction handles GET /transactions/{transactionId}
func (h *Handler) GetTransaction(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	tx, err := h.app.Transactions.GetTransaction(ctx, owner, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(tx, request.RequestContext.RequestID), nil
}

// UpdateTransaction handles PUT /transactions/{transactionId}
func (h *Handler) UpdateTransaction(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	var req transaction.UpdateTransactionRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	result, err := h.app.Transactions.UpdateTransaction(ctx, owner, params[0], &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	logger.Info("Transaction updated", "transactionId", params[0], "version", result.Transaction.Version)
	return response.OK(result, request.RequestContext.RequestID), nil
}

// DeleteTransaction handles DELETE /transactions/{transactionId}
func (h *Handler) DeleteTransaction(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	result, err := h.app.Transactions.DeleteTransaction(ctx, owner, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	logger.Info("Transaction deleted", "transactionId", params[0])
	return response.OK(result, request.RequestContext.RequestID), nil
}
