package handlers

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// ListCategories handles GET /categories
func (h *Handler) ListCategories(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	resp, err := h.app.Categories.ListCategories(ctx, owner)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(resp, request.RequestContext.RequestID), nil
}

// CreateCategory handles POST /categories
func (h *Handler) CreateCategory(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	var req category.CreateCategoryRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	c, err := h.app.Categories.CreateCategory(ctx, owner, &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.Created(c, request.RequestContext.RequestID), nil
}

// GetCategory handles GET /categories/{categoryId}
func (h *Handler) GetCategory(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	c, err := h.app.Categories.GetCategory(ctx, owner, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(c, request.RequestContext.RequestID), nil
}

// UpdateCategory handles PUT /categories/{categoryId}
func (h *Handler) UpdateCategory(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	var req category.UpdateCategoryRequest
	if err := decode(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	c, err := h.app.Categories.UpdateCategory(ctx, owner, params[0], &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(c, request.RequestContext.RequestID), nil
}

// DeactivateCategory handles POST /categories/{categoryId}/deactivate
func (h *Handler) DeactivateCategory(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	c, err := h.app.Categories.DeactivateCategory(ctx, owner, params[0])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(c, request.RequestContext.RequestID), nil
}

// DeleteCategory handles DELETE /categories/{categoryId}
func (h *Handler) DeleteCategory(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	if err := h.app.Categories.DeleteCategory(ctx, owner, params[0]); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.NoContent(), nil
}
