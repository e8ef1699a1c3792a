package handlers

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// Dashboard handles GET /dashboard?month=YYYY-MM
func (h *Handler) Dashboard(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	dash, err := h.app.Reports.Dashboard(ctx, owner.UserID, request.QueryStringParameters["month"])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(dash, request.RequestContext.RequestID), nil
}

// AuditOwner handles GET /audit and recomputes every account of the owner
func (h *Handler) AuditOwner(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error) {
	report, err := h.app.Auditor.AuditOwner(ctx, owner.UserID)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if report.Inconsistent > 0 {
		logger.Warn("Balance audit found inconsistent accounts", "inconsistent", report.Inconsistent)
	}
	return response.OK(report, request.RequestContext.RequestID), nil
}
