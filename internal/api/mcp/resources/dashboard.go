package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/finance-ledger/backend/internal/domain/report"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// DashboardResource exposes the current month summary of the owner
type DashboardResource struct {
	reportService *report.Service
}

func NewDashboardResource(reportService *report.Service) *DashboardResource {
	return &DashboardResource{reportService: reportService}
}

func (r *DashboardResource) GetURI() string {
	return "finance://dashboard"
}

func (r *DashboardResource) GetName() string {
	return "Dashboard"
}

func (r *DashboardResource) GetDescription() string {
	return "Income, expenses and category breakdown of the current month, total balance and the latest transactions"
}

func (r *DashboardResource) GetMimeType() string {
	return "application/json"
}

func (r *DashboardResource) Read(ctx context.Context) (*mcp.ReadResourceResult, error) {
	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	dashboard, err := r.reportService.Dashboard(ctx, owner.UserID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return jsonContent(r.GetURI(), r.GetMimeType(), dashboard)
}

func jsonContent(uri, mimeType string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      uri,
				MimeType: mimeType,
				Text:     string(data),
			},
		},
	}, nil
}
