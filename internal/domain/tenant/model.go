package tenant

import (
	"context"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
)

// TenantContext identifies the user on whose behalf an operation runs.
// Accounts, categories and transactions are all owned by that user.
type TenantContext struct {
	UserID    string
	RequestID string
}

type contextKey struct{}

// WithContext stores the tenant context in ctx
func WithContext(ctx context.Context, tenantCtx *TenantContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tenantCtx)
}

// FromContext returns the tenant context stored in ctx
func FromContext(ctx context.Context) (*TenantContext, error) {
	tenantCtx, ok := ctx.Value(contextKey{}).(*TenantContext)
	if !ok || tenantCtx == nil || tenantCtx.UserID == "" {
		return nil, errors.NewValidationError("owner is missing from request context")
	}
	return tenantCtx, nil
}
