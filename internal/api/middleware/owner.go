package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// OwnerHeader lets local callers pick the owner without an authorizer
const OwnerHeader = "X-Owner-Id"

// OwnerMiddleware resolves the owner of the request and stores it in the context
type OwnerMiddleware struct {
	cfg *config.Config
	log *zap.Logger
}

// NewOwnerMiddleware creates a new owner middleware
func NewOwnerMiddleware(cfg *config.Config, log *zap.Logger) OwnerMiddleware {
	return OwnerMiddleware{cfg: cfg, log: log}
}

// Handle handles the owner middleware
func (m OwnerMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		ownerID, source := ResolveOwner(m.cfg, request)
		if ownerID == "" {
			m.log.Warn("Owner could not be resolved",
				zap.String("path", request.Path),
				zap.String("requestId", request.RequestContext.RequestID))
			return response.Error(errors.NewUnauthenticatedError("owner could not be resolved"), request.RequestContext.RequestID), nil
		}

		m.log.Debug("Resolved owner",
			zap.String("ownerId", ownerID),
			zap.String("source", source),
			zap.String("requestId", request.RequestContext.RequestID))

		ctx = tenant.WithContext(ctx, &tenant.TenantContext{
			UserID:    ownerID,
			RequestID: request.RequestContext.RequestID,
		})
		return next(ctx, logger.With("ownerId", ownerID), request)
	}
}

// ResolveOwner returns the owner ID for request and where it came from. The
// authorizer wins. The header is honoured only when the config allows it,
// which it never does in prod. The configured default owner is the last resort.
func ResolveOwner(cfg *config.Config, request events.APIGatewayProxyRequest) (string, string) {
	authorizer := request.RequestContext.Authorizer
	if claims, ok := authorizer["claims"].(map[string]interface{}); ok {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub, "claims"
		}
	}
	if principal, ok := authorizer["principalId"].(string); ok && principal != "" {
		return principal, "principal"
	}
	if cfg.AllowOwnerHeader && !cfg.IsProd() {
		if owner := headerValue(request.Headers, OwnerHeader); owner != "" {
			return owner, "header"
		}
	}
	if cfg.DefaultOwnerID != "" {
		return cfg.DefaultOwnerID, "default"
	}
	return "", ""
}

// headerValue looks a header up in its canonical and lower-case forms
func headerValue(headers map[string]string, name string) string {
	if v := headers[name]; v != "" {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
