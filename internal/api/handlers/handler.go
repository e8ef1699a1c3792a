// Package handlers serves the REST API on API Gateway proxy events
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/app"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// Handler serves every REST route on top of the application services
type Handler struct {
	app *app.App
}

// NewHandler creates a new REST handler
func NewHandler(a *app.App) *Handler {
	return &Handler{app: a}
}

type route func(ctx context.Context, logger *slog.Logger, owner *tenant.TenantContext, request events.APIGatewayProxyRequest, params []string) (events.APIGatewayProxyResponse, error)

// Route dispatches request by path and method. Path segments after the
// collection name are passed to the route as params.
func (h *Handler) Route(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return response.Error(errors.NewUnauthenticatedError("owner could not be resolved"), request.RequestContext.RequestID), nil
	}

	segments := strings.Split(strings.Trim(request.Path, "/"), "/")
	method := request.HTTPMethod

	var r route
	var allowed string
	switch {
	case match(segments, "accounts"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.ListAccounts, http.MethodPost: h.CreateAccount})
	case match(segments, "accounts", "*"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.GetAccount, http.MethodPut: h.UpdateAccount, http.MethodDelete: h.DeleteAccount})
	case match(segments, "accounts", "*", "deactivate"):
		r, allowed = pick(method, map[string]route{http.MethodPost: h.DeactivateAccount})
	case match(segments, "accounts", "*", "audit"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.AuditAccount})

	case match(segments, "categories"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.ListCategories, http.MethodPost: h.CreateCategory})
	case match(segments, "categories", "*"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.GetCategory, http.MethodPut: h.UpdateCategory, http.MethodDelete: h.DeleteCategory})
	case match(segments, "categories", "*", "deactivate"):
		r, allowed = pick(method, map[string]route{http.MethodPost: h.DeactivateCategory})

	case match(segments, "transactions"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.ListTransactions, http.MethodPost: h.CreateTransaction})
	case match(segments, "transactions", "*"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.GetTransaction, http.MethodPut: h.UpdateTransaction, http.MethodDelete: h.DeleteTransaction})

	case match(segments, "dashboard"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.Dashboard})
	case match(segments, "audit"):
		r, allowed = pick(method, map[string]route{http.MethodGet: h.AuditOwner})

	default:
		return response.NotFound("Endpoint not found"), nil
	}

	if r == nil {
		return response.MethodNotAllowed(allowed, request.RequestContext.RequestID), nil
	}

	var params []string
	if len(segments) > 1 {
		params = segments[1:]
	}
	resp, err := r(ctx, logger, owner, request, params)
	if err != nil {
		return response.FromError(logger, err, request.RequestContext.RequestID), nil
	}
	return resp, nil
}

// match compares path segments against a pattern where "*" matches any one segment
func match(segments []string, pattern ...string) bool {
	if len(segments) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != segments[i] {
			return false
		}
		if p == "*" && segments[i] == "" {
			return false
		}
	}
	return true
}

// pick returns the route for method and the Allow header value
func pick(method string, routes map[string]route) (route, string) {
	allowed := make([]string, 0, len(routes))
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		if _, ok := routes[m]; ok {
			allowed = append(allowed, m)
		}
	}
	return routes[method], strings.Join(allowed, ", ")
}

// decode unmarshals a JSON body into v
func decode(request events.APIGatewayProxyRequest, v interface{}) error {
	if strings.TrimSpace(request.Body) == "" {
		return errors.NewInvalidInputError("request body is required", nil)
	}
	if err := json.Unmarshal([]byte(request.Body), v); err != nil {
		return errors.NewInvalidInputError("request body is not valid JSON", err)
	}
	return nil
}

func queryBool(request events.APIGatewayProxyRequest, name string) (bool, error) {
	raw := request.QueryStringParameters[name]
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewFieldValidationError(name, name+" must be true or false")
	}
	return v, nil
}

func queryInt(request events.APIGatewayProxyRequest, name string) (int, error) {
	raw := request.QueryStringParameters[name]
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.NewFieldValidationError(name, name+" must be a non-negative integer")
	}
	return v, nil
}
