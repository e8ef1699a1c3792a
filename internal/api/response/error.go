package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success          bool             `json:"success"`
	Error            string           `json:"error"`
	ErrorDescription ErrorDescription `json:"error_description"`
	Metadata         ResponseMetadata `json:"metadata"`
}

// ErrorDescription represents the error details
type ErrorDescription struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error creates an error response
func Error(appErr errors.AppError, requestID string) events.APIGatewayProxyResponse {
	statusCode := appErr.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	message := appErr.Message
	if appErr.Code == errors.CodeInternal {
		// Storage details stay in the logs
		message = "An unexpected error occurred"
	}

	response := ErrorResponse{
		Success: false,
		Error:   appErr.Code,
		ErrorDescription: ErrorDescription{
			Message: message,
			Details: appErr.Details,
		},
		Metadata: ResponseMetadata{
			Version:   "1.0",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: requestID,
		},
	}

	body, err := json.Marshal(response)
	if err != nil {
		// Fallback for JSON marshaling errors
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"success":false,"error":"INTERNAL_ERROR","error_description":{"message":"Failed to marshal error response"}}`,
			Headers:    DefaultHeaders(),
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    DefaultHeaders(),
	}
}

// FromError converts any error into an error response. Internal errors are
// logged with their cause before the cause is hidden from the client.
func FromError(logger *slog.Logger, err error, requestID string) events.APIGatewayProxyResponse {
	appErr := errors.As(err)
	if appErr.Code == errors.CodeInternal {
		logger.Error("Request failed", "requestId", requestID, "error", err)
	}
	return Error(appErr, requestID)
}

// ValidationError creates a validation error response
func ValidationError(message string, requestID string) events.APIGatewayProxyResponse {
	return Error(errors.NewValidationError(message), requestID)
}

// BadRequest creates an invalid input response, used for bodies that are not JSON
func BadRequest(message string, err error, requestID string) events.APIGatewayProxyResponse {
	return Error(errors.NewInvalidInputError(message, err), requestID)
}

// NotFound creates a not found error response
func NotFound(message string) events.APIGatewayProxyResponse {
	return Error(errors.NewNotFoundError(message), "")
}

// MethodNotAllowed creates a 405 response listing the allowed methods
func MethodNotAllowed(allowed string, requestID string) events.APIGatewayProxyResponse {
	resp := Error(errors.AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	}, requestID)
	resp.Headers["Allow"] = allowed
	return resp
}

// InternalError creates an internal error response
func InternalError(message string, err error, requestID string) events.APIGatewayProxyResponse {
	return Error(errors.NewInternalError(message, err), requestID)
}
