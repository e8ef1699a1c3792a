package tools

import (
	"encoding/json"
	"fmt"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
)

// textResult renders v as indented JSON after a one-line summary
func textResult(summary string, v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("%s but the response could not be formatted", summary), err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.ToolResultContent{
			{
				Type: "text",
				Text: fmt.Sprintf("%s:\n%s", summary, string(data)),
			},
		},
	}, nil
}

// errorResult reports a failed call. Application errors keep their code so
// the caller can tell a stale version from a missing record.
func errorResult(prefix string, err error) *mcp.CallToolResult {
	text := fmt.Sprintf("%s: %v", prefix, err)
	appErr := errors.As(err)
	if appErr.Code != errors.CodeInternal {
		text = fmt.Sprintf("%s: %s: %s", prefix, appErr.Code, appErr.Message)
		if len(appErr.Details) > 0 {
			details, _ := json.Marshal(appErr.Details)
			text += " " + string(details)
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.ToolResultContent{
			{
				Type: "text",
				Text: text,
			},
		},
		IsError: true,
	}
}

// parseArguments decodes the tool arguments into v
func parseArguments(arguments json.RawMessage, v interface{}) *mcp.CallToolResult {
	if len(arguments) == 0 {
		arguments = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(arguments, v); err != nil {
		return errorResult("Error parsing arguments", err)
	}
	return nil
}

func stringProperty(description string) map[string]string {
	return map[string]string{
		"type":        "string",
		"description": description,
	}
}

func dateProperty(description string) map[string]string {
	return map[string]string{
		"type":        "string",
		"description": description,
		"pattern":     "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
	}
}

func amountProperty(description string) map[string]string {
	return map[string]string{
		"type":        "string",
		"description": description,
		"pattern":     "^-?[0-9]+(\\.[0-9]{1,2})?$",
	}
}

func enumProperty(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}
