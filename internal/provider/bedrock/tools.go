package bedrock

import (
	"fmt"

	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

// syntheticTool wraps a test case's single schema into one named tool, for
// the legacy single-output mode where the model is forced onto that tool.
func syntheticTool(call provider.Call) schema.Tool {
	subject := call.Name
	if subject == "" {
		subject = "this request"
	}
	return schema.Tool{
		Name:        call.ToolName(),
		Description: fmt.Sprintf("Analyze and respond with structured data according to the schema for: %s", subject),
		Schema:      call.Schema,
	}
}
