package types

// ExecuteRequest is one tool call in a script
type ExecuteRequest struct {
	ToolID string         `json:"tool_id"`
	Params map[string]any `json:"params"`
}
