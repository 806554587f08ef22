package types

// Category groups services
type Category string

const CategoryBrowser Category = "browser"

// Service describes a tool provider
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities,omitempty"`
	Tools        []Tool   `json:"tools"`
}

// Tool describes one callable operation of a service
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter describes a tool parameter
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool returns the tool with the given id
func (s Service) Tool(id string) (Tool, bool) {
	for _, t := range s.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// Context carries caller information into tool execution
type Context struct {
	AppID  *string `json:"app_id,omitempty"`
	UserID *string `json:"user_id,omitempty"`
}

// Result is the outcome of a tool call. Failures are results too; the
// error return of Execute is reserved for broken callers.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *string        `json:"error,omitempty"`
}
