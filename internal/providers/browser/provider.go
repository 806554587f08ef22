package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/websession/internal/shared/types"
)

// Provider exposes browser sessions as tools. Sessions are opened with
// browser.open and addressed by their id afterwards.
type Provider struct {
	sessions *SessionManager
	defaults []Option
	logger   *logging.Logger
}

// SessionManager keeps open sessions by id
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty manager
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Add registers a session under its id
func (m *SessionManager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID().String()] = s
}

// Get looks a session up
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove unregisters a session without closing it
func (m *SessionManager) Remove(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	return s, ok
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the ids of all open sessions, sorted
func (m *SessionManager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll closes and removes every session
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for id, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// NewProvider creates a provider. defaults are applied to every session
// before the options taken from browser.open parameters.
func NewProvider(logger *logging.Logger, defaults ...Option) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{
		sessions: NewSessionManager(),
		defaults: append([]Option{WithLogger(logger)}, defaults...),
		logger:   logger.Named("browser"),
	}
}

// Sessions returns the session registry
func (p *Provider) Sessions() *SessionManager {
	return p.sessions
}

// Definition returns service definition
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "browser",
		Name:         "Browser Session",
		Category:     types.CategoryBrowser,
		Description:  "Stateful HTTP sessions with cookies, headers and referer chaining",
		Capabilities: []string{"cookies", "referer", "relative_links", "json", "html"},
		Tools:        p.getTools(),
	}
}

func sessionParam() types.Parameter {
	return types.Parameter{Name: "session_id", Type: "string", Description: "Session ID returned by browser.open", Required: true}
}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "browser.open",
			Name:        "Open Session",
			Description: "Open a session bound to a host",
			Parameters: []types.Parameter{
				{Name: "host", Type: "string", Description: "Host, optionally with port", Required: true},
				{Name: "scheme", Type: "string", Description: "http or https (default http)", Required: false},
				{Name: "user_agent", Type: "string", Description: "desktop, mobile or a literal User-Agent", Required: false},
				{Name: "cookies", Type: "boolean", Description: "Send and store cookies (default true)", Required: false},
				{Name: "headers", Type: "object", Description: "Extra request headers", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.get",
			Name:        "GET",
			Description: "Request a URL, resolving relative links against the last page",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "url", Type: "string", Description: "Absolute or relative URL", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "browser.post",
			Name:        "POST",
			Description: "Submit data to a URL as form fields or a JSON payload",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "url", Type: "string", Description: "Absolute or relative URL", Required: true},
				{Name: "data", Type: "object", Description: "Fields to send; empty sends a GET", Required: false},
				{Name: "encoding", Type: "string", Description: "form (default) or payload", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.submit",
			Name:        "Submit Form",
			Description: "Load a page and submit one of its forms with its default values plus data",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "url", Type: "string", Description: "Page holding the form", Required: true},
				{Name: "selector", Type: "string", Description: "CSS selector of the form (default first form)", Required: false},
				{Name: "data", Type: "object", Description: "Field values overriding the form defaults", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.set_header",
			Name:        "Set Header",
			Description: "Set a request header; an empty value removes it",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "name", Type: "string", Description: "Header name", Required: true},
				{Name: "value", Type: "string", Description: "Header value", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.get_cookies",
			Name:        "Get Cookies",
			Description: "List live cookies of the session",
			Parameters:  []types.Parameter{sessionParam()},
			Returns:     "object",
		},
		{
			ID:          "browser.set_cookie",
			Name:        "Set Cookie",
			Description: "Store a cookie; ttl in seconds, 0 for session only, negative deletes",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "name", Type: "string", Description: "Cookie name", Required: true},
				{Name: "value", Type: "string", Description: "Cookie value", Required: true},
				{Name: "ttl", Type: "number", Description: "Lifetime in seconds (default from config)", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.save_cookies",
			Name:        "Save Cookies",
			Description: "Write the cookie jar to its cache file",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "path", Type: "string", Description: "Explicit cache file", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.load_cookies",
			Name:        "Load Cookies",
			Description: "Merge the cookie cache file into the jar",
			Parameters: []types.Parameter{
				sessionParam(),
				{Name: "path", Type: "string", Description: "Explicit cache file", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.history",
			Name:        "History",
			Description: "List URLs requested by the session",
			Parameters:  []types.Parameter{sessionParam()},
			Returns:     "object",
		},
		{
			ID:          "browser.close",
			Name:        "Close Session",
			Description: "Close the session and release its transport",
			Parameters:  []types.Parameter{sessionParam()},
			Returns:     "object",
		},
	}
}

// Execute routes tool calls
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	if appCtx != nil && appCtx.AppID != nil {
		p.logger.Debug("Executing tool", zap.String("tool", toolID), zap.String("app_id", *appCtx.AppID))
	}

	switch toolID {
	case "browser.open":
		return p.Open(ctx, params, appCtx)
	case "browser.get":
		return p.Get(ctx, params, appCtx)
	case "browser.post":
		return p.Post(ctx, params, appCtx)
	case "browser.submit":
		return p.Submit(ctx, params, appCtx)
	case "browser.set_header":
		return p.SetHeader(ctx, params, appCtx)
	case "browser.get_cookies":
		return p.GetCookies(ctx, params, appCtx)
	case "browser.set_cookie":
		return p.SetCookie(ctx, params, appCtx)
	case "browser.save_cookies":
		return p.SaveCookies(ctx, params, appCtx)
	case "browser.load_cookies":
		return p.LoadCookies(ctx, params, appCtx)
	case "browser.history":
		return p.History(ctx, params, appCtx)
	case "browser.close":
		return p.CloseSession(ctx, params, appCtx)
	default:
		return types.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

// Close closes every open session
func (p *Provider) Close() error {
	return p.sessions.CloseAll()
}

// lookup finds the session named by the session_id parameter
func (p *Provider) lookup(params map[string]any) (*Session, error) {
	sessionID, err := types.GetString(params, "session_id", true)
	if err != nil {
		return nil, err
	}
	s, ok := p.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	return s, nil
}
