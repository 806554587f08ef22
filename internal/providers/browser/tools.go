package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/websession/internal/providers/browser/response"
	"github.com/GriffinCanCode/websession/internal/shared/types"
	"github.com/GriffinCanCode/websession/internal/shared/utils"
)

// Open creates a session bound to a host
func (p *Provider) Open(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	host, err := types.GetString(params, "host", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := utils.ValidateHost(host); err != nil {
		return types.Failure(err.Error())
	}

	scheme, err := types.GetString(params, "scheme", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := utils.ValidateScheme(scheme); err != nil {
		return types.Failure(err.Error())
	}

	opts := append([]Option{WithUserAgent(UserAgentDesktop)}, p.defaults...)
	opts = append(opts, WithScheme(scheme))

	switch ua, _ := types.GetString(params, "user_agent", false); ua {
	case "":
	case "desktop":
		opts = append(opts, WithUserAgent(UserAgentDesktop))
	case "mobile":
		opts = append(opts, WithUserAgent(UserAgentMobile))
	default:
		opts = append(opts, WithUserAgent(ua))
	}

	if enabled, ok := params["cookies"].(bool); ok {
		opts = append(opts, WithCookies(enabled))
	}

	if extra := types.GetMap(params, "headers"); len(extra) > 0 {
		headers := make(map[string]string, len(extra))
		for name, value := range extra {
			if err := utils.ValidateHeaderName(name); err != nil {
				return types.Failure(err.Error())
			}
			headers[name] = fmt.Sprint(value)
		}
		opts = append(opts, WithHeaders(headers))
	}

	s := New(host, opts...)
	p.sessions.Add(s)
	p.logger.Info("Session opened",
		zap.String("session_id", s.ID().String()),
		zap.String("host", host),
		zap.String("scheme", s.Scheme()),
	)

	return types.Success(map[string]any{
		"session_id": s.ID().String(),
		"host":       s.Host(),
		"scheme":     s.Scheme(),
		"cookies":    s.CookieEnabled(),
	})
}

// Get requests a URL
func (p *Provider) Get(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	rawURL, err := types.GetString(params, "url", true)
	if err != nil {
		return types.Failure(err.Error())
	}

	resp, err := s.Get(ctx, rawURL)
	if err != nil {
		return types.Failure(fmt.Sprintf("request failed: %v", err))
	}
	return types.Success(responseData(s, resp))
}

// Post submits data to a URL
func (p *Provider) Post(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	rawURL, err := types.GetString(params, "url", true)
	if err != nil {
		return types.Failure(err.Error())
	}

	enc, err := parseEncoding(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	resp, err := s.Post(ctx, rawURL, types.GetMap(params, "data"), enc)
	if err != nil {
		return types.Failure(fmt.Sprintf("request failed: %v", err))
	}
	return types.Success(responseData(s, resp))
}

// Submit loads a page and submits a form found on it
func (p *Provider) Submit(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	rawURL, err := types.GetString(params, "url", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	selector, err := types.GetString(params, "selector", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	page, err := s.Get(ctx, rawURL)
	if err != nil {
		return types.Failure(fmt.Sprintf("request failed: %v", err))
	}
	form, ok := page.Form(selector)
	if !ok {
		return types.Failure(fmt.Sprintf("form not found on %s", s.LastURL()))
	}

	resp, err := s.Submit(ctx, form, types.GetMap(params, "data"))
	if err != nil {
		return types.Failure(fmt.Sprintf("submit failed: %v", err))
	}

	data := responseData(s, resp)
	data["form"] = map[string]any{
		"action": form.Action,
		"method": form.Method,
		"fields": len(form.Fields),
	}
	return types.Success(data)
}

func parseEncoding(params map[string]any) (Encoding, error) {
	name, err := types.GetString(params, "encoding", false)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(name) {
	case "", "form":
		return EncodingForm, nil
	case "payload", "json":
		return EncodingPayload, nil
	}
	return 0, fmt.Errorf("unknown encoding: %s", name)
}

// responseData flattens a response for a tool result
func responseData(s *Session, resp *response.Response) map[string]any {
	cookies := make([]string, 0, len(resp.Cookies))
	for _, c := range resp.Cookies {
		cookies = append(cookies, c.Name)
	}

	data := map[string]any{
		"url":          s.LastURL(),
		"status":       resp.StatusCode,
		"status_text":  resp.StatusText,
		"protocol":     resp.Protocol,
		"headers":      resp.Headers,
		"body":         resp.Body,
		"content_type": resp.ContentType(),
		"set_cookies":  cookies,
	}
	if resp.Data != nil {
		data["data"] = resp.Data
	}
	if resp.ContentType() == "text/html" {
		data["title"] = resp.Title()
	}
	if loc := resp.Location(); loc != "" {
		data["location"] = loc
	}
	return data
}

// SetHeader sets or removes a request header
func (p *Provider) SetHeader(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	name, err := types.GetString(params, "name", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := utils.ValidateHeaderName(name); err != nil {
		return types.Failure(err.Error())
	}
	value, err := types.GetString(params, "value", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	s.SetHeader(name, value)
	return types.Success(map[string]any{
		"name":    name,
		"removed": value == "",
	})
}

// GetCookies lists the live cookies of a session
func (p *Provider) GetCookies(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	return types.Success(map[string]any{
		"cookies": s.Jar().All(),
		"header":  s.Jar().String(),
		"enabled": s.CookieEnabled(),
	})
}

// SetCookie stores a cookie in the session jar
func (p *Provider) SetCookie(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	name, err := types.GetString(params, "name", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	value, err := types.GetString(params, "value", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	if _, ok := params["ttl"]; ok {
		ttl, err := types.GetNumber(params, "ttl", true)
		if err != nil {
			return types.Failure(err.Error())
		}
		s.Jar().SetExpiry(name, value, time.Duration(ttl*float64(time.Second)))
	} else {
		s.Jar().Set(name, value)
	}

	got, live := s.Jar().Get(name)
	return types.Success(map[string]any{
		"name":  name,
		"value": got,
		"live":  live,
	})
}

// SaveCookies writes the session jar to its cache file
func (p *Provider) SaveCookies(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, file, err := p.cookieFile(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := s.Jar().Write(); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]any{
		"path":  file,
		"count": s.Jar().Len(),
	})
}

// LoadCookies merges the cache file into the session jar
func (p *Provider) LoadCookies(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, file, err := p.cookieFile(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := s.Jar().Read(); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]any{
		"path":    file,
		"cookies": s.Jar().All(),
	})
}

// cookieFile pins the optional path parameter and resolves the cache file
func (p *Provider) cookieFile(params map[string]any) (*Session, string, error) {
	s, err := p.lookup(params)
	if err != nil {
		return nil, "", err
	}
	path, err := types.GetString(params, "path", false)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := s.Jar().SetCacheFile(path); err != nil {
			return nil, "", err
		}
	}
	file, err := s.Jar().CacheFile()
	if err != nil {
		return nil, "", err
	}
	return s, file, nil
}

// History lists the URLs a session requested
func (p *Provider) History(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	s, err := p.lookup(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	return types.Success(map[string]any{
		"history":   s.History(),
		"last_page": s.LastPage(),
		"last_url":  s.LastURL(),
	})
}

// CloseSession closes a session and forgets it
func (p *Provider) CloseSession(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	sessionID, err := types.GetString(params, "session_id", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	s, ok := p.sessions.Remove(sessionID)
	if !ok {
		return types.Failure(fmt.Sprintf("unknown session: %s", sessionID))
	}

	if err := s.Close(); err != nil {
		p.logger.Warn("Failed to close session", zap.String("session_id", sessionID), zap.Error(err))
		return types.Failure(err.Error())
	}
	p.logger.Info("Session closed", zap.String("session_id", sessionID), zap.Int("requests", len(s.History())))

	return types.Success(map[string]any{
		"session_id": sessionID,
		"closed":     true,
	})
}
