package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/websession/internal/infrastructure/config"
	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/websession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/websession/internal/providers/browser"
	"github.com/GriffinCanCode/websession/internal/providers/http/client"
	"github.com/GriffinCanCode/websession/internal/shared/types"
	"github.com/GriffinCanCode/websession/internal/shared/utils"
)

// contextKey holds the signal context in app.Metadata
const contextKey = "context"

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Metadata = map[string]interface{}{}
	app.Name = "websession"
	app.HelpName = "websession"
	app.Usage = "a scriptable browser session over plain HTTP"
	app.UsageText = "websession --host <host> <command> [arguments...]"
	app.Version = "0.1.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:      "get",
			Aliases:   []string{"g"},
			Usage:     "request a URL with GET",
			ArgsUsage: "<url>",
			Flags:     outputFlags,
			Action:    get,
		},
		{
			Name:      "post",
			Aliases:   []string{"p"},
			Usage:     "request a URL with POST",
			ArgsUsage: "<url>",
			Flags:     postFlags,
			Action:    post,
		},
		{
			Name:      "run",
			Aliases:   []string{"r"},
			Usage:     "execute a JSON script of browser tool calls",
			ArgsUsage: "<script.json>",
			Flags:     runFlags,
			Action:    run,
		},
	}
	return app
}

// withContext makes ctx the context every command runs under
func withContext(app *cli.App, ctx context.Context) *cli.App {
	app.Metadata[contextKey] = ctx
	return app
}

func appContext(c *cli.Context) context.Context {
	if c.App != nil {
		if ctx, ok := c.App.Metadata[contextKey].(context.Context); ok {
			return ctx
		}
	}
	return context.Background()
}

// env is what every command needs: configuration, a logger and a
// provider whose sessions share one transport configuration.
type env struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	provider *browser.Provider
	out      io.Writer
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.LoadFrom(c.GlobalString("env-file"))
	if err != nil {
		return nil, err
	}

	if c.GlobalIsSet("scheme") {
		cfg.Session.Scheme = c.GlobalString("scheme")
	}
	if c.GlobalIsSet("user-agent") {
		cfg.Session.UserAgent = c.GlobalString("user-agent")
	}
	if c.GlobalIsSet("cookie-dir") {
		cfg.Cookie.Dir = c.GlobalString("cookie-dir")
	}
	if c.GlobalBool("never-expire") {
		cfg.Cookie.NeverExpire = true
	}
	if c.GlobalBool("no-cookies") {
		cfg.Session.Cookies = false
	}
	if c.GlobalBool("follow") {
		cfg.Transport.FollowRedirects = true
	}
	if c.GlobalBool("verbose") {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	provider := browser.NewProvider(logger,
		browser.WithTransport(client.Factory(cfg.Transport.ClientConfig(), logger, metrics)),
		browser.WithCookieConfig(cfg.Cookie.JarConfig()),
		browser.WithMetrics(metrics),
	)

	return &env{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		provider: provider,
		out:      c.App.Writer,
	}, nil
}

// close shuts every session down and logs a summary
func (e *env) close() error {
	err := e.provider.Close()

	snap := e.metrics.Snapshot()
	e.logger.Debug("Run finished",
		zap.Int64("requests", snap.TotalRequests),
		zap.Int64("errors", snap.TotalErrors),
		zap.Int64("transport_errors", snap.TransportErrors),
		zap.Duration("avg_duration", snap.AverageDuration()),
	)
	_ = e.logger.Sync()
	return err
}

// exec runs one tool call and turns a failed result into an error
func (e *env) exec(ctx context.Context, toolID string, params map[string]any) (*types.Result, error) {
	res, err := e.provider.Execute(ctx, toolID, params, nil)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		msg := "failed"
		if res.Error != nil {
			msg = *res.Error
		}
		return res, fmt.Errorf("%s: %s", toolID, msg)
	}
	return res, nil
}

func (e *env) openParams(c *cli.Context) (map[string]any, error) {
	params := map[string]any{
		"host":       c.GlobalString("host"),
		"scheme":     e.cfg.Session.Scheme,
		"user_agent": e.cfg.Session.UserAgent,
		"cookies":    e.cfg.Session.Cookies,
	}

	lines := c.GlobalStringSlice("header")
	if len(lines) > 0 {
		headers := make(map[string]any, len(lines))
		for _, line := range lines {
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", line)
			}
			headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		params["headers"] = headers
	}
	return params, nil
}

// open creates the session and loads stored cookies when a cookie
// directory is configured.
func (e *env) open(ctx context.Context, c *cli.Context) (string, error) {
	params, err := e.openParams(c)
	if err != nil {
		return "", err
	}
	res, err := e.exec(ctx, "browser.open", params)
	if err != nil {
		return "", err
	}
	sessionID, _ := res.Data["session_id"].(string)

	if e.cfg.Cookie.Dir != "" && e.cfg.Session.Cookies {
		if _, err := e.exec(ctx, "browser.load_cookies", map[string]any{"session_id": sessionID}); err != nil {
			e.logger.Debug("No stored cookies loaded", zap.Error(err))
		}
	}
	return sessionID, nil
}

func get(c *cli.Context) error {
	return fetch(c, "browser.get", nil)
}

func post(c *cli.Context) error {
	data, err := parseData(c.StringSlice("data"))
	if err != nil {
		return err
	}
	return fetch(c, "browser.post", map[string]any{
		"data":     data,
		"encoding": c.String("encoding"),
	})
}

func fetch(c *cli.Context, toolID string, extra map[string]any) (err error) {
	target := c.Args().First()
	if target == "" {
		return fmt.Errorf("%s: missing <url>", c.Command.Name)
	}
	if c.GlobalString("host") == "" {
		return errors.New("--host is required")
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, e.close())
	}()

	ctx := appContext(c)

	sessionID, err := e.open(ctx, c)
	if err != nil {
		return err
	}

	params := map[string]any{"session_id": sessionID, "url": target}
	for k, v := range extra {
		params[k] = v
	}
	res, err := e.exec(ctx, toolID, params)
	if err != nil {
		return err
	}

	if e.cfg.Cookie.Dir != "" && e.cfg.Session.Cookies {
		if _, err := e.exec(ctx, "browser.save_cookies", map[string]any{"session_id": sessionID}); err != nil {
			return err
		}
	}

	if c.Bool("json") {
		return writeJSON(e.out, res.Data)
	}
	return writeResponse(e.out, res.Data, c.Bool("include"))
}

// parseData turns name=value pairs into request data. Repeated names
// collect into a list and become repeated form fields.
func parseData(pairs []string) (map[string]any, error) {
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid data %q, expected name=value", pair)
		}
		switch prev := data[name].(type) {
		case nil:
			data[name] = value
		case string:
			data[name] = []any{prev, value}
		case []any:
			data[name] = append(prev, value)
		}
	}
	return data, nil
}

func writeResponse(w io.Writer, data map[string]any, include bool) error {
	if include {
		fmt.Fprintf(w, "%v %v %v\n", data["protocol"], data["status"], data["status_text"])

		headers, _ := data["headers"].(map[string]string)
		names := make([]string, 0, len(headers))
		for name := range headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s: %s\n", name, headers[name])
		}
		if cookies, _ := data["set_cookies"].([]string); len(cookies) > 0 {
			fmt.Fprintf(w, "(cookies set: %s)\n", strings.Join(cookies, ", "))
		}
		fmt.Fprintln(w)
	}

	body, _ := data["body"].(string)
	_, err := io.WriteString(w, body)
	if err == nil && body != "" && !strings.HasSuffix(body, "\n") {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// stepResult is one line of run output
type stepResult struct {
	Step    int            `json:"step"`
	ToolID  string         `json:"tool_id"`
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func run(c *cli.Context) (err error) {
	path := c.Args().First()
	if path == "" {
		return errors.New("run: missing <script.json>")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	steps, err := parseScript(raw)
	if err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, e.close())
	}()

	ctx := appContext(c)

	var failed int
	var sessionID string
	for i, step := range steps {
		params := step.Params
		if params == nil {
			params = make(map[string]any)
		}
		if step.ToolID == "browser.open" {
			if _, ok := params["host"]; !ok && c.GlobalString("host") != "" {
				params["host"] = c.GlobalString("host")
			}
		} else if _, ok := params["session_id"]; !ok && sessionID != "" {
			params["session_id"] = sessionID
		}

		line := stepResult{Step: i + 1, ToolID: step.ToolID}
		res, execErr := e.exec(ctx, step.ToolID, params)
		if execErr != nil {
			line.Error = execErr.Error()
			failed++
		} else {
			line.Success = true
			line.Data = res.Data
			if id, ok := res.Data["session_id"].(string); ok && step.ToolID == "browser.open" {
				sessionID = id
			}
		}

		out, mErr := sonic.Marshal(line)
		if mErr != nil {
			return fmt.Errorf("failed to encode step %d: %w", i+1, mErr)
		}
		fmt.Fprintln(e.out, string(out))

		if execErr != nil && !c.Bool("keep-going") {
			return fmt.Errorf("step %d: %w", i+1, execErr)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(steps))
	}
	return nil
}

// parseScript validates and decodes a script: a JSON array of
// {"tool_id": ..., "params": {...}} objects.
func parseScript(raw []byte) ([]types.ExecuteRequest, error) {
	if err := utils.DefaultJSONValidator().ValidateJSON(raw); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	var steps []types.ExecuteRequest
	if err := sonic.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	if len(steps) == 0 {
		return nil, errors.New("invalid script: no steps")
	}
	for i, step := range steps {
		if err := utils.ValidateToolID(step.ToolID, "tool_id", true); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return steps, nil
}
