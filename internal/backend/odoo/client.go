// Package odoo implements backend.Backend over the JSON-RPC endpoint of an
// Odoo-compatible project-management server.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client talks to {URL}/jsonrpc.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	observer Observer
}

var _ backend.Backend = (*Client)(nil)

// NewClient creates a JSON-RPC backend client.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		limiter:  rate.NewLimiter(limit, burst),
		observer: observer,
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (c *Client) Authenticate(ctx context.Context, creds backend.Credentials) (backend.Session, error) {
	if !creds.Complete() {
		return backend.Session{}, fmt.Errorf("%w: login and password are required", backend.ErrAuthentication)
	}
	raw, err := c.call(ctx, callSpec{
		service:   "common",
		method:    "authenticate",
		args:      []any{c.cfg.Database, creds.Login, creds.Password, map[string]any{}},
		retryable: true,
	})
	if err != nil {
		return backend.Session{}, err
	}

	var uid json.Number
	if err := decodeNumber(raw, &uid); err != nil {
		// authenticate answers false on bad credentials
		return backend.Session{}, fmt.Errorf("%w: credentials rejected for %q", backend.ErrAuthentication, creds.Login)
	}
	id, err := uid.Int64()
	if err != nil || id <= 0 {
		return backend.Session{}, fmt.Errorf("%w: credentials rejected for %q", backend.ErrAuthentication, creds.Login)
	}
	return backend.Session{UID: id, Login: creds.Login, Password: creds.Password}, nil
}

func (c *Client) Search(ctx context.Context, s backend.Session, kind backend.Kind, filter backend.Filter) ([]int64, error) {
	if err := filter.Validate(kind); err != nil {
		return nil, err
	}
	raw, err := c.execute(ctx, s, kind, "search", []any{encodeDomain(filter)}, nil, true)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: decoding search result: %v", backend.ErrUnavailable, err)
	}
	return ids, nil
}

func (c *Client) Read(ctx context.Context, s backend.Session, kind backend.Kind, ids []int64, fields []backend.Field) ([]backend.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := backend.ValidateFields(kind, fields); err != nil {
		return nil, err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	raw, err := c.execute(ctx, s, kind, "read", []any{ids}, map[string]any{"fields": names}, true)
	if err != nil {
		return nil, err
	}
	return decodeRecords(kind, raw)
}

func (c *Client) Create(ctx context.Context, s backend.Session, kind backend.Kind, values backend.Values) (int64, error) {
	if err := values.Validate(kind); err != nil {
		return 0, err
	}
	raw, err := c.execute(ctx, s, kind, "create", []any{encodeValues(values)}, nil, false)
	if err != nil {
		return 0, err
	}
	var id json.Number
	if err := decodeNumber(raw, &id); err != nil {
		return 0, fmt.Errorf("%w: decoding created id: %v", backend.ErrUnavailable, err)
	}
	n, err := id.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: decoding created id: %v", backend.ErrUnavailable, err)
	}
	return n, nil
}

func (c *Client) Unlink(ctx context.Context, s backend.Session, kind backend.Kind, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	raw, err := c.execute(ctx, s, kind, "unlink", []any{ids}, nil, false)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		return false, fmt.Errorf("%w: decoding unlink result: %v", backend.ErrUnavailable, err)
	}
	return ok, nil
}

func (c *Client) execute(ctx context.Context, s backend.Session, kind backend.Kind, method string, args []any, kwargs map[string]any, retryable bool) (json.RawMessage, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: no authenticated session", backend.ErrAuthentication)
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return c.call(ctx, callSpec{
		service:   "object",
		method:    "execute_kw",
		model:     kind.Model(),
		args:      []any{c.cfg.Database, s.UID, s.Password, kind.Model(), method, args, kwargs},
		label:     method,
		retryable: retryable,
	})
}

type callSpec struct {
	service string
	method  string
	model   string
	label   string
	args    []any
	// only reads are retried; a repeated create could duplicate records
	retryable bool
}

func (c *Client) call(ctx context.Context, spec callSpec) (json.RawMessage, error) {
	start := time.Now()
	if c.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	label := spec.label
	if label == "" {
		label = spec.method
	}
	body := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: spec.service, Method: spec.method, Args: spec.args},
		ID:      uuid.NewString(),
	}

	attempts := 1
	if spec.retryable {
		attempts += c.cfg.MaxRetries
	}

	var (
		result  json.RawMessage
		lastErr error
		tries   int
	)
	for tries = 1; tries <= attempts; tries++ {
		if err := c.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}
		result, lastErr = c.doRequest(ctx, body)
		if lastErr == nil {
			break
		}
		// remote faults and auth failures are answers, not transient errors
		var remote *backend.RemoteError
		if ctx.Err() != nil || errors.As(lastErr, &remote) || errors.Is(lastErr, backend.ErrAuthentication) {
			break
		}
	}
	if tries > attempts {
		tries = attempts
	}

	event := CallEvent{
		Service:   spec.service,
		Model:     spec.model,
		Method:    label,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  tries,
		Success:   lastErr == nil,
	}
	if lastErr == nil {
		c.observer.OnCallComplete(event)
		return result, nil
	}

	err := classify(ctx, lastErr)
	event.ErrorCode = errorCode(err)
	c.observer.OnCallComplete(event)
	return nil, err
}

func (c *Client) doRequest(ctx context.Context, body rpcRequest) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.URL, "/") + "/jsonrpc"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Error != nil {
		return nil, remoteFault(resp.Error)
	}
	return resp.Result, nil
}

func remoteFault(e *rpcError) error {
	msg := e.Data.Message
	if msg == "" {
		msg = e.Message
	}
	if strings.Contains(e.Data.Name, "AccessDenied") || strings.Contains(e.Data.Name, "SessionExpired") {
		return fmt.Errorf("%w: %s", backend.ErrAuthentication, msg)
	}
	return &backend.RemoteError{Name: e.Data.Name, Message: msg}
}

// classify maps any call failure onto the backend error taxonomy.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, backend.ErrAuthentication) || errors.Is(err, backend.ErrUnavailable) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: request timed out", backend.ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", backend.ErrUnavailable, err)
}

func errorCode(err error) string {
	var remote *backend.RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, backend.ErrAuthentication):
		return "AUTH"
	case errors.As(err, &remote):
		return "REMOTE"
	case errors.Is(err, backend.ErrUnavailable):
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
