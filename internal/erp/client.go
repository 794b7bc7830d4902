// Package erp is a JSON-RPC client for the ERP backend driving sales-order
// workflows: session authentication, model reads, writes and workflow
// buttons, plus chatter notes.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mkraev/atelier/internal/logging"
)

const sessionCookie = "session_id"

// Error is a decoded JSON-RPC error envelope.
type Error struct {
	Message string
	Detail  string
	Debug   string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("erp: %s: %s", e.Message, e.Detail)
	}
	return "erp: " + e.Message
}

// rpcRequest is the JSON-RPC 2.0 call envelope.
type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	ID      int64     `json:"id"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Model  string         `json:"model,omitempty"`
	Method string         `json:"method,omitempty"`
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`

	// session authentication fields
	DB       string `json:"db,omitempty"`
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
			Debug   string `json:"debug"`
		} `json:"data"`
	} `json:"error"`
}

// Client talks to one ERP host. A Client is safe for concurrent use once
// authenticated; SessionID is only written by Authenticate.
type Client struct {
	host      string
	http      *http.Client
	logger    logging.Logger
	sessionID string
	nextID    atomic.Int64
}

func NewClient(host string, logger logging.Logger) *Client {
	return &Client{
		host:   strings.TrimRight(host, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger.With("module", "erp"),
	}
}

// SessionID returns the current session cookie value, empty before login.
func (c *Client) SessionID() string { return c.sessionID }

// Authenticate opens a session and stores the session cookie for
// subsequent calls.
func (c *Client) Authenticate(ctx context.Context, db, login, password string) error {
	body := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		ID:      c.nextID.Add(1),
		Params:  rpcParams{DB: db, Login: login, Password: password},
	}

	resp, cookies, err := c.post(ctx, "/web/session/authenticate", body)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return decodeError(resp)
	}

	for _, ck := range cookies {
		if ck.Name == sessionCookie && ck.Value != "" {
			c.sessionID = ck.Value
			c.logger.Info(ctx, "erp session opened", "db", db, "login", login)
			return nil
		}
	}
	return fmt.Errorf("erp: authenticate: no %s cookie in response", sessionCookie)
}

// CallKw performs one /web/dataset/call_kw/{model}/{method} call and
// decodes the result into out (pass nil to discard).
func (c *Client) CallKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	body := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		ID:      c.nextID.Add(1),
		Params:  rpcParams{Model: model, Method: method, Args: args, Kwargs: kwargs},
	}

	resp, _, err := c.post(ctx, fmt.Sprintf("/web/dataset/call_kw/%s/%s", model, method), body)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("erp: decoding %s.%s result: %w", model, method, err)
	}
	return nil
}

// callKwRetrying wraps CallKw with fibonacci backoff for transient HTTP
// failures. Only used for idempotent reads.
func (c *Client) callKwRetrying(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(300*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.CallKw(ctx, model, method, args, kwargs, out)
		var transient *transientError
		if errors.As(err, &transient) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// transientError marks HTTP-level failures worth retrying (5xx, 429).
type transientError struct{ status int }

func (e *transientError) Error() string {
	return fmt.Sprintf("erp: transient http status %d", e.status)
}

func (c *Client) post(ctx context.Context, path string, body rpcRequest) (*rpcResponse, []*http.Cookie, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("erp: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("erp: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.sessionID})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("erp: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, nil, &transientError{status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("erp: reading response: %w", err)
	}

	var decoded rpcResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("erp: decoding response: %w", err)
	}
	return &decoded, resp.Cookies(), nil
}

func decodeError(resp *rpcResponse) error {
	e := &Error{Message: resp.Error.Message}
	e.Detail = resp.Error.Data.Message
	e.Debug = resp.Error.Data.Debug
	return e
}
