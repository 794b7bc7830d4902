// Package api is the HTTP client for the control plane: authentication,
// upload-intent creation and metadata commits. It implements
// uploader.ControlPlane.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkraev/atelier/internal/client/uploader"
	"github.com/mkraev/atelier/internal/common"
)

// Client talks to one control-plane host. Token is set by Login and sent
// as a bearer token afterwards.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a previously obtained access token.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current access token, empty before Login.
func (c *Client) Token() string { return c.token }

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK          bool   `json:"ok"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message,omitempty"`
}

// Login exchanges credentials for an access token and stores it on the
// client.
func (c *Client) Login(ctx context.Context, login, password string) error {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", loginRequest{Login: login, Password: password}, &resp)
	if err != nil {
		return err
	}
	if !resp.OK || resp.AccessToken == "" {
		return fmt.Errorf("login refused: %s: %w", resp.Message, common.ErrorUnauthorized)
	}
	c.token = resp.AccessToken
	return nil
}

// Register creates an operator account and stores the returned access
// token on the client.
func (c *Client) Register(ctx context.Context, login, password string) error {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", loginRequest{Login: login, Password: password}, &resp)
	if err != nil {
		return err
	}
	if !resp.OK || resp.AccessToken == "" {
		return fmt.Errorf("registration refused: %s: %w", resp.Message, common.ErrorUnauthorized)
	}
	c.token = resp.AccessToken
	return nil
}

// CreateIntents requests one-time upload URLs for a batch of rows.
func (c *Client) CreateIntents(ctx context.Context, req uploader.IntentRequest) (*uploader.IntentResponse, error) {
	var resp uploader.IntentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/uploads/intents", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CommitMetadata persists size/mime/dimensions for a stored asset.
func (c *Client) CommitMetadata(ctx context.Context, req uploader.CommitRequest) error {
	var resp uploader.CommitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/uploads/commit", req, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("commit refused: %s", resp.Message)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthHeaderName, common.AuthHeaderScheme+" "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
