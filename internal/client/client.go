// Copyright 2026 The SeatGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package client talks to the SeatGate API from devices and tenant servers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/tenant"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("seatgate: http %d", e.Status)
	}
	return fmt.Sprintf("seatgate: %s: %s", e.Code, e.Message)
}

// Unwrap maps the stable error code back to its domain sentinel, so callers
// can use errors.Is(err, activation.ErrAlreadyActivated).
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "quota_exceeded":
		return activation.ErrQuotaExceeded
	case "already_activated":
		return activation.ErrAlreadyActivated
	case "not_found":
		return activation.ErrNotFound
	case "not_activated":
		return activation.ErrNotActivated
	case "tenant_inactive":
		return tenant.ErrTenantInactive
	case "tenant_not_found":
		return tenant.ErrTenantNotFound
	case "unauthorized":
		return tenant.ErrInvalidAPIKey
	}
	return nil
}

// Client is an HTTP client for the device and tenant-server endpoints.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
	serverID   string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sets the tenant API key sent on tenant-server calls.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithServerID names this tenant server in heartbeats.
func WithServerID(id string) Option {
	return func(c *Client) { c.serverID = id }
}

// New creates a client for the server at baseURL, e.g. https://seats.example.com.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CheckActivation asks whether fingerprint holds a seat. On any failure it
// returns a not-activated result together with the error, so callers can
// gate on the result and merely log the error.
func (c *Client) CheckActivation(ctx context.Context, fingerprint string) (*activation.CheckResult, error) {
	var res activation.CheckResult
	err := c.do(ctx, http.MethodPost, "/api/v1/activation/check", false,
		map[string]string{"deviceFingerprint": fingerprint}, &res)
	if err != nil {
		return &activation.CheckResult{IsActivated: false}, err
	}
	return &res, nil
}

// Activate binds code to this device.
func (c *Client) Activate(ctx context.Context, tenantID, code, fingerprint, deviceName string) (*activation.Code, error) {
	body := map[string]string{
		"tenantId":          tenantID,
		"code":              code,
		"deviceFingerprint": fingerprint,
	}
	if deviceName != "" {
		body["deviceName"] = deviceName
	}

	var out activation.Code
	if err := c.do(ctx, http.MethodPost, "/api/v1/activation/activate", false, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Heartbeat reports this tenant server as alive. An empty ip lets the
// server use the request address.
func (c *Client) Heartbeat(ctx context.Context, version, ip string) error {
	body := map[string]string{"version": version}
	if ip != "" {
		body["ip"] = ip
	}
	return c.do(ctx, http.MethodPost, "/api/v1/heartbeat", true, body, nil)
}

// VerifyResult names the tenant owning the API key.
type VerifyResult struct {
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
}

// Verify checks the configured API key.
func (c *Client) Verify(ctx context.Context) (*VerifyResult, error) {
	var out VerifyResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/tenant/verify", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, tenantAuth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tenantAuth {
		if c.apiKey == "" {
			return errors.New("seatgate: api key is required")
		}
		req.Header.Set("X-Tenant-API-Key", c.apiKey)
		if c.serverID != "" {
			req.Header.Set("X-Server-ID", c.serverID)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
