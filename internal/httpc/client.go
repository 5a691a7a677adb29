// Package httpc is the HTTP client for the armd REST API.
// Use New instead of http.DefaultClient to ensure timeouts are set.
package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// NewHTTPClient creates an HTTP client with the specified timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// APIError is a non-2xx response from armd.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("armd: %d %s", e.Status, e.Message)
}

// Client talks to a running armd.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    NewHTTPClient(timeout),
	}
}

// Health returns the /health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// InitDefault creates the server's configured default arm.
func (c *Client) InitDefault(ctx context.Context) (*protocol.StateData, error) {
	var out protocol.StateData
	if err := c.do(ctx, http.MethodGet, "/init", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Init creates an arm from req.
func (c *Client) Init(ctx context.Context, req *protocol.InitRequest) (*protocol.StateData, error) {
	var out protocol.StateData
	if err := c.do(ctx, http.MethodPost, "/init", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reset discards the server's arm.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/init", nil, nil)
}

// Position returns the current arm state.
func (c *Client) Position(ctx context.Context) (*protocol.StateData, error) {
	var out protocol.StateData
	if err := c.do(ctx, http.MethodGet, "/position", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Control moves one joint by delta degrees.
func (c *Client) Control(ctx context.Context, joint int, delta float64) (*protocol.StateData, error) {
	path := "/control/" + strconv.Itoa(joint) + "/" + strconv.FormatFloat(delta, 'f', -1, 64)
	var out protocol.StateData
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveTo solves for cmd.Target on the server.
func (c *Client) MoveTo(ctx context.Context, cmd *protocol.MoveToCommand) (*protocol.ResultData, error) {
	var out protocol.ResultData
	if err := c.do(ctx, http.MethodPost, "/moveto", cmd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
