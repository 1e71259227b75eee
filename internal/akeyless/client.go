package akeyless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/systmms/akops/internal/logging"
)

// Client talks to one Akeyless API endpoint. It holds no tokens and no
// cached values; every call is independent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sdk        *sdkClient
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug tracing of requests.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the transport built from TransportConfig.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for baseURL with its own transport.
func NewClient(baseURL string, tc TransportConfig, opts ...Option) (*Client, error) {
	httpClient, err := newHTTPClient(tc)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	c.sdk = newSDKClient(c.baseURL, c.httpClient)

	return c, nil
}

// NewClientForCredential creates a client using the credential's endpoint
// and TLS settings.
func NewClientForCredential(cred Credential, opts ...Option) (*Client, error) {
	return NewClient(cred.URL(), cred.Transport(), opts...)
}

type authRequest struct {
	AccessType  string `json:"access-type"`
	AccessID    string `json:"access-id"`
	AccessKey   string `json:"access-key"`
	GCPAudience string `json:"gcp-audience"`
	OCIAuthType string `json:"oci-auth-type"`
	JSON        bool   `json:"json"`
}

// Authenticate returns a token for cred. A credential that already carries a
// token is returned as is without a network call.
func (c *Client) Authenticate(ctx context.Context, cred Credential) (string, error) {
	if cred.Token != "" {
		return string(cred.Token), nil
	}
	if err := cred.Validate(); err != nil {
		return "", &AuthError{Message: err.Error(), Err: err}
	}

	req := authRequest{
		AccessType: "access_key",
		AccessID:   strings.TrimSpace(cred.AccessID),
		AccessKey:  strings.TrimSpace(string(cred.AccessKey)),
		// Constant vendor fields the auth endpoint expects alongside access keys.
		GCPAudience: "akeyless.io",
		OCIAuthType: "apikey",
	}

	status, body, err := c.post(ctx, "/auth", req)
	if err != nil {
		return "", &AuthError{Message: vendorMessage(nil, err.Error()), Err: err}
	}
	if !isSuccess(status) {
		return "", &AuthError{
			StatusCode: status,
			Message:    logging.Redact(vendorMessage(body, fmt.Sprintf("request failed with status code %d", status)), []string{req.AccessKey}),
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &AuthError{StatusCode: status, Message: fmt.Sprintf("failed to decode auth response: %v", err), Err: err}
	}

	token, _ := payload["token"].(string)
	if token == "" {
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", &AuthError{
			StatusCode: status,
			Message:    "Failed to obtain token from Akeyless authentication. Response keys: " + strings.Join(keys, ", "),
		}
	}

	c.logger.Debug("authenticated against %s as %s", c.baseURL, req.AccessID)
	return token, nil
}

// Dispatch sends op with token and returns the vendor's response body
// unmodified. Bodies that are not JSON come back as a JSON string.
func (c *Client) Dispatch(ctx context.Context, token string, op Operation) (json.RawMessage, error) {
	if op == nil {
		return nil, &ValidationError{Message: "unknown operation"}
	}

	endpoint := op.endpoint()
	status, body, err := c.post(ctx, endpoint, op.body(token))
	if err != nil {
		return nil, &RemoteError{Endpoint: endpoint, Message: logging.Redact(vendorMessage(nil, err.Error()), []string{token}), Err: err}
	}
	if !isSuccess(status) {
		return nil, &RemoteError{
			Endpoint:   endpoint,
			StatusCode: status,
			// Gateways sometimes echo the request; keep the token out of error text.
			Message: logging.Redact(vendorMessage(body, fmt.Sprintf("request failed with status code %d", status)), []string{token}),
		}
	}

	return passThrough(body)
}

func passThrough(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	encoded, err := json.Marshal(string(body))
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

// post sends one JSON POST. A non-nil error means the exchange itself failed;
// HTTP status handling is left to the caller.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) (int, []byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.logger.DebugEnabled() {
		c.logger.Debug("POST %s%s %s", c.baseURL, endpoint, maskedBody(jsonBody))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("request to %s timed out: %w", endpoint, err)
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("POST %s%s -> %d", c.baseURL, endpoint, resp.StatusCode)
	return resp.StatusCode, body, nil
}

// sensitiveFields are request keys whose values never reach the debug log.
var sensitiveFields = []string{"token", "access-key", "value", "password"}

// maskedBody renders a request body for the debug log with secret values
// replaced.
func maskedBody(jsonBody []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(jsonBody, &fields); err != nil {
		return "[unparseable body]"
	}
	for _, key := range sensitiveFields {
		if _, ok := fields[key]; ok {
			fields[key] = "[REDACTED]"
		}
	}
	masked, err := json.Marshal(fields)
	if err != nil {
		return "[unparseable body]"
	}
	return string(masked)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
