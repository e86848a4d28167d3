package postal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// sendMessagePath is the Postal API endpoint for sending a message.
const sendMessagePath = "/api/v1/send/message"

// APIError is an error reported by the Postal API itself, as opposed to a
// transport-level failure reaching it.
type APIError struct {
	// Code is Postal's machine-readable error code, e.g. "ValidationError".
	Code string

	// Message is the human-readable description from the API.
	Message string

	// StatusCode is the HTTP status of the response carrying the error.
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postal: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("postal: HTTP %d: %s", e.StatusCode, e.Message)
}

// MessageSender is the narrow interface the delivery transport depends on.
// It is satisfied by *Client and by test fakes.
type MessageSender interface {
	SendMessage(ctx context.Context, req *SendRequest) (*SendResult, error)
}

// Client talks to a Postal server using a server API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the Postal server at baseURL, authenticating
// with the given server API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// newWithHTTPClient creates a Client with a custom HTTP client, used for testing.
func newWithHTTPClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// SendMessage submits a send request and decodes the result. API-level
// failures are returned as *APIError; anything else is a transport failure.
// No retries are attempted: failures surface immediately to the caller.
func (c *Client) SendMessage(ctx context.Context, req *SendRequest) (*SendResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendMessagePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Server-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("postal request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read postal response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    truncate(string(respBody), 512),
		}
	}

	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var data apiErrorData
		if err := json.Unmarshal(envelope.Data, &data); err == nil {
			apiErr.Code = data.Code
			apiErr.Message = data.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected status %q", envelope.Status)
		}
		return nil, apiErr
	}

	var result SendResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode send result: %w", err)
	}

	return &result, nil
}

// truncate trims s to at most n bytes for inclusion in error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
