package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const clientDefaultTimeout = 10 * time.Second

// ClientOptions configures the HTTP transactional-email client.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// Client sends messages through a transactional-email HTTP API using
// provider-side templates.
type Client struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

type sendRequest struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	TemplateKey string            `json:"template_key"`
	Locale      string            `json:"locale,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("email api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("email api base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: clientDefaultTimeout}
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		from:    opts.From,
		client:  client,
	}, nil
}

// Send posts one templated message. A non-2xx response or success=false is
// an error; the caller decides whether that matters.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient address is empty")
	}

	body, err := json.Marshal(sendRequest{
		From:        c.from,
		To:          msg.To,
		TemplateKey: msg.TemplateKey,
		Locale:      msg.Locale,
		Data:        msg.Data,
	})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read send response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode send response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("email api rejected message: %s", parsed.Error)
	}
	return nil
}

var _ Mailer = (*Client)(nil)
