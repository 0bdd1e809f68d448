// Package mailer sends transactional email through the Resend HTTP API.
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

	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://api.resend.com"
	DefaultFrom      = "JobNado AI <noreply@jobnadoai.xyz>"
	contentType      = "application/json"
	defaultUserAgent = "jobnado"
	maxErrorBody     = 2048
)

// Email is the payload accepted by the provider.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendError is returned for any non-2xx provider response.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("email provider returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string

	apiKey string
	logger *zap.Logger
}

func New(apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    DefaultBaseURL,
		UserAgent:  defaultUserAgent,
		apiKey:     strings.TrimSpace(apiKey),
		logger:     logger,
	}
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers email and returns the provider message id.
func (c *Client) Send(ctx context.Context, email Email) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("email api key is not configured")
	}

	if len(email.To) == 0 {
		return "", errors.New("email has no recipients")
	}

	body, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &SendError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("decode email response: %w", err)
	}

	c.logger.Info("email sent",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("message_id", parsed.ID),
	)

	return parsed.ID, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}
