// Package backend is the REST client for the remote assistant backend.
// The event-stream query protocol lives in pkg/bridge; everything
// request/response shaped goes through here.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pmos-ai/pmosd/pkg/config"
)

// TokenProvider yields the current bearer credential. An empty token is
// permitted; requests then go out unauthenticated.
type TokenProvider interface {
	Token() (string, bool)
}

// SMSPayload is one ingested message forwarded for transaction parsing.
type SMSPayload struct {
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// StepsPayload is the periodic step-count telemetry flush.
type StepsPayload struct {
	Date       string         `json:"date"`
	Steps      int            `json:"steps"`
	HourlyData map[string]int `json:"hourlyData"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Client struct {
	http  *resty.Client
	creds TokenProvider
}

func NewClient(cfg config.BackendConfig, creds TokenProvider) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient, creds: creds}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token, live := c.creds.Token(); live {
		req.SetAuthToken(token)
	}
	return req
}

// ParseSMS forwards a pre-filtered message to the transaction parser.
// Delivery is at-most-once; the caller never retries.
func (c *Client) ParseSMS(ctx context.Context, payload SMSPayload) (bool, string, error) {
	var out apiResponse
	resp, err := c.request(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/finance/parse-sms")
	if err != nil {
		return false, "", fmt.Errorf("parse-sms request failed: %w", err)
	}
	if resp.IsError() {
		return false, "", fmt.Errorf("parse-sms returned status %d", resp.StatusCode())
	}
	return out.Success, out.Message, nil
}

// SleepStart begins a sleep-tracking session.
func (c *Client) SleepStart(ctx context.Context) (string, error) {
	return c.sleep(ctx, "/health/sleep/start")
}

// SleepEnd closes the current sleep-tracking session.
func (c *Client) SleepEnd(ctx context.Context) (string, error) {
	return c.sleep(ctx, "/health/sleep/end")
}

func (c *Client) sleep(ctx context.Context, path string) (string, error) {
	var out apiResponse
	resp, err := c.request(ctx).
		SetResult(&out).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("sleep request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("sleep endpoint returned status %d", resp.StatusCode())
	}
	if !out.Success {
		return "", fmt.Errorf("sleep endpoint rejected request: %s", out.Message)
	}
	return out.Message, nil
}

// SyncSteps flushes accumulated step telemetry.
func (c *Client) SyncSteps(ctx context.Context, payload StepsPayload) error {
	var out apiResponse
	resp, err := c.request(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/health/sync")
	if err != nil {
		return fmt.Errorf("steps sync failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("steps sync returned status %d", resp.StatusCode())
	}
	return nil
}
