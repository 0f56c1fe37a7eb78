package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// WebhookProvider delegates verification to a third-party 2FA endpoint over
// HTTP. The same URL receives both the delivery request and the code check;
// the backend distinguishes them by payload shape.
type WebhookProvider struct {
	apiKey string
	apiURL string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookProvider builds a webhook-backed provider with a bounded request timeout.
func NewWebhookProvider(apiKey, apiURL string, timeout time.Duration, logger *slog.Logger) *WebhookProvider {
	return &WebhookProvider{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type webhookPayload struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code,omitempty"`
}

// Start asks the remote service to deliver a verification code to msisdn.
func (p *WebhookProvider) Start(ctx context.Context, msisdn string) error {
	resp, err := p.post(ctx, webhookPayload{PhoneNumber: msisdn})
	if err != nil {
		p.logger.Error("verification send failed", "error", err)
		return err
	}
	defer drain(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		p.logger.Error("verification send rejected", "status", resp.StatusCode)
		return fmt.Errorf("verification service responded %d", resp.StatusCode)
	}

	p.logger.Info("verification code sent via webhook", "msisdn", msisdn)
	return nil
}

// Check reports whether the remote service accepts code for msisdn. Any
// non-200 response is a classified rejection; transport failures surface as
// errors.
func (p *WebhookProvider) Check(ctx context.Context, msisdn, code string) (bool, error) {
	resp, err := p.post(ctx, webhookPayload{PhoneNumber: msisdn, Code: code})
	if err != nil {
		return false, err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusOK {
		return true, nil
	}

	p.logger.Error("verification check rejected", "status", resp.StatusCode)
	return false, nil
}

func (p *WebhookProvider) post(ctx context.Context, payload webhookPayload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode verification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call verification service: %w", err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
