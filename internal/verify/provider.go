package verify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/entity-registry/entity_registry/internal/config"
)

// ErrNotConfigured indicates that no verification backend credentials are
// present. Registration cannot run without one, so this is fatal at startup.
var ErrNotConfigured = errors.New("no verification provider configured")

// Provider proves ownership of a phone number through a one-time code.
//
// Start triggers delivery of a code to the number and returns an error when
// the underlying channel could not deliver it. Check asks the backend whether
// code is currently valid for the number: (false, nil) means the backend
// classified the code as wrong, expired or consumed, while a non-nil error
// means the check itself could not be performed.
type Provider interface {
	Start(ctx context.Context, msisdn string) error
	Check(ctx context.Context, msisdn, code string) (bool, error)
}

// NewFromConfig selects the single active provider from the configured
// credential set. Exactly one backend may be configured per deployment.
func NewFromConfig(cfg config.Config, logger *slog.Logger) (Provider, error) {
	switch {
	case cfg.TwilioConfigured():
		return NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.VerifyTimeout, logger), nil
	case cfg.WebhookConfigured():
		return NewWebhookProvider(cfg.VerifyAPIKey, cfg.VerifyAPIURL, cfg.VerifyTimeout, logger), nil
	default:
		return nil, ErrNotConfigured
	}
}

// Static approves a single fixed code. It stands in for a real backend in
// tests the same way a stub acquirer would for a card processor.
type Static struct {
	Code string
}

// Start accepts every delivery request.
func (Static) Start(_ context.Context, _ string) error { return nil }

// Check approves only the configured code.
func (s Static) Check(_ context.Context, _, code string) (bool, error) {
	return code == s.Code, nil
}
