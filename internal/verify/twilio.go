package verify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	verifyv2 "github.com/twilio/twilio-go/rest/verify/v2"
)

const statusApproved = "approved"

// TwilioProvider delivers one-time codes over SMS through the Twilio Verify
// API. The account SID doubles as the Verify service identifier.
type TwilioProvider struct {
	client     *twilio.RestClient
	serviceSID string
	from       string
	logger     *slog.Logger
}

// NewTwilioProvider builds a Twilio-backed provider with a bounded request timeout.
func NewTwilioProvider(accountSID, authToken, from string, timeout time.Duration, logger *slog.Logger) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.Client.SetTimeout(timeout)

	return &TwilioProvider{client: client, serviceSID: accountSID, from: from, logger: logger}
}

// Start asks Twilio to deliver a verification code to msisdn over SMS.
func (p *TwilioProvider) Start(_ context.Context, msisdn string) error {
	params := &verifyv2.CreateVerificationParams{}
	params.SetTo(msisdn)
	params.SetChannel("sms")

	if _, err := p.client.VerifyV2.CreateVerification(p.serviceSID, params); err != nil {
		p.logger.Error("twilio verification send failed", "error", err)
		return err
	}

	p.logger.Info("verification code sent via twilio", "msisdn", msisdn)
	return nil
}

// Check reports whether code is the currently valid verification code for
// msisdn. A Twilio-classified rejection (wrong or expired code) is a plain
// false, not an error.
func (p *TwilioProvider) Check(_ context.Context, msisdn, code string) (bool, error) {
	params := &verifyv2.CreateVerificationCheckParams{}
	params.SetTo(msisdn)
	params.SetCode(code)

	resp, err := p.client.VerifyV2.CreateVerificationCheck(p.serviceSID, params)
	if err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) {
			p.logger.Error("twilio verification check rejected", "status", restErr.Status, "error", err)
			return false, nil
		}
		return false, err
	}

	if resp.Status != nil && *resp.Status == statusApproved {
		return true, nil
	}

	return false, nil
}
