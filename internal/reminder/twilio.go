// Copyright (c) 2026 NutriSync. All rights reserved.

// Twilio WhatsApp implementation of the messaging gateway.
package reminder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/constants"
)

// twilioAPIBase is the production Twilio REST endpoint.
const twilioAPIBase = "https://api.twilio.com"

// TwilioGateway sends WhatsApp messages through the Twilio REST API.
//
// # Wire Contract
//
// POST /2010-04-01/Accounts/{sid}/Messages.json, form-encoded From/To/Body,
// HTTP basic auth with account SID and auth token. Twilio answers 201 on
// acceptance; anything else is a delivery failure.
type TwilioGateway struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

// NewTwilioGateway creates a Gateway backed by the Twilio REST API.
//
// # Parameters
//   - accountSID, authToken: Twilio credentials.
//   - from: The sending channel address (e.g. "whatsapp:+14155238886").
func NewTwilioGateway(accountSID, authToken, from string) *TwilioGateway {
	return &TwilioGateway{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioAPIBase,
		client: &http.Client{
			Timeout: constants.GatewaySendTimeout,
		},
	}
}

// Send posts one message to the Twilio Messages resource.
func (gateway *TwilioGateway) Send(ctx context.Context, destination, body string) error {
	// ── 1. Form Construction ──────────────────────────────────────────────

	form := url.Values{}
	form.Set("From", gateway.from)
	form.Set("To", destination)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", gateway.baseURL, gateway.accountSID)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio_gateway_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.SetBasicAuth(gateway.accountSID, gateway.authToken)

	// ── 2. Request Execution ──────────────────────────────────────────────

	response, err := gateway.client.Do(request)
	if err != nil {
		return apperr.Upstream("Messaging gateway", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusCreated {
		return apperr.Upstream("Messaging gateway",
			fmt.Errorf("twilio_gateway_bad_status: %d", response.StatusCode))
	}

	return nil
}
