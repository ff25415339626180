package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/phone"
)

// SMSTransport delivers text messages through an HTTP SMS gateway.
// Destinations are normalized to E.164 before they reach the gateway;
// numbers that do not validate are rejected locally.
type SMSTransport struct {
	gatewayURL string
	apiKey     string
	fromNumber string
	validator  *phone.Validator
	httpClient *http.Client
	log        logger.Logger
}

// NewSMSTransport creates an SMS transport. With an empty gatewayURL it
// runs in console-only mode.
func NewSMSTransport(gatewayURL, apiKey, fromNumber, defaultRegion string, log logger.Logger) *SMSTransport {
	if log == nil {
		log = logger.Default()
	}
	if gatewayURL == "" {
		log.Warn("sms transport in console-only mode (set SMS_GATEWAY_URL for production)")
	}
	return &SMSTransport{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		fromNumber: fromNumber,
		validator:  phone.NewValidator(defaultRegion),
		httpClient: &http.Client{},
		log:        log,
	}
}

type smsPayload struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// Send delivers one SMS to destination.
func (t *SMSTransport) Send(ctx context.Context, destination string, msg domain.OutboundMessage) error {
	to, err := t.validator.Normalize(destination)
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrTransportRejected)
	}

	if t.gatewayURL == "" {
		t.log.Info("[console sms]", "to", to, "body", msg.Body)
		return nil
	}

	body, err := json.Marshal(smsPayload{To: to, From: t.fromNumber, Body: msg.Body})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("sms gateway returned %d: %w", resp.StatusCode, domain.ErrTransportAuth)
	case resp.StatusCode >= 400:
		return fmt.Errorf("sms gateway returned %d: %w", resp.StatusCode, domain.ErrTransportRejected)
	}

	return nil
}
