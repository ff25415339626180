package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
)

const defaultGraphURL = "https://graph.facebook.com/v19.0/me/messages"

// FacebookTransport delivers direct messages through the Facebook Graph
// messaging endpoint. Without a page access token it runs in console-only
// mode.
type FacebookTransport struct {
	graphURL    string
	accessToken string
	httpClient  *http.Client
	log         logger.Logger
}

// NewFacebookTransport creates a Facebook DM transport.
func NewFacebookTransport(graphURL, accessToken string, log logger.Logger) *FacebookTransport {
	if log == nil {
		log = logger.Default()
	}
	if graphURL == "" {
		graphURL = defaultGraphURL
	}
	if accessToken == "" {
		log.Warn("facebook transport in console-only mode (set FACEBOOK_ACCESS_TOKEN for production)")
	}
	return &FacebookTransport{
		graphURL:    graphURL,
		accessToken: accessToken,
		httpClient:  &http.Client{},
		log:         log,
	}
}

type fbRecipient struct {
	ID string `json:"id"`
}

type fbMessage struct {
	Text string `json:"text"`
}

type fbSendRequest struct {
	Recipient fbRecipient `json:"recipient"`
	Message   fbMessage   `json:"message"`
}

// Send delivers one direct message to the handle in destination.
func (t *FacebookTransport) Send(ctx context.Context, destination string, msg domain.OutboundMessage) error {
	if t.accessToken == "" {
		t.log.Info("[console facebook dm]", "to", destination, "body", msg.Body)
		return nil
	}

	body, err := json.Marshal(fbSendRequest{
		Recipient: fbRecipient{ID: destination},
		Message:   fbMessage{Text: msg.Body},
	})
	if err != nil {
		return fmt.Errorf("failed to encode facebook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.graphURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build facebook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.accessToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("facebook request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("facebook returned %d: %w", resp.StatusCode, domain.ErrTransportAuth)
	case resp.StatusCode >= 400:
		return fmt.Errorf("facebook returned %d: %w", resp.StatusCode, domain.ErrTransportRejected)
	}

	return nil
}
