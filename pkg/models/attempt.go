package models

import "time"

// DeliveryStatus tracks how far an outbound message got.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryOpened    DeliveryStatus = "opened"
	DeliveryReplied   DeliveryStatus = "replied"
)

// ContactAttempt is one outbound send record in the contact ledger.
// Attempts are immutable after creation except for the response fields,
// which are appended by the inbound-response listener.
type ContactAttempt struct {
	ID                 int64          `json:"id"`
	LeadID             int            `json:"lead_id"`
	ContactType        Channel        `json:"contact_type"`
	MessageContent     string         `json:"message_content"`
	SentAt             time.Time      `json:"sent_at"`
	Status             DeliveryStatus `json:"status"`
	ResponseContent    string         `json:"response_content,omitempty"`
	ResponseReceivedAt *time.Time     `json:"response_received_at,omitempty"`
}
