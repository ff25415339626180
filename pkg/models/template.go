package models

import "time"

// Channel identifies an outbound contact channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelFacebook Channel = "facebook"
)

// Valid reports whether the channel is one of the supported values.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelFacebook:
		return true
	}
	return false
}

// ContactTemplate is a reusable message skeleton with named placeholders.
// A template may only be dispatched through the channel it was written for.
type ContactTemplate struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      Channel   `json:"type"`
	Subject   string    `json:"subject,omitempty"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
