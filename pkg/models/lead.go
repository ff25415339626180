package models

import (
	"strings"
	"time"
)

// LeadStatus represents the business pipeline state of a lead.
// It is mutated by external workflow and is opaque to the contact core.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusClosed    LeadStatus = "closed"
	LeadStatusLost      LeadStatus = "lost"
)

// ContactStatus represents the outbound-contact state of a lead.
// It is owned by the campaign orchestrator: transitions to "contacted"
// happen only after a confirmed dispatch, transitions to "responded"
// only via the inbound-response path.
type ContactStatus string

const (
	ContactStatusNotContacted ContactStatus = "not_contacted"
	ContactStatusContacted    ContactStatus = "contacted"
	ContactStatusResponded    ContactStatus = "responded"
	ContactStatusNoResponse   ContactStatus = "no_response"
)

// LeadSource identifies where a lead was scraped from.
type LeadSource string

const (
	SourceFacebook LeadSource = "facebook"
	SourceReddit   LeadSource = "reddit"
)

// Lead score buckets used by the dashboard. Policy constants, not invariants.
const (
	ScoreHighPriority   = 70
	ScoreMediumPriority = 50
)

// Lead represents a prospective customer scraped from a social source.
type Lead struct {
	ID                 int            `json:"id"`
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	FacebookName       string         `json:"facebook_name"`
	FacebookProfileURL string         `json:"facebook_profile_url,omitempty"`
	Email              string         `json:"email,omitempty"`
	Phone              string         `json:"phone,omitempty"`
	Town               string         `json:"town"`
	GroupName          string         `json:"group_name"`
	Keywords           []string       `json:"keywords"`
	Notes              string         `json:"notes,omitempty"`
	Status             LeadStatus     `json:"status"`
	ContactStatus      ContactStatus  `json:"contact_status"`
	DateAdded          time.Time      `json:"date_added"`
	LastContacted      *time.Time     `json:"last_contacted,omitempty"`
	LeadScore          int            `json:"lead_score"`
	ProfileData        map[string]any `json:"profile_data,omitempty"`
	Source             LeadSource     `json:"source,omitempty"`
	URL                string         `json:"url,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// FullName returns the lead's display name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// PriorityBucket classifies the lead score into the dashboard buckets.
func (l Lead) PriorityBucket() string {
	switch {
	case l.LeadScore >= ScoreHighPriority:
		return "high"
	case l.LeadScore >= ScoreMediumPriority:
		return "medium"
	default:
		return "low"
	}
}

// LeadFilter holds filters for listing leads.
type LeadFilter struct {
	ContactStatus string `query:"contact_status" validate:"omitempty,oneof=not_contacted contacted responded no_response"`
	Status        string `query:"status" validate:"omitempty,oneof=new qualified contacted quoted closed lost"`
	Source        string `query:"source" validate:"omitempty,oneof=facebook reddit"`
	Town          string `query:"town"`
	MinScore      int    `query:"min_score" validate:"omitempty,min=0,max=100"`
	Search        string `query:"search"`
}

// LeadPatch holds the updatable fields of a lead. Nil fields are left unchanged.
// ContactStatus and LastContacted are written only by the campaign orchestrator
// and the no-response sweep.
type LeadPatch struct {
	FirstName     *string        `json:"first_name,omitempty"`
	LastName      *string        `json:"last_name,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Town          *string        `json:"town,omitempty"`
	GroupName     *string        `json:"group_name,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	Status        *LeadStatus    `json:"status,omitempty"`
	ContactStatus *ContactStatus `json:"-"`
	LastContacted *time.Time     `json:"-"`
	LeadScore     *int           `json:"lead_score,omitempty"`
}

// LeadListResponse represents the lead list payload with bucket counts
// for the dashboard stat cards.
type LeadListResponse struct {
	Data    []Lead           `json:"data"`
	Total   int              `json:"total"`
	Buckets LeadBucketCounts `json:"buckets"`
}

// LeadBucketCounts holds per-priority lead counts.
type LeadBucketCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}
