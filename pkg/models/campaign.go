package models

// RunCampaignRequest represents a request to start a bulk contact run.
type RunCampaignRequest struct {
	LeadIDs    []int  `json:"lead_ids" validate:"required,min=1,dive,min=1"`
	Channel    string `json:"channel" validate:"required,oneof=email sms facebook"`
	TemplateID int    `json:"template_id" validate:"required,min=1"`
}

// PreviewRequest represents a request to preview the personalized message
// for a single lead before starting a run.
type PreviewRequest struct {
	LeadID     int    `json:"lead_id" validate:"required,min=1"`
	Channel    string `json:"channel" validate:"required,oneof=email sms facebook"`
	TemplateID int    `json:"template_id" validate:"required,min=1"`
}

// PreviewResponse carries the rendered preview message.
type PreviewResponse struct {
	LeadID  int    `json:"lead_id"`
	Message string `json:"message"`
}
