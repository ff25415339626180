package personalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/leadpulse/leadpulse/pkg/render"
)

// Service turns a template plus a lead into an outbound message, using an
// external text-generation provider when available.
type Service struct {
	generator domain.TextGenerator
	log       logger.Logger
	// onFallback is invoked whenever the provider path fails, so the
	// caller can count fallbacks without the failure ever propagating.
	onFallback func()
}

// NewService creates a new personalization service. generator may be nil,
// in which case every message is produced by plain template rendering.
func NewService(generator domain.TextGenerator, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{generator: generator, log: log}
}

// OnFallback registers a hook called once per provider failure.
func (s *Service) OnFallback(fn func()) {
	s.onFallback = fn
}

// Personalize produces the message to send to a lead. The provider gets a
// single attempt; on any failure (timeout, transport error, empty output)
// the deterministic template renderer takes over. Bulk runs must never
// block on provider availability, so this function always returns a message.
func (s *Service) Personalize(ctx context.Context, lead models.Lead, template models.ContactTemplate) string {
	if s.generator == nil {
		return render.Render(template.Content, lead)
	}

	text, err := s.generator.Generate(ctx, buildPrompt(lead, template))
	if err == nil {
		text = strings.TrimSpace(text)
	}
	if err != nil || text == "" {
		s.log.Warn("personalization provider failed, using template renderer",
			"lead_id", lead.ID, "template_id", template.ID, "error", err)
		if s.onFallback != nil {
			s.onFallback()
		}
		return render.Render(template.Content, lead)
	}

	return text
}

// buildPrompt assembles the provider prompt from the raw template and the
// full lead record, instructing the model to substitute placeholders
// without inventing facts the record does not contain.
func buildPrompt(lead models.Lead, template models.ContactTemplate) string {
	var b strings.Builder

	b.WriteString("Personalize this marketing message template for a specific lead:\n\n")
	fmt.Fprintf(&b, "Template: %s\n\n", template.Content)

	b.WriteString("Lead Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", lead.FullName())
	fmt.Fprintf(&b, "- Location: %s\n", lead.Town)
	fmt.Fprintf(&b, "- Group: %s\n", lead.GroupName)
	fmt.Fprintf(&b, "- Keywords they mentioned: %s\n", strings.Join(lead.Keywords, ", "))
	notes := lead.Notes
	if notes == "" {
		notes = "None"
	}
	fmt.Fprintf(&b, "- Notes: %s\n", notes)
	fmt.Fprintf(&b, "- Lead Score: %d/100\n\n", lead.LeadScore)

	b.WriteString("Instructions:\n")
	b.WriteString("1. Replace template variables like {{firstName}}, {{town}}, {{keywords}}, {{groupName}}\n")
	b.WriteString("2. Make it sound natural and personalized\n")
	b.WriteString("3. Keep the professional tone but make it feel human\n")
	b.WriteString("4. Do not invent facts that are not present in the lead information\n")
	b.WriteString("5. Keep it concise and actionable\n\n")
	b.WriteString("Return only the personalized message, no explanations.")

	return b.String()
}
