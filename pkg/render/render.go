package render

import (
	"strings"

	"github.com/leadpulse/leadpulse/pkg/models"
)

// snippetPrefix is the marker the enrichment pipeline prepends to notes
// it extracted automatically. It is stripped when rendering {{snippet}}.
const snippetPrefix = "AI extracted: "

// Render merges a lead's fields into a message template, substituting
// double-brace placeholders: {{firstName}}, {{lastName}}, {{fullName}},
// {{town}}, {{groupName}}, {{keywords}} and {{snippet}}.
//
// Unknown placeholders are left verbatim since templates are user-edited
// free text. Render is pure and never fails: missing lead fields produce
// empty-string substitutions.
func Render(template string, lead models.Lead) string {
	replacer := strings.NewReplacer(
		"{{firstName}}", lead.FirstName,
		"{{lastName}}", lead.LastName,
		"{{fullName}}", lead.FullName(),
		"{{town}}", lead.Town,
		"{{groupName}}", lead.GroupName,
		"{{keywords}}", strings.Join(lead.Keywords, ", "),
		"{{snippet}}", Snippet(lead),
	)
	return replacer.Replace(template)
}

// Snippet returns the lead's notes with the enrichment prefix stripped.
func Snippet(lead models.Lead) string {
	return strings.TrimPrefix(lead.Notes, snippetPrefix)
}
