package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// LeadGeneratorConfig configures lead generation parameters.
type LeadGeneratorConfig struct {
	Count       int
	Source      models.LeadSource
	Town        string
	MinScore    int     // 0-100
	MaxScore    int     // 0-100
	EmailChance float64 // 0.0-1.0 (probability of having email)
	PhoneChance float64
}

// Towns are the service-area towns leads get scattered across.
var Towns = []string{
	"Springfield", "Shelbyville", "Riverside", "Fairview", "Oakdale",
	"Maplewood", "Cedar Falls", "Lakewood", "Brookside", "Hillcrest",
}

// Community group names per source. Facebook leads come out of town
// buy/sell and homeowner groups; reddit leads out of home-improvement subs.
var groupsBySource = map[models.LeadSource][]string{
	models.SourceFacebook: {
		"%s Community Board",
		"%s Homeowners",
		"%s Buy Sell Trade",
		"Ask %s - Local Recommendations",
		"%s Moms Group",
		"%s Neighbors Helping Neighbors",
	},
	models.SourceReddit: {
		"r/HVAC",
		"r/homeowners",
		"r/HomeImprovement",
		"r/hvacadvice",
		"r/Appliances",
	},
}

// Intent keywords weighted towards urgency. A lead carrying "emergency"
// or "broken" language scores higher with scoreForKeywords.
var keywordPool = []string{
	"ac not cooling", "furnace", "no heat", "ac broken", "emergency",
	"heat pump", "thermostat", "duct cleaning", "new install", "quote",
	"air conditioner", "recommendations", "hvac company", "repair",
	"maintenance", "freon", "compressor", "noisy unit", "high bill",
}

var urgentKeywords = map[string]int{
	"emergency": 30, "no heat": 25, "ac broken": 25, "ac not cooling": 20,
	"compressor": 15, "repair": 10, "quote": 10, "new install": 10,
}

// GenerateGroupName returns a plausible community group name for the source.
func GenerateGroupName(source models.LeadSource, town string) string {
	patterns := groupsBySource[source]
	if len(patterns) == 0 {
		patterns = groupsBySource[models.SourceFacebook]
	}
	p := patterns[rand.Intn(len(patterns))]
	if strings.Contains(p, "%s") {
		return fmt.Sprintf(p, town)
	}
	return p
}

// pickKeywords draws 1-4 distinct keywords from the pool.
func pickKeywords() []string {
	n := 1 + rand.Intn(4)
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		kw := keywordPool[rand.Intn(len(keywordPool))]
		if seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// scoreForKeywords bumps a base score by the urgency weight of the
// lead's keywords, clamped to the configured range.
func scoreForKeywords(base, max int, keywords []string) int {
	score := base
	for _, kw := range keywords {
		score += urgentKeywords[kw]
	}
	if score > max {
		score = max
	}
	if score > 100 {
		score = 100
	}
	return score
}

// GenerateLead creates a single lead with realistic data.
func GenerateLead(config LeadGeneratorConfig) models.Lead {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	fbName := first + " " + last

	keywords := pickKeywords()
	base := config.MinScore
	if config.MaxScore > config.MinScore {
		base += rand.Intn(config.MaxScore - config.MinScore + 1)
	}
	score := scoreForKeywords(base, config.MaxScore, keywords)

	town := config.Town
	if town == "" {
		town = Towns[rand.Intn(len(Towns))]
	}

	source := config.Source
	if source == "" {
		source = models.SourceFacebook
	}

	lead := models.Lead{
		FirstName:     first,
		LastName:      last,
		FacebookName:  fbName,
		Town:          town,
		GroupName:     GenerateGroupName(source, town),
		Keywords:      keywords,
		Status:        models.LeadStatusNew,
		ContactStatus: models.ContactStatusNotContacted,
		DateAdded:     gofakeit.DateRange(time.Now().AddDate(0, 0, -30), time.Now()),
		LeadScore:     score,
		Source:        source,
	}

	if source == models.SourceFacebook {
		slug := strings.ToLower(strings.ReplaceAll(fbName, " ", "."))
		lead.FacebookProfileURL = "https://facebook.com/" + slug
	} else {
		lead.URL = fmt.Sprintf("https://reddit.com/r/HVAC/comments/%s", gofakeit.LetterN(6))
	}

	if rand.Float64() < config.EmailChance {
		lead.Email = strings.ToLower(fmt.Sprintf("%s.%s@%s", first, last, gofakeit.DomainName()))
	}
	if rand.Float64() < config.PhoneChance {
		lead.Phone = fmt.Sprintf("+1%s", gofakeit.Numerify("212#######"))
	}

	return lead
}

// GenerateLeads creates multiple leads with the given config.
func GenerateLeads(config LeadGeneratorConfig) []models.Lead {
	leads := make([]models.Lead, config.Count)
	for i := range leads {
		leads[i] = GenerateLead(config)
	}
	return leads
}

// GenerateLeadsWithDistribution generates leads with a realistic score
// spread: roughly 30% high priority, 50% medium, 20% low.
func GenerateLeadsWithDistribution(count int) []models.Lead {
	leads := make([]models.Lead, 0, count)

	highCount := int(float64(count) * 0.3)
	mediumCount := int(float64(count) * 0.5)

	for i := 0; i < highCount; i++ {
		leads = append(leads, GenerateLead(LeadGeneratorConfig{
			Source:      pickSource(),
			MinScore:    models.ScoreHighPriority,
			MaxScore:    100,
			EmailChance: 0.8,
			PhoneChance: 0.7,
		}))
	}
	for i := 0; i < mediumCount; i++ {
		leads = append(leads, GenerateLead(LeadGeneratorConfig{
			Source:      pickSource(),
			MinScore:    models.ScoreMediumPriority,
			MaxScore:    models.ScoreHighPriority - 1,
			EmailChance: 0.5,
			PhoneChance: 0.5,
		}))
	}
	for len(leads) < count {
		leads = append(leads, GenerateLead(LeadGeneratorConfig{
			Source:      pickSource(),
			MinScore:    5,
			MaxScore:    models.ScoreMediumPriority - 1,
			EmailChance: 0.3,
			PhoneChance: 0.2,
		}))
	}

	return leads
}

func pickSource() models.LeadSource {
	if rand.Float64() < 0.8 {
		return models.SourceFacebook
	}
	return models.SourceReddit
}

// BulkInsertLeads inserts leads one at a time, skipping duplicates.
func BulkInsertLeads(ctx context.Context, store domain.LeadStore, leads []models.Lead) (int, error) {
	inserted := 0
	for i := range leads {
		if _, err := store.Add(ctx, &leads[i]); err != nil {
			if domain.IsConflict(err) {
				continue
			}
			return inserted, fmt.Errorf("failed to insert lead %q: %w", leads[i].FullName(), err)
		}
		inserted++
	}
	return inserted, nil
}
