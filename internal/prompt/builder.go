package prompt

import (
	"fmt"
	"strings"

	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
)

// Tier is a prompt fidelity level. Escalation always moves toward TierEmergency.
type Tier int

const (
	TierPrimary Tier = iota
	TierSimplified
	TierEmergency
)

// Tiers lists the tiers in escalation order.
var Tiers = []Tier{TierPrimary, TierSimplified, TierEmergency}

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSimplified:
		return "simplified"
	case TierEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier maps a tier name back to its Tier.
func ParseTier(name string) (Tier, error) {
	for _, t := range Tiers {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q, must be one of: primary, simplified, emergency", name)
}

// Defaults used when a lead leaves the personalization fields empty.
const (
	defaultName      = "Business Owner"
	defaultBusiness  = "business"
	defaultChallenge = "operational efficiency"
)

// Builder produces prompts for each tier.
type Builder struct {
	logger logger.Logger
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(l logger.Logger) *Builder {
	return &Builder{logger: logger.OrNop(l)}
}

// Build returns the prompt for tier. The primary tier routes by lead type:
// main leads get the detailed template, standard and simple leads get the
// streamlined one.
func (b *Builder) Build(tier Tier, lead models.LeadContext) string {
	switch tier {
	case TierPrimary:
		if lead.LeadType == models.LeadTypeMain {
			return b.Detailed(lead)
		}
		return b.Streamlined(lead)
	case TierSimplified:
		return b.Simplified(lead)
	default:
		return b.Emergency()
	}
}

// Detailed fills the full instruction template with the serialized lead.
func (b *Builder) Detailed(lead models.LeadContext) string {
	p := strings.Replace(primaryTemplate, LeadContextPlaceholder, Serialize(lead), 1)
	b.logger.LogDebug(logger.KV("built detailed prompt",
		"lead_type", lead.LeadType,
		"length", len(p),
		"fields", lead.FieldCount(),
		"website", lead.WebsiteSummary != nil))
	return p
}

// Streamlined is the short primary prompt for standard and simple leads.
func (b *Builder) Streamlined(lead models.LeadContext) string {
	name, business, challenge := personalization(lead)
	p := fmt.Sprintf(streamlinedTemplate, name, business, challenge)
	b.logger.LogDebug(logger.KV("built streamlined prompt", "lead_type", lead.LeadType, "length", len(p)))
	return p
}

// Simplified is the first fallback, parameterized only by name, business type and challenge.
func (b *Builder) Simplified(lead models.LeadContext) string {
	name, business, challenge := personalization(lead)
	b.logger.LogInfo(logger.KV("using simplified prompt", "lead_type", lead.LeadType))
	return fmt.Sprintf(simplifiedTemplate, name, business, challenge)
}

// Emergency is the last-resort prompt with no personalization.
func (b *Builder) Emergency() string {
	b.logger.LogWarn("using emergency prompt without lead context")
	return emergencyTemplate
}

func personalization(lead models.LeadContext) (name, business, challenge string) {
	name = orDefault(lead.FullName(), defaultName)
	business = orDefault(lead.BusinessType, defaultBusiness)
	challenge = orDefault(lead.ChallengeText(), orDefault(lead.TimeBottleneck, defaultChallenge))
	return name, business, challenge
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
