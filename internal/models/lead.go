package models

import (
	"fmt"
	"strings"
	"time"
)

// LeadType classifies which intake form produced a lead.
type LeadType string

const (
	// LeadTypeMain is the detailed two-step form.
	LeadTypeMain LeadType = "main"
	// LeadTypeStandard is the business-info form.
	LeadTypeStandard LeadType = "standard"
	// LeadTypeSimple is the pre-selected options form.
	LeadTypeSimple LeadType = "simple"
)

// Valid reports whether t is a known lead type.
func (t LeadType) Valid() bool {
	switch t {
	case LeadTypeMain, LeadTypeStandard, LeadTypeSimple:
		return true
	}
	return false
}

// EngagementLevel is a coarse measure of how much context a lead provided.
type EngagementLevel string

const (
	EngagementHigh   EngagementLevel = "High"
	EngagementMedium EngagementLevel = "Medium"
	EngagementLow    EngagementLevel = "Low"
)

// Field-count thresholds for engagement levels; a count must exceed the threshold.
const (
	highEngagementFields   = 8
	mediumEngagementFields = 5
)

// WebsiteSummary is scraped context about the lead's company website.
type WebsiteSummary struct {
	URL          string   `json:"url" yaml:"url"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	BusinessType string   `json:"businessType,omitempty" yaml:"businessType,omitempty"`
	Industry     string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	Services     []string `json:"services,omitempty" yaml:"services,omitempty"`
	Content      string   `json:"content,omitempty" yaml:"content,omitempty"`
}

// LeadContext holds everything known about one business owner.
// Every field is optional except LeadType; several fields have an alternate
// spelling because the intake forms disagree on naming.
type LeadContext struct {
	LeadType  LeadType `json:"leadType" yaml:"leadType"`
	Timestamp string   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`

	FirstName   string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`

	Website        string `json:"website,omitempty" yaml:"website,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty" yaml:"companyWebsite,omitempty"`
	BusinessType   string `json:"businessType,omitempty" yaml:"businessType,omitempty"`
	Revenue        string `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	EmployeeCount  string `json:"employeeCount,omitempty" yaml:"employeeCount,omitempty"`
	Employees      string `json:"employees,omitempty" yaml:"employees,omitempty"`

	Challenges       string `json:"challenges,omitempty" yaml:"challenges,omitempty"`
	PainPoints       string `json:"painPoints,omitempty" yaml:"painPoints,omitempty"`
	TimeBottleneck   string `json:"timeBottleneck,omitempty" yaml:"timeBottleneck,omitempty"`
	SupportNotes     string `json:"supportNotes,omitempty" yaml:"supportNotes,omitempty"`
	AdminTimePerWeek string `json:"adminTimePerWeek,omitempty" yaml:"adminTimePerWeek,omitempty"`

	CommunicationPreference string `json:"communicationPreference,omitempty" yaml:"communicationPreference,omitempty"`
	Instagram               string `json:"instagram,omitempty" yaml:"instagram,omitempty"`

	WebsiteSummary *WebsiteSummary `json:"companyAnalysis,omitempty" yaml:"companyAnalysis,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (l LeadContext) FullName() string {
	return strings.TrimSpace(strings.Join(nonEmpty(l.FirstName, l.LastName), " "))
}

// PhoneValue returns PhoneNumber, falling back to Phone.
func (l LeadContext) PhoneValue() string {
	return firstOf(l.PhoneNumber, l.Phone)
}

// WebsiteURL returns Website, falling back to CompanyWebsite.
func (l LeadContext) WebsiteURL() string {
	return firstOf(l.Website, l.CompanyWebsite)
}

// TeamSize returns EmployeeCount, falling back to Employees.
func (l LeadContext) TeamSize() string {
	return firstOf(l.EmployeeCount, l.Employees)
}

// ChallengeText returns Challenges, falling back to PainPoints.
func (l LeadContext) ChallengeText() string {
	return firstOf(l.Challenges, l.PainPoints)
}

// FieldCount returns the number of populated fields, the website summary
// counting as one.
func (l LeadContext) FieldCount() int {
	fields := []string{
		string(l.LeadType), l.Timestamp,
		l.FirstName, l.LastName, l.Email, l.Phone, l.PhoneNumber, l.Title,
		l.Website, l.CompanyWebsite, l.BusinessType, l.Revenue, l.EmployeeCount, l.Employees,
		l.Challenges, l.PainPoints, l.TimeBottleneck, l.SupportNotes, l.AdminTimePerWeek,
		l.CommunicationPreference, l.Instagram,
	}
	n := len(nonEmpty(fields...))
	if l.WebsiteSummary != nil {
		n++
	}
	return n
}

// Engagement classifies the lead by FieldCount.
func (l LeadContext) Engagement() EngagementLevel {
	switch n := l.FieldCount(); {
	case n > highEngagementFields:
		return EngagementHigh
	case n > mediumEngagementFields:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

// Validate checks the fields an inbound request must carry.
func (l LeadContext) Validate() error {
	if strings.TrimSpace(l.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !l.LeadType.Valid() {
		return fmt.Errorf("invalid lead type %q: must be one of main, standard, simple", l.LeadType)
	}
	if l.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, l.Timestamp); err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", l.Timestamp, err)
		}
	}
	return nil
}

// WithDefaults returns a copy of l with Timestamp set to now when empty.
func (l LeadContext) WithDefaults(now time.Time) LeadContext {
	if l.Timestamp == "" {
		l.Timestamp = now.UTC().Format(time.RFC3339)
	}
	return l
}

func firstOf(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
