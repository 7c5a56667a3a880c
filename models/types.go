// ABOUTME: Data models for CRM and social publishing entities
// ABOUTME: Defines Contact, Interaction, Post, AutomationRule, credentials and responder types
package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact categories.
const (
	CategoryPersonal     = "personal"
	CategoryProfessional = "professional"
	CategoryClient       = "client"
	CategoryVendor       = "vendor"
)

type Contact struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Company         string     `json:"company,omitempty"`
	Category        string     `json:"category"`
	Birthday        *time.Time `json:"birthday,omitempty"`
	WorkAnniversary *time.Time `json:"work_anniversary,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	WelcomePosted   bool       `json:"welcome_posted"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// InteractionType constants.
const (
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMeeting = "meeting"
	InteractionOther   = "other"
)

// Sentiment constants.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

type Interaction struct {
	ID        uuid.UUID `json:"id"`
	ContactID uuid.UUID `json:"contact_id"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes,omitempty"`
	Sentiment *string   `json:"sentiment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RelationshipStrength constants.
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

type ContactCadence struct {
	ContactID            uuid.UUID  `json:"contact_id"`
	CadenceDays          int        `json:"cadence_days"`
	RelationshipStrength string     `json:"relationship_strength"`
	PriorityScore        float64    `json:"priority_score"`
	LastInteractionDate  *time.Time `json:"last_interaction_date,omitempty"`
	NextFollowupDate     *time.Time `json:"next_followup_date,omitempty"`
}

// ComputePriorityScore calculates the priority score for a contact
// Based on days overdue and relationship strength.
func (c *ContactCadence) ComputePriorityScore() float64 {
	if c.LastInteractionDate == nil {
		return 0.0
	}

	daysSinceContact := int(time.Since(*c.LastInteractionDate).Hours() / 24)
	daysOverdue := daysSinceContact - c.CadenceDays

	if daysOverdue <= 0 {
		return 0.0
	}

	baseScore := float64(daysOverdue * 2)

	multiplier := 1.0
	switch c.RelationshipStrength {
	case StrengthStrong:
		multiplier = 2.0
	case StrengthMedium:
		multiplier = 1.5
	}

	return baseScore * multiplier
}

// UpdateNextFollowup sets the next followup date based on last interaction and cadence.
func (c *ContactCadence) UpdateNextFollowup() {
	if c.LastInteractionDate != nil {
		next := c.LastInteractionDate.AddDate(0, 0, c.CadenceDays)
		c.NextFollowupDate = &next
	}
}

// FollowupContact combines Contact with cadence info for follow-up views.
type FollowupContact struct {
	Contact
	CadenceDays          int        `json:"cadence_days"`
	RelationshipStrength string     `json:"relationship_strength"`
	PriorityScore        float64    `json:"priority_score"`
	DaysSinceContact     int        `json:"days_since_contact"`
	NextFollowupDate     *time.Time `json:"next_followup_date,omitempty"`
}

// Platform names.
const (
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

// AllPlatforms lists supported platforms in default fan-out order.
var AllPlatforms = []string{PlatformTwitter, PlatformLinkedIn, PlatformFacebook, PlatformInstagram}

// Brand voices.
const (
	VoiceProfessional = "professional"
	VoiceCasual       = "casual"
	VoiceBibleScholar = "bible-scholar"
)

// Content is what gets formatted for each platform.
type Content struct {
	Text       string   `json:"text"`
	Hashtags   []string `json:"hashtags,omitempty"`
	CTA        string   `json:"cta,omitempty"`
	Scripture  string   `json:"scripture,omitempty"`
	MediaURLs  []string `json:"media_urls,omitempty"`
	BrandVoice string   `json:"brand_voice,omitempty"`
}

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusPartial   = "partial"
	PostStatusFailed    = "failed"
)

// Post sources.
const (
	SourceComposer   = "composer"
	SourceAutomation = "automation"
	SourceResponder  = "responder"
)

type Post struct {
	ID          string     `json:"id"`
	Content     Content    `json:"content"`
	Platforms   []string   `json:"platforms"`
	AIGenerated bool       `json:"ai_generated"`
	Source      string     `json:"source"`
	RuleName    string     `json:"rule_name,omitempty"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Error kinds recorded with failed deliveries.
const (
	ErrorKindTransient = "transient"
	ErrorKindPermanent = "permanent"
)

type PostResult struct {
	PostID         string    `json:"post_id"`
	Platform       string    `json:"platform"`
	Success        bool      `json:"success"`
	RemoteID       string    `json:"remote_id,omitempty"`
	URL            string    `json:"url,omitempty"`
	Error          string    `json:"error,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Attempts       int       `json:"attempts"`
	FallbackLogged bool      `json:"fallback_logged"`
	CreatedAt      time.Time `json:"created_at"`
}

// Automation rule names.
const (
	RuleWelcome          = "welcome"
	RuleFollowUp         = "follow_up"
	RuleBirthday         = "birthday"
	RuleAnniversary      = "anniversary"
	RuleNetworkingDigest = "networking_digest"
	RuleClientSuccess    = "client_success"
)

// RuleNames is the fixed set of automation rules in evaluation order.
var RuleNames = []string{
	RuleWelcome,
	RuleFollowUp,
	RuleBirthday,
	RuleAnniversary,
	RuleNetworkingDigest,
	RuleClientSuccess,
}

type AutomationRule struct {
	Name         string     `json:"name"`
	Enabled      bool       `json:"enabled"`
	Platforms    []string   `json:"platforms"`
	DelayDays    int        `json:"delay_days,omitempty"`
	IntervalDays int        `json:"interval_days,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	TemplateSet  string     `json:"template_set"`
	BrandVoice   string     `json:"brand_voice,omitempty"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
}

type PlatformCredential struct {
	Platform    string    `json:"platform"`
	AccessToken string    `json:"access_token"`
	AccountID   string    `json:"account_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Mention struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Response statuses.
const (
	ResponsePending  = "pending"
	ResponseSent     = "sent"
	ResponseRejected = "rejected"
	ResponseFailed   = "failed"
)

type Response struct {
	ID        string     `json:"id"`
	MentionID string     `json:"mention_id"`
	Platform  string     `json:"platform"`
	Author    string     `json:"author"`
	Keyword   string     `json:"keyword"`
	Category  string     `json:"category"`
	Text      string     `json:"text"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type FallbackEntry struct {
	ID          uuid.UUID `json:"id"`
	PostID      string    `json:"post_id"`
	Platform    string    `json:"platform"`
	Content     string    `json:"content"`
	Error       string    `json:"error"`
	ErrorKind   string    `json:"error_kind"`
	Recipient   string    `json:"recipient,omitempty"`
	Notified    bool      `json:"notified"`
	NotifyError string    `json:"notify_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

type SyncLog struct {
	ID            uuid.UUID `json:"id"`
	SourceService string    `json:"source_service"`
	SourceID      string    `json:"source_id"`
	EntityType    string    `json:"entity_type"`
	EntityID      uuid.UUID `json:"entity_id"`
	ImportedAt    time.Time `json:"imported_at"`
	Metadata      string    `json:"metadata,omitempty"`
}
