// ABOUTME: Automation rule engine that turns CRM events into social posts
// ABOUTME: Evaluates enabled rules over contacts and interactions with per-event dedup
package automation

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/metrics"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/publisher"
)

// Match statuses that are not post statuses.
const (
	StatusDryRun = "dry-run"
	StatusQueued = "queued"
	StatusError  = "error"
)

const dateKey = "2006-01-02"

// Dispatcher sends a post to its platforms.
type Dispatcher interface {
	Publish(ctx context.Context, post *models.Post) (*publisher.Summary, error)
}

type Match struct {
	Rule        string `json:"rule"`
	ContactID   string `json:"contact_id,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	DedupKey    string `json:"dedup_key"`
	Text        string `json:"text"`
	PostID      string `json:"post_id,omitempty"`
	Status      string `json:"status"`
}

type Report struct {
	RanAt   time.Time `json:"ran_at"`
	DryRun  bool      `json:"dry_run"`
	Matches []Match   `json:"matches"`
	Errors  []string  `json:"errors,omitempty"`
}

// Engine evaluates automation rules. A nil Publisher leaves generated
// posts as drafts.
type Engine struct {
	DB        *sql.DB
	Settings  charm.Store
	Publisher Dispatcher
	Rand      *rand.Rand
	Now       func() time.Time
	DryRun    bool

	mu sync.Mutex
}

func NewEngine(database *sql.DB, settings charm.Store, pub Dispatcher) *Engine {
	return &Engine{
		DB:        database,
		Settings:  settings,
		Publisher: pub,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:       time.Now,
	}
}

type candidate struct {
	contact *models.Contact
	key     string
	data    TemplateData
}

// Run evaluates every enabled rule once.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	return e.run(ctx, e.DryRun)
}

// Preview evaluates the rules like Run but stores and publishes nothing.
func (e *Engine) Preview(ctx context.Context) (*Report, error) {
	return e.run(ctx, true)
}

func (e *Engine) run(ctx context.Context, dryRun bool) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(now.UnixNano()))
	}

	rules, err := LoadRules(e.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load automation rules: %w", err)
	}
	contacts, err := db.ListAllContacts(e.DB)
	if err != nil {
		return nil, err
	}
	interactions, err := db.ListAllInteractions(e.DB)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Contact, len(contacts))
	for i := range contacts {
		byID[contacts[i].ID] = &contacts[i]
	}

	report := &Report{RanAt: now, DryRun: dryRun}
	for _, rule := range SortedRules(rules) {
		if !rule.Enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var cands []candidate
		switch rule.Name {
		case models.RuleWelcome:
			cands = welcomeCandidates(rule, now, contacts)
		case models.RuleFollowUp:
			cands = followUpCandidates(rule, now, byID, interactions)
		case models.RuleBirthday:
			cands = dateCandidates(now, contacts, func(c *models.Contact) *time.Time { return c.Birthday }, false)
		case models.RuleAnniversary:
			cands = dateCandidates(now, contacts, func(c *models.Contact) *time.Time { return c.WorkAnniversary }, true)
		case models.RuleNetworkingDigest:
			cands = digestCandidates(rule, now, interactions)
		case models.RuleClientSuccess:
			cands = clientSuccessCandidates(rule, now, byID, interactions)
		}

		fired := 0
		for _, c := range cands {
			if e.fire(ctx, rule, c, report) {
				fired++
			}
		}
		logging.Debug("automation rule evaluated", "rule", rule.Name, "candidates", len(cands), "fired", fired)

		if rule.Name == models.RuleNetworkingDigest && fired > 0 && !dryRun {
			if _, err := UpdateRule(e.Settings, rule.Name, func(r *models.AutomationRule) {
				r.LastRunAt = &now
			}); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: failed to save last run: %v", rule.Name, err))
			}
		}
	}

	logging.Info("automation run finished", "matches", len(report.Matches), "errors", len(report.Errors), "dry_run", dryRun)
	return report, nil
}

// fire generates and dispatches one post unless the event already fired.
func (e *Engine) fire(ctx context.Context, rule models.AutomationRule, c candidate, report *Report) bool {
	contactID := ""
	match := Match{Rule: rule.Name, DedupKey: c.key}
	if c.contact != nil {
		contactID = c.contact.ID.String()
		match.ContactID = contactID
		match.ContactName = c.contact.Name
	}

	fail := func(err error) bool {
		report.Errors = append(report.Errors, fmt.Sprintf("%s %s: %v", rule.Name, contactID, err))
		logging.Error("automation rule failed", "rule", rule.Name, "contact", contactID, "error", err)
		return false
	}

	done, err := db.HasAutomationFired(e.DB, rule.Name, contactID, c.key)
	if err != nil {
		return fail(err)
	}
	if done {
		return false
	}

	content, err := Render(e.Rand, rule.TemplateSet, rule.BrandVoice, c.data)
	if err != nil {
		return fail(err)
	}
	match.Text = content.Text

	if report.DryRun {
		match.Status = StatusDryRun
		report.Matches = append(report.Matches, match)
		return true
	}

	post := &models.Post{
		Content:   content,
		Platforms: rule.Platforms,
		Source:    models.SourceAutomation,
		RuleName:  rule.Name,
	}
	if err := db.CreatePost(e.DB, post); err != nil {
		return fail(err)
	}
	match.PostID = post.ID

	claimed, err := db.RecordAutomationFire(e.DB, rule.Name, contactID, c.key, post.ID)
	if err != nil {
		return fail(err)
	}
	if !claimed {
		return false
	}
	if rule.Name == models.RuleWelcome && c.contact != nil {
		if err := db.MarkWelcomePosted(e.DB, c.contact.ID); err != nil {
			return fail(err)
		}
	}
	metrics.AutomationMatches.WithLabelValues(rule.Name).Inc()

	match.Status = StatusQueued
	if e.Publisher != nil {
		summary, err := e.Publisher.Publish(ctx, post)
		if err != nil {
			match.Status = StatusError
			report.Matches = append(report.Matches, match)
			fail(err)
			return true
		}
		match.Status = summary.Status
	}

	report.Matches = append(report.Matches, match)
	return true
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func dataFor(c *models.Contact) TemplateData {
	return TemplateData{Name: c.Name, Company: c.Company}
}

func welcomeCandidates(rule models.AutomationRule, now time.Time, contacts []models.Contact) []candidate {
	var out []candidate
	for i := range contacts {
		c := &contacts[i]
		if c.WelcomePosted {
			continue
		}
		if !categoryAllowed(rule, c.Category, []string{models.CategoryClient, models.CategoryProfessional}) {
			continue
		}
		if now.Sub(c.CreatedAt) < days(rule.DelayDays) {
			continue
		}
		out = append(out, candidate{contact: c, key: models.RuleWelcome, data: dataFor(c)})
	}
	return out
}

func followUpCandidates(rule models.AutomationRule, now time.Time, contacts map[uuid.UUID]*models.Contact, interactions []models.Interaction) []candidate {
	delay := rule.DelayDays
	if delay <= 0 {
		delay = DefaultFollowUpDays
	}

	latest := make(map[uuid.UUID]models.Interaction)
	var order []uuid.UUID
	for _, in := range interactions {
		prev, ok := latest[in.ContactID]
		if !ok {
			order = append(order, in.ContactID)
		}
		if !ok || in.Timestamp.After(prev.Timestamp) {
			latest[in.ContactID] = in
		}
	}

	var out []candidate
	for _, id := range order {
		in := latest[id]
		c, ok := contacts[id]
		if !ok || !categoryAllowed(rule, c.Category, nil) {
			continue
		}
		if now.Sub(in.Timestamp) < days(delay) {
			continue
		}
		out = append(out, candidate{contact: c, key: in.ID.String(), data: dataFor(c)})
	}
	return out
}

// sameDay reports whether the recurring date d falls on today. Feb 29
// dates match Feb 28 in non-leap years.
func sameDay(d, today time.Time) bool {
	d = d.UTC()
	month, day := d.Month(), d.Day()
	if month == time.February && day == 29 && !isLeap(today.Year()) {
		day = 28
	}
	return today.Month() == month && today.Day() == day
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func dateCandidates(now time.Time, contacts []models.Contact, field func(*models.Contact) *time.Time, countYears bool) []candidate {
	var out []candidate
	for i := range contacts {
		c := &contacts[i]
		d := field(c)
		if d == nil || !sameDay(*d, now) {
			continue
		}
		data := dataFor(c)
		if countYears {
			data.Years = now.Year() - d.UTC().Year()
			if data.Years < 1 {
				continue
			}
		}
		out = append(out, candidate{contact: c, key: now.Format(dateKey), data: data})
	}
	return out
}

func digestCandidates(rule models.AutomationRule, now time.Time, interactions []models.Interaction) []candidate {
	interval := rule.IntervalDays
	if interval <= 0 {
		interval = DefaultDigestIntervalDay
	}
	if rule.LastRunAt != nil && now.Sub(*rule.LastRunAt) < days(interval) {
		return nil
	}

	since := now.Add(-days(interval))
	seen := make(map[uuid.UUID]bool)
	for _, in := range interactions {
		if in.Timestamp.After(since) && !in.Timestamp.After(now) {
			seen[in.ContactID] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	return []candidate{{key: now.Format(dateKey), data: TemplateData{Count: len(seen)}}}
}

func clientSuccessCandidates(rule models.AutomationRule, now time.Time, contacts map[uuid.UUID]*models.Contact, interactions []models.Interaction) []candidate {
	window := rule.DelayDays
	if window <= 0 {
		window = DefaultClientSuccessDays
	}

	var out []candidate
	for _, in := range interactions {
		if in.Sentiment == nil || *in.Sentiment != models.SentimentPositive {
			continue
		}
		if now.Sub(in.Timestamp) > days(window) {
			continue
		}
		c, ok := contacts[in.ContactID]
		if !ok || !categoryAllowed(rule, c.Category, []string{models.CategoryClient}) {
			continue
		}
		out = append(out, candidate{contact: c, key: in.ID.String(), data: dataFor(c)})
	}
	return out
}
