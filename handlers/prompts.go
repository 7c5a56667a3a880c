// ABOUTME: MCP prompt handlers for reusable relationship and publishing workflows
// ABOUTME: Provides contact summaries, post drafting, follow-up suggestions and a weekly review
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompts lists the prompt definitions served by GetPrompt.
var Prompts = []*mcp.Prompt{
	{
		Name:        "contact-summary",
		Description: "Summarize a contact and their recent interactions",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact ID", Required: true},
		},
	},
	{
		Name:        "compose-post",
		Description: "Draft a social post that fits each target platform",
		Arguments: []*mcp.PromptArgument{
			{Name: "topic", Description: "What the post is about", Required: true},
			{Name: "platforms", Description: "Comma-separated platforms (default all)"},
			{Name: "voice", Description: "professional, casual or bible-scholar"},
		},
	},
	{
		Name:        "follow-up-suggestions",
		Description: "Suggest who to reach out to based on contact cadence",
		Arguments: []*mcp.PromptArgument{
			{Name: "limit", Description: "Number of contacts to consider (default 10)"},
		},
	},
	{
		Name:        "weekly-review",
		Description: "Review publishing results, undelivered content and pending responses",
	},
}

type PromptHandlers struct {
	db *sql.DB
}

func NewPromptHandlers(database *sql.DB) *PromptHandlers {
	return &PromptHandlers{db: database}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(arguments)
	case "compose-post":
		return h.getComposePostPrompt(arguments)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(arguments)
	case "weekly-review":
		return h.getWeeklyReviewPrompt()
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	contactIDStr, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}

	contactID, err := uuid.Parse(contactIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := db.GetContact(h.db, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if contact == nil {
		return nil, fmt.Errorf("contact not found")
	}

	interactions, err := db.GetInteractionHistory(h.db, contactID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	promptText.WriteString(fmt.Sprintf("Category: %s\n", contact.Category))
	if contact.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", contact.Email))
	}
	if contact.Company != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", contact.Company))
	}
	if contact.Birthday != nil {
		promptText.WriteString(fmt.Sprintf("Birthday: %s\n", contact.Birthday.Format("January 2")))
	}
	if contact.LastContactedAt != nil {
		promptText.WriteString(fmt.Sprintf("Last Contacted: %s\n", contact.LastContactedAt.Format("2006-01-02")))
	}
	if contact.Notes != "" {
		promptText.WriteString(fmt.Sprintf("\nNotes: %s\n", contact.Notes))
	}

	if len(interactions) > 0 {
		promptText.WriteString("\nRecent interactions:\n")
		for _, i := range interactions {
			line := fmt.Sprintf("  - %s %s", i.Timestamp.Format("2006-01-02"), i.Type)
			if i.Sentiment != nil {
				line += fmt.Sprintf(" (%s)", *i.Sentiment)
			}
			if i.Notes != "" {
				line += ": " + i.Notes
			}
			promptText.WriteString(line + "\n")
		}
	}

	promptText.WriteString("\nPlease analyze this contact and provide:")
	promptText.WriteString("\n1. A brief summary of the relationship")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Whether a public shout-out (welcome, client success) would be appropriate")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), promptText.String()), nil
}

func (h *PromptHandlers) getComposePostPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	topic := strings.TrimSpace(args["topic"])
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	targets, err := models.ParsePlatforms(args["platforms"])
	if err != nil {
		return nil, err
	}

	voice := args["voice"]
	if voice == "" {
		voice = models.VoiceProfessional
	}
	if err := models.ValidateVoice(voice); err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Draft a social media post about: %s\n\n", topic))
	promptText.WriteString(fmt.Sprintf("Brand voice: %s\n", voice))
	promptText.WriteString("Platform limits:\n")
	for _, name := range targets {
		limits, err := platforms.LimitsFor(name)
		if err != nil {
			return nil, err
		}
		line := fmt.Sprintf("  - %s: %d characters, up to %d hashtags", name, limits.MaxChars, limits.MaxHashtags)
		if limits.RequiresMedia {
			line += ", requires an image"
		}
		promptText.WriteString(line + "\n")
	}
	if voice == models.VoiceBibleScholar {
		promptText.WriteString("\nInclude a short scripture reference in the scripture field.\n")
	}

	promptText.WriteString("\nWrite one body that fits the tightest limit, suggest hashtags and a call to action,")
	promptText.WriteString(" then save it with the compose_post tool.")

	return userPrompt("Compose a post", promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	limit := 10
	if l, ok := args["limit"]; ok && l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid limit: %q", l)
		}
		limit = n
	}

	followups, err := db.GetFollowupList(h.db, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch follow-ups: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Here are contacts that are due for a follow-up:\n\n")
	if len(followups) == 0 {
		promptText.WriteString("  (nobody is overdue)\n")
	}
	for _, f := range followups {
		promptText.WriteString(fmt.Sprintf("  - %s (%s, %s): %d days since contact, cadence %d days\n",
			f.Name, f.Category, f.RelationshipStrength, f.DaysSinceContact, f.CadenceDays))
	}

	promptText.WriteString("\nPlease suggest:")
	promptText.WriteString("\n1. Who to prioritize this week and why")
	promptText.WriteString("\n2. A short personal message for each")

	return userPrompt("Follow-up suggestions", promptText.String()), nil
}

func (h *PromptHandlers) getWeeklyReviewPrompt() (*mcp.GetPromptResult, error) {
	postStats, err := db.PostStats(h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post stats: %w", err)
	}
	tally, err := db.PlatformResultStats(h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch platform stats: %w", err)
	}
	fallbacks, err := db.ListFallbackEntries(h.db, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fallback log: %w", err)
	}
	pending, err := db.ListResponses(h.db, models.ResponsePending, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending responses: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please review this week's social activity:\n\nPosts by status:\n")
	for _, status := range []string{models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusPublished, models.PostStatusPartial, models.PostStatusFailed} {
		promptText.WriteString(fmt.Sprintf("  - %s: %d\n", status, postStats[status]))
	}

	promptText.WriteString("\nDelivery by platform:\n")
	for _, name := range models.AllPlatforms {
		t := tally[name]
		promptText.WriteString(fmt.Sprintf("  - %s: %d delivered, %d failed\n", name, t.Delivered, t.Failed))
	}

	if len(fallbacks) > 0 {
		promptText.WriteString("\nUndelivered content:\n")
		for _, f := range fallbacks {
			promptText.WriteString(fmt.Sprintf("  - %s (%s): %s\n", f.Platform, f.ErrorKind, f.Error))
		}
	}
	if len(pending) > 0 {
		promptText.WriteString("\nResponses awaiting approval:\n")
		for _, r := range pending {
			promptText.WriteString(fmt.Sprintf("  - [%s] %s %s: %q\n", r.ID, r.Platform, r.Author, r.Text))
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Which platforms need attention (expired credentials, repeated failures)")
	promptText.WriteString("\n2. Whether the pending responses should be approved")
	promptText.WriteString("\n3. Ideas for next week's posts")

	return userPrompt("Weekly review", promptText.String()), nil
}
