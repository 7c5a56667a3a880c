// ABOUTME: MCP resource handlers for exposing amplify data
// ABOUTME: Provides read-only access to contacts, posts, rules, responses and the dashboard via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "amplify://"

// StaticResources lists the fixed URIs served by ReadResource. Item URIs
// (amplify://contacts/{id}, amplify://posts/{id}) are served by templates.
var StaticResources = []*mcp.Resource{
	{URI: resourceScheme + "contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
	{URI: resourceScheme + "posts", Name: "posts", Description: "Recent posts with their status", MIMEType: "application/json"},
	{URI: resourceScheme + "rules", Name: "rules", Description: "Automation rule configuration", MIMEType: "application/json"},
	{URI: resourceScheme + "responses/pending", Name: "pending-responses", Description: "Auto-responses awaiting approval", MIMEType: "application/json"},
	{URI: resourceScheme + "fallbacks", Name: "fallbacks", Description: "Content that could not be delivered", MIMEType: "application/json"},
	{URI: resourceScheme + "dashboard", Name: "dashboard", Description: "Text dashboard overview", MIMEType: "text/plain"},
}

type ResourceHandlers struct {
	db       *sql.DB
	settings charm.Store
}

func NewResourceHandlers(database *sql.DB, settings charm.Store) *ResourceHandlers {
	return &ResourceHandlers{db: database, settings: settings}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	path := strings.TrimPrefix(uri, resourceScheme)
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 {
			return h.readAllContacts(uri)
		}
		return h.readContact(uri, parts[1])

	case "posts":
		if len(parts) == 1 {
			return h.readPosts(uri)
		}
		return h.readPost(uri, parts[1])

	case "rules":
		rules, err := automation.LoadRules(h.settings)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		return jsonResource(uri, automation.SortedRules(rules))

	case "responses":
		responses, err := db.ListResponses(h.db, models.ResponsePending, 100)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch responses: %w", err)
		}
		return jsonResource(uri, responses)

	case "fallbacks":
		entries, err := db.ListFallbackEntries(h.db, 100)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch fallback log: %w", err)
		}
		return jsonResource(uri, entries)

	case "dashboard":
		return h.readDashboard(uri)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readAllContacts(uri string) (*mcp.ReadResourceResult, error) {
	contacts, err := db.ListAllContacts(h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return jsonResource(uri, contacts)
}

func (h *ResourceHandlers) readContact(uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := db.GetContact(h.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if contact == nil {
		return nil, fmt.Errorf("contact not found: %s", idStr)
	}

	interactions, err := db.GetInteractionHistory(h.db, id, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	return jsonResource(uri, struct {
		*models.Contact
		Interactions []models.Interaction `json:"interactions"`
	}{contact, interactions})
}

func (h *ResourceHandlers) readPosts(uri string) (*mcp.ReadResourceResult, error) {
	posts, err := db.ListPosts(h.db, "", 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	return jsonResource(uri, posts)
}

func (h *ResourceHandlers) readPost(uri, id string) (*mcp.ReadResourceResult, error) {
	post, err := db.GetPost(h.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("post not found: %s", id)
	}

	results, err := db.ListPostResults(h.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post results: %w", err)
	}

	return jsonResource(uri, struct {
		*models.Post
		Results []models.PostResult `json:"results"`
	}{post, results})
}

func (h *ResourceHandlers) readDashboard(uri string) (*mcp.ReadResourceResult, error) {
	rules, err := automation.LoadRules(h.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	stats, err := viz.GenerateDashboardStats(h.db, automation.SortedRules(rules), time.Now())
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     viz.RenderDashboard(stats),
		},
	}}, nil
}
