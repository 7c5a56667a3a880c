// ABOUTME: Post MCP tool handlers
// ABOUTME: Implements compose_post, publish_post and list_posts on top of the fan-out publisher
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/publisher"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PostHandlers struct {
	db        *sql.DB
	publisher *publisher.Publisher
}

func NewPostHandlers(database *sql.DB, pub *publisher.Publisher) *PostHandlers {
	return &PostHandlers{db: database, publisher: pub}
}

type ComposePostInput struct {
	Text        string   `json:"text" jsonschema:"Post body (required)"`
	Platforms   []string `json:"platforms,omitempty" jsonschema:"Target platforms: twitter, linkedin, facebook, instagram (default all)"`
	Hashtags    []string `json:"hashtags,omitempty" jsonschema:"Hashtags with or without the leading #"`
	CTA         string   `json:"cta,omitempty" jsonschema:"Call to action appended when a brand voice is set"`
	Scripture   string   `json:"scripture,omitempty" jsonschema:"Scripture line appended for the bible-scholar voice"`
	MediaURLs   []string `json:"media_urls,omitempty" jsonschema:"Public media URLs (instagram requires one)"`
	BrandVoice  string   `json:"brand_voice,omitempty" jsonschema:"professional, casual or bible-scholar"`
	AIGenerated bool     `json:"ai_generated,omitempty" jsonschema:"Mark the content as AI generated"`
	ScheduleAt  string   `json:"schedule_at,omitempty" jsonschema:"RFC3339 time to publish at; the daemon publishes it when due"`
	PublishNow  bool     `json:"publish_now,omitempty" jsonschema:"Publish immediately instead of saving a draft"`
}

type PlatformResultOutput struct {
	Platform       string `json:"platform"`
	Success        bool   `json:"success"`
	RemoteID       string `json:"remote_id,omitempty"`
	URL            string `json:"url,omitempty"`
	Error          string `json:"error,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
	Attempts       int    `json:"attempts"`
	FallbackLogged bool   `json:"fallback_logged"`
}

type PostOutput struct {
	ID          string                 `json:"id"`
	Text        string                 `json:"text"`
	Platforms   []string               `json:"platforms"`
	Source      string                 `json:"source"`
	RuleName    string                 `json:"rule_name,omitempty"`
	Status      string                 `json:"status"`
	ScheduledAt *string                `json:"scheduled_at,omitempty"`
	PublishedAt *string                `json:"published_at,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	Results     []PlatformResultOutput `json:"results,omitempty"`
}

func (h *PostHandlers) ComposePost(ctx context.Context, request *mcp.CallToolRequest, input ComposePostInput) (*mcp.CallToolResult, PostOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, PostOutput{}, fmt.Errorf("text is required")
	}
	if input.PublishNow && input.ScheduleAt != "" {
		return nil, PostOutput{}, fmt.Errorf("publish_now and schedule_at are mutually exclusive")
	}
	if err := models.ValidateVoice(input.BrandVoice); err != nil {
		return nil, PostOutput{}, err
	}

	targets, err := models.ParsePlatforms(strings.Join(input.Platforms, ","))
	if err != nil {
		return nil, PostOutput{}, err
	}

	post := &models.Post{
		Content: models.Content{
			Text:       input.Text,
			Hashtags:   input.Hashtags,
			CTA:        input.CTA,
			Scripture:  input.Scripture,
			MediaURLs:  input.MediaURLs,
			BrandVoice: input.BrandVoice,
		},
		Platforms:   targets,
		AIGenerated: input.AIGenerated,
		Source:      models.SourceComposer,
	}

	if input.ScheduleAt != "" {
		at, err := time.Parse(time.RFC3339, input.ScheduleAt)
		if err != nil {
			return nil, PostOutput{}, fmt.Errorf("invalid schedule_at format (use RFC3339): %w", err)
		}
		post.ScheduledAt = &at
	}

	if err := db.CreatePost(h.db, post); err != nil {
		return nil, PostOutput{}, fmt.Errorf("failed to save post: %w", err)
	}

	if input.PublishNow {
		if _, err := h.publisher.Publish(ctx, post); err != nil {
			return nil, PostOutput{}, fmt.Errorf("failed to publish post: %w", err)
		}
		return h.reload(post.ID)
	}

	return h.output(post)
}

type PublishPostInput struct {
	PostID string `json:"post_id" jsonschema:"ID of a draft or scheduled post (required)"`
}

func (h *PostHandlers) PublishPost(ctx context.Context, request *mcp.CallToolRequest, input PublishPostInput) (*mcp.CallToolResult, PostOutput, error) {
	if input.PostID == "" {
		return nil, PostOutput{}, fmt.Errorf("post_id is required")
	}

	post, err := db.GetPost(h.db, input.PostID)
	if err != nil {
		return nil, PostOutput{}, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, PostOutput{}, fmt.Errorf("post not found")
	}
	if post.Status != models.PostStatusDraft && post.Status != models.PostStatusScheduled {
		return nil, PostOutput{}, fmt.Errorf("post already dispatched (status %s)", post.Status)
	}

	if _, err := h.publisher.Publish(ctx, post); err != nil {
		return nil, PostOutput{}, fmt.Errorf("failed to publish post: %w", err)
	}

	return h.reload(post.ID)
}

type ListPostsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: draft, scheduled, published, partial, failed"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type ListPostsOutput struct {
	Posts []PostOutput `json:"posts"`
}

func (h *PostHandlers) ListPosts(_ context.Context, request *mcp.CallToolRequest, input ListPostsInput) (*mcp.CallToolResult, ListPostsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	posts, err := db.ListPosts(h.db, input.Status, limit)
	if err != nil {
		return nil, ListPostsOutput{}, fmt.Errorf("failed to list posts: %w", err)
	}

	result := make([]PostOutput, 0, len(posts))
	for i := range posts {
		_, out, err := h.output(&posts[i])
		if err != nil {
			return nil, ListPostsOutput{}, err
		}
		result = append(result, out)
	}

	return nil, ListPostsOutput{Posts: result}, nil
}

// reload reads the post back after a dispatch stamped its status and time.
func (h *PostHandlers) reload(id string) (*mcp.CallToolResult, PostOutput, error) {
	post, err := db.GetPost(h.db, id)
	if err != nil {
		return nil, PostOutput{}, fmt.Errorf("failed to reload post: %w", err)
	}
	if post == nil {
		return nil, PostOutput{}, fmt.Errorf("post not found")
	}
	return h.output(post)
}

// output attaches delivery results so callers see what the publisher stored.
func (h *PostHandlers) output(post *models.Post) (*mcp.CallToolResult, PostOutput, error) {
	results, err := db.ListPostResults(h.db, post.ID)
	if err != nil {
		return nil, PostOutput{}, fmt.Errorf("failed to load post results: %w", err)
	}
	return nil, postToOutput(post, results), nil
}

func postToOutput(post *models.Post, results []models.PostResult) PostOutput {
	output := PostOutput{
		ID:        post.ID,
		Text:      post.Content.Text,
		Platforms: post.Platforms,
		Source:    post.Source,
		RuleName:  post.RuleName,
		Status:    post.Status,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
	}

	if post.ScheduledAt != nil {
		s := post.ScheduledAt.Format(time.RFC3339)
		output.ScheduledAt = &s
	}
	if post.PublishedAt != nil {
		s := post.PublishedAt.Format(time.RFC3339)
		output.PublishedAt = &s
	}

	for _, r := range results {
		output.Results = append(output.Results, PlatformResultOutput{
			Platform:       r.Platform,
			Success:        r.Success,
			RemoteID:       r.RemoteID,
			URL:            r.URL,
			Error:          r.Error,
			ErrorKind:      r.ErrorKind,
			Attempts:       r.Attempts,
			FallbackLogged: r.FallbackLogged,
		})
	}

	return output
}
