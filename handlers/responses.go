// ABOUTME: Auto-responder MCP tool handlers
// ABOUTME: Implements list_pending_responses, approve_response and reject_response
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/responder"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResponseHandlers struct {
	responder *responder.Responder
}

func NewResponseHandlers(r *responder.Responder) *ResponseHandlers {
	return &ResponseHandlers{responder: r}
}

type ResponseOutput struct {
	ID        string  `json:"id"`
	MentionID string  `json:"mention_id"`
	Platform  string  `json:"platform"`
	Author    string  `json:"author,omitempty"`
	Keyword   string  `json:"keyword"`
	Category  string  `json:"category"`
	Text      string  `json:"text"`
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
	CreatedAt string  `json:"created_at"`
	DecidedAt *string `json:"decided_at,omitempty"`
}

type ListPendingResponsesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type ListPendingResponsesOutput struct {
	Responses []ResponseOutput `json:"responses"`
}

func (h *ResponseHandlers) ListPendingResponses(_ context.Context, request *mcp.CallToolRequest, input ListPendingResponsesInput) (*mcp.CallToolResult, ListPendingResponsesOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	pending, err := h.responder.Pending(limit)
	if err != nil {
		return nil, ListPendingResponsesOutput{}, fmt.Errorf("failed to list pending responses: %w", err)
	}

	out := ListPendingResponsesOutput{Responses: make([]ResponseOutput, 0, len(pending))}
	for i := range pending {
		out.Responses = append(out.Responses, responseToOutput(&pending[i]))
	}
	return nil, out, nil
}

type ResponseIDInput struct {
	ID string `json:"id" jsonschema:"Pending response ID (required)"`
}

func (h *ResponseHandlers) ApproveResponse(ctx context.Context, request *mcp.CallToolRequest, input ResponseIDInput) (*mcp.CallToolResult, ResponseOutput, error) {
	if input.ID == "" {
		return nil, ResponseOutput{}, fmt.Errorf("id is required")
	}

	resp, err := h.responder.Approve(ctx, input.ID)
	if err != nil {
		return nil, ResponseOutput{}, err
	}
	return nil, responseToOutput(resp), nil
}

func (h *ResponseHandlers) RejectResponse(_ context.Context, request *mcp.CallToolRequest, input ResponseIDInput) (*mcp.CallToolResult, ResponseOutput, error) {
	if input.ID == "" {
		return nil, ResponseOutput{}, fmt.Errorf("id is required")
	}

	resp, err := h.responder.Reject(input.ID)
	if err != nil {
		return nil, ResponseOutput{}, err
	}
	return nil, responseToOutput(resp), nil
}

func responseToOutput(r *models.Response) ResponseOutput {
	out := ResponseOutput{
		ID:        r.ID,
		MentionID: r.MentionID,
		Platform:  r.Platform,
		Author:    r.Author,
		Keyword:   r.Keyword,
		Category:  r.Category,
		Text:      r.Text,
		Status:    r.Status,
		Error:     r.Error,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		out.DecidedAt = &s
	}
	return out
}
