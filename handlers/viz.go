// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the generate_graph tool for automation rules and post fan-out
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	db       *sql.DB
	settings charm.Store
}

func NewVizHandlers(database *sql.DB, settings charm.Store) *VizHandlers {
	return &VizHandlers{db: database, settings: settings}
}

type GenerateGraphInput struct {
	Type   string `json:"type" jsonschema:"Graph type: rules or post"`
	PostID string `json:"post_id,omitempty" jsonschema:"Post ID (required for post graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	generator := viz.NewGraphGenerator(h.db)
	var dot string
	var err error

	switch input.Type {
	case "rules":
		rules, lerr := automation.LoadRules(h.settings)
		if lerr != nil {
			return nil, GenerateGraphOutput{}, fmt.Errorf("failed to load rules: %w", lerr)
		}
		dot, err = generator.GenerateRuleGraph(ctx, automation.SortedRules(rules))

	case "post":
		if input.PostID == "" {
			return nil, GenerateGraphOutput{}, fmt.Errorf("post_id required for post graph")
		}
		dot, err = generator.GeneratePostGraph(ctx, input.PostID)

	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: rules, post)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}
