// ABOUTME: Automation MCP tool handlers
// ABOUTME: Implements run_automation, list_automation_rules and toggle_automation_rule
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AutomationHandlers struct {
	engine   *automation.Engine
	settings charm.Store
}

func NewAutomationHandlers(engine *automation.Engine, settings charm.Store) *AutomationHandlers {
	return &AutomationHandlers{engine: engine, settings: settings}
}

type RunAutomationInput struct {
	DryRun bool `json:"dry_run,omitempty" jsonschema:"Preview matches without creating or publishing posts"`
}

func (h *AutomationHandlers) RunAutomation(ctx context.Context, request *mcp.CallToolRequest, input RunAutomationInput) (*mcp.CallToolResult, automation.Report, error) {
	run := h.engine.Run
	if input.DryRun {
		run = h.engine.Preview
	}

	report, err := run(ctx)
	if err != nil {
		return nil, automation.Report{}, fmt.Errorf("automation run failed: %w", err)
	}
	return nil, *report, nil
}

type RuleOutput struct {
	Name         string   `json:"name"`
	Enabled      bool     `json:"enabled"`
	Platforms    []string `json:"platforms"`
	DelayDays    int      `json:"delay_days,omitempty"`
	IntervalDays int      `json:"interval_days,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	TemplateSet  string   `json:"template_set"`
	BrandVoice   string   `json:"brand_voice,omitempty"`
	LastRunAt    *string  `json:"last_run_at,omitempty"`
}

type ListAutomationRulesInput struct{}

type ListAutomationRulesOutput struct {
	Rules []RuleOutput `json:"rules"`
}

func (h *AutomationHandlers) ListAutomationRules(_ context.Context, request *mcp.CallToolRequest, input ListAutomationRulesInput) (*mcp.CallToolResult, ListAutomationRulesOutput, error) {
	rules, err := automation.LoadRules(h.settings)
	if err != nil {
		return nil, ListAutomationRulesOutput{}, fmt.Errorf("failed to load rules: %w", err)
	}

	var out ListAutomationRulesOutput
	for _, rule := range automation.SortedRules(rules) {
		out.Rules = append(out.Rules, ruleToOutput(rule))
	}
	return nil, out, nil
}

type ToggleAutomationRuleInput struct {
	Name    string `json:"name" jsonschema:"Rule name: welcome, follow_up, birthday, anniversary, networking_digest or client_success"`
	Enabled bool   `json:"enabled" jsonschema:"Whether the rule should run"`
}

func (h *AutomationHandlers) ToggleAutomationRule(_ context.Context, request *mcp.CallToolRequest, input ToggleAutomationRuleInput) (*mcp.CallToolResult, RuleOutput, error) {
	if input.Name == "" {
		return nil, RuleOutput{}, fmt.Errorf("name is required")
	}

	rule, err := automation.SetEnabled(h.settings, input.Name, input.Enabled)
	if err != nil {
		return nil, RuleOutput{}, err
	}
	return nil, ruleToOutput(rule), nil
}

func ruleToOutput(rule models.AutomationRule) RuleOutput {
	out := RuleOutput{
		Name:         rule.Name,
		Enabled:      rule.Enabled,
		Platforms:    rule.Platforms,
		DelayDays:    rule.DelayDays,
		IntervalDays: rule.IntervalDays,
		Categories:   rule.Categories,
		TemplateSet:  rule.TemplateSet,
		BrandVoice:   rule.BrandVoice,
	}
	if rule.LastRunAt != nil {
		s := rule.LastRunAt.Format(time.RFC3339)
		out.LastRunAt = &s
	}
	return out
}
