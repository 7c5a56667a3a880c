// ABOUTME: MCP server subcommand
// ABOUTME: Registers amplify tools, resources and prompts and serves them on stdio
package cli

import (
	"context"

	"github.com/harperreed/amplify/handlers"
	"github.com/harperreed/amplify/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds the server with every tool, resource and prompt.
func NewMCPServer(app *App, version string) (*mcp.Server, error) {
	resp, err := app.Responder()
	if err != nil {
		return nil, err
	}

	contactHandlers := handlers.NewContactHandlers(app.DB)
	postHandlers := handlers.NewPostHandlers(app.DB, app.Publisher)
	automationHandlers := handlers.NewAutomationHandlers(app.Engine(), app.Settings)
	responseHandlers := handlers.NewResponseHandlers(resp)
	vizHandlers := handlers.NewVizHandlers(app.DB, app.Settings)
	resourceHandlers := handlers.NewResourceHandlers(app.DB, app.Settings)
	promptHandlers := handlers.NewPromptHandlers(app.DB)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "amplify",
		Version: version,
	}, nil)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact with optional birthday and work anniversary",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name, email, company or category",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact and their interaction history",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Log an interaction with a contact and update last contacted timestamp",
	}, contactHandlers.LogInteraction)

	// Posts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compose_post",
		Description: "Save a post as a draft, schedule it, or publish it to every target platform now",
	}, postHandlers.ComposePost)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish_post",
		Description: "Publish a draft or scheduled post now; failed platforms are retried once and then logged for manual posting",
	}, postHandlers.PublishPost)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_posts",
		Description: "List recent posts with per-platform delivery results",
	}, postHandlers.ListPosts)

	// Automation
	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_automation",
		Description: "Evaluate the enabled automation rules once; dry_run previews without posting",
	}, automationHandlers.RunAutomation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_automation_rules",
		Description: "List automation rules and their configuration",
	}, automationHandlers.ListAutomationRules)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_automation_rule",
		Description: "Enable or disable an automation rule",
	}, automationHandlers.ToggleAutomationRule)

	// Auto-responder
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_pending_responses",
		Description: "List auto-responses waiting for approval",
	}, responseHandlers.ListPendingResponses)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "approve_response",
		Description: "Send a pending auto-response",
	}, responseHandlers.ApproveResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reject_response",
		Description: "Discard a pending auto-response",
	}, responseHandlers.RejectResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of automation rules or of one post's fan-out",
	}, vizHandlers.GenerateGraph)

	for _, r := range handlers.StaticResources {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "amplify://contacts/{id}",
		Name:        "contact",
		Description: "One contact with recent interactions",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "amplify://posts/{id}",
		Name:        "post",
		Description: "One post with its delivery results",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	for _, p := range handlers.Prompts {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server, nil
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, version string) error {
	logging.Info("starting MCP server", "version", version)

	server, err := NewMCPServer(app, version)
	if err != nil {
		return err
	}

	return server.Run(context.Background(), &mcp.StdioTransport{})
}
