// ABOUTME: Entry point for the amplify CLI, daemon, TUI and MCP server
// ABOUTME: Routes to subcommands based on arguments
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/cli"
	"github.com/harperreed/amplify/config"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
)

const version = "0.2.0"

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/amplify/amplify.db)")
	verbose := flag.Bool("verbose", false, "Log debug output")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("amplify version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *verbose {
		cfg.Verbose = true
	}

	args := flag.Args()

	var logOut io.Writer = os.Stderr
	if len(args) > 0 && args[0] == "tui" && !cfg.Verbose {
		// Log lines would tear the full-screen UI
		logOut = io.Discard
	}
	logging.Init(cfg.Verbose, logOut)

	if *initOnly {
		database := openDatabase(cfg)
		_ = database.Close()
		logging.Info("database initialized", "path", cfg.DBPath)
		os.Exit(0)
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		app, closeApp := openApp(cfg)
		defer closeApp()
		exitOnError(cli.MCPCommand(app, version))

	case "crm":
		database := openDatabase(cfg)
		defer func() { _ = database.Close() }()
		runCRM(database, commandArgs)

	case "post":
		app, closeApp := openApp(cfg)
		defer closeApp()
		runPost(app, commandArgs)

	case "automation":
		app, closeApp := openApp(cfg)
		defer closeApp()
		runAutomation(app, commandArgs)

	case "responder":
		app, closeApp := openApp(cfg)
		defer closeApp()
		runResponder(app, commandArgs)

	case "credentials":
		database := openDatabase(cfg)
		defer func() { _ = database.Close() }()
		runCredentials(database, commandArgs)

	case "insights":
		runInsights(commandArgs)

	case "sync":
		database := openDatabase(cfg)
		defer func() { _ = database.Close() }()
		runSync(database, commandArgs)

	case "settings":
		if len(commandArgs) == 0 || commandArgs[0] != "sync" {
			usageError("settings requires the 'sync' subcommand")
		}
		exitOnError(charm.SettingsSyncCommand(commandArgs[1:]))

	case "daemon":
		app, closeApp := openApp(cfg)
		defer closeApp()
		exitOnError(cli.DaemonCommand(app, commandArgs))

	case "web":
		app, closeApp := openApp(cfg)
		defer closeApp()
		exitOnError(cli.WebCommand(app, commandArgs))

	case "tui":
		app, closeApp := openApp(cfg)
		defer closeApp()
		exitOnError(cli.TUICommand(app))

	case "viz":
		app, closeApp := openApp(cfg)
		defer closeApp()
		runViz(app, commandArgs)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) *sql.DB {
	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		logging.Error("failed to open database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	logging.Debug("database opened", "path", cfg.DBPath)
	return database
}

func openApp(cfg *config.Config) (*cli.App, func()) {
	database := openDatabase(cfg)
	app, err := cli.NewApp(context.Background(), database, cfg, nil)
	if err != nil {
		_ = database.Close()
		logging.Error("failed to start", "err", err)
		os.Exit(1)
	}
	return app, func() { _ = database.Close() }
}

// exitOnError prints err and exits. Deferred closes are skipped, which is
// fine for SQLite.
func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usageError(msg string) {
	fmt.Printf("Error: %s\n\n", msg)
	printUsage()
	os.Exit(1)
}

func subcommand(group string, args []string) (string, []string) {
	if len(args) == 0 {
		usageError(group + " requires a subcommand")
	}
	return args[0], args[1:]
}

func runCRM(database *sql.DB, args []string) {
	sub, rest := subcommand("crm", args)

	var err error
	switch sub {
	case "add-contact":
		err = cli.AddContactCommand(database, rest)
	case "list-contacts":
		err = cli.ListContactsCommand(database, rest)
	case "update-contact":
		err = cli.UpdateContactCommand(database, rest)
	case "delete-contact":
		err = cli.DeleteContactCommand(database, rest)
	case "log-interaction":
		err = cli.LogInteractionCommand(database, rest)
	case "interactions":
		err = cli.ListInteractionsCommand(database, rest)
	case "followups":
		err = cli.FollowupListCommand(database, rest)
	case "followup-stats":
		err = cli.FollowupStatsCommand(database, rest)
	case "set-cadence":
		err = cli.SetCadenceCommand(database, rest)
	default:
		usageError("unknown crm command: " + sub)
	}
	exitOnError(err)
}

func runPost(app *cli.App, args []string) {
	sub, rest := subcommand("post", args)

	var err error
	switch sub {
	case "compose":
		err = cli.PostComposeCommand(app, rest)
	case "publish":
		err = cli.PostPublishCommand(app, rest)
	case "list":
		err = cli.PostListCommand(app, rest)
	case "fallbacks":
		err = cli.PostFallbacksCommand(app, rest)
	default:
		usageError("unknown post command: " + sub)
	}
	exitOnError(err)
}

func runAutomation(app *cli.App, args []string) {
	sub, rest := subcommand("automation", args)

	var err error
	switch sub {
	case "list":
		err = cli.AutomationListCommand(app, rest)
	case "enable":
		err = cli.AutomationToggleCommand(app, rest, true)
	case "disable":
		err = cli.AutomationToggleCommand(app, rest, false)
	case "set":
		err = cli.AutomationSetCommand(app, rest)
	case "run":
		err = cli.AutomationRunCommand(app, rest)
	default:
		usageError("unknown automation command: " + sub)
	}
	exitOnError(err)
}

func runResponder(app *cli.App, args []string) {
	sub, rest := subcommand("responder", args)

	var err error
	switch sub {
	case "keywords":
		err = cli.ResponderKeywordsCommand(app, rest)
	case "config":
		err = cli.ResponderConfigCommand(app, rest)
	case "tick":
		err = cli.ResponderTickCommand(app, rest)
	case "pending":
		err = cli.ResponderPendingCommand(app, rest)
	case "approve":
		err = cli.ResponderApproveCommand(app, rest)
	case "reject":
		err = cli.ResponderRejectCommand(app, rest)
	default:
		usageError("unknown responder command: " + sub)
	}
	exitOnError(err)
}

func runCredentials(database *sql.DB, args []string) {
	sub, rest := subcommand("credentials", args)

	var err error
	switch sub {
	case "set":
		err = cli.CredentialsSetCommand(database, rest)
	case "list":
		err = cli.CredentialsListCommand(database, rest)
	case "remove":
		err = cli.CredentialsRemoveCommand(database, rest)
	default:
		usageError("unknown credentials command: " + sub)
	}
	exitOnError(err)
}

func runInsights(args []string) {
	sub, rest := subcommand("insights", args)

	var err error
	switch sub {
	case "youtube":
		err = cli.InsightsYouTubeCommand(rest)
	case "search":
		err = cli.InsightsSearchCommand(rest)
	case "analytics":
		err = cli.InsightsAnalyticsCommand(rest)
	default:
		usageError("unknown insights command: " + sub)
	}
	exitOnError(err)
}

func runSync(database *sql.DB, args []string) {
	sub, rest := subcommand("sync", args)

	var err error
	switch sub {
	case "init":
		err = cli.SyncInitCommand(database, rest)
	case "contacts":
		err = cli.SyncContactsCommand(database, rest)
	case "calendar":
		err = cli.SyncCalendarCommand(database, rest)
	case "status":
		err = cli.SyncStatusCommand(database, rest)
	default:
		usageError("unknown sync command: " + sub)
	}
	exitOnError(err)
}

func runViz(app *cli.App, args []string) {
	sub, rest := subcommand("viz", args)

	var err error
	switch sub {
	case "dashboard":
		err = cli.VizDashboardCommand(app, rest)
	case "graph":
		if len(rest) == 0 {
			usageError("viz graph requires a type (rules or post)")
		}
		switch rest[0] {
		case "rules":
			err = cli.VizGraphRulesCommand(app, rest[1:])
		case "post":
			err = cli.VizGraphPostCommand(app, rest[1:])
		default:
			usageError("unknown graph type: " + rest[0])
		}
	default:
		usageError("unknown viz command: " + sub)
	}
	exitOnError(err)
}

func printUsage() {
	fmt.Printf(`amplify v%s - Social publishing, CRM automation and auto-responder

USAGE:
  amplify [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/amplify/amplify.db)
  --verbose              Log debug output
  --init                 Initialize database and exit

COMMANDS:
  post                   Compose, schedule and publish posts
  crm                    Contacts, interactions and follow-ups
  automation             CRM automation rules
  responder              Keyword auto-responder
  credentials            Platform access tokens
  insights               YouTube, Search Console and Analytics reports
  sync                   Google contacts and calendar import
  settings sync          Sync settings through Charm
  daemon                 Run the responder, scheduler and automation in the background
  tui                    Interactive terminal UI
  web                    Web dashboard (--addr, default localhost:8080)
  viz                    Dashboard and graphs
  mcp                    Start MCP server for Claude Desktop

POST COMMANDS:
  amplify post compose      Save, schedule or publish a post
    --text <text>             Post body (required)
    --platforms <list>        twitter,linkedin,facebook,instagram (default: all)
    --hashtags <list>         Comma-separated hashtags
    --cta <text>              Call to action
    --scripture <ref>         Scripture reference to append
    --media <list>            Comma-separated media URLs
    --voice <voice>           Brand voice for AI rewriting
    --ai                      Rewrite the text in the brand voice
    --at <RFC3339>            Schedule for later
    --now                     Publish immediately
    --preview                 Show per-platform text without saving

  amplify post publish <id>   Publish a draft or scheduled post now
  amplify post list           List posts and their per-platform results
    --status <status>         Filter by status
  amplify post fallbacks      Show content to post by hand
    --full                    Print the whole content

CRM COMMANDS:
  amplify crm add-contact     Add a new contact
    --name <name>             Contact name (required)
    --email <email>           Email address
    --company <company>       Company name
    --category <category>     personal, professional, client or vendor
    --birthday <YYYY-MM-DD>   Birthday
    --anniversary <date>      Work anniversary

  amplify crm list-contacts   List contacts
    --query <text>            Search by name or email
    --company <company>       Filter by company
    --category <category>     Filter by category

  amplify crm update-contact [flags] <id>  Update an existing contact
    Note: flags must come before the contact ID
  amplify crm delete-contact <id>          Delete a contact
  amplify crm log-interaction [flags] <id> Log a meeting, call, email or message
    --type <type>             meeting, call, email, message or other
    --notes <text>            Notes
    --sentiment <s>           positive, neutral or negative
  amplify crm interactions <id>            Interaction history
  amplify crm followups                    Contacts due for follow-up
    --overdue-only            Only overdue contacts
  amplify crm followup-stats               Follow-up summary
  amplify crm set-cadence [flags] <id>     Set follow-up cadence
    --days <n>                Days between contacts
    --strength <s>            weak, medium or strong

  Contact IDs may be shortened to any unique prefix of 4+ characters.

AUTOMATION COMMANDS:
  amplify automation list                 Show rules
  amplify automation enable <rule>        Enable a rule
  amplify automation disable <rule>       Disable a rule
  amplify automation set [flags] <rule>   Configure a rule
    --platforms <list>        Target platforms
    --delay-days <n>          Delay for welcome and follow_up
    --interval-days <n>       Interval for networking_digest
    --categories <list>       Contact categories the rule applies to
    --voice <voice>           Brand voice
  amplify automation run                  Evaluate enabled rules now
    --dry-run                 Preview without posting

RESPONDER COMMANDS:
  amplify responder keywords [list|add|remove] <keyword>
    --category <c>            question, support, sales, praise or general
  amplify responder config                Show or change settings
    --enabled, --max-per-hour <n>, --voice <v>, --scripture, --approval, --platforms <list>
  amplify responder tick                  Poll mentions once
  amplify responder pending               Replies awaiting approval
  amplify responder approve [--yes] <id>  Send a queued reply
  amplify responder reject <id>           Discard a queued reply

CREDENTIALS COMMANDS:
  amplify credentials set <platform>      Store a token (prompted when --token is omitted)
    --token <token>, --account <id>
  amplify credentials list                Show connected platforms
  amplify credentials remove <platform>   Disconnect a platform

INSIGHTS COMMANDS:
  amplify insights youtube <channel-id>   Channel statistics
  amplify insights search                 Top Search Console queries
    --site <url>, --days <n>, --limit <n>
  amplify insights analytics              GA4 traffic
    --property <id>, --days <n>, --daily

SYNC COMMANDS:
  amplify sync init                       Authorize Google access
  amplify sync contacts                   Import Google contacts
  amplify sync calendar                   Import calendar meetings as interactions
    --initial                 Import the full history
  amplify sync status                     Last sync per service

DAEMON:
  amplify daemon
    --metrics-addr <addr>     Serve Prometheus metrics (e.g. :9090)
    --sync-interval <dur>     Also import Google data (minimum 5m)
    --web-addr <addr>         Also serve the web UI

VIZ COMMANDS:
  amplify viz dashboard                   Terminal dashboard
  amplify viz graph rules                 Automation rules as GraphViz DOT
    --output <file>           Output file (default: stdout)
  amplify viz graph post <id>             One post's fan-out as GraphViz DOT
    --output <file>           Output file (default: stdout)

EXAMPLES:
  # Publish everywhere now
  amplify post compose --text "We're hiring!" --hashtags hiring,jobs --now

  # Schedule a LinkedIn post
  amplify post compose --text "Webinar tomorrow" --platforms linkedin --at 2026-11-02T15:00:00Z

  # Welcome new clients automatically
  amplify automation enable welcome

  # Run everything in the background
  amplify daemon --metrics-addr :9090

`, version)
}
