// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the text dashboard and graphviz DOT output for rules and post fan-out
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/viz"
)

// VizDashboardCommand prints the text dashboard.
func VizDashboardCommand(app *App, args []string) error {
	rules, err := automation.LoadRules(app.Settings)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	stats, err := viz.GenerateDashboardStats(app.DB, automation.SortedRules(rules), time.Now())
	if err != nil {
		return err
	}

	fmt.Print(viz.RenderDashboard(stats))
	return nil
}

// VizGraphRulesCommand generates a graph of automation rules and the
// platforms they post to.
func VizGraphRulesCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz graph rules", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rules, err := automation.LoadRules(app.Settings)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	generator := viz.NewGraphGenerator(app.DB)
	dot, err := generator.GenerateRuleGraph(context.Background(), automation.SortedRules(rules))
	if err != nil {
		return err
	}

	return writeDOT(*output, dot)
}

// VizGraphPostCommand generates the fan-out graph of one post.
func VizGraphPostCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz graph post", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("post ID required")
	}

	generator := viz.NewGraphGenerator(app.DB)
	dot, err := generator.GeneratePostGraph(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	return writeDOT(*output, dot)
}

func writeDOT(output, dot string) error {
	if output != "" {
		return os.WriteFile(output, []byte(dot), 0644)
	}
	fmt.Println(dot)
	return nil
}
