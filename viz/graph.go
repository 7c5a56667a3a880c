// ABOUTME: Graphviz diagrams for automation rules and post delivery
// ABOUTME: Renders rule-to-platform wiring and per-post fan-out outcomes as DOT
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// render builds a left-to-right graph with build and returns its DOT source.
func render(ctx context.Context, label string, build func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetRankDir(cgraph.LRRank)
	graph.SetLabel(label)

	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func platformNode(graph *cgraph.Graph, nodes map[string]*cgraph.Node, name string) (*cgraph.Node, error) {
	if node, ok := nodes[name]; ok {
		return node, nil
	}
	node, err := graph.CreateNodeByName("platform_" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform node: %w", err)
	}
	node.SetLabel(name)
	node.SetShape("ellipse")
	nodes[name] = node
	return node, nil
}

// GenerateRuleGraph draws each automation rule with edges to the platforms it
// posts to. Disabled rules are grey with dashed edges; node labels carry the
// number of fires over the last week.
func (g *GraphGenerator) GenerateRuleGraph(ctx context.Context, rules []models.AutomationRule) (string, error) {
	fires, err := db.CountAutomationFires(g.db, time.Now().Add(-recentWindow))
	if err != nil {
		return "", fmt.Errorf("failed to count automation fires: %w", err)
	}

	return render(ctx, "Automation Rules", func(graph *cgraph.Graph) error {
		platforms := make(map[string]*cgraph.Node)
		for _, rule := range rules {
			node, err := graph.CreateNodeByName("rule_" + rule.Name)
			if err != nil {
				return fmt.Errorf("failed to create rule node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%d this week", rule.Name, fires[rule.Name]))
			node.SetShape("box")
			node.SetStyle("filled")
			if rule.Enabled {
				node.SetFillColor("palegreen")
			} else {
				node.SetFillColor("lightgrey")
			}

			for _, p := range rule.Platforms {
				target, err := platformNode(graph, platforms, p)
				if err != nil {
					return err
				}
				edge, err := graph.CreateEdgeByName("", node, target)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				if !rule.Enabled {
					edge.SetStyle("dashed")
				}
			}
		}
		return nil
	})
}

// GeneratePostGraph draws one post's fan-out: an edge per platform coloured by
// outcome, plus an edge into the fallback log for failed deliveries.
func (g *GraphGenerator) GeneratePostGraph(ctx context.Context, postID string) (string, error) {
	post, err := db.GetPost(g.db, postID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch post: %w", err)
	}
	if post == nil {
		return "", fmt.Errorf("post not found: %s", postID)
	}

	results, err := db.ListPostResults(g.db, postID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch post results: %w", err)
	}

	return render(ctx, "Post "+post.ID, func(graph *cgraph.Graph) error {
		root, err := graph.CreateNodeByName("post_" + post.ID)
		if err != nil {
			return fmt.Errorf("failed to create post node: %w", err)
		}
		root.SetLabel(fmt.Sprintf("%s\n(%s)", truncateLabel(post.Content.Text, 32), post.Status))
		root.SetShape("box")
		root.SetStyle("filled")
		root.SetFillColor("lightblue")

		platforms := make(map[string]*cgraph.Node)
		var fallback *cgraph.Node
		for _, result := range results {
			target, err := platformNode(graph, platforms, result.Platform)
			if err != nil {
				return err
			}
			edge, err := graph.CreateEdgeByName("", root, target)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel(fmt.Sprintf("%d attempt(s)", result.Attempts))
			if result.Success {
				edge.SetColor("darkgreen")
				continue
			}
			edge.SetColor("red")

			if result.FallbackLogged {
				if fallback == nil {
					fallback, err = graph.CreateNodeByName("fallback_log")
					if err != nil {
						return fmt.Errorf("failed to create fallback node: %w", err)
					}
					fallback.SetLabel("fallback log")
					fallback.SetShape("note")
				}
				fe, err := graph.CreateEdgeByName("", target, fallback)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				fe.SetLabel(result.ErrorKind)
				fe.SetStyle("dashed")
			}
		}
		return nil
	})
}

func truncateLabel(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
