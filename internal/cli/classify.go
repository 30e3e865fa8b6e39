package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shaderport/pkg/classify"
	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/manifest"
)

type classifyOpts struct {
	manifest    string
	strict      bool
	allNodes    bool
	interactive bool
	json        bool
}

func (c *CLI) classifyCommand() *cobra.Command {
	var opts classifyOpts

	cmd := &cobra.Command{
		Use:   "classify <materials.json>...",
		Short: "Check materials for nodes the target cannot express",
		Long: `Classify walks the nodes each material actually uses and sorts them into
supported, identity, partial, bake-required, unsupported and unrecognized.
Any error means export would abort.

With --manifest, authored target groups are also checked against the
manifest. --interactive opens a browser over the per-material verdicts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				opts.strict = c.Config.Strict
			}
			return c.runClassify(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "check authored groups against this manifest")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "promote warnings to errors")
	cmd.Flags().BoolVar(&opts.allNodes, "all-nodes", false, "classify every node, not only the reachable ones")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the verdicts interactively")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the issues as JSON")

	return cmd
}

func (c *CLI) runClassify(ctx context.Context, inputs []string, opts classifyOpts) error {
	materials, err := readInputs(inputs)
	if err != nil {
		return err
	}
	var m *manifest.Manifest
	if opts.manifest != "" || c.Config.Manifest != "" {
		if m, err = c.loadManifest(opts.manifest); err != nil {
			return err
		}
	}

	summary := classify.Materials(materials, classify.Options{
		Strict:   opts.strict,
		AllNodes: opts.allNodes,
		Manifest: m,
	})
	loggerFromContext(ctx).Debug("classified", "materials", len(materials),
		"errors", len(summary.Errors), "warnings", len(summary.Warnings))

	switch {
	case opts.interactive:
		if _, err := tea.NewProgram(newVerdictModel(summary), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("interactive view: %w", err)
		}
	case opts.json:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(issuesDoc{Errors: summary.Errors, Warnings: summary.Warnings}); err != nil {
			return err
		}
	default:
		printSummary(summary)
	}

	if !summary.OK() {
		return errors.New(errors.ErrCodeClassification, "%d classification error(s)", len(summary.Errors))
	}
	return nil
}

type issuesDoc struct {
	Errors   []classify.Issue `json:"errors"`
	Warnings []classify.Issue `json:"warnings"`
}

func printSummary(s classify.Summary) {
	for _, r := range s.Results {
		switch {
		case !r.OK():
			printError("%s: %d errors, %d warnings", r.Material, len(r.Errors), len(r.Warnings))
		case len(r.Warnings) > 0:
			printWarning("%s: %d warnings", r.Material, len(r.Warnings))
		default:
			printSuccess("%s", r.Material)
		}
		printDetail("%s", bucketCounts(r))
	}
	if len(s.Errors)+len(s.Warnings) > 0 {
		fmt.Println(issueTable(s.Errors, s.Warnings))
	}
}

// bucketCounts formats how many reachable nodes fell in each bucket.
func bucketCounts(r classify.Result) string {
	counts := map[classify.Bucket]int{}
	for _, v := range r.Nodes {
		counts[v.Bucket]++
	}
	out := ""
	for b := classify.UI; b <= classify.Unrecognized; b++ {
		if n := counts[b]; n > 0 {
			if out != "" {
				out += " · "
			}
			out += fmt.Sprintf("%d %s", n, b)
		}
	}
	if out == "" {
		return "no nodes"
	}
	return out
}
