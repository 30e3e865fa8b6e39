package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/target"
)

type graphOpts struct {
	material string
	detailed bool
	output   string
}

func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw lowered material graphs",
	}
	cmd.PersistentFlags().StringVar(&opts.material, "material", "", "only this material")
	cmd.PersistentFlags().BoolVar(&opts.detailed, "detailed", false, "show literal inputs on nodes")

	dot := &cobra.Command{
		Use:   "dot <lowered.json>",
		Short: "Print Graphviz DOT for each lowered graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := selectMaterials(args[0], opts.material)
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Fprint(cmd.OutOrStdout(), target.ToDOT(m.Graph, target.DOTOptions{Title: m.Name, Detailed: opts.detailed}))
			}
			return nil
		},
	}

	svg := &cobra.Command{
		Use:   "svg <lowered.json>",
		Short: "Render each lowered graph to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := selectMaterials(args[0], opts.material)
			if err != nil {
				return err
			}
			dir := opts.output
			if dir == "" {
				dir = "."
			}
			return writeSVGs(cmd.Context(), dir, ms, opts.detailed)
		},
	}
	svg.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default current)")

	cmd.AddCommand(dot, svg)
	return cmd
}

// selectMaterials reads a lowered materials file and keeps the one called
// name, or all of them when name is empty.
func selectMaterials(path, name string) ([]*target.Material, error) {
	ms, err := readMaterials(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return ms, nil
	}
	for _, m := range ms {
		if m.Name == name {
			return []*target.Material{m}, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "material %q not in %s", name, path)
}

// writeSVGs renders every non-empty graph of ms into dir, one file per
// material.
func writeSVGs(ctx context.Context, dir string, ms []*target.Material, detailed bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, m := range ms {
		if m.Graph.Len() == 0 {
			printDetail("%s has no graph nodes", m.Name)
			continue
		}
		data, err := target.RenderSVG(ctx, target.ToDOT(m.Graph, target.DOTOptions{Title: m.Name, Detailed: detailed}))
		if err != nil {
			return fmt.Errorf("render %s: %w", m.Name, err)
		}
		path := filepath.Join(dir, target.SanitizeName(m.Name)+".svg")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
