package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/types"
)

func (c *CLI) manifestCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect a node-definition manifest",
	}
	cmd.PersistentFlags().StringVarP(&path, "manifest", "m", "", "node definition manifest (default from config)")

	cmd.AddCommand(c.manifestInfoCommand(&path))
	cmd.AddCommand(c.manifestSelectCommand(&path))
	cmd.AddCommand(c.manifestDumpCommand(&path))
	return cmd
}

func (c *CLI) manifestInfoCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the schema version, digest and policy counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadManifest(*path)
			if err != nil {
				return err
			}
			var fallback, ktx, omitted, half, defs int
			for _, node := range m.Nodes() {
				for _, d := range m.Variants(node) {
					defs++
					p := d.Policy
					fallback += b2i(p.Fallback)
					ktx += b2i(p.RequiresKTX)
					omitted += b2i(p.OmittedInDefs)
					half += b2i(p.HalfType)
				}
			}
			printKeyValue("Schema", m.Version())
			printKeyValue("Digest", m.Digest())
			printKeyValue("Nodes", fmt.Sprint(len(m.Nodes())))
			printKeyValue("Definitions", fmt.Sprint(defs))
			printKeyValue("Fallback", fmt.Sprint(fallback))
			printKeyValue("KTX only", fmt.Sprint(ktx))
			printKeyValue("Omitted", fmt.Sprint(omitted))
			printKeyValue("Half", fmt.Sprint(half))
			return nil
		},
	}
}

func (c *CLI) manifestSelectCommand(path *string) *cobra.Command {
	var in, out, signature string

	cmd := &cobra.Command{
		Use:   "select <node>",
		Short: "Show which definition a node resolves to",
		Long: `Select runs the same definition selection export uses and lists every
variant of the node, marking the winner.

Examples:
  shaderport manifest select convert --input color4 --output color3
  shaderport manifest select image --output float`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadManifest(*path)
			if err != nil {
				return err
			}
			q := manifest.Query{
				Input:     types.Normalize(in),
				Output:    types.Normalize(out),
				Signature: signature,
			}
			node := args[0]
			name, ok := m.Select(node, q)
			if !ok {
				printWarning("no definition for %s; export would emit %s", node, manifest.GuessName(node, q))
				return errors.New(errors.ErrCodeNotFound, "node %s not in manifest", node)
			}
			printSuccess("%s", name)

			t := newTable("", "Definition", "Signature", "Policy")
			for _, d := range m.Variants(node) {
				mark := ""
				if d.Name == name {
					mark = iconArrow
				}
				t.Row(mark, d.Name, d.Signature, policyString(d.Policy))
			}
			fmt.Println(t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "input", "", "type of the single input")
	cmd.Flags().StringVar(&out, "output", "", "output type")
	cmd.Flags().StringVar(&signature, "signature", "", "exact in[...]|out[...] signature")
	return cmd
}

func (c *CLI) manifestDumpCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the manifest with rebuilt indices as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadManifest(*path)
			if err != nil {
				return err
			}
			return m.WriteJSON(os.Stdout)
		},
	}
}

func policyString(p manifest.Policy) string {
	var parts []string
	if p.Fallback {
		parts = append(parts, "fallback")
	}
	if p.RequiresKTX {
		parts = append(parts, "ktx")
	}
	if p.OmittedInDefs {
		parts = append(parts, "omitted")
	}
	if p.HalfType {
		parts = append(parts, "half")
	}
	return strings.Join(parts, ",")
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
