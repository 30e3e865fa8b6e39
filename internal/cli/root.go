package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/shaderport/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The persistent --config flag is read before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Shaderport translates host material node graphs into target shading graphs",
		Long: `Shaderport reads the material node graphs exported from a DCC host, checks
them against a node-definition manifest and lowers every material into a
typed target shading graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(c.configPath); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+configFileName+")")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.manifestCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
