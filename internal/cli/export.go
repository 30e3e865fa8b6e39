package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/export"
	"github.com/matzehuels/shaderport/pkg/observability"
	"github.com/matzehuels/shaderport/pkg/resolve"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/target"
)

// exportOpts holds the flags of the export command.
type exportOpts struct {
	manifest    string
	output      string // lowered materials JSON, stdout if empty
	diagnostics string // diagnostics JSON path
	svgDir      string // one SVG per material
	textureRoot string // resolves blend-relative "//" texture paths
	strict      bool
	forceUnlit  bool
	refresh     bool
	noCache     bool
}

func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <materials.json>...",
		Short: "Lower host materials into target shading graphs",
		Long: `Export classifies every material, then extracts its surface and lowers it
into a target shading graph using the node definitions of the manifest.

Classification errors abort before anything is lowered. Unresolved inputs
fall back to the surface defaults with a warning, or abort in strict mode.

Examples:
  shaderport export -m manifest.json scene.json -o scene.target.json
  shaderport export scene.json --strict --diagnostics report.json
  shaderport export scene.json --svg graphs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				opts.strict = c.Config.Strict
			}
			if !cmd.Flags().Changed("force-unlit") {
				opts.forceUnlit = c.Config.ForceUnlit
			}
			return c.runExport(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "node definition manifest (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file for lowered materials (stdout if empty)")
	cmd.Flags().StringVar(&opts.diagnostics, "diagnostics", "", "write the diagnostics report as JSON")
	cmd.Flags().StringVar(&opts.svgDir, "svg", "", "render each lowered graph as SVG into this directory")
	cmd.Flags().StringVar(&opts.textureRoot, "texture-root", "", "directory that blend-relative texture paths resolve against")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings and unresolved inputs as errors")
	cmd.Flags().BoolVar(&opts.forceUnlit, "force-unlit", false, "export every shader as unlit")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached materials")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the material cache")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, inputs []string, opts exportOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	m, err := c.loadManifest(opts.manifest)
	if err != nil {
		return err
	}
	materials, err := readInputs(inputs)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, m, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %d materials...", len(materials)))
	spinner.Start()
	observability.SetExportHooks(spinnerHooks{spinner: spinner})
	defer observability.Reset()
	res, err := runner.Export(ctx, materials, export.Options{
		Strict:     opts.strict,
		ForceUnlit: opts.forceUnlit,
		Refresh:    opts.refresh,
		Assets:     textureResolver(opts.textureRoot),
	})
	spinner.Stop()

	if res != nil && opts.diagnostics != "" {
		if werr := res.Report.WriteFile(opts.diagnostics); werr != nil {
			logger.Error("cannot write diagnostics", "path", opts.diagnostics, "error", werr)
		}
	}
	if err != nil {
		if res != nil && len(res.Classification.Errors) > 0 {
			fmt.Fprintln(os.Stderr, issueTable(res.Classification.Errors, nil))
		}
		return err
	}

	for _, w := range res.Report.Warnings {
		logger.Warn(w)
	}
	if err := writeMaterials(opts.output, res.Materials); err != nil {
		return err
	}
	if opts.svgDir != "" {
		if err := writeSVGs(ctx, opts.svgDir, res.Materials, false); err != nil {
			return err
		}
	}

	prog.done(fmt.Sprintf("Exported %d materials", len(res.Materials)))
	if opts.output != "" {
		printSuccess("Exported %d materials", len(res.Materials))
		printStats(len(res.Materials), res.CacheHits, len(res.Report.Warnings))
		printFile(opts.output)
		if hasPolicyRecords(res.Report) {
			fmt.Println(reportTable(res.Report))
		}
		printNextStep("Draw a graph", appName+" graph svg "+opts.output)
	}
	return nil
}

// spinnerHooks names the material being lowered on the spinner line.
type spinnerHooks struct {
	observability.NoopExportHooks
	spinner *Spinner
}

func (h spinnerHooks) OnLowerStart(_ context.Context, material string) {
	h.spinner.SetMessage("Lowering " + material + "...")
}

// readInputs decodes and concatenates the materials of every input file.
func readInputs(paths []string) ([]*source.Material, error) {
	var out []*source.Material
	for _, p := range paths {
		ms, err := source.ImportMaterials(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ms...)
	}
	return out, nil
}

// writeMaterials writes the lowered materials as a JSON array to path, or
// to stdout when path is empty.
func writeMaterials(path string, ms []*target.Material) error {
	if path == "" {
		return encodeMaterials(os.Stdout, ms)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := encodeMaterials(f, ms); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func encodeMaterials(w io.Writer, ms []*target.Material) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ms); err != nil {
		return fmt.Errorf("encode materials: %w", err)
	}
	return nil
}

// readMaterials decodes a lowered materials file written by export.
func readMaterials(path string) ([]*target.Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, err
	}
	var ms []*target.Material
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTargetGraph, err, "decode %s", path)
	}
	return ms, nil
}

// textureResolver resolves blend-relative texture paths against root and
// reports images whose file is missing. An empty root keeps the recorded
// paths.
func textureResolver(root string) resolve.AssetResolver {
	if root == "" {
		return nil
	}
	return resolve.AssetResolverFunc(func(img *source.Image) (string, bool) {
		if img == nil || img.Path == "" {
			return "", false
		}
		p := img.Path
		if rel, ok := strings.CutPrefix(p, "//"); ok {
			p = filepath.Join(root, filepath.FromSlash(rel))
		}
		if _, err := os.Stat(p); err != nil {
			return "", false
		}
		return filepath.ToSlash(p), true
	})
}
