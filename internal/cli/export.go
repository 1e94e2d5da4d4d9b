package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/4TheSolutions/nest/pkg/mindmap"
	"github.com/4TheSolutions/nest/pkg/render"
	"github.com/4TheSolutions/nest/pkg/scene"
	"github.com/4TheSolutions/nest/pkg/storage"
)

const (
	styleNested = "nested" // containment circles as edited
	styleTree   = "tree"   // graphviz node-link layout
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output string  // output file path, "-" for stdout, "" derives from the map name
	format string  // output format: "svg", "png", "dot", "json"
	style  string  // layout style: "nested" or "tree"
	scale  float64 // raster scale multiplier
	arrows bool    // include creation-order arrows
}

// exportCommand creates the export command. Style and scale default to the
// [render] section of the config file when their flags are unset.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{arrows: true}

	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Export a mind map to SVG, PNG, DOT or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), mapName(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <name>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: svg (default), png, dot, json")
	cmd.Flags().StringVar(&opts.style, "style", "", "layout style: nested (default), tree")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "raster scale multiplier")
	cmd.Flags().BoolVar(&opts.arrows, "arrows", opts.arrows, "include creation-order arrows")

	return cmd
}

// validFormats is the set of supported export formats.
var validFormats = map[string]bool{"svg": true, "png": true, "dot": true, "json": true}

// validateFormat checks that the requested format is valid.
func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'dot', or 'json')", f)
	}
	return nil
}

// validateStyle checks that the style is either "nested" or "tree".
func validateStyle(s string) error {
	if s != styleNested && s != styleTree {
		return fmt.Errorf("invalid style: %s (must be 'nested' or 'tree')", s)
	}
	return nil
}

// outputPath derives the output path: an explicit --output wins, otherwise
// the map name with the format as extension.
func outputPath(output, name, format string) string {
	if output != "" {
		return output
	}
	return name + "." + format
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. "-" selects stdout
// wrapped in nopCloser; anything else is created, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func (c *CLI) runExport(ctx context.Context, name string, opts *exportOpts) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.style == "" {
		opts.style = cfg.Render.Style
	}
	if opts.style == "" {
		opts.style = styleNested
	}
	if opts.scale <= 0 {
		opts.scale = cfg.Render.Scale
	}
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	if err := validateStyle(opts.style); err != nil {
		return err
	}

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load %q: %w", name, err)
	}

	m := mindmap.New()
	m.Restore(doc.Map)
	if m.Len() == 0 {
		printWarning("Map %q is empty", name)
	}

	pr := newProgress(loggerFromContext(ctx))
	data, err := exportDocument(m, opts)
	if err != nil {
		return err
	}

	path := outputPath(opts.output, name, opts.format)
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	pr.done(fmt.Sprintf("Exported %q as %s", name, opts.format))
	if path != "-" {
		printFile(path)
	}
	return nil
}

// exportDocument renders the document per format and style. JSON emits the
// snapshot; the tree style goes through DOT for svg and png; the nested
// style draws the containment geometry as edited.
func exportDocument(m *mindmap.Map, opts *exportOpts) ([]byte, error) {
	if opts.format == "json" {
		return json.MarshalIndent(m.Snapshot(), "", "  ")
	}

	sc := scene.Build(m)
	switch opts.format {
	case "svg":
		if opts.style == styleTree {
			return render.RenderTreeSVG(render.ToDOT(sc, render.DOTOptions{Chain: opts.arrows}))
		}
		svgOpts := []render.SVGOption{render.WithScale(opts.scale)}
		if !opts.arrows {
			svgOpts = append(svgOpts, render.WithoutArrows())
		}
		return render.RenderSVG(sc, svgOpts...), nil

	case "png":
		if opts.style == styleTree {
			return render.RenderTreePNG(render.ToDOT(sc, render.DOTOptions{Chain: opts.arrows}))
		}
		return render.RenderPNG(sc, opts.scale)

	case "dot":
		return []byte(render.ToDOT(sc, render.DOTOptions{Chain: opts.arrows})), nil

	default:
		return nil, fmt.Errorf("invalid format: %s", opts.format)
	}
}
