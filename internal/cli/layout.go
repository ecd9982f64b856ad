package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/printframe/pkg/config"
	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/scene"
)

type layoutOpts struct {
	template string
	count    int
	aspect   float64
	word     string
	gap      float64
	border   float64
	json     bool
}

// layoutCommand creates the layout command for inspecting slot geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{
		template: layout.TemplateGrid,
		count:    4,
		aspect:   config.DefaultAspectRatio,
	}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the slot geometry of a template",
		Long: `Show the slot geometry of a template.

Slots are printed in logical canvas units; exports scale them to the print
width. Use --json for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), os.Stdout, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", opts.template, "template: grid, dual, letters, shirt")
	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of photos")
	cmd.Flags().Float64Var(&opts.aspect, "aspect", opts.aspect, "photo aspect ratio (width/height)")
	cmd.Flags().StringVar(&opts.word, "word", "", "word spelled by the letters template")
	cmd.Flags().Float64Var(&opts.gap, "gap", 0, "gap between photos")
	cmd.Flags().Float64Var(&opts.border, "border", 0, "border around the canvas")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")

	return cmd
}

func runLayout(ctx context.Context, w io.Writer, opts layoutOpts) error {
	if err := errors.ValidateAspectRatio(opts.aspect); err != nil {
		return err
	}
	b := scene.NewBuilder(scene.DefaultStyle(), scene.WithLogger(loggerFromContext(ctx)))
	res, err := b.Layout(scene.Params{
		Template:    opts.template,
		Slots:       opts.count,
		AspectRatio: opts.aspect,
		Word:        opts.word,
		Style:       layout.Style{Gap: opts.gap, Border: opts.border},
	})
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(w, StyleTitle.Render(res.Template)+" "+
		StyleDim.Render(fmt.Sprintf("%g × %g", res.Canvas.Width, res.TotalHeight)))
	fmt.Fprintln(w, slotTable(res))
	return nil
}

// slotTable renders the slots of res as a table.
func slotTable(res layout.Result) string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
	rows := make([][]string, len(res.Slots))
	for i, s := range res.Slots {
		mask := ""
		if !s.Mask.Empty() {
			mask = "glyph"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			num(s.X), num(s.Y), num(s.Width), num(s.Height),
			strconv.Itoa(s.Column), mask,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "X", "Y", "Width", "Height", "Column", "Mask").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleNumber
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// templatesCommand lists the available templates.
func (c *CLI) templatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range layout.Templates() {
				printKeyValue(t.Name, t.Description+StyleDim.Render(" ("+capacity(t)+" photos)"))
			}
			return nil
		},
	}
}
