package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Compute a sheet layout",
	Long: `Compute how many photos fit on a page and where they go.
Lengths are read in --unit. Unset flags fall back to the editor defaults.

Example:
  photo-sheet layout --page A4 --margins 0,0.3,1,0.3 --photo 3.15x4.15 --spacing 0.3`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().String("page", "", "Page size, e.g. A4, Letter, A5 or Custom")
	layoutCmd.Flags().String("custom", "", "Custom page size as WxH (implies --page Custom)")
	layoutCmd.Flags().String("orientation", "", "portrait or landscape")
	layoutCmd.Flags().String("margins", "", "Margins as top,right,bottom,left")
	layoutCmd.Flags().String("photo", "", "Photo size as WxH")
	layoutCmd.Flags().Float64("spacing", 0, "Gap between photos")
	layoutCmd.Flags().String("unit", "", "Unit of the given lengths: cm or in")
	layoutCmd.Flags().Int("copies", 0, "Number of slots to prefill (default from the editor defaults)")
	layoutCmd.Flags().Bool("json", false, "Output as JSON")
}

// layoutOptions holds the raw flag values. Empty strings and nil pointers
// keep the default.
type layoutOptions struct {
	Page        string
	Custom      string
	Orientation string
	Margins     string
	Photo       string
	Spacing     *float64
	Unit        string
	Copies      *int
}

// layoutResult is what the layout command prints.
type layoutResult struct {
	Settings editor.Settings            `json:"settings"`
	Display  editor.Display             `json:"display"`
	Columns  int                        `json:"columns"`
	Rows     int                        `json:"rows"`
	Slots    layout.Sheet               `json:"slots"`
	Warnings []layout.ValidationWarning `json:"warnings"`
}

// parsePair parses "AxB" into a partial size update.
func parsePair(s string) (editor.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return editor.Size{}, fmt.Errorf("invalid size %q, want WxH", s)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return editor.Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return editor.Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return editor.Size{Width: &width, Height: &height}, nil
}

// parseMargins parses "top,right,bottom,left". A single value applies to
// every side.
func parseMargins(s string) (editor.MarginsUpdate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 4 {
		return editor.MarginsUpdate{}, fmt.Errorf("invalid margins %q, want top,right,bottom,left", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return editor.MarginsUpdate{}, fmt.Errorf("invalid margin %q: %w", p, err)
		}
		vals[i] = v
	}
	if len(vals) == 1 {
		vals = []float64{vals[0], vals[0], vals[0], vals[0]}
	}
	return editor.MarginsUpdate{Top: &vals[0], Right: &vals[1], Bottom: &vals[2], Left: &vals[3]}, nil
}

// computeLayout applies opts on top of the editor defaults and returns the
// resulting grid.
func computeLayout(defaults editor.Settings, opts layoutOptions) (layoutResult, error) {
	e := editor.New(editor.WithDefaults(defaults), editor.WithMaxSlots(constants.MaxSlotsPerSheet))

	unit := e.Settings().Unit
	if opts.Unit != "" {
		u, err := units.ParseUnit(opts.Unit)
		if err != nil {
			return layoutResult{}, err
		}
		if err := e.SetUnit(u); err != nil {
			return layoutResult{}, err
		}
		unit = u
	}
	if opts.Page != "" {
		p, err := layout.ParsePageSize(opts.Page)
		if err != nil {
			return layoutResult{}, err
		}
		if err := e.SetPageSize(p); err != nil {
			return layoutResult{}, err
		}
	}
	if opts.Custom != "" {
		size, err := parsePair(opts.Custom)
		if err != nil {
			return layoutResult{}, err
		}
		if opts.Page == "" {
			_ = e.SetPageSize(layout.PageCustom)
		}
		if err := e.SetPageDimensions(size, unit); err != nil {
			return layoutResult{}, err
		}
	}
	if opts.Orientation != "" {
		o, err := layout.ParseOrientation(opts.Orientation)
		if err != nil {
			return layoutResult{}, err
		}
		if err := e.SetOrientation(o); err != nil {
			return layoutResult{}, err
		}
	}
	if opts.Margins != "" {
		m, err := parseMargins(opts.Margins)
		if err != nil {
			return layoutResult{}, err
		}
		if err := e.SetPageMargins(m, unit); err != nil {
			return layoutResult{}, err
		}
	}
	if opts.Photo != "" {
		size, err := parsePair(opts.Photo)
		if err != nil {
			return layoutResult{}, err
		}
		if err := e.SetPhotoSize(size, unit); err != nil {
			return layoutResult{}, err
		}
	}
	if opts.Spacing != nil {
		if err := e.SetPhotoSpacing(*opts.Spacing, unit); err != nil {
			return layoutResult{}, err
		}
	}
	if opts.Copies != nil {
		if err := e.SetCopies(*opts.Copies); err != nil {
			return layoutResult{}, err
		}
	}

	grid := e.Grid()
	res := layoutResult{
		Settings: e.Settings(),
		Display:  e.Display(),
		Columns:  grid.Columns,
		Rows:     grid.Rows,
		Slots:    layout.Sheet{},
		Warnings: layout.ValidateSheets(e.Sheets(), e.Settings().GridConfig()),
	}
	if sheets := e.Sheets(); len(sheets) > 0 {
		res.Slots = sheets[0]
	}
	return res, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	defaults, err := config.EditorDefaults()
	if err != nil {
		return err
	}
	opts := layoutOptions{
		Page:        mustGetString(cmd, "page"),
		Custom:      mustGetString(cmd, "custom"),
		Orientation: mustGetString(cmd, "orientation"),
		Margins:     mustGetString(cmd, "margins"),
		Photo:       mustGetString(cmd, "photo"),
		Unit:        mustGetString(cmd, "unit"),
	}
	if cmd.Flags().Changed("spacing") {
		v := mustGetFloat64(cmd, "spacing")
		opts.Spacing = &v
	}
	if cmd.Flags().Changed("copies") {
		n := mustGetInt(cmd, "copies")
		opts.Copies = &n
	}

	res, err := computeLayout(defaults, opts)
	if err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Debug("layout computed",
		"columns", res.Columns, "rows", res.Rows, "warnings", len(res.Warnings))

	if mustGetBool(cmd, "json") {
		return outputJSON(cmd.OutOrStdout(), res)
	}
	printLayout(cmd.OutOrStdout(), res)
	return nil
}

func outputJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func printLayout(out io.Writer, res layoutResult) {
	d := res.Display
	fmt.Fprintf(out, "Page:    %s %s, %.2f x %.2f %s\n",
		res.Settings.PageSize, res.Settings.Orientation, d.PageWidth, d.PageHeight, d.Unit)
	fmt.Fprintf(out, "Margins: %.2f, %.2f, %.2f, %.2f %s\n",
		d.Margins.Top, d.Margins.Right, d.Margins.Bottom, d.Margins.Left, d.Unit)
	fmt.Fprintf(out, "Photo:   %.2f x %.2f %s, spacing %.2f\n", d.PhotoWidth, d.PhotoHeight, d.Unit, d.PhotoSpacing)
	fmt.Fprintf(out, "Grid:    %d columns x %d rows (%d slots)\n\n", res.Columns, res.Rows, len(res.Slots))

	if len(res.Slots) == 0 {
		fmt.Fprintln(out, "The photo does not fit on the page.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tX%\tY%\tWIDTH%\tHEIGHT%\tIMAGE")
		for _, s := range res.Slots {
			fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n", s.ID, s.X, s.Y, s.Width, s.Height, s.ImageSrc)
		}
		w.Flush()
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(out)
		for _, warn := range res.Warnings {
			fmt.Fprintln(out, warn.String())
		}
	}
}
