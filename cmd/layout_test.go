package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

func ptr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		want    editor.Size
		wantErr bool
	}{
		{in: "3.15x4.15", want: editor.Size{Width: ptr(3.15), Height: ptr(4.15)}},
		{in: " 2 X 2 ", want: editor.Size{Width: ptr(2), Height: ptr(2)}},
		{in: "3.15", wantErr: true},
		{in: "ax4", wantErr: true},
		{in: "3x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePair(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("size mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMargins(t *testing.T) {
	got, err := parseMargins("0,0.3,1,0.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := editor.MarginsUpdate{Top: ptr(0), Right: ptr(0.3), Bottom: ptr(1), Left: ptr(0.3)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("margins mismatch (-want +got):\n%s", diff)
	}

	got, err = parseMargins("0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.Top != 0.5 || *got.Left != 0.5 || got.Top == got.Left {
		t.Errorf("single value should fill all sides independently, got %+v", got)
	}

	for _, bad := range []string{"1,2", "1,2,3,x", ""} {
		if _, err := parseMargins(bad); err == nil {
			t.Errorf("parseMargins(%q): expected error", bad)
		}
	}
}

func TestComputeLayout(t *testing.T) {
	defaults := editor.DefaultSettings()

	tests := []struct {
		name       string
		opts       layoutOptions
		wantCols   int
		wantRows   int
		wantUnit   units.Unit
		wantPage   layout.PageSize
		wantErrSub string
	}{
		{
			name:     "defaults",
			wantCols: 6, wantRows: 6, wantUnit: units.Centimeters, wantPage: layout.PageA4,
		},
		{
			name: "letter in inches",
			opts: layoutOptions{
				Page: "Letter", Unit: "in", Margins: "0", Photo: "2x2", Spacing: ptr(0),
			},
			wantCols: 4, wantRows: 5, wantUnit: units.Inches, wantPage: layout.PageLetter,
		},
		{
			name: "custom page implied",
			opts: layoutOptions{
				Custom: "10x10", Margins: "0", Photo: "3x3", Spacing: ptr(0),
			},
			wantCols: 3, wantRows: 3, wantUnit: units.Centimeters, wantPage: layout.PageCustom,
		},
		{
			name: "landscape swaps axes",
			opts: layoutOptions{
				Custom: "10x20", Orientation: "landscape", Margins: "0", Photo: "5x5", Spacing: ptr(0),
			},
			wantCols: 4, wantRows: 2, wantUnit: units.Centimeters, wantPage: layout.PageCustom,
		},
		{
			name:     "photo larger than page",
			opts:     layoutOptions{Photo: "30x40"},
			wantCols: 0, wantRows: 0, wantUnit: units.Centimeters, wantPage: layout.PageA4,
		},
		{name: "bad page", opts: layoutOptions{Page: "B5"}, wantErrSub: "page size"},
		{name: "bad unit", opts: layoutOptions{Unit: "mm"}, wantErrSub: "mm"},
		{name: "bad orientation", opts: layoutOptions{Orientation: "sideways"}, wantErrSub: "orientation"},
		{name: "bad margins", opts: layoutOptions{Margins: "1,2"}, wantErrSub: "margins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := computeLayout(defaults, tt.opts)
			if tt.wantErrSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrSub) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErrSub, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Columns != tt.wantCols || res.Rows != tt.wantRows {
				t.Errorf("expected %dx%d grid, got %dx%d", tt.wantCols, tt.wantRows, res.Columns, res.Rows)
			}
			if len(res.Slots) != tt.wantCols*tt.wantRows {
				t.Errorf("expected %d slots, got %d", tt.wantCols*tt.wantRows, len(res.Slots))
			}
			if res.Display.Unit != tt.wantUnit {
				t.Errorf("expected unit %s, got %s", tt.wantUnit, res.Display.Unit)
			}
			if res.Settings.PageSize != tt.wantPage {
				t.Errorf("expected page %s, got %s", tt.wantPage, res.Settings.PageSize)
			}
			if layout.HasErrors(res.Warnings) {
				t.Errorf("computed layout should validate, got %v", res.Warnings)
			}
		})
	}
}

func TestComputeLayout_Copies(t *testing.T) {
	defaults := editor.DefaultSettings()
	defaults.Copies = 2

	tests := []struct {
		name    string
		copies  *int
		want    int
		wantErr bool
	}{
		{name: "unset keeps default", copies: nil, want: 2},
		{name: "explicit zero", copies: intPtr(0), want: 0},
		{name: "explicit value", copies: intPtr(5), want: 5},
		{name: "negative", copies: intPtr(-1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := computeLayout(defaults, layoutOptions{Copies: tt.copies})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got copies %d", res.Settings.Copies)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Settings.Copies != tt.want {
				t.Errorf("expected %d copies, got %d", tt.want, res.Settings.Copies)
			}
		})
	}
}

func TestLayoutCommand_ExplicitZeroCopies(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"layout", "--copies", "0", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		for _, name := range []string{"copies", "json"} {
			f := layoutCmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("layout: %v", err)
	}
	var decoded struct {
		Settings editor.Settings `json:"settings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded.Settings.Copies != 0 {
		t.Errorf("--copies 0 should disable prefill, got %d", decoded.Settings.Copies)
	}
}

func TestPrintLayout(t *testing.T) {
	res, err := computeLayout(editor.DefaultSettings(), layoutOptions{})
	if err != nil {
		t.Fatalf("computeLayout: %v", err)
	}

	var buf bytes.Buffer
	printLayout(&buf, res)
	out := buf.String()
	for _, want := range []string{"A4 portrait", "6 columns x 6 rows (36 slots)", "WIDTH%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	res, _ = computeLayout(editor.DefaultSettings(), layoutOptions{Photo: "30x40"})
	buf.Reset()
	printLayout(&buf, res)
	if !strings.Contains(buf.String(), "does not fit") {
		t.Errorf("expected a no-fit message, got:\n%s", buf.String())
	}
}

func TestOutputJSON(t *testing.T) {
	res, err := computeLayout(editor.DefaultSettings(), layoutOptions{})
	if err != nil {
		t.Fatalf("computeLayout: %v", err)
	}
	var buf bytes.Buffer
	if err := outputJSON(&buf, res); err != nil {
		t.Fatalf("outputJSON: %v", err)
	}

	var decoded struct {
		Columns int           `json:"columns"`
		Rows    int           `json:"rows"`
		Slots   []layout.Slot `json:"slots"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Columns != 6 || decoded.Rows != 6 || len(decoded.Slots) != 36 {
		t.Errorf("unexpected JSON layout: %dx%d with %d slots", decoded.Columns, decoded.Rows, len(decoded.Slots))
	}
}
