package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Table cell limits.
const (
	descriptionWidth = 48
	dependsOnWidth   = 40
)

var (
	dimColor    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	borderColor = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
	addedColor  = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
)

// Formatter handles output formatting
type Formatter struct {
	writer   io.Writer
	format   string
	renderer *lipgloss.Renderer
}

// NewFormatter creates a formatter writing format ("json" or "table").
func NewFormatter(writer io.Writer, format string) (*Formatter, error) {
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatTable:
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatJSON, FormatTable)
	}
	renderer := lipgloss.NewRenderer(writer)
	if termenv.EnvNoColor() {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Formatter{writer: writer, format: format, renderer: renderer}, nil
}

func (f *Formatter) json(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) table(headers []string, rows [][]string, dimCol int) error {
	headerStyle := f.renderer.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := f.renderer.NewStyle().Padding(0, 1)
	dimStyle := cellStyle.Foreground(dimColor)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(f.renderer.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == dimCol:
				return dimStyle
			default:
				return cellStyle
			}
		})
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

// FormatFeatures writes a feature listing
func (f *Formatter) FormatFeatures(features []FeatureDTO) error {
	if f.format == FormatJSON {
		return f.json(features)
	}
	rows := make([][]string, len(features))
	for i, ft := range features {
		rows[i] = []string{
			ft.Name,
			ft.Category,
			strconv.Itoa(len(ft.Resources)),
			runewidth.Truncate(strings.Join(ft.DependsOn, ", "), dependsOnWidth, "…"),
			wordwrap.String(ft.Description, descriptionWidth),
		}
	}
	return f.table([]string{"NAME", "CATEGORY", "RESOURCES", "DEPENDS ON", "DESCRIPTION"}, rows, 4)
}

// FormatResolution writes the ordered features and resources of a request
func (f *Formatter) FormatResolution(r ResolutionDTO) error {
	if f.format == FormatJSON {
		return f.json(r)
	}
	if _, err := fmt.Fprintf(f.writer, "features: %s\n", strings.Join(r.Features, " -> ")); err != nil {
		return err
	}
	return f.resourceTable(r.Resources, len(r.Resources))
}

// FormatActivation writes what an activation injected and skipped
func (f *Formatter) FormatActivation(a ActivationDTO) error {
	if f.format == FormatJSON {
		return f.json(a)
	}
	if _, err := fmt.Fprintf(f.writer, "activation %s: %d injected, %d skipped\n",
		a.ID, len(a.Injected), len(a.Skipped)); err != nil {
		return err
	}
	combined := make([]ResourceDTO, 0, len(a.Injected)+len(a.Skipped))
	combined = append(combined, a.Injected...)
	combined = append(combined, a.Skipped...)
	return f.resourceTable(combined, len(a.Injected))
}

// resourceTable renders resources; rows from skippedFrom on are marked
// skipped.
func (f *Formatter) resourceTable(rs []ResourceDTO, skippedFrom int) error {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		status := ""
		if i >= skippedFrom {
			status = "skipped"
		}
		rows[i] = []string{strconv.Itoa(i + 1), r.Kind, r.Key, strconv.Itoa(r.Size), status}
	}
	return f.table([]string{"#", "KIND", "KEY", "BYTES", ""}, rows, 4)
}

// FormatResult writes any other result as JSON
func (f *Formatter) FormatResult(result any) error {
	return f.json(result)
}
