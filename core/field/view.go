package field

import (
	"strconv"
	"strings"
	"time"
)

const dateDisplayLayout = "02 Jan 2006"

// Display is the read-only rendering of one dynamic field value.
type Display struct {
	Name   string   `json:"name"`
	Label  string   `json:"label"`
	Type   Type     `json:"type"`
	Text   string   `json:"text"`
	Badges []string `json:"badges,omitempty"`
	Empty  bool     `json:"empty"`
}

// Column is a table column header for a dynamic field.
type Column struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  Type   `json:"type"`
}

// RenderView renders values of the visible fields, in display order.
func RenderView(tpl Template, values map[string]interface{}) []Display {
	visible := tpl.Visible()
	displays := make([]Display, 0, len(visible))
	for _, d := range visible {
		displays = append(displays, renderDisplay(d, values[d.Name]))
	}
	return displays
}

// Columns returns the table columns of the visible fields.
func Columns(tpl Template) []Column {
	visible := tpl.Visible()
	cols := make([]Column, 0, len(visible))
	for _, d := range visible {
		cols = append(cols, Column{Name: d.Name, Label: d.Label, Type: d.Type})
	}
	return cols
}

// Cells returns the plain text of values for every column of Columns(tpl).
func Cells(tpl Template, values map[string]interface{}) []string {
	visible := tpl.Visible()
	cells := make([]string, 0, len(visible))
	for _, d := range visible {
		cells = append(cells, CellText(d, values[d.Name]))
	}
	return cells
}

// CellText is the spreadsheet text of a value: option labels for selects, comma separated for multi-selects.
// ParseCell reads it back.
func CellText(d Descriptor, value interface{}) string {
	disp := renderDisplay(d, value)
	if d.Type == TypeMultiSelect {
		return strings.Join(disp.Badges, ", ")
	}
	if d.Type == TypeDate {
		s, _ := value.(string)
		return s
	}
	return disp.Text
}

func renderDisplay(d Descriptor, value interface{}) Display {
	disp := Display{Name: d.Name, Label: d.Label, Type: d.Type}
	if isEmpty(value) {
		disp.Empty = true
		if d.Type == TypeMultiSelect {
			disp.Badges = []string{}
		}
		return disp
	}

	switch d.Type {
	case TypeSelect:
		s, _ := value.(string)
		disp.Text = optionText(d, s)
	case TypeMultiSelect:
		selected := toStrings(value)
		disp.Badges = make([]string, 0, len(selected))
		for _, s := range selected {
			disp.Badges = append(disp.Badges, optionText(d, s))
		}
		disp.Text = strings.Join(disp.Badges, ", ")
	case TypeNumber:
		disp.Text = numberText(value)
	case TypeDate:
		s, _ := value.(string)
		if t, err := time.Parse("2006-01-02", s); err == nil {
			disp.Text = t.Format(dateDisplayLayout)
		} else {
			disp.Text = s
		}
	default:
		if s, ok := value.(string); ok {
			disp.Text = s
		}
	}
	return disp
}

// optionText falls back to the raw value when the option was removed from the template.
func optionText(d Descriptor, value string) string {
	if label, ok := d.OptionLabel(value); ok {
		return label
	}
	return value
}

func numberText(value interface{}) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return ""
}
