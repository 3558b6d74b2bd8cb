package person

import (
	"strings"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
)

// Base holds the attributes shared by every person entity.
type Base struct {
	ID            string                 `json:"id"`
	Firstname     string                 `json:"firstname"`
	Lastname      string                 `json:"lastname"`
	Photo         string                 `json:"photo"`
	DynamicFields map[string]interface{} `json:"dynamic_fields"`
	CreatedAt     time.Time              `json:"created_at"` // UTC
	UpdatedAt     time.Time              `json:"updated_at"` // UTC
}

func (b Base) FullName() string {
	return strings.TrimSpace(b.Firstname + " " + b.Lastname)
}

// Matches reports whether search is contained in the first or last name, ignoring case.
func (b Base) Matches(search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(b.Firstname), search) ||
		strings.Contains(strings.ToLower(b.Lastname), search) ||
		strings.Contains(strings.ToLower(b.FullName()), search)
}

// Input contains the Base attributes provided to create or update a person.
// A nil DynamicFields leaves the stored values untouched on update.
type Input struct {
	Firstname     string                 `json:"firstname" validate:"required,max=100"`
	Lastname      string                 `json:"lastname" validate:"required,max=100"`
	Photo         string                 `json:"photo" validate:"omitempty,max=255"`
	DynamicFields map[string]interface{} `json:"dynamic_fields"`
}

func (in *Input) Clean() {
	in.Firstname = core.Sanitize(in.Firstname)
	in.Lastname = core.Sanitize(in.Lastname)
	in.Photo = core.CleanString(in.Photo)
}

// Apply copies the fixed attributes of in to b.
func (in Input) Apply(b *Base) {
	b.Firstname = in.Firstname
	b.Lastname = in.Lastname
	b.Photo = in.Photo
}

// Name columns come first in every person sheet.
var NameColumns = []field.Descriptor{
	{Name: "firstname", Label: "First name", Type: field.TypeText, Required: true, Visible: true, Editable: true},
	{Name: "lastname", Label: "Last name", Type: field.TypeText, Required: true, Visible: true, Editable: true},
}

// Columns returns NameColumns followed by extra, renumbered in order.
func Columns(extra ...field.Descriptor) []field.Descriptor {
	cols := make([]field.Descriptor, 0, len(NameColumns)+len(extra))
	cols = append(cols, NameColumns...)
	cols = append(cols, extra...)
	for i := range cols {
		cols[i].Order = i
	}
	return cols
}

// Detail is a person with its dynamic fields rendered for display.
type Detail struct {
	Record  interface{}     `json:"record"`
	Display []field.Display `json:"display"`
}
