package field

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Type is the kind of input a Descriptor declares.
type Type string

const (
	TypeText        Type = "text"
	TypeEmail       Type = "email"
	TypePhone       Type = "phone"
	TypeNumber      Type = "number"
	TypeDate        Type = "date"
	TypeTextarea    Type = "textarea"
	TypeSelect      Type = "select"
	TypeMultiSelect Type = "multi-select"
	TypeFile        Type = "file"
)

var Types = []Type{
	TypeText, TypeEmail, TypePhone, TypeNumber, TypeDate, TypeTextarea, TypeSelect, TypeMultiSelect, TypeFile,
}

func (t Type) Valid() bool {
	for _, typ := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

// HasOptions reports whether values of this type are picked from Descriptor.Options.
func (t Type) HasOptions() bool {
	return t == TypeSelect || t == TypeMultiSelect
}

// Kind is an entity kind owning a Template.
type Kind string

const (
	KindStudent Kind = "student"
	KindTeacher Kind = "teacher"
	KindParent  Kind = "parent"
	KindManager Kind = "manager"
)

var Kinds = []Kind{KindStudent, KindTeacher, KindParent, KindManager}

func ParseKind(s string) (Kind, error) {
	k := Kind(core.CleanString(s, true /* lower */))
	for _, kind := range Kinds {
		if k == kind {
			return k, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

type Option struct {
	Value string `json:"value" yaml:"value" validate:"required"`
	Label string `json:"label" yaml:"label"`
}

// Descriptor configures one dynamic form field.
type Descriptor struct {
	Name        string   `json:"name" yaml:"name" validate:"required,fieldname"`
	Label       string   `json:"label" yaml:"label"`
	Type        Type     `json:"type" yaml:"type" validate:"required"`
	Required    bool     `json:"required" yaml:"required"`
	Options     []Option `json:"options,omitempty" yaml:"options,omitempty" validate:"omitempty,dive"`
	Order       int      `json:"order" yaml:"order"`
	Visible     bool     `json:"visible" yaml:"visible"`
	Editable    bool     `json:"editable" yaml:"editable"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string   `json:"help_text,omitempty" yaml:"help_text,omitempty"`
}

// OptionLabel returns the label of the option with the given value.
func (d Descriptor) OptionLabel(value string) (string, bool) {
	for _, opt := range d.Options {
		if opt.Value == value {
			if opt.Label == "" {
				return opt.Value, true
			}
			return opt.Label, true
		}
	}
	return "", false
}

// Template is the ordered set of Descriptors for one entity Kind.
type Template struct {
	Kind      Kind         `json:"kind" yaml:"kind"`
	Fields    []Descriptor `json:"fields" yaml:"fields"`
	Version   int          `json:"version" yaml:"-"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"-"` // UTC
}

// Sorted returns a copy of the fields sorted by Order. Fields sharing an Order keep their list position.
func (t Template) Sorted() []Descriptor {
	fields := make([]Descriptor, len(t.Fields))
	copy(fields, t.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	return fields
}

// Visible returns the visible fields in display order.
func (t Template) Visible() []Descriptor {
	sorted := t.Sorted()
	visible := make([]Descriptor, 0, len(sorted))
	for _, d := range sorted {
		if d.Visible {
			visible = append(visible, d)
		}
	}
	return visible
}

func (t Template) Field(name string) (Descriptor, bool) {
	for _, d := range t.Fields {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Move places the named field at index within the display order and renumbers every Order from 0.
func (t *Template) Move(name string, index int) error {
	sorted := t.Sorted()
	from := -1
	for i, d := range sorted {
		if d.Name == name {
			from = i
			break
		}
	}
	if from < 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "unknown field " + name})
	}
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	moved := sorted[from]
	sorted = append(sorted[:from], sorted[from+1:]...)
	sorted = append(sorted[:index], append([]Descriptor{moved}, sorted[index:]...)...)
	for i := range sorted {
		sorted[i].Order = i
	}
	t.Fields = sorted
	return nil
}

// Reorder assigns Orders following names. Every field must be listed exactly once.
func (t *Template) Reorder(names []string) error {
	if len(names) != len(t.Fields) {
		return core.NewValidationError(nil, core.FieldError{Field: "names", Error: "every field must be listed exactly once"})
	}
	positions := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := positions[name]; dup {
			return core.NewValidationError(nil, core.FieldError{Field: "names", Error: "duplicate field " + name})
		}
		if _, ok := t.Field(name); !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "names", Error: "unknown field " + name})
		}
		positions[name] = i
	}

	fields := make([]Descriptor, len(t.Fields))
	for _, d := range t.Fields {
		d.Order = positions[d.Name]
		fields[d.Order] = d
	}
	t.Fields = fields
	return nil
}

// UpdateTemplate replaces the whole field list of a Template.
type UpdateTemplate struct {
	Fields []Descriptor `json:"fields" yaml:"fields" validate:"dive"`
}

// Validate cleans the descriptors then checks them. Labels default to the humanized name.
func (ut *UpdateTemplate) Validate() error {
	for i := range ut.Fields {
		d := &ut.Fields[i]
		d.Name = core.CleanString(d.Name)
		d.Label = core.CleanString(d.Label)
		if d.Label == "" {
			d.Label = core.Humanize(d.Name)
		}
		d.Type = Type(core.CleanString(string(d.Type), true /* lower */))
		d.Placeholder = core.CleanString(d.Placeholder)
		d.HelpText = core.CleanString(d.HelpText)
		for j := range d.Options {
			d.Options[j].Value = core.CleanString(d.Options[j].Value)
			d.Options[j].Label = core.CleanString(d.Options[j].Label)
			if d.Options[j].Label == "" {
				d.Options[j].Label = d.Options[j].Value
			}
		}
		if !d.Type.HasOptions() {
			d.Options = nil
		}
	}
	return core.Validate.Struct(ut)
}
