package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(fields []Descriptor) []string {
	nn := make([]string, 0, len(fields))
	for _, d := range fields {
		nn = append(nn, d.Name)
	}
	return nn
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "student", want: KindStudent},
		{in: " Teacher ", want: KindTeacher},
		{in: "PARENT", want: KindParent},
		{in: "manager", want: KindManager},
		{in: "janitor", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemplate_Sorted(t *testing.T) {
	tpl := Template{Fields: []Descriptor{
		{Name: "c", Order: 1},
		{Name: "a", Order: 0},
		{Name: "d", Order: 1},
		{Name: "b", Order: 0, Visible: true},
	}}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(tpl.Sorted()))
	assert.Equal(t, []string{"b"}, names(tpl.Visible()))
	assert.Equal(t, "c", tpl.Fields[0].Name, "Sorted must not reorder the template")
}

func TestTemplate_Move(t *testing.T) {
	base := []Descriptor{{Name: "a", Order: 0}, {Name: "b", Order: 1}, {Name: "c", Order: 2}, {Name: "d", Order: 3}}

	tests := []struct {
		name  string
		field string
		index int
		want  []string
	}{
		{name: "to front", field: "c", index: 0, want: []string{"c", "a", "b", "d"}},
		{name: "to back", field: "a", index: 3, want: []string{"b", "c", "d", "a"}},
		{name: "past the end", field: "b", index: 42, want: []string{"a", "c", "d", "b"}},
		{name: "negative", field: "d", index: -1, want: []string{"d", "a", "b", "c"}},
		{name: "in place", field: "b", index: 1, want: []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := Template{Fields: append([]Descriptor(nil), base...)}
			require.NoError(t, tpl.Move(tt.field, tt.index))
			assert.Equal(t, tt.want, names(tpl.Sorted()))
			for i, d := range tpl.Sorted() {
				assert.Equal(t, i, d.Order)
			}
		})
	}

	tpl := Template{Fields: base}
	assert.Equal(t, map[string]string{"name": "unknown field z"}, fieldErrors(t, tpl.Move("z", 0)))
}

func TestTemplate_Reorder(t *testing.T) {
	base := []Descriptor{{Name: "a", Order: 0}, {Name: "b", Order: 1}, {Name: "c", Order: 2}}

	tests := []struct {
		name    string
		order   []string
		want    []string
		wantErr string
	}{
		{name: "reversed", order: []string{"c", "b", "a"}, want: []string{"c", "b", "a"}},
		{name: "missing", order: []string{"a", "b"}, wantErr: "every field must be listed exactly once"},
		{name: "duplicate", order: []string{"a", "a", "b"}, wantErr: "duplicate field a"},
		{name: "unknown", order: []string{"a", "b", "z"}, wantErr: "unknown field z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := Template{Fields: append([]Descriptor(nil), base...)}
			err := tpl.Reorder(tt.order)
			if tt.wantErr != "" {
				assert.Equal(t, map[string]string{"names": tt.wantErr}, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(tpl.Fields))
		})
	}
}

func TestUpdateTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fields  []Descriptor
		wantErr map[string]string
	}{
		{
			name:   "valid",
			fields: []Descriptor{{Name: "blood_group", Type: "Select", Options: []Option{{Value: "a"}, {Value: "o"}}}},
		},
		{
			name:    "required attributes",
			fields:  []Descriptor{{}},
			wantErr: map[string]string{"fields[0].name": "this field is required", "fields[0].type": "this field is required"},
		},
		{
			name:    "bad name",
			fields:  []Descriptor{{Name: "Blood Group", Type: TypeText}},
			wantErr: map[string]string{"fields[0].name": "must start with a lowercase letter and contain only lowercase letters, digits and underscores"},
		},
		{
			name:    "duplicate names",
			fields:  []Descriptor{{Name: "notes", Type: TypeText}, {Name: "notes", Type: TypeTextarea}},
			wantErr: map[string]string{"fields[1].name": "field names must be unique within a template"},
		},
		{
			name:    "unknown type",
			fields:  []Descriptor{{Name: "notes", Type: "rich-text"}},
			wantErr: map[string]string{"fields[0].type": "unknown field type"},
		},
		{
			name:    "select without options",
			fields:  []Descriptor{{Name: "gender", Type: TypeSelect}},
			wantErr: map[string]string{"fields[0].options": "select fields need at least one option"},
		},
		{
			name:    "duplicate options",
			fields:  []Descriptor{{Name: "gender", Type: TypeMultiSelect, Options: []Option{{Value: "f"}, {Value: "f"}}}},
			wantErr: map[string]string{"fields[0].options": "option values must be unique"},
		},
		{
			name: "comma in multi-select label",
			fields: []Descriptor{{Name: "clubs", Type: TypeMultiSelect,
				Options: []Option{{Value: "sci", Label: "Science, Tech"}, {Value: "art", Label: "Art"}}}},
			wantErr: map[string]string{"fields[0].options": "multi-select option values and labels cannot contain commas"},
		},
		{
			name: "comma in select label",
			fields: []Descriptor{{Name: "house", Type: TypeSelect,
				Options: []Option{{Value: "n", Label: "North, upper"}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ut := UpdateTemplate{Fields: tt.fields}
			err := ut.Validate()
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		ut := UpdateTemplate{Fields: []Descriptor{
			{Name: " blood_group ", Type: " SELECT ", Options: []Option{{Value: " a+ "}}},
			{Name: "notes", Type: TypeText, Options: []Option{{Value: "x"}}},
		}}
		require.NoError(t, ut.Validate())
		assert.Equal(t, Descriptor{Name: "blood_group", Label: "Blood group", Type: TypeSelect, Options: []Option{{Value: "a+", Label: "a+"}}}, ut.Fields[0])
		assert.Nil(t, ut.Fields[1].Options)
	})
}
