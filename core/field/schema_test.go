package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

var testFields = []Descriptor{
	{Name: "nickname", Type: TypeText, Visible: true, Editable: true, Order: 3},
	{Name: "gender", Type: TypeSelect, Required: true, Visible: true, Editable: true, Order: 0,
		Options: []Option{{Value: "f", Label: "Female"}, {Value: "m", Label: "Male"}}},
	{Name: "hobbies", Type: TypeMultiSelect, Visible: true, Editable: true, Order: 1,
		Options: []Option{{Value: "chess"}, {Value: "music"}}},
	{Name: "weight", Type: TypeNumber, Visible: true, Editable: true, Order: 2},
	{Name: "joined", Type: TypeDate, Visible: true, Order: 4},
	{Name: "contact", Type: TypeEmail, Visible: true, Editable: true, Order: 5},
	{Name: "mobile", Type: TypePhone, Visible: true, Editable: true, Order: 6},
	{Name: "report", Type: TypeFile, Visible: true, Editable: true, Order: 7},
	{Name: "secret", Type: TypeText, Required: true, Order: 8},
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	fields, ok := core.ErrorFields(err)
	require.True(t, ok, "not a validation error: %v", err)
	return fields
}

func TestSchema_Clean(t *testing.T) {
	s := Compile(testFields)

	tests := []struct {
		name    string
		values  map[string]interface{}
		want    map[string]interface{}
		wantErr map[string]string
	}{
		{
			name:    "required",
			values:  map[string]interface{}{},
			wantErr: map[string]string{"gender": "this field is required"},
		},
		{
			name:    "blank required",
			values:  map[string]interface{}{"gender": "  "},
			wantErr: map[string]string{"gender": "this field is required"},
		},
		{
			name:    "unknown field",
			values:  map[string]interface{}{"gender": "f", "age": 12},
			wantErr: map[string]string{"age": "unknown field"},
		},
		{
			name: "invalid values",
			values: map[string]interface{}{
				"gender":   "x",
				"hobbies":  []interface{}{"chess", "chess"},
				"weight":   "heavy",
				"joined":   "02/09/2024",
				"contact":  "lol",
				"mobile":   "call me",
				"report":   "../",
				"nickname": 42,
			},
			wantErr: map[string]string{
				"gender":   `invalid choice "x"`,
				"hobbies":  `duplicate choice "chess"`,
				"weight":   "must be a number",
				"joined":   "must be a date (YYYY-MM-DD)",
				"contact":  "must be a valid email address",
				"mobile":   "must be a valid phone number",
				"report":   "must reference an uploaded file",
				"nickname": "must be a string",
			},
		},
		{
			name:    "unknown choice",
			values:  map[string]interface{}{"gender": "f", "hobbies": []string{"golf"}},
			wantErr: map[string]string{"hobbies": `invalid choice "golf"`},
		},
		{
			name: "normalised",
			values: map[string]interface{}{
				"gender":   " m ",
				"hobbies":  []interface{}{"music", " chess"},
				"weight":   "42.5",
				"joined":   "2024-09-02",
				"contact":  "Baraka@Example.COM",
				"mobile":   "+254 700 000 000",
				"report":   "uploads/report.pdf",
				"nickname": "<b>Bara</b>",
				"secret":   "",
			},
			want: map[string]interface{}{
				"gender":   "m",
				"hobbies":  []string{"music", "chess"},
				"weight":   42.5,
				"joined":   "2024-09-02",
				"contact":  "baraka@example.com",
				"mobile":   "+254 700 000 000",
				"report":   "uploads/report.pdf",
				"nickname": "Bara",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Clean(tt.values)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema_CleanOne(t *testing.T) {
	s := Compile(testFields)

	got, err := s.CleanOne("weight", 12)
	require.NoError(t, err)
	assert.Equal(t, float64(12), got)

	got, err = s.CleanOne("nickname", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.CleanOne("gender", nil)
	assert.Equal(t, map[string]string{"gender": "this field is required"}, fieldErrors(t, err))

	_, err = s.CleanOne("age", 12)
	assert.Equal(t, map[string]string{"age": "unknown field"}, fieldErrors(t, err))
}

func TestSchema_CleanMarkupOnlyText(t *testing.T) {
	s := Compile([]Descriptor{
		{Name: "motto", Type: TypeText, Required: true, Visible: true, Editable: true},
		{Name: "bio", Type: TypeTextarea, Visible: true, Editable: true, Order: 1},
	})

	_, err := s.Clean(map[string]interface{}{"motto": "<b></b>", "bio": "<i> </i>"})
	assert.Equal(t, map[string]string{"motto": "this field is required"}, fieldErrors(t, err))

	got, err := s.Clean(map[string]interface{}{"motto": "<b>Learn</b>", "bio": "<i> </i>"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"motto": "Learn"}, got)
}
