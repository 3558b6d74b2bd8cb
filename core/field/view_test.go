package field

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRenderView(t *testing.T) {
	tpl := Template{Kind: KindStudent, Version: 2, Fields: testFields}
	values := map[string]interface{}{
		"gender":  "f",
		"hobbies": []interface{}{"music", "gone"},
		"weight":  42.5,
		"joined":  "2024-09-02",
		"secret":  "hidden",
	}

	displays := RenderView(tpl, values)
	var got []string
	for _, d := range displays {
		got = append(got, d.Name)
	}
	assert.Equal(t, []string{"gender", "hobbies", "weight", "nickname", "joined", "contact", "mobile", "report"}, got)

	assert.Equal(t, "Female", displays[0].Text)
	assert.Equal(t, []string{"music", "gone"}, displays[1].Badges)
	assert.Equal(t, "42.5", displays[2].Text)
	assert.True(t, displays[3].Empty)
	assert.Equal(t, "02 Sep 2024", displays[4].Text)
	assert.True(t, displays[5].Empty)
}

func TestColumnsAndCells(t *testing.T) {
	tpl := Template{Fields: []Descriptor{
		{Name: "gender", Label: "Gender", Type: TypeSelect, Visible: true, Options: []Option{{Value: "f", Label: "Female"}}},
		{Name: "hobbies", Label: "Hobbies", Type: TypeMultiSelect, Visible: true, Order: 1,
			Options: []Option{{Value: "chess", Label: "Chess"}, {Value: "music", Label: "Music"}}},
		{Name: "joined", Label: "Joined", Type: TypeDate, Visible: true, Order: 2},
		{Name: "notes", Label: "Notes", Type: TypeTextarea, Order: 3},
	}}

	assert.Equal(t, []Column{
		{Name: "gender", Label: "Gender", Type: TypeSelect},
		{Name: "hobbies", Label: "Hobbies", Type: TypeMultiSelect},
		{Name: "joined", Label: "Joined", Type: TypeDate},
	}, Columns(tpl))

	cells := Cells(tpl, map[string]interface{}{"gender": "f", "hobbies": []string{"chess", "music"}, "joined": "2024-09-02", "notes": "x"})
	assert.Equal(t, []string{"Female", "Chess, Music", "2024-09-02"}, cells)

	// cells read back to the stored values
	for i, d := range tpl.Visible() {
		assert.NotNil(t, ParseCell(d, cells[i]), d.Name)
	}
	assert.Equal(t, []string{"chess", "music"}, ParseCell(tpl.Fields[1], cells[1]))
}

func TestRenderForm(t *testing.T) {
	tpl := Template{Kind: KindStudent, Version: 3, Fields: testFields}
	values := map[string]interface{}{"gender": "m", "joined": "2024-09-02"}

	form := RenderForm(tpl, values, ModeCreate)
	assert.Equal(t, KindStudent, form.Kind)
	assert.Equal(t, 3, form.Version)
	assert.Len(t, form.Widgets, 8)

	byName := make(map[string]Widget, len(form.Widgets))
	for _, w := range form.Widgets {
		byName[w.Name] = w
	}
	assert.Equal(t, WidgetSelect, byName["gender"].Widget)
	assert.Equal(t, "m", byName["gender"].Value)
	assert.Equal(t, 1, byName["gender"].TabIndex)
	assert.True(t, byName["gender"].Required)
	assert.Equal(t, WidgetCheckboxes, byName["hobbies"].Widget)
	assert.True(t, byName["hobbies"].Multiple)
	assert.Equal(t, []string{}, byName["hobbies"].Value)
	assert.Equal(t, "number", byName["weight"].InputType)
	assert.Equal(t, "", byName["nickname"].Value)
	assert.Equal(t, WidgetFileUpload, byName["report"].Widget)
	assert.NotEmpty(t, byName["report"].Accept)
	assert.False(t, byName["joined"].ReadOnly)

	edit := RenderForm(tpl, values, ModeEdit)
	for _, w := range edit.Widgets {
		assert.Equal(t, w.Name == "joined", w.ReadOnly, w.Name)
	}
}

func TestRenderForm_widgets(t *testing.T) {
	tpl := Template{Kind: KindTeacher, Version: 1, Fields: []Descriptor{
		{Name: "level", Label: "Level", Type: TypeSelect, Visible: true, Order: 1, HelpText: "Highest degree",
			Options: []Option{{Value: "bsc", Label: "Bachelor"}}},
		{Name: "cv", Label: "CV", Type: TypeFile, Visible: true, Editable: true, Order: 0},
	}}

	want := Form{
		Kind:    KindTeacher,
		Version: 1,
		Mode:    ModeEdit,
		Widgets: []Widget{
			{Name: "cv", Label: "CV", Type: TypeFile, Widget: WidgetFileUpload, InputType: "file",
				Accept: defaultFileAccept, TabIndex: 1, Value: "uploads/cv.pdf"},
			{Name: "level", Label: "Level", Type: TypeSelect, Widget: WidgetSelect, ReadOnly: true,
				Options: []Option{{Value: "bsc", Label: "Bachelor"}}, HelpText: "Highest degree", TabIndex: 2, Value: ""},
		},
	}
	got := RenderForm(tpl, map[string]interface{}{"cv": "uploads/cv.pdf"}, ModeEdit)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderForm() mismatch (-want +got):\n%s", diff)
	}
}
