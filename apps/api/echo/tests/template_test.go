package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core/field"
)

var (
	genderField = field.Descriptor{
		Name: "gender", Label: "Gender", Type: field.TypeSelect, Required: true, Order: 0, Visible: true, Editable: true,
		Options: []field.Option{{Value: "f", Label: "Female"}, {Value: "m", Label: "Male"}},
	}
	admissionField = field.Descriptor{
		Name: "admission_number", Label: "Admission number", Type: field.TypeText, Order: 1, Visible: true,
	}
	hobbiesField = field.Descriptor{
		Name: "hobbies", Label: "Hobbies", Type: field.TypeMultiSelect, Order: 2, Visible: true, Editable: true,
		Options: []field.Option{{Value: "chess", Label: "Chess"}, {Value: "music", Label: "Music"}},
	}
	notesField = field.Descriptor{
		Name: "notes", Label: "Notes", Type: field.TypeTextarea, Order: 3, Editable: true,
	}
)

func Test_templateApi_query(t *testing.T) {
	app := setup(t)
	tpl := app.saveTemplate(t, field.KindParent, genderField)
	empty := func(kind field.Kind) field.Template { return field.Template{Kind: kind, Fields: []field.Descriptor{}} }

	runHTTPTests(t, app, []httpTest{
		{
			name: "all kinds", path: "/v1/settings/templates", wantCode: http.StatusOK,
			wantData: marchallList(t, empty(field.KindStudent), empty(field.KindTeacher), tpl, empty(field.KindManager)),
		},
		{name: "one kind", path: "/v1/settings/templates/parent", wantCode: http.StatusOK, wantData: marchallObj(t, tpl)},
		{name: "kind is case insensitive", path: "/v1/settings/templates/PARENT", wantCode: http.StatusOK, wantData: marchallObj(t, tpl)},
		{
			name: "unknown kind", path: "/v1/settings/templates/janitor", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "entity kind not found"}),
		},
		{
			name: "columns skip hidden fields", path: "/v1/settings/templates/parent/columns", wantCode: http.StatusOK,
			wantData: marchallList(t, field.Column{Name: "gender", Label: "Gender", Type: field.TypeSelect}),
		},
	})
}

func Test_templateApi_update(t *testing.T) {
	app := setup(t)
	v1 := app.saveTemplate(t, field.KindStudent, genderField)

	runHTTPTests(t, app, []httpTest{
		{
			name: "duplicate names", method: http.MethodPut, path: "/v1/settings/templates/student",
			body: []byte(`{"fields": [
				{"name": "gender", "type": "text", "visible": true},
				{"name": "gender", "type": "number", "visible": true}
			]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"fields[1].name": "field names must be unique within a template"}),
		},
		{
			name: "select without options", method: http.MethodPut, path: "/v1/settings/templates/student",
			body:     []byte(`{"fields": [{"name": "house", "type": "select"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"fields[0].options": "select fields need at least one option"}),
		},
		{
			name: "bad name & type", method: http.MethodPut, path: "/v1/settings/templates/student",
			body:     []byte(`{"fields": [{"name": "Bad Name", "type": "colour"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"fields[0].name": "must start with a lowercase letter and contain only lowercase letters, digits and underscores",
				"fields[0].type": "unknown field type",
			}),
		},
		{
			name: "stale version", method: http.MethodPut, path: "/v1/settings/templates/student",
			body:     []byte(`{"version": 7, "fields": []}`),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, map[string]string{"error": field.ErrVersionConflict.Error()}),
		},
	})

	// the template was left untouched
	history, err := app.templates.History(context.Background(), field.KindStudent)
	assert.NoError(t, err)
	assert.Equal(t, []field.Template{v1}, history)

	t.Run("save", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/v1/settings/templates/student", []byte(`{"version": 1, "fields": [
			{"name": "house", "type": "SELECT", "visible": true, "editable": true, "options": [{"value": "red"}, {"value": "blue", "label": "Blue house"}]},
			{"name": "date_of_entry", "type": "date", "order": 1}
		]}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got field.Template
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, field.KindStudent, got.Kind)
		assert.Equal(t, []field.Descriptor{
			{
				Name: "house", Label: "House", Type: field.TypeSelect, Visible: true, Editable: true,
				Options: []field.Option{{Value: "red", Label: "red"}, {Value: "blue", Label: "Blue house"}},
			},
			{Name: "date_of_entry", Label: "Date of entry", Type: field.TypeDate, Order: 1},
		}, got.Fields)
	})
}

func Test_templateApi_order(t *testing.T) {
	app := setup(t)
	app.saveTemplate(t, field.KindTeacher, genderField, admissionField, hobbiesField, notesField)

	names := func(tpl field.Template) []string {
		var ns []string
		for _, d := range tpl.Sorted() {
			ns = append(ns, d.Name)
		}
		return ns
	}

	t.Run("move", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/settings/templates/teacher/move", []byte(`{"name": "notes", "index": 0}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got field.Template
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, []string{"notes", "gender", "admission_number", "hobbies"}, names(got))
		assert.Equal(t, 2, got.Version)
	})

	t.Run("move unknown field", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/settings/templates/teacher/move", []byte(`{"name": "age", "index": 0}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "unknown field age"}),
		}, rec)
	})

	t.Run("reorder", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/v1/settings/templates/teacher/order",
			[]byte(`{"names": ["hobbies", "admission_number", "notes", "gender"]}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got field.Template
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, []string{"hobbies", "admission_number", "notes", "gender"}, names(got))
	})

	t.Run("reorder must list every field", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/v1/settings/templates/teacher/order", []byte(`{"names": ["gender"]}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"names": "every field must be listed exactly once"}),
		}, rec)
	})

	t.Run("history", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/settings/templates/teacher/history")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got []field.Template
		unmarshal(t, rec.Body.Bytes(), &got)
		if assert.Len(t, got, 3) {
			assert.Equal(t, 3, got[0].Version)
			assert.Equal(t, 1, got[2].Version)
		}
	})
}
