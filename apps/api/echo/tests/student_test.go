package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/services/spreadsheet"
)

var day0 = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

func createStudent(t *testing.T, app *testApp, first, last, classID string, dyn map[string]interface{}) student.Student {
	s, err := app.students.Create(context.Background(), student.NewStudent{
		Input:   person.Input{Firstname: first, Lastname: last, DynamicFields: dyn},
		ClassID: classID,
	})
	require.NoError(t, err)
	return s
}

func createClass(t *testing.T, app *testApp, levelName, className string) academic.Class {
	ctx := context.Background()
	lvl, err := app.academics.CreateLevel(ctx, academic.NewLevel{Name: levelName})
	require.NoError(t, err)
	cls, err := app.academics.CreateClass(ctx, academic.NewClass{Name: className, LevelID: lvl.ID})
	require.NoError(t, err)
	return cls
}

func Test_studentApi_create(t *testing.T) {
	app := setup(t)
	app.saveTemplate(t, field.KindStudent, genderField, admissionField, hobbiesField)

	runHTTPTests(t, app, []httpTest{
		{
			name: "names required", method: http.MethodPost, path: "/v1/students", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"firstname": "this field is required",
				"lastname":  "this field is required",
			}),
		},
		{
			name: "required dynamic field", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"firstname": "Neema", "lastname": "Wanjiru", "dynamic_fields": {"hobbies": []}}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dynamic_fields.gender": "this field is required"}),
		},
		{
			name: "invalid dynamic values", method: http.MethodPost, path: "/v1/students",
			body: []byte(`{"firstname": "Neema", "lastname": "Wanjiru", "dynamic_fields": {
				"gender": "x", "hobbies": ["chess", "golf"], "age": 12
			}}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"dynamic_fields.age":     "unknown field",
				"dynamic_fields.gender":  `invalid choice "x"`,
				"dynamic_fields.hobbies": `invalid choice "golf"`,
			}),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"firstname": "Neema", "lastname": "Wanjiru", "class_id": "nope", "dynamic_fields": {"gender": "f"}}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class_id": "class not found"}),
		},
	})

	t.Run("valid", func(t *testing.T) {
		cls := createClass(t, app, "Grade 7", "7A")
		req, rec := newRequest(http.MethodPost, "/v1/students", []byte(`{
			"firstname": " <b>Neema</b> ", "lastname": "Wanjiru", "class_id": "`+cls.ID+`",
			"birth_date": "2012-03-14T00:00:00Z",
			"dynamic_fields": {"gender": "f", "admission_number": "ADM-1", "hobbies": ["music", "chess"]}
		}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got student.Student
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Neema", got.Firstname)
		assert.Equal(t, cls.ID, got.ClassID)
		assert.True(t, got.BirthDate.Valid)
		assert.Equal(t, time.Date(2012, 3, 14, 0, 0, 0, 0, time.UTC), got.BirthDate.Time.UTC())
		assert.Equal(t, map[string]interface{}{
			"gender":           "f",
			"admission_number": "ADM-1",
			"hobbies":          []interface{}{"music", "chess"},
		}, got.DynamicFields)
	})
}

func Test_studentApi_query(t *testing.T) {
	app := setup(t)
	tickClock(t, &student.NowFunc, day0)
	cls := createClass(t, app, "Grade 7", "7A")

	neema := createStudent(t, app, "Neema", "Wanjiru", cls.ID, nil)
	baraka := createStudent(t, app, "Baraka", "Kamau", "", nil)
	zawadi := createStudent(t, app, "Zawadi", "Kamau", cls.ID, nil)

	path := func(search, ordering, classID string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if classID != "" {
			v.Add("class_id", classID)
		}
		return "/v1/students?" + v.Encode()
	}

	runHTTPTests(t, app, []httpTest{
		{name: "all, oldest first", path: "/v1/students", wantCode: http.StatusOK, wantData: marchallList(t, neema, baraka, zawadi)},
		{name: "search (unknown)", path: path("lol", "", ""), wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "search=KAM", path: path("KAM", "", ""), wantCode: http.StatusOK, wantData: marchallList(t, baraka, zawadi)},
		{name: "search full name", path: path("neema wan", "", ""), wantCode: http.StatusOK, wantData: marchallList(t, neema)},
		{name: "class_id", path: path("", "", cls.ID), wantCode: http.StatusOK, wantData: marchallList(t, neema, zawadi)},
		{
			name: "ordering=lastname,-firstname", path: path("", "lastname,-firstname", ""), wantCode: http.StatusOK,
			wantData: marchallList(t, zawadi, baraka, neema),
		},
		{name: "ordering=-created_at", path: path("", "-created_at", ""), wantCode: http.StatusOK, wantData: marchallList(t, zawadi, baraka, neema)},
		{
			name: "ordering (unknown)", path: path("", "age", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"ordering": "cannot order by age"}),
		},
		{name: "retrieve", path: "/v1/students/" + baraka.ID, wantCode: http.StatusOK, wantData: marchallObj(t, baraka)},
		{
			name: "retrieve (unknown)", path: "/v1/students/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	})
}

func Test_studentApi_update(t *testing.T) {
	app := setup(t)
	tickClock(t, &student.NowFunc, day0)
	app.saveTemplate(t, field.KindStudent, genderField, admissionField, hobbiesField)
	s := createStudent(t, app, "Neema", "Wanjiru", "", map[string]interface{}{"gender": "f", "admission_number": "ADM-1"})

	t.Run("put keeps locked fields", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/v1/students/"+s.ID, []byte(`{
			"firstname": "Neema", "lastname": "Otieno",
			"dynamic_fields": {"gender": "f", "admission_number": "HACKED", "hobbies": ["chess"]}
		}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got student.Student
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, "Otieno", got.Lastname)
		assert.Equal(t, map[string]interface{}{
			"gender": "f", "admission_number": "ADM-1", "hobbies": []interface{}{"chess"},
		}, got.DynamicFields)
	})

	t.Run("put without dynamic fields keeps them", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/v1/students/"+s.ID, []byte(`{"firstname": "Neema", "lastname": "Wanjiru"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got student.Student
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, "f", got.DynamicFields["gender"])
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "patch locked field", method: http.MethodPatch, path: "/v1/students/" + s.ID + "/fields/admission_number",
			body: []byte(`{"value": "ADM-2"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"admission_number": "this field is not editable"}),
		},
		{
			name: "patch unknown field", method: http.MethodPatch, path: "/v1/students/" + s.ID + "/fields/age",
			body: []byte(`{"value": 3}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"age": "unknown field"}),
		},
		{
			name: "patch invalid value", method: http.MethodPatch, path: "/v1/students/" + s.ID + "/fields/gender",
			body: []byte(`{"value": "x"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"gender": `invalid choice "x"`}),
		},
		{
			name: "patch required field to empty", method: http.MethodPatch, path: "/v1/students/" + s.ID + "/fields/gender",
			body: []byte(`{"value": ""}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"gender": "this field is required"}),
		},
		{
			name: "patch empty firstname", method: http.MethodPatch, path: "/v1/students/" + s.ID + "/fields/firstname",
			body: []byte(`{"value": "  "}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"firstname": "this field is required"}),
		},
		{
			name: "patch unknown student", method: http.MethodPatch, path: "/v1/students/lol/fields/gender",
			body: []byte(`{"value": "m"}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	})

	t.Run("patch", func(t *testing.T) {
		req, rec := newRequest(http.MethodPatch, "/v1/students/"+s.ID+"/fields/hobbies", []byte(`{"value": ["music"]}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newRequest(http.MethodPatch, "/v1/students/"+s.ID+"/fields/lastname", []byte(`{"value": "Kamau"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got, err := app.students.GetByID(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kamau", got.Lastname)
		assert.Equal(t, []string{"music"}, got.DynamicFields["hobbies"])
		assert.True(t, got.UpdatedAt.After(s.UpdatedAt))
	})
}

func Test_studentApi_formAndView(t *testing.T) {
	app := setup(t)
	app.saveTemplate(t, field.KindStudent, genderField, admissionField, hobbiesField, notesField)
	s := createStudent(t, app, "Neema", "Wanjiru", "", map[string]interface{}{
		"gender": "f", "admission_number": "ADM-1", "hobbies": []string{"chess", "music"}, "notes": "allergic",
	})

	t.Run("create form", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/form")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var form field.Form
		unmarshal(t, rec.Body.Bytes(), &form)
		assert.Equal(t, field.ModeCreate, form.Mode)
		if assert.Len(t, form.Widgets, 3) { // notes is hidden
			assert.Equal(t, "gender", form.Widgets[0].Name)
			assert.Equal(t, field.WidgetSelect, form.Widgets[0].Widget)
			assert.Equal(t, "", form.Widgets[0].Value)
			assert.False(t, form.Widgets[1].ReadOnly)
			assert.Equal(t, field.WidgetCheckboxes, form.Widgets[2].Widget)
			assert.Equal(t, []interface{}{}, form.Widgets[2].Value)
		}
	})

	t.Run("edit form", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/form?id="+s.ID)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var form field.Form
		unmarshal(t, rec.Body.Bytes(), &form)
		assert.Equal(t, field.ModeEdit, form.Mode)
		if assert.Len(t, form.Widgets, 3) {
			assert.Equal(t, "f", form.Widgets[0].Value)
			assert.True(t, form.Widgets[1].ReadOnly)
			assert.Equal(t, []interface{}{"chess", "music"}, form.Widgets[2].Value)
		}
	})

	t.Run("view", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/"+s.ID+"/view")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var detail struct {
			Record  student.Student `json:"record"`
			Display []field.Display `json:"display"`
		}
		unmarshal(t, rec.Body.Bytes(), &detail)
		assert.Equal(t, s.ID, detail.Record.ID)
		assert.Equal(t, []field.Display{
			{Name: "gender", Label: "Gender", Type: field.TypeSelect, Text: "Female"},
			{Name: "admission_number", Label: "Admission number", Type: field.TypeText, Text: "ADM-1"},
			{
				Name: "hobbies", Label: "Hobbies", Type: field.TypeMultiSelect,
				Text: "Chess, Music", Badges: []string{"Chess", "Music"},
			},
		}, detail.Display)
	})
}

func Test_studentApi_destroy(t *testing.T) {
	app := setup(t)
	s1 := createStudent(t, app, "A", "One", "", nil)
	s2 := createStudent(t, app, "B", "Two", "", nil)
	s3 := createStudent(t, app, "C", "Three", "", nil)

	runHTTPTests(t, app, []httpTest{
		{name: "one", method: http.MethodDelete, path: "/v1/students/" + s1.ID, wantCode: http.StatusNoContent},
		{name: "many", method: http.MethodDelete, path: "/v1/students?id=" + s2.ID + "&id=lol", wantCode: http.StatusNoContent},
		{name: "left", path: "/v1/students", wantCode: http.StatusOK, wantData: marchallList(t, s3)},
	})
}

func Test_studentApi_importExport(t *testing.T) {
	app := setup(t)
	app.saveTemplate(t, field.KindStudent, genderField, admissionField, hobbiesField)
	cls := createClass(t, app, "Grade 7", "7A")

	sheet := core.Sheet{
		Headers: []string{"First name", "lastname", "CLASS", "Birth date", "gender", "Admission number", "hobbies"},
		Rows: [][]string{
			{"Neema", "Wanjiru", "7a", "2012-03-14", "Female", "ADM-1", "Chess, music"},
			{"", "", "", "", "", "", ""},
			{"Baraka", "Kamau", "8B", "", "m", "ADM-2", ""},
			{"Zawadi", "", "", "", "f", "", ""},
		},
	}

	t.Run("import", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", "students.xlsx", xlsxBytes(t, sheet))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res core.ImportResult
		unmarshal(t, rec.Body.Bytes(), &res)
		assert.Len(t, res.Created, 1)
		assert.Equal(t, []core.RowError{
			{Row: 4, Fields: map[string]string{"class": "class not found"}},
			{Row: 5, Fields: map[string]string{"lastname": "this field is required"}},
		}, res.Skipped)

		neema, err := app.students.GetByID(context.Background(), res.Created[0])
		require.NoError(t, err)
		assert.Equal(t, cls.ID, neema.ClassID)
		assert.Equal(t, []string{"chess", "music"}, neema.DynamicFields["hobbies"])
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "import without file", method: http.MethodPost, path: "/v1/students/import",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "this field is required"}),
		},
	})

	t.Run("import bad headers", func(t *testing.T) {
		bad := core.Sheet{Headers: []string{"First name", "Gendre"}, Rows: [][]string{{"Neema", "f"}}}
		req, rec := newUploadRequest(t, "/v1/students/import", "students.xlsx", xlsxBytes(t, bad))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"Gendre":    `unknown column; did you mean "Gender"?`,
				"Last name": "missing column",
			}),
		}, rec)
	})

	t.Run("import not a workbook", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", "students.csv", []byte("a,b\n1,2\n"))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "could not read the spreadsheet; upload an .xlsx file"}),
		}, rec)
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/export")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, spreadsheet.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="students-`)

		got, err := spreadsheet.Read(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, []string{"First name", "Last name", "Class", "Birth date", "Gender", "Admission number", "Hobbies"}, got.Headers)
		assert.Equal(t, [][]string{{"Neema", "Wanjiru", "7A", "2012-03-14", "Female", "ADM-1", "Chess, Music"}}, got.Rows)
	})
}
