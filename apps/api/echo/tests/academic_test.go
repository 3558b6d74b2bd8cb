package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/academic"
)

func Test_academicApi_levels(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	g8, err := app.academics.CreateLevel(ctx, academic.NewLevel{Name: "Grade 8", Order: 8})
	require.NoError(t, err)
	g7, err := app.academics.CreateLevel(ctx, academic.NewLevel{Name: "Grade 7", Order: 7})
	require.NoError(t, err)
	_, err = app.academics.CreateClass(ctx, academic.NewClass{Name: "7A", LevelID: g7.ID})
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{name: "sorted by order", path: "/v1/levels", wantCode: http.StatusOK, wantData: marchallList(t, g7, g8)},
		{
			name: "name required", method: http.MethodPost, path: "/v1/levels", body: []byte(`{"order": 1}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "name taken", method: http.MethodPost, path: "/v1/levels", body: []byte(`{"name": "grade 7"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this name is already used"}),
		},
		{
			name: "rename", method: http.MethodPut, path: "/v1/levels/" + g8.ID, body: []byte(`{"name": "Form 1", "order": 8}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, academic.Level{ID: g8.ID, Name: "Form 1", Order: 8}),
		},
		{
			name: "delete level in use", method: http.MethodDelete, path: "/v1/levels/" + g7.ID,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "this level still has classes or subjects"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/levels/" + g8.ID, wantCode: http.StatusNoContent},
		{
			name: "deleted", path: "/v1/levels/" + g8.ID,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "level not found"}),
		},
	})
}

func Test_academicApi_classes(t *testing.T) {
	app := setup(t)
	cls := createClass(t, app, "Grade 7", "7A")
	createStudent(t, app, "Neema", "Wanjiru", cls.ID, nil)

	t.Run("detail counts students", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/classes/"+cls.ID)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got academic.ClassDetail
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, cls, got.Class)
		assert.Equal(t, "Grade 7", got.Level.Name)
		assert.Equal(t, 1, got.Enrolled)
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "unknown level & teacher", method: http.MethodPost, path: "/v1/classes",
			body:     []byte(`{"name": "7B", "level_id": "lol", "teacher_id": "lol"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"level_id": "level not found", "teacher_id": "teacher not found"}),
		},
		{
			name: "capacity must be positive", method: http.MethodPost, path: "/v1/classes",
			body:     []byte(`{"name": "7B", "level_id": "` + cls.LevelID + `", "capacity": 0}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"capacity": "must be at least 1"}),
		},
		{
			name: "filter by level", path: "/v1/classes?level_id=" + cls.LevelID,
			wantCode: http.StatusOK, wantData: marchallList(t, cls),
		},
		{
			name: "delete class with students", method: http.MethodDelete, path: "/v1/classes/" + cls.ID,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "this class still has students"}),
		},
	})
}

func Test_academicApi_subjects(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	g7, err := app.academics.CreateLevel(ctx, academic.NewLevel{Name: "Grade 7"})
	require.NoError(t, err)

	var math academic.Subject
	t.Run("create", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/subjects", []byte(`{"name": "Mathematics", "code": "math", "level_ids": ["`+g7.ID+`"]}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec.Body.Bytes(), &math)
		assert.Equal(t, "MATH", math.Code)
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "code taken", method: http.MethodPost, path: "/v1/subjects", body: []byte(`{"name": "Maths", "code": "MATH"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": "this code is already used"}),
		},
		{
			name: "code must be alphanumeric", method: http.MethodPost, path: "/v1/subjects", body: []byte(`{"name": "Art", "code": "A-1"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": "code can only contain alphanumeric characters"}),
		},
		{name: "filter by level", path: "/v1/subjects?level_id=" + g7.ID, wantCode: http.StatusOK, wantData: marchallList(t, math)},
		{name: "filter by other level", path: "/v1/subjects?level_id=lol", wantCode: http.StatusOK, wantData: marchallList(t)},
	})
}
