package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
)

func createParent(t *testing.T, app *testApp, first, last, email string) parent.Parent {
	p, err := app.parents.Create(context.Background(), parent.NewParent{
		Input: person.Input{Firstname: first, Lastname: last},
		Email: email,
	})
	require.NoError(t, err)
	return p
}

func Test_parentApi_create(t *testing.T) {
	app := setup(t)
	app.saveTemplate(t, field.KindParent, field.Descriptor{
		Name: "relationship", Label: "Relationship", Type: field.TypeSelect, Required: true, Visible: true, Editable: true,
		Options: []field.Option{{Value: "mother", Label: "Mother"}, {Value: "father", Label: "Father"}},
	})
	createParent(t, app, "Wanjiru", "Kamau", "wanjiru@example.com")

	runHTTPTests(t, app, []httpTest{
		{
			name: "fields required", method: http.MethodPost, path: "/v1/parents",
			body:     []byte(`{"firstname": "Otieno", "lastname": "Odhiambo", "dynamic_fields": {}}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "bad email & phone", method: http.MethodPost, path: "/v1/parents",
			body:     []byte(`{"firstname": "Otieno", "lastname": "Odhiambo", "email": "lol", "phone": "call me"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email": "email must be a valid email address",
				"phone": "must be a valid phone number",
			}),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/parents",
			body:     []byte(`{"firstname": "Otieno", "lastname": "Odhiambo", "email": "WANJIRU@example.com", "dynamic_fields": {"relationship": "father"}}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this email is already used"}),
		},
		{
			name: "dynamic field required", method: http.MethodPost, path: "/v1/parents",
			body:     []byte(`{"firstname": "Otieno", "lastname": "Odhiambo", "email": "otieno@example.com", "dynamic_fields": {}}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dynamic_fields.relationship": "this field is required"}),
		},
	})

	t.Run("valid", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/parents", []byte(`{
			"firstname": "Otieno", "lastname": "Odhiambo", "email": "Otieno@Example.com", "phone": "+254 700 000 001",
			"dynamic_fields": {"relationship": "father"}
		}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got parent.Parent
		unmarshal(t, rec.Body.Bytes(), &got)
		assert.Equal(t, "otieno@example.com", got.Email)
		assert.Equal(t, "father", got.DynamicFields["relationship"])
	})
}

func Test_parentApi_family(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	mum := createParent(t, app, "Wanjiru", "Kamau", "wanjiru@example.com")
	lonely := createParent(t, app, "Akinyi", "Otieno", "akinyi@example.com")
	zawadi, err := app.students.Create(ctx, student.NewStudent{Input: person.Input{Firstname: "Zawadi", Lastname: "Kamau"}, ParentIDs: []string{mum.ID}})
	require.NoError(t, err)
	neema, err := app.students.Create(ctx, student.NewStudent{Input: person.Input{Firstname: "Neema", Lastname: "Kamau"}, ParentIDs: []string{mum.ID}})
	require.NoError(t, err)
	createStudent(t, app, "Baraka", "Otieno", "", nil)

	runHTTPTests(t, app, []httpTest{
		{
			name: "children sorted by name", path: "/v1/parents/" + mum.ID + "/family",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, parent.Family{Parent: mum, Children: []student.Student{neema, zawadi}}),
		},
		{
			name: "no children", path: "/v1/parents/" + lonely.ID + "/family",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, parent.Family{Parent: lonely, Children: []student.Student{}}),
		},
		{
			name: "unknown parent", path: "/v1/parents/lol/family",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "parent not found"}),
		},
		{
			name: "search by email", path: "/v1/parents?search=AKINYI@",
			wantCode: http.StatusOK,
			wantData: marchallList(t, lonely),
		},
	})
}
