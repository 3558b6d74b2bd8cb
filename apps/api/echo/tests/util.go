package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
	appfs "github.com/trezcool/shule/fs"
	"github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/services/notify"
	"github.com/trezcool/shule/services/spreadsheet"
	"github.com/trezcool/shule/storage/database/inmem"
)

type testApp struct {
	*Server

	mailSvc     *emailsvc.ConsoleServiceMock
	templates   *field.Service
	students    *student.Service
	teachers    *teacher.Service
	parents     *parent.Service
	managers    *manager.Service
	academics   *academic.Service
	attendances *attendance.Service
	exams       *exam.Service
}

// setup wires a Server over an empty in-memory database.
func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(io.Discard, "TEST", conf)
	logger.Enable(false)

	db, err := inmemdb.Open()
	require.NoError(t, err)
	dir := inmemdb.NewDirectory(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	parentRepo := inmemdb.NewParentRepository(db)
	academicRepo := inmemdb.NewAcademicRepository(db)

	core.ParseEmailTemplates(conf, appfs.FS, logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	notifier := notify.NewAbsenceNotifier(studentRepo, parentRepo, academicRepo, mailSvc)

	app := &testApp{mailSvc: mailSvc}
	app.templates = field.NewService(inmemdb.NewTemplateRepository(db))
	app.students = student.NewService(studentRepo, dir, app.templates)
	app.teachers = teacher.NewService(inmemdb.NewTeacherRepository(db), dir, app.templates)
	app.parents = parent.NewService(parentRepo, studentRepo, app.templates)
	app.managers = manager.NewService(inmemdb.NewManagerRepository(db), app.templates)
	app.academics = academic.NewService(academicRepo, dir)
	app.attendances = attendance.NewService(inmemdb.NewAttendanceRepository(db), dir, notifier, logger)
	app.exams = exam.NewService(inmemdb.NewExamRepository(db), dir)

	app.Server = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		TemplateSvc:   app.templates,
		StudentSvc:    app.students,
		TeacherSvc:    app.teachers,
		ParentSvc:     app.parents,
		ManagerSvc:    app.managers,
		AcademicSvc:   app.academics,
		AttendanceSvc: app.attendances,
		ExamSvc:       app.exams,
	})
	return app
}

// saveTemplate replaces the kind's template with fields.
func (app *testApp) saveTemplate(t *testing.T, kind field.Kind, fields ...field.Descriptor) field.Template {
	tpl, err := app.templates.Save(context.Background(), kind, field.UpdateTemplate{Fields: fields}, 0)
	require.NoError(t, err)
	return tpl
}

// tickClock makes *now return instants one minute apart, starting at start.
func tickClock(t *testing.T, now *func() time.Time, start time.Time) {
	orig := *now
	n := 0
	*now = func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
	t.Cleanup(func() { *now = orig })
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// newUploadRequest posts content as the `file` field of a multipart form.
func newUploadRequest(t *testing.T, path, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func xlsxBytes(t *testing.T, sheet core.Sheet) []byte {
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.Write(&buf, "Sheet1", sheet))
	return buf.Bytes()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", data, err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newRequest(method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func assertNoMails(t *testing.T, app *testApp) {
	assert.Empty(t, app.mailSvc.SentMessages())
}
