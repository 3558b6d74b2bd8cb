package seed_test

import (
	"context"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
	appfs "github.com/trezcool/shule/fs"
	logsvc "github.com/trezcool/shule/services/logger"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/seed"
)

func newServices(t *testing.T) seed.Services {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	dir := inmemdb.NewDirectory(db)
	studentRepo := inmemdb.NewStudentRepository(db)

	templates := field.NewService(inmemdb.NewTemplateRepository(db))
	return seed.Services{
		Templates: templates,
		Academic:  academic.NewService(inmemdb.NewAcademicRepository(db), dir),
		Students:  student.NewService(studentRepo, dir, templates),
		Teachers:  teacher.NewService(inmemdb.NewTeacherRepository(db), dir, templates),
		Parents:   parent.NewService(inmemdb.NewParentRepository(db), studentRepo, templates),
		Managers:  manager.NewService(inmemdb.NewManagerRepository(db), templates),
		Exams:     exam.NewService(inmemdb.NewExamRepository(db), dir),
	}
}

func newLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(io.Discard, "TEST", core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func TestReadTemplates(t *testing.T) {
	tpls, err := seed.ReadTemplates(appfs.FS, seed.TemplatesPath)
	require.NoError(t, err)
	require.Len(t, tpls, len(field.Kinds))

	for _, tpl := range tpls {
		ut := field.UpdateTemplate{Fields: tpl.Fields}
		assert.NoError(t, ut.Validate(), "%s template", tpl.Kind)
	}

	_, err = seed.ReadTemplates(fstest.MapFS{
		"t.yaml": {Data: []byte("templates:\n  - kind: janitor\n    fields: []\n")},
	}, "t.yaml")
	assert.Error(t, err)

	_, err = seed.ReadTemplates(fstest.MapFS{}, "t.yaml")
	assert.Error(t, err)
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()
	svcs := newServices(t)
	seeder := seed.NewSeeder(appfs.FS, svcs, newLogger())

	require.NoError(t, seeder.InstallTemplates(ctx))
	require.NoError(t, seeder.InstallTemplates(ctx))
	all, err := svcs.Templates.QueryAll(ctx)
	require.NoError(t, err)
	for _, tpl := range all {
		assert.Equal(t, 1, tpl.Version, "%s template", tpl.Kind)
		assert.NotEmpty(t, tpl.Fields)
	}

	require.NoError(t, seeder.LoadDemo(ctx))
	require.NoError(t, seeder.LoadDemo(ctx)) // already loaded

	levels, err := svcs.Academic.QueryLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, 2)

	classes, err := svcs.Academic.QueryClasses(ctx, academic.ClassFilter{})
	require.NoError(t, err)
	assert.Len(t, classes, 3)

	teachers, err := svcs.Teachers.Query(ctx, teacher.QueryFilter{Search: "amina"})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Len(t, teachers[0].ClassIDs, 2)
	assert.Equal(t, "master", teachers[0].DynamicFields["qualification"])

	students, err := svcs.Students.Query(ctx, student.QueryFilter{Search: "kamau"})
	require.NoError(t, err)
	require.Len(t, students, 2)
	for _, s := range students {
		assert.Len(t, s.ParentIDs, 1)
		assert.True(t, s.BirthDate.Valid)
	}

	parents, err := svcs.Parents.Query(ctx, parent.QueryFilter{Search: "peter"})
	require.NoError(t, err)
	require.Len(t, parents, 1)
	family, err := svcs.Parents.GetFamily(ctx, parents[0].ID)
	require.NoError(t, err)
	assert.Len(t, family.Children, 2)

	questions, err := svcs.Exams.QueryQuestions(ctx, exam.QuestionFilter{})
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}
