package notify

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
	appfs "github.com/trezcool/shule/fs"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
)

type directory struct {
	students map[string]student.Student
	parents  map[string]parent.Parent
	classes  map[string]academic.Class
}

func (d directory) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	if s, ok := d.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (d directory) GetParentByID(_ context.Context, id string) (parent.Parent, error) {
	if p, ok := d.parents[id]; ok {
		return p, nil
	}
	return parent.Parent{}, parent.ErrNotFound
}

func (d directory) GetClassByID(_ context.Context, id string) (academic.Class, error) {
	if c, ok := d.classes[id]; ok {
		return c, nil
	}
	return academic.Class{}, academic.ErrClassNotFound
}

func TestAbsenceNotifier_NotifyAbsence(t *testing.T) {
	logger := logsvc.NewRollbarLogger(io.Discard, "TEST", core.NewTestConfig())
	logger.Enable(false)
	conf := core.NewTestConfig()
	core.ParseEmailTemplates(conf, appfs.FS, logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	dir := directory{
		students: map[string]student.Student{
			"s1": {Base: person.Base{ID: "s1", Firstname: "Neema", Lastname: "Wanjiru"}, ParentIDs: []string{"p1", "gone", "p2"}},
			"s2": {Base: person.Base{ID: "s2", Firstname: "Baraka", Lastname: "Kamau"}},
		},
		parents: map[string]parent.Parent{
			"p1": {Base: person.Base{ID: "p1", Firstname: "Grace", Lastname: "Wanjiru"}, Email: "grace@shule.test"},
			"p2": {Base: person.Base{ID: "p2", Firstname: "John", Lastname: "Wanjiru"}, Email: "john@shule.test"},
		},
		classes: map[string]academic.Class{"c1": {ID: "c1", Name: "7A"}},
	}
	n := NewAbsenceNotifier(dir, dir, dir, mailSvc)
	ctx := context.Background()

	rec := attendance.Record{StudentID: "s1", ClassID: "c1", Date: "2024-09-02", Status: attendance.StatusAbsent, Note: "fever"}
	require.NoError(t, n.NotifyAbsence(ctx, rec))

	sent := mailSvc.SentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "grace@shule.test", sent[0].To[0].Address)
	assert.Equal(t, "john@shule.test", sent[1].To[0].Address)
	assert.Equal(t, "Neema Wanjiru was absent", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Neema Wanjiru was marked absent on Monday 02 September 2024 in class 7A.")
	data, ok := sent[0].TemplateData.(absenceData)
	require.True(t, ok)
	assert.Equal(t, absenceData{
		ParentName:  "Grace Wanjiru",
		StudentName: "Neema Wanjiru",
		Status:      "absent",
		Date:        "Monday 02 September 2024",
		ClassName:   "7A",
		Note:        "fever",
	}, data)

	t.Run("no parents", func(t *testing.T) {
		mailSvc.Reset()
		require.NoError(t, n.NotifyAbsence(ctx, attendance.Record{StudentID: "s2", ClassID: "c1", Date: "2024-09-02"}))
		assert.Empty(t, mailSvc.SentMessages())
	})

	t.Run("unknown student", func(t *testing.T) {
		err := n.NotifyAbsence(ctx, attendance.Record{StudentID: "lol"})
		assert.Error(t, err)
		assert.True(t, core.IsNotFound(err))
	})
}
