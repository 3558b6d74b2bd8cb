// Package notify tells parents about their children's attendance.
package notify

import (
	"context"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
)

const absenceTemplate = "absence"

type (
	Students interface {
		GetStudentByID(ctx context.Context, id string) (student.Student, error)
	}

	Parents interface {
		GetParentByID(ctx context.Context, id string) (parent.Parent, error)
	}

	Classes interface {
		GetClassByID(ctx context.Context, id string) (academic.Class, error)
	}

	// AbsenceNotifier emails the parents of students marked absent.
	AbsenceNotifier struct {
		students Students
		parents  Parents
		classes  Classes
		mailSvc  core.EmailService
	}

	absenceData struct {
		ParentName  string
		StudentName string
		Status      string
		Date        string
		ClassName   string
		Note        string
	}
)

var _ attendance.Notifier = (*AbsenceNotifier)(nil)

func NewAbsenceNotifier(students Students, parents Parents, classes Classes, mailSvc core.EmailService) *AbsenceNotifier {
	vala.BeginValidation().Validate(
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(parents, "parents"),
		vala.IsNotNil(classes, "classes"),
		vala.IsNotNil(mailSvc, "mailSvc"),
	).CheckAndPanic()
	return &AbsenceNotifier{students: students, parents: parents, classes: classes, mailSvc: mailSvc}
}

// NotifyAbsence sends one message per parent of the student. Parents deleted since are skipped.
func (n *AbsenceNotifier) NotifyAbsence(ctx context.Context, rec attendance.Record) error {
	s, err := n.students.GetStudentByID(ctx, rec.StudentID)
	if err != nil {
		return errors.Wrap(err, "getting absent student")
	}
	var className string
	if c, err := n.classes.GetClassByID(ctx, rec.ClassID); err == nil {
		className = c.Name
	}
	date := rec.Date
	if t, err := time.Parse(attendance.DateLayout, rec.Date); err == nil {
		date = t.Format("Monday 02 January 2006")
	}

	messages := make([]*core.EmailMessage, 0, len(s.ParentIDs))
	for _, pid := range s.ParentIDs {
		p, err := n.parents.GetParentByID(ctx, pid)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return errors.Wrap(err, "getting parent")
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: p.FullName(), Address: p.Email}},
			Subject:      s.FullName() + " was absent",
			TemplateName: absenceTemplate,
			TemplateData: absenceData{
				ParentName:  p.FullName(),
				StudentName: s.FullName(),
				Status:      string(rec.Status),
				Date:        date,
				ClassName:   className,
				Note:        rec.Note,
			},
		})
	}
	if len(messages) > 0 {
		n.mailSvc.SendMessages(messages...)
	}
	return nil
}
