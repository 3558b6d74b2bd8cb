package teacher

import (
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
)

type Teacher struct {
	person.Base
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	SubjectIDs []string `json:"subject_ids"`
	ClassIDs   []string `json:"class_ids"`
}

func (t Teacher) Teaches(subjectID string) bool {
	return core.ContainsString(t.SubjectIDs, subjectID)
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	person.Input
	Email      string   `json:"email" validate:"required,email"`
	Phone      string   `json:"phone" validate:"omitempty,phone"`
	SubjectIDs []string `json:"subject_ids" validate:"omitempty,unique"`
	ClassIDs   []string `json:"class_ids" validate:"omitempty,unique"`
}

func (nt *NewTeacher) Validate() error {
	nt.Clean()
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	nt.SubjectIDs = core.CleanStrings(nt.SubjectIDs)
	nt.ClassIDs = core.CleanStrings(nt.ClassIDs)
	return core.Validate.Struct(nt)
}

// UpdateTeacher replaces the attributes of an existing Teacher.
// A nil DynamicFields keeps the stored values.
type UpdateTeacher NewTeacher

func (ut *UpdateTeacher) Validate() error {
	return (*NewTeacher)(ut).Validate()
}

type QueryFilter struct {
	Search    string `query:"search"`
	SubjectID string `query:"subject_id"`
	ClassID   string `query:"class_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.ClassID = core.CleanString(qf.ClassID)
}

var sheetColumns = person.Columns(
	field.Descriptor{Name: "email", Label: "Email", Type: field.TypeEmail, Required: true, Visible: true, Editable: true},
	field.Descriptor{Name: "phone", Label: "Phone", Type: field.TypePhone, Visible: true, Editable: true},
)
