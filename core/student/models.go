package student

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
)

const birthDateLayout = "2006-01-02"

type Student struct {
	person.Base
	ClassID   string    `json:"class_id"`
	ParentIDs []string  `json:"parent_ids"`
	BirthDate null.Time `json:"birth_date"`
}

func (s Student) HasParent(id string) bool {
	return core.ContainsString(s.ParentIDs, id)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	person.Input
	ClassID   string    `json:"class_id" validate:"omitempty,max=64"`
	ParentIDs []string  `json:"parent_ids" validate:"omitempty,unique,dive,required"`
	BirthDate null.Time `json:"birth_date"`
}

func (ns *NewStudent) Validate() error {
	ns.Clean()
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.ParentIDs = core.CleanStrings(ns.ParentIDs)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	if ns.BirthDate.Valid && ns.BirthDate.Time.After(NowFunc()) {
		return core.NewValidationError(nil, core.FieldError{Field: "birth_date", Error: "must be in the past"})
	}
	return nil
}

// UpdateStudent replaces the attributes of an existing Student.
// A nil DynamicFields keeps the stored values.
type UpdateStudent NewStudent

func (us *UpdateStudent) Validate() error {
	return (*NewStudent)(us).Validate()
}

type QueryFilter struct {
	Search   string `query:"search"`
	ClassID  string `query:"class_id"`
	ParentID string `query:"parent_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.ParentID = core.CleanString(qf.ParentID)
}

// Sheet columns preceding the template fields.
var sheetColumns = person.Columns(
	field.Descriptor{Name: "class", Label: "Class", Type: field.TypeText, Visible: true, Editable: true},
	field.Descriptor{Name: "birth_date", Label: "Birth date", Type: field.TypeDate, Visible: true, Editable: true},
)
