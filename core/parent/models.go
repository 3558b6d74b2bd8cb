package parent

import (
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
)

// Parent is a student guardian. Children are the students listing the parent in their ParentIDs.
type Parent struct {
	person.Base
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// NewParent contains information needed to create a new Parent.
type NewParent struct {
	person.Input
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

func (np *NewParent) Validate() error {
	np.Clean()
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Phone = core.CleanString(np.Phone)
	return core.Validate.Struct(np)
}

// UpdateParent replaces the attributes of an existing Parent.
// A nil DynamicFields keeps the stored values.
type UpdateParent NewParent

func (up *UpdateParent) Validate() error {
	return (*NewParent)(up).Validate()
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Family is a Parent with its children.
type Family struct {
	Parent   Parent            `json:"parent"`
	Children []student.Student `json:"children"`
}

var sheetColumns = person.Columns(
	field.Descriptor{Name: "email", Label: "Email", Type: field.TypeEmail, Required: true, Visible: true, Editable: true},
	field.Descriptor{Name: "phone", Label: "Phone", Type: field.TypePhone, Visible: true, Editable: true},
)
