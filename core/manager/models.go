package manager

import (
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
)

// Positions
const (
	PositionPrincipal       = "principal"
	PositionDeputyPrincipal = "deputy_principal"
	PositionBursar          = "bursar"
	PositionSecretary       = "secretary"
	PositionCoordinator     = "coordinator"
)

var Positions = []Position{
	{Name: "Principal", Value: PositionPrincipal},
	{Name: "Deputy principal", Value: PositionDeputyPrincipal},
	{Name: "Bursar", Value: PositionBursar},
	{Name: "Secretary", Value: PositionSecretary},
	{Name: "Coordinator", Value: PositionCoordinator},
}

type Position struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Manager struct {
	person.Base
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

// NewManager contains information needed to create a new Manager.
type NewManager struct {
	person.Input
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Position string `json:"position" validate:"required,position"`
}

func (nm *NewManager) Validate() error {
	nm.Clean()
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Phone = core.CleanString(nm.Phone)
	nm.Position = positionValue(nm.Position)
	return core.Validate.Struct(nm)
}

// UpdateManager replaces the attributes of an existing Manager.
// A nil DynamicFields keeps the stored values.
type UpdateManager NewManager

func (um *UpdateManager) Validate() error {
	return (*NewManager)(um).Validate()
}

type QueryFilter struct {
	Search   string `query:"search"`
	Position string `query:"position"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Position = core.CleanString(qf.Position, true /* lower */)
}

func positionOptions() []field.Option {
	opts := make([]field.Option, 0, len(Positions))
	for _, p := range Positions {
		opts = append(opts, field.Option{Value: p.Value, Label: p.Name})
	}
	return opts
}

var sheetColumns = person.Columns(
	field.Descriptor{Name: "email", Label: "Email", Type: field.TypeEmail, Required: true, Visible: true, Editable: true},
	field.Descriptor{Name: "phone", Label: "Phone", Type: field.TypePhone, Visible: true, Editable: true},
	field.Descriptor{Name: "position", Label: "Position", Type: field.TypeSelect, Required: true, Visible: true, Editable: true, Options: positionOptions()},
)
