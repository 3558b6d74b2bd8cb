package academic

import (
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// Level is a school grade, eg. "Grade 7". Order sorts levels from the youngest pupils.
type Level struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type NewLevel struct {
	Name  string `json:"name" validate:"required,max=100"`
	Order int    `json:"order" validate:"min=0"`
}

func (nl *NewLevel) Validate() error {
	nl.Name = core.Sanitize(nl.Name)
	return core.Validate.Struct(nl)
}

// Class is a group of students of one Level. Capacity is informative: enrolment is never checked against it.
type Class struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	LevelID   string   `json:"level_id"`
	Capacity  null.Int `json:"capacity"`
	TeacherID string   `json:"teacher_id"`
}

type NewClass struct {
	Name      string   `json:"name" validate:"required,max=100"`
	LevelID   string   `json:"level_id" validate:"required"`
	Capacity  null.Int `json:"capacity"`
	TeacherID string   `json:"teacher_id"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.Sanitize(nc.Name)
	nc.LevelID = core.CleanString(nc.LevelID)
	nc.TeacherID = core.CleanString(nc.TeacherID)
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	if nc.Capacity.Valid && nc.Capacity.Int < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "capacity", Error: "must be at least 1"})
	}
	return nil
}

// ClassDetail is a Class with its level and its enrolment.
type ClassDetail struct {
	Class
	Level    Level `json:"level"`
	Enrolled int   `json:"enrolled"`
}

type Subject struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	LevelIDs []string `json:"level_ids"`
}

type NewSubject struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Code     string   `json:"code" validate:"required,max=16,alphanum"`
	LevelIDs []string `json:"level_ids" validate:"omitempty,unique"`
}

func (ns *NewSubject) Validate() error {
	ns.Name = core.Sanitize(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	ns.LevelIDs = core.CleanStrings(ns.LevelIDs)
	return core.Validate.Struct(ns)
}

type ClassFilter struct {
	LevelID   string `query:"level_id"`
	TeacherID string `query:"teacher_id"`
}

type SubjectFilter struct {
	LevelID string `query:"level_id"`
}
