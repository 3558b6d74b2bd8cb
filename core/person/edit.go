package person

import (
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// ErrEmailExists is returned by repositories when another record of the same kind uses an email.
var ErrEmailExists = errors.New("this email is already used")

// CheckEmail turns ErrEmailExists into a validation error on the email field.
func CheckEmail(err error) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == ErrEmailExists {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return err
}

// SetBase applies an inline edit of a Base attribute.
// handled is false when name is not one of firstname, lastname or photo.
func SetBase(b *Base, name string, value interface{}) (handled bool, err error) {
	switch name {
	case "firstname", "lastname", "photo":
	default:
		return false, nil
	}
	s, ok := value.(string)
	if !ok && value != nil {
		return true, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a string"})
	}

	in := Input{Firstname: b.Firstname, Lastname: b.Lastname, Photo: b.Photo}
	switch name {
	case "firstname":
		in.Firstname = s
	case "lastname":
		in.Lastname = s
	case "photo":
		in.Photo = s
	}
	in.Clean()
	if err = core.Validate.Struct(in); err != nil {
		return true, err
	}
	in.Apply(b)
	return true, nil
}
