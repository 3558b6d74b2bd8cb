package core

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	fieldNameTag   = "fieldname"
	fieldNameText  = "must start with a lowercase letter and contain only lowercase letters, digits and underscores"
	fieldNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

	phoneTag   = "phone"
	phoneText  = "must be a valid phone number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(alphaNumUnderTag, alphaNumUnderText)

	_ = Validate.RegisterValidation(fieldNameTag, fieldNameValidation)
	RegisterCustomTranslation(fieldNameTag, fieldNameText)

	_ = Validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterCustomTranslation(phoneTag, phoneText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateVar validates a single value against tag and returns the translated message, or "" when valid.
func TranslateVar(value interface{}, tag string) string {
	err := Validate.Var(value, tag)
	if err == nil {
		return ""
	}
	if vErrs, ok := err.(validator.ValidationErrors); ok && len(vErrs) > 0 {
		return strings.TrimSpace(vErrs[0].Translate(Translator))
	}
	return err.Error()
}

// FieldMessages maps validation errors to translated messages keyed by their JSON path, eg. "fields[0].name".
func FieldMessages(vErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		fields[jsonPath(vErr.Namespace())] = vErr.Translate(Translator)
	}
	return fields
}

// jsonPath drops the Go struct names (struct & embedded structs) heading a validator namespace.
func jsonPath(ns string) string {
	parts := strings.Split(ns, ".")
	for len(parts) > 1 && parts[0] != "" && unicode.IsUpper([]rune(parts[0])[0]) {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// fieldNameValidation only allows snake_case identifiers.
func fieldNameValidation(fl validator.FieldLevel) bool {
	return fieldNameRegex.MatchString(fl.Field().String())
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

// ErrorFields returns the per field messages of a validation failure, and false for any other error.
func ErrorFields(err error) (map[string]string, bool) {
	switch e := errors.Cause(err).(type) {
	case *ValidationError:
		fields := e.FieldMap()
		if len(fields) == 0 {
			fields = map[string]string{"error": e.Error()}
		}
		return fields, true
	case validator.ValidationErrors:
		return FieldMessages(e), true
	}
	return nil, false
}
