package field

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	uniqueNameTag  = "uniquename"
	uniqueNameText = "field names must be unique within a template"

	fieldTypeTag  = "fieldtype"
	fieldTypeText = "unknown field type"

	optionsRequiredTag  = "optionsrequired"
	optionsRequiredText = "select fields need at least one option"

	uniqueOptionTag  = "uniqueoption"
	uniqueOptionText = "option values must be unique"

	optionCommaTag  = "optioncomma"
	optionCommaText = "multi-select option values and labels cannot contain commas"
)

func init() {
	core.Validate.RegisterStructValidation(templateStructValidation, UpdateTemplate{})
	core.RegisterCustomTranslation(uniqueNameTag, uniqueNameText)
	core.RegisterCustomTranslation(fieldTypeTag, fieldTypeText)
	core.RegisterCustomTranslation(optionsRequiredTag, optionsRequiredText)
	core.RegisterCustomTranslation(uniqueOptionTag, uniqueOptionText)
	core.RegisterCustomTranslation(optionCommaTag, optionCommaText)
}

// templateStructValidation does struct level validation on UpdateTemplate.
// Errors are reported as "fields[i].<attr>" so clients can point at the faulty row.
func templateStructValidation(sl validator.StructLevel) {
	ut, ok := sl.Current().Interface().(UpdateTemplate)
	if !ok {
		return
	}

	seen := make(map[string]struct{}, len(ut.Fields))
	for i, d := range ut.Fields {
		prefix := fieldPath(i)
		if _, dup := seen[d.Name]; dup && d.Name != "" {
			sl.ReportError(d.Name, prefix+".name", "Name", uniqueNameTag, "")
		}
		seen[d.Name] = struct{}{}

		if d.Type != "" && !d.Type.Valid() {
			sl.ReportError(d.Type, prefix+".type", "Type", fieldTypeTag, "")
			continue
		}
		if !d.Type.HasOptions() {
			continue
		}
		if len(d.Options) == 0 {
			sl.ReportError(d.Options, prefix+".options", "Options", optionsRequiredTag, "")
			continue
		}
		values := make(map[string]struct{}, len(d.Options))
		for _, opt := range d.Options {
			if _, dup := values[opt.Value]; dup {
				sl.ReportError(d.Options, prefix+".options", "Options", uniqueOptionTag, "")
				break
			}
			values[opt.Value] = struct{}{}
			// multi-select cells are comma separated in spreadsheets
			if d.Type == TypeMultiSelect && strings.ContainsRune(opt.Value+opt.Label, ',') {
				sl.ReportError(d.Options, prefix+".options", "Options", optionCommaTag, "")
				break
			}
		}
	}
}

func fieldPath(i int) string {
	return "fields[" + strconv.Itoa(i) + "]"
}
