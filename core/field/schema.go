package field

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/trezcool/shule/core"
)

const (
	maxTextLen     = 255
	maxTextareaLen = 5000

	requiredMsg = "this field is required"
)

var fileRefRegex = regexp.MustCompile(`^[\w./ -]+\.[A-Za-z0-9]{1,8}$`)

// checker validates one non-empty value and returns its normalised form, or an error message.
type checker func(d Descriptor, value interface{}) (interface{}, string)

var checkers = map[Type]checker{
	TypeText:        checkText(maxTextLen),
	TypeTextarea:    checkText(maxTextareaLen),
	TypeEmail:       checkEmail,
	TypePhone:       checkPhone,
	TypeNumber:      checkNumber,
	TypeDate:        checkDate,
	TypeSelect:      checkSelect,
	TypeMultiSelect: checkMultiSelect,
	TypeFile:        checkFile,
}

type rule struct {
	desc  Descriptor
	check checker
}

// Schema validates dynamic field values against the Descriptors it was compiled from.
type Schema struct {
	rules  []rule
	byName map[string]int
}

// Compile builds a Schema from fields. Rules run in display order so errors follow the form layout.
func Compile(fields []Descriptor) *Schema {
	tpl := Template{Fields: fields}
	sorted := tpl.Sorted()
	s := &Schema{
		rules:  make([]rule, 0, len(sorted)),
		byName: make(map[string]int, len(sorted)),
	}
	for _, d := range sorted {
		check, ok := checkers[d.Type]
		if !ok {
			check = checkText(maxTextLen)
		}
		s.byName[d.Name] = len(s.rules)
		s.rules = append(s.rules, rule{desc: d, check: check})
	}
	return s
}

func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Clean checks values and returns their normalised copy; empty optional values are dropped.
// Required fields must hold a non-empty value unless they are hidden from the form.
// Keys unknown to the schema are rejected.
func (s *Schema) Clean(values map[string]interface{}) (map[string]interface{}, error) {
	cleaned := make(map[string]interface{}, len(values))
	var fldErrs []core.FieldError

	unknown := make([]string, 0)
	for name := range values {
		if !s.Has(name) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fldErrs = append(fldErrs, core.FieldError{Field: name, Error: "unknown field"})
	}

	for _, r := range s.rules {
		value, msg := r.clean(values[r.desc.Name])
		if msg != "" {
			fldErrs = append(fldErrs, core.FieldError{Field: r.desc.Name, Error: msg})
			continue
		}
		if value != nil {
			cleaned[r.desc.Name] = value
		}
	}

	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}
	return cleaned, nil
}

// CleanOne checks a single value. A nil result means the value is empty and should be cleared.
func (s *Schema) CleanOne(name string, value interface{}) (interface{}, error) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "unknown field"})
	}
	cleaned, msg := s.rules[idx].clean(value)
	if msg != "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: msg})
	}
	return cleaned, nil
}

func (r rule) clean(value interface{}) (interface{}, string) {
	if isEmpty(value) {
		if r.desc.Required && r.desc.Visible {
			return nil, requiredMsg
		}
		return nil, ""
	}
	return r.check(r.desc, value)
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func asString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return strings.TrimSpace(s), ok
}

func checkText(maxLen int) checker {
	return func(d Descriptor, value interface{}) (interface{}, string) {
		s, ok := asString(value)
		if !ok {
			return nil, "must be a string"
		}
		s = core.Sanitize(s)
		if s == "" {
			if d.Required && d.Visible {
				return nil, requiredMsg
			}
			return nil, ""
		}
		if utf8.RuneCountInString(s) > maxLen {
			return nil, fmt.Sprintf("must be at most %d characters long", maxLen)
		}
		return s, ""
	}
}

func checkEmail(_ Descriptor, value interface{}) (interface{}, string) {
	s, ok := asString(value)
	if !ok {
		return nil, "must be a string"
	}
	s = strings.ToLower(s)
	if msg := core.TranslateVar(s, "email"); msg != "" {
		return nil, msg
	}
	return s, ""
}

func checkPhone(_ Descriptor, value interface{}) (interface{}, string) {
	s, ok := asString(value)
	if !ok {
		return nil, "must be a string"
	}
	if msg := core.TranslateVar(s, "phone"); msg != "" {
		return nil, msg
	}
	return s, ""
}

func checkNumber(_ Descriptor, value interface{}) (interface{}, string) {
	switch v := value.(type) {
	case float64:
		return v, ""
	case float32:
		return float64(v), ""
	case int:
		return float64(v), ""
	case int64:
		return float64(v), ""
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, "must be a number"
		}
		return f, ""
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, "must be a number"
		}
		return f, ""
	}
	return nil, "must be a number"
}

func checkDate(_ Descriptor, value interface{}) (interface{}, string) {
	s, ok := asString(value)
	if !ok {
		return nil, "must be a date (YYYY-MM-DD)"
	}
	if msg := core.TranslateVar(s, "datetime=2006-01-02"); msg != "" {
		return nil, "must be a date (YYYY-MM-DD)"
	}
	return s, ""
}

func checkSelect(d Descriptor, value interface{}) (interface{}, string) {
	s, ok := asString(value)
	if !ok {
		return nil, "must be a string"
	}
	if _, ok := d.OptionLabel(s); !ok {
		return nil, "invalid choice " + strconv.Quote(s)
	}
	return s, ""
}

func checkMultiSelect(d Descriptor, value interface{}) (interface{}, string) {
	var raw []string
	switch v := value.(type) {
	case []string:
		raw = v
	case []interface{}:
		raw = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, "must be a list of strings"
			}
			raw = append(raw, s)
		}
	default:
		return nil, "must be a list of strings"
	}

	selected := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if _, ok := d.OptionLabel(s); !ok {
			return nil, "invalid choice " + strconv.Quote(s)
		}
		if _, dup := seen[s]; dup {
			return nil, "duplicate choice " + strconv.Quote(s)
		}
		seen[s] = struct{}{}
		selected = append(selected, s)
	}
	return selected, ""
}

func checkFile(_ Descriptor, value interface{}) (interface{}, string) {
	s, ok := asString(value)
	if !ok || !fileRefRegex.MatchString(s) {
		return nil, "must reference an uploaded file"
	}
	return s, ""
}
