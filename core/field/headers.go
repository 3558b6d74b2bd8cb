package field

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/shule/core"
)

const suggestionMinRatio = 0.6

// MatchHeaders maps spreadsheet column indexes to fields. A header matches a field by name or label,
// ignoring case, spaces, dashes and underscores. Blank headers are ignored.
func MatchHeaders(headers []string, fields []Descriptor) (map[int]Descriptor, []core.FieldError) {
	lookup := make(map[string]Descriptor, 2*len(fields))
	for _, d := range fields {
		lookup[normalizeHeader(d.Name)] = d
		if d.Label != "" {
			lookup[normalizeHeader(d.Label)] = d
		}
	}

	matched := make(map[int]Descriptor, len(headers))
	taken := make(map[string]string, len(headers))
	var fldErrs []core.FieldError
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		d, ok := lookup[key]
		if !ok {
			msg := "unknown column"
			if suggestion := suggestHeader(key, fields); suggestion != "" {
				msg += fmt.Sprintf("; did you mean %q?", suggestion)
			}
			fldErrs = append(fldErrs, core.FieldError{Field: h, Error: msg})
			continue
		}
		if prev, dup := taken[d.Name]; dup {
			fldErrs = append(fldErrs, core.FieldError{Field: h, Error: fmt.Sprintf("duplicates column %q", prev)})
			continue
		}
		taken[d.Name] = h
		matched[i] = d
	}
	return matched, fldErrs
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func suggestHeader(key string, fields []Descriptor) string {
	var (
		best      string
		bestRatio float64
	)
	a := strings.Split(key, "")
	for _, d := range fields {
		for _, candidate := range []string{d.Name, d.Label} {
			if candidate == "" {
				continue
			}
			ratio := difflib.NewMatcher(a, strings.Split(normalizeHeader(candidate), "")).Ratio()
			if ratio > bestRatio {
				best, bestRatio = d.Label, ratio
				if best == "" {
					best = d.Name
				}
			}
		}
	}
	if bestRatio < suggestionMinRatio {
		return ""
	}
	return best
}

// ParseCell converts spreadsheet text into the value shape the Schema expects.
// Select cells may hold either the option value or its label.
func ParseCell(d Descriptor, cell string) interface{} {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	switch d.Type {
	case TypeSelect:
		return optionValue(d, cell)
	case TypeMultiSelect:
		parts := strings.Split(cell, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, optionValue(d, p))
			}
		}
		return values
	}
	return cell
}

func optionValue(d Descriptor, s string) string {
	for _, opt := range d.Options {
		if opt.Value == s {
			return opt.Value
		}
	}
	for _, opt := range d.Options {
		if strings.EqualFold(opt.Label, s) || strings.EqualFold(opt.Value, s) {
			return opt.Value
		}
	}
	return s
}
