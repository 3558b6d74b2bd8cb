package core

import (
	"html"
	"path"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings cleans every string of ss and drops the empty ones.
func CleanStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	cleaned := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = CleanString(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// Sanitize strips every HTML element from user supplied free text.
// Entities escaped by the policy are decoded back: the result is plain text, not HTML.
func Sanitize(s string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// Humanize turns a snake_case identifier into a label, eg. "date_of_birth" -> "Date of birth".
func Humanize(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	if len(words) == 0 {
		return ""
	}
	label := strings.ToLower(strings.Join(words, " "))
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ContainsString reports whether s is in ss.
func ContainsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// SimulatedUploadPath returns the reference stored for an uploaded file. Files are not kept anywhere.
func SimulatedUploadPath(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	return "uploads/" + uuid.New().String() + ext
}
