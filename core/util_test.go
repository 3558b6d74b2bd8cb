package core

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"  Neema ":                         "Neema",
		"<b>Neema</b>":                     "Neema",
		`Neema<script>alert("x")</script>`: "Neema",
		"Tom & Jerry's":                    "Tom & Jerry's",
	}
	for in, want := range tests {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"date_of_birth": "Date of birth",
		"GPA":           "Gpa",
		"__x__":         "X",
		"":              "",
	}
	for in, want := range tests {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanStrings(t *testing.T) {
	if got := CleanStrings(nil); got != nil {
		t.Errorf("CleanStrings(nil) = %v, want nil", got)
	}
	got := CleanStrings([]string{" a ", "", "  ", "b"})
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("CleanStrings() = %v, want [a b]", got)
	}
}

func TestSimulatedUploadPath(t *testing.T) {
	for _, name := range []string{`C:\docs\Report.PDF`, "report.pdf"} {
		p := SimulatedUploadPath(name)
		if !strings.HasPrefix(p, "uploads/") || !strings.HasSuffix(p, ".pdf") {
			t.Errorf("SimulatedUploadPath(%q) = %q", name, p)
		}
	}
	if SimulatedUploadPath("a.pdf") == SimulatedUploadPath("a.pdf") {
		t.Error("SimulatedUploadPath() must be unique")
	}
}
