package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummary_add(t *testing.T) {
	var s Summary
	for _, st := range []Status{StatusPresent, StatusLate, StatusAbsent, StatusExcused, StatusPresent} {
		s.add(st)
	}
	assert.Equal(t, Summary{Present: 2, Absent: 1, Late: 1, Excused: 1, Total: 5, Rate: 0.6}, s)
}

func TestQueryFilter_Match(t *testing.T) {
	r := Record{StudentID: "s1", ClassID: "c1", Date: "2024-09-02", Status: StatusAbsent}

	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{"empty", QueryFilter{}, true},
		{"class", QueryFilter{ClassID: "c2"}, false},
		{"student", QueryFilter{StudentID: "s1"}, true},
		{"status", QueryFilter{Status: StatusPresent}, false},
		{"within range", QueryFilter{From: "2024-09-01", To: "2024-09-02"}, true},
		{"before range", QueryFilter{From: "2024-09-03"}, false},
		{"after range", QueryFilter{To: "2024-09-01"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(r))
		})
	}
}

func TestMarkSheet_Validate(t *testing.T) {
	ms := MarkSheet{
		ClassID: " c1 ",
		Date:    "2024-09-02",
		Entries: []Entry{{StudentID: " s1 ", Status: "ABSENT", Note: " <b>fever</b> "}},
	}
	assert.NoError(t, ms.Validate())
	assert.Equal(t, "c1", ms.ClassID)
	assert.Equal(t, Entry{StudentID: "s1", Status: StatusAbsent, Note: "fever"}, ms.Entries[0])

	ms = MarkSheet{ClassID: "c1", Date: "02/09/2024", Entries: []Entry{{StudentID: "s1", Status: "gone"}}}
	assert.Error(t, ms.Validate())
}

func TestToday(t *testing.T) {
	defer func(orig func() time.Time) { NowFunc = orig }(NowFunc)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"utc", time.Date(2024, 9, 2, 23, 30, 0, 0, time.UTC), "2024-09-02"},
		{"behind utc", time.Date(2024, 9, 2, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)), "2024-09-03"},
		{"ahead of utc", time.Date(2024, 9, 3, 1, 0, 0, 0, time.FixedZone("EAT", 3*3600)), "2024-09-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NowFunc = func() time.Time { return tt.now }
			assert.Equal(t, tt.want, today())
		})
	}
}
