package attendance

import (
	"time"

	"github.com/trezcool/shule/core"
)

const DateLayout = "2006-01-02"

type Status string

// Statuses
const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Record is the attendance of one student on one day. There is at most one Record per student and date.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    Status    `json:"status"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Entry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    Status `json:"status" validate:"required,oneof=present absent late excused"`
	Note      string `json:"note" validate:"max=255"`
}

// MarkSheet is the roll call of a class for one day.
type MarkSheet struct {
	ClassID string  `json:"class_id" validate:"required"`
	Date    string  `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []Entry `json:"entries" validate:"required,min=1,dive"`
}

func (ms *MarkSheet) Validate() error {
	ms.ClassID = core.CleanString(ms.ClassID)
	ms.Date = core.CleanString(ms.Date)
	for i := range ms.Entries {
		e := &ms.Entries[i]
		e.StudentID = core.CleanString(e.StudentID)
		e.Status = Status(core.CleanString(string(e.Status), true /* lower */))
		e.Note = core.Sanitize(e.Note)
	}
	return core.Validate.Struct(ms)
}

type QueryFilter struct {
	ClassID   string `query:"class_id"`
	StudentID string `query:"student_id"`
	Status    Status `query:"status"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (qf *QueryFilter) Validate() error {
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
	qf.From = core.CleanString(qf.From)
	qf.To = core.CleanString(qf.To)
	return core.Validate.Struct(qf)
}

// Match reports whether r satisfies every set field of the filter. Dates compare lexically.
func (qf QueryFilter) Match(r Record) bool {
	return (qf.ClassID == "" || r.ClassID == qf.ClassID) &&
		(qf.StudentID == "" || r.StudentID == qf.StudentID) &&
		(qf.Status == "" || r.Status == qf.Status) &&
		(qf.From == "" || r.Date >= qf.From) &&
		(qf.To == "" || r.Date <= qf.To)
}

// Summary counts the records of one student.
type Summary struct {
	StudentID string  `json:"student_id"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Late      int     `json:"late"`
	Excused   int     `json:"excused"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"` // (present + late) / total
}

func (s *Summary) add(status Status) {
	switch status {
	case StatusPresent:
		s.Present++
	case StatusAbsent:
		s.Absent++
	case StatusLate:
		s.Late++
	case StatusExcused:
		s.Excused++
	}
	s.Total++
	s.Rate = float64(s.Present+s.Late) / float64(s.Total)
}
