package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
)

type (
	// DB keeps every record in memory. Its content is lost when the process exits.
	DB struct {
		template   *templateTable
		student    *studentTable
		teacher    *teacherTable
		parent     *parentTable
		manager    *managerTable
		level      *levelTable
		class      *classTable
		subject    *subjectTable
		attendance *attendanceTable
		question   *questionTable
		exam       *examTable
	}

	// templateTable keeps every saved version of each template, oldest first.
	templateTable struct {
		sync.RWMutex
		table map[field.Kind][]field.Template
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*teacher.Teacher
	}

	parentTable struct {
		sync.RWMutex
		table map[string]*parent.Parent
	}

	managerTable struct {
		sync.RWMutex
		table map[string]*manager.Manager
	}

	levelTable struct {
		sync.RWMutex
		table map[string]*academic.Level
	}

	classTable struct {
		sync.RWMutex
		table map[string]*academic.Class
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*academic.Subject
	}

	// attendanceTable indexes records by student ID then date.
	attendanceTable struct {
		sync.RWMutex
		table map[string]map[string]*attendance.Record
	}

	questionTable struct {
		sync.RWMutex
		table map[string]*exam.Question
	}

	examTable struct {
		sync.RWMutex
		table map[string]*exam.Exam
	}
)

func Open() (*DB, error) {
	db := &DB{
		template:   &templateTable{table: make(map[field.Kind][]field.Template)},
		student:    &studentTable{table: make(map[string]*student.Student)},
		teacher:    &teacherTable{table: make(map[string]*teacher.Teacher)},
		parent:     &parentTable{table: make(map[string]*parent.Parent)},
		manager:    &managerTable{table: make(map[string]*manager.Manager)},
		level:      &levelTable{table: make(map[string]*academic.Level)},
		class:      &classTable{table: make(map[string]*academic.Class)},
		subject:    &subjectTable{table: make(map[string]*academic.Subject)},
		attendance: &attendanceTable{table: make(map[string]map[string]*attendance.Record)},
		question:   &questionTable{table: make(map[string]*exam.Question)},
		exam:       &examTable{table: make(map[string]*exam.Exam)},
	}
	return db, nil
}

func newID() string {
	return uuid.New().String()
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}

// copyValues copies a dynamic fields map deep enough that callers cannot mutate stored records.
func copyValues(values map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(values))
	for k, v := range values {
		if ss, ok := v.([]string); ok {
			v = copyStrings(ss)
		}
		cp[k] = v
	}
	return cp
}
