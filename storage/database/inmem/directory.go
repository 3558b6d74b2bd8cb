package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
)

// Directory answers the cross-entity lookups the services use for containment checks.
type Directory struct {
	db *DB
}

var (
	// interface compliance checks
	_ student.Directory    = (*Directory)(nil)
	_ teacher.Directory    = (*Directory)(nil)
	_ academic.Directory   = (*Directory)(nil)
	_ attendance.Directory = (*Directory)(nil)
	_ exam.Directory       = (*Directory)(nil)
)

func NewDirectory(db *DB) *Directory {
	return &Directory{db: db}
}

func (dir *Directory) ClassNames(_ context.Context) (map[string]string, error) {
	dir.db.class.RLock()
	defer dir.db.class.RUnlock()

	names := make(map[string]string, len(dir.db.class.table))
	for id, c := range dir.db.class.table {
		names[id] = c.Name
	}
	return names, nil
}

func (dir *Directory) ClassExists(_ context.Context, id string) (bool, error) {
	dir.db.class.RLock()
	defer dir.db.class.RUnlock()
	_, ok := dir.db.class.table[id]
	return ok, nil
}

func (dir *Directory) ClassLevel(_ context.Context, classID string) (string, error) {
	dir.db.class.RLock()
	defer dir.db.class.RUnlock()

	if c, ok := dir.db.class.table[classID]; ok {
		return c.LevelID, nil
	}
	return "", academic.ErrClassNotFound
}

func (dir *Directory) LevelExists(_ context.Context, id string) (bool, error) {
	dir.db.level.RLock()
	defer dir.db.level.RUnlock()
	_, ok := dir.db.level.table[id]
	return ok, nil
}

func (dir *Directory) SubjectExists(_ context.Context, id string) (bool, error) {
	dir.db.subject.RLock()
	defer dir.db.subject.RUnlock()
	_, ok := dir.db.subject.table[id]
	return ok, nil
}

func (dir *Directory) ParentExists(_ context.Context, id string) (bool, error) {
	dir.db.parent.RLock()
	defer dir.db.parent.RUnlock()
	_, ok := dir.db.parent.table[id]
	return ok, nil
}

func (dir *Directory) TeacherExists(_ context.Context, id string) (bool, error) {
	dir.db.teacher.RLock()
	defer dir.db.teacher.RUnlock()
	_, ok := dir.db.teacher.table[id]
	return ok, nil
}

func (dir *Directory) CountStudents(_ context.Context, classID string) (int, error) {
	dir.db.student.RLock()
	defer dir.db.student.RUnlock()

	var n int
	for _, s := range dir.db.student.table {
		if s.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (dir *Directory) StudentClass(_ context.Context, studentID string) (string, error) {
	dir.db.student.RLock()
	defer dir.db.student.RUnlock()

	if s, ok := dir.db.student.table[studentID]; ok {
		return s.ClassID, nil
	}
	return "", student.ErrNotFound
}
