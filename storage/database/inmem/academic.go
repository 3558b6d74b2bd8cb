package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
)

type academicRepository struct {
	levels   *levelTable
	classes  *classTable
	subjects *subjectTable
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{levels: db.level, classes: db.class, subjects: db.subject}
}

// Levels

func (repo *academicRepository) CreateLevel(_ context.Context, l academic.Level) (academic.Level, error) {
	repo.levels.Lock()
	defer repo.levels.Unlock()

	l.ID = newID()
	repo.levels.table[l.ID] = &l
	return l, nil
}

func (repo *academicRepository) QueryLevels(_ context.Context) ([]academic.Level, error) {
	repo.levels.RLock()
	defer repo.levels.RUnlock()

	levels := make([]academic.Level, 0, len(repo.levels.table))
	for _, l := range repo.levels.table {
		levels = append(levels, *l)
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Order != levels[j].Order {
			return levels[i].Order < levels[j].Order
		}
		return lessName(levels[i].Name, levels[j].Name, levels[i].ID, levels[j].ID)
	})
	return levels, nil
}

func (repo *academicRepository) GetLevelByID(_ context.Context, id string) (academic.Level, error) {
	repo.levels.RLock()
	defer repo.levels.RUnlock()

	if l, ok := repo.levels.table[id]; ok {
		return *l, nil
	}
	return academic.Level{}, academic.ErrLevelNotFound
}

func (repo *academicRepository) UpdateLevel(_ context.Context, l academic.Level) (academic.Level, error) {
	repo.levels.Lock()
	defer repo.levels.Unlock()

	if _, ok := repo.levels.table[l.ID]; !ok {
		return academic.Level{}, academic.ErrLevelNotFound
	}
	repo.levels.table[l.ID] = &l
	return l, nil
}

func (repo *academicRepository) DeleteLevel(_ context.Context, id string) error {
	repo.levels.Lock()
	defer repo.levels.Unlock()
	delete(repo.levels.table, id)
	return nil
}

// Classes

func (repo *academicRepository) CreateClass(_ context.Context, c academic.Class) (academic.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	c.ID = newID()
	repo.classes.table[c.ID] = &c
	return c, nil
}

func (repo *academicRepository) QueryClasses(_ context.Context, filter academic.ClassFilter) ([]academic.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	classes := make([]academic.Class, 0, len(repo.classes.table))
	for _, c := range repo.classes.table {
		if filter.LevelID != "" && c.LevelID != filter.LevelID {
			continue
		}
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool {
		return lessName(classes[i].Name, classes[j].Name, classes[i].ID, classes[j].ID)
	})
	return classes, nil
}

func (repo *academicRepository) GetClassByID(_ context.Context, id string) (academic.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	if c, ok := repo.classes.table[id]; ok {
		return *c, nil
	}
	return academic.Class{}, academic.ErrClassNotFound
}

func (repo *academicRepository) UpdateClass(_ context.Context, c academic.Class) (academic.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	if _, ok := repo.classes.table[c.ID]; !ok {
		return academic.Class{}, academic.ErrClassNotFound
	}
	repo.classes.table[c.ID] = &c
	return c, nil
}

func (repo *academicRepository) DeleteClass(_ context.Context, id string) error {
	repo.classes.Lock()
	defer repo.classes.Unlock()
	delete(repo.classes.table, id)
	return nil
}

// Subjects

func copySubject(s academic.Subject) academic.Subject {
	s.LevelIDs = copyStrings(s.LevelIDs)
	return s
}

func (repo *academicRepository) CreateSubject(_ context.Context, s academic.Subject) (academic.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	s = copySubject(s)
	s.ID = newID()
	repo.subjects.table[s.ID] = &s
	return copySubject(s), nil
}

func (repo *academicRepository) QuerySubjects(_ context.Context, filter academic.SubjectFilter) ([]academic.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	subjects := make([]academic.Subject, 0, len(repo.subjects.table))
	for _, s := range repo.subjects.table {
		if filter.LevelID != "" && !core.ContainsString(s.LevelIDs, filter.LevelID) {
			continue
		}
		subjects = append(subjects, copySubject(*s))
	}
	sort.Slice(subjects, func(i, j int) bool {
		return lessName(subjects[i].Name, subjects[j].Name, subjects[i].ID, subjects[j].ID)
	})
	return subjects, nil
}

func (repo *academicRepository) GetSubjectByID(_ context.Context, id string) (academic.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	if s, ok := repo.subjects.table[id]; ok {
		return copySubject(*s), nil
	}
	return academic.Subject{}, academic.ErrSubjectNotFound
}

func (repo *academicRepository) UpdateSubject(_ context.Context, s academic.Subject) (academic.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	if _, ok := repo.subjects.table[s.ID]; !ok {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	s = copySubject(s)
	repo.subjects.table[s.ID] = &s
	return copySubject(s), nil
}

func (repo *academicRepository) DeleteSubject(_ context.Context, id string) error {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	if _, ok := repo.subjects.table[id]; !ok {
		return academic.ErrSubjectNotFound
	}
	delete(repo.subjects.table, id)
	return nil
}

func lessName(a, b, idA, idB string) bool {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c < 0
	}
	return idA < idB
}
