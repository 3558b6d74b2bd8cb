package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db.teacher}
}

func copyTeacher(t teacher.Teacher) teacher.Teacher {
	t.DynamicFields = copyValues(t.DynamicFields)
	t.SubjectIDs = copyStrings(t.SubjectIDs)
	t.ClassIDs = copyStrings(t.ClassIDs)
	return t
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		teachers = append(teachers, copyTeacher(*t))
	}
	return teachers
}

func (repo *teacherRepository) CheckTeacherEmailUniqueness(_ context.Context, email, excludedID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.table {
		if t.ID != excludedID && strings.EqualFold(t.Email, email) {
			return person.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t = copyTeacher(t)
	t.ID = newID()
	repo.db.table[t.ID] = &t
	return copyTeacher(t), nil
}

func (repo *teacherRepository) QueryTeachers(_ context.Context, filter teacher.QueryFilter, ordering ...core.DBOrdering) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, t := range repo.query() {
		if !t.Matches(search) && !strings.Contains(t.Email, search) {
			continue
		}
		if filter.SubjectID != "" && !t.Teaches(filter.SubjectID) {
			continue
		}
		if filter.ClassID != "" && !core.ContainsString(t.ClassIDs, filter.ClassID) {
			continue
		}
		teachers = append(teachers, t)
	}

	err := sortPersons(len(teachers),
		func(i int) person.Base { return teachers[i].Base },
		func(i, j int) { teachers[i], teachers[j] = teachers[j], teachers[i] },
		ordering,
	)
	return teachers, err
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id string) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return copyTeacher(*t), nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	t = copyTeacher(t)
	repo.db.table[t.ID] = &t
	return copyTeacher(t), nil
}

func (repo *teacherRepository) DeleteTeachersByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
