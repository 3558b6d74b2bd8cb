package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func copyStudent(s student.Student) student.Student {
	s.DynamicFields = copyValues(s.DynamicFields)
	s.ParentIDs = copyStrings(s.ParentIDs)
	return s
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, copyStudent(*s))
	}
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s = copyStudent(s)
	s.ID = newID()
	repo.db.table[s.ID] = &s
	return copyStudent(s), nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.query() {
		if !s.Matches(filter.Search) {
			continue
		}
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			continue
		}
		if filter.ParentID != "" && !s.HasParent(filter.ParentID) {
			continue
		}
		students = append(students, s)
	}

	err := sortPersons(len(students),
		func(i int) person.Base { return students[i].Base },
		func(i, j int) { students[i], students[j] = students[j], students[i] },
		ordering,
	)
	return students, err
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return copyStudent(*s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	s = copyStudent(s)
	repo.db.table[s.ID] = &s
	return copyStudent(s), nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
