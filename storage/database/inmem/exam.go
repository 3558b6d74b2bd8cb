package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/exam"
)

type examRepository struct {
	questions *questionTable
	exams     *examTable
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{questions: db.question, exams: db.exam}
}

// Questions

func copyQuestion(q exam.Question) exam.Question {
	q.Choices = copyStrings(q.Choices)
	q.Answers = copyStrings(q.Answers)
	return q
}

func (repo *examRepository) CreateQuestion(_ context.Context, q exam.Question) (exam.Question, error) {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	q = copyQuestion(q)
	q.ID = newID()
	repo.questions.table[q.ID] = &q
	return copyQuestion(q), nil
}

func (repo *examRepository) QueryQuestions(_ context.Context, filter exam.QuestionFilter) ([]exam.Question, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	questions := make([]exam.Question, 0, len(repo.questions.table))
	for _, q := range repo.questions.table {
		if filter.Match(*q) {
			questions = append(questions, copyQuestion(*q))
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if !questions[i].CreatedAt.Equal(questions[j].CreatedAt) {
			return questions[i].CreatedAt.Before(questions[j].CreatedAt)
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

func (repo *examRepository) GetQuestionByID(_ context.Context, id string) (exam.Question, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	if q, ok := repo.questions.table[id]; ok {
		return copyQuestion(*q), nil
	}
	return exam.Question{}, exam.ErrQuestionNotFound
}

func (repo *examRepository) UpdateQuestion(_ context.Context, q exam.Question) (exam.Question, error) {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	if _, ok := repo.questions.table[q.ID]; !ok {
		return exam.Question{}, exam.ErrQuestionNotFound
	}
	q = copyQuestion(q)
	repo.questions.table[q.ID] = &q
	return copyQuestion(q), nil
}

func (repo *examRepository) DeleteQuestion(_ context.Context, id string) error {
	repo.questions.Lock()
	defer repo.questions.Unlock()
	delete(repo.questions.table, id)
	return nil
}

// Exams

func copyExam(e exam.Exam) exam.Exam {
	e.QuestionIDs = copyStrings(e.QuestionIDs)
	return e
}

func (repo *examRepository) CreateExam(_ context.Context, e exam.Exam) (exam.Exam, error) {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	e = copyExam(e)
	e.ID = newID()
	repo.exams.table[e.ID] = &e
	return copyExam(e), nil
}

func (repo *examRepository) QueryExams(_ context.Context, filter exam.ExamFilter) ([]exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.exams.table))
	for _, e := range repo.exams.table {
		if filter.SubjectID != "" && e.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ClassID != "" && e.ClassID != filter.ClassID {
			continue
		}
		exams = append(exams, copyExam(*e))
	}
	sort.Slice(exams, func(i, j int) bool {
		if !exams[i].CreatedAt.Equal(exams[j].CreatedAt) {
			return exams[i].CreatedAt.After(exams[j].CreatedAt)
		}
		return exams[i].ID < exams[j].ID
	})
	return exams, nil
}

func (repo *examRepository) GetExamByID(_ context.Context, id string) (exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	if e, ok := repo.exams.table[id]; ok {
		return copyExam(*e), nil
	}
	return exam.Exam{}, exam.ErrExamNotFound
}

func (repo *examRepository) UpdateExam(_ context.Context, e exam.Exam) (exam.Exam, error) {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	if _, ok := repo.exams.table[e.ID]; !ok {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	e = copyExam(e)
	repo.exams.table[e.ID] = &e
	return copyExam(e), nil
}

func (repo *examRepository) DeleteExam(_ context.Context, id string) error {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	if _, ok := repo.exams.table[id]; !ok {
		return exam.ErrExamNotFound
	}
	delete(repo.exams.table, id)
	return nil
}
