package exam

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrQuestionNotFound = core.NewNotFoundError("question")
	ErrExamNotFound     = core.NewNotFoundError("exam")

	errSubjectNotFound   = errors.New("subject not found")
	errLevelNotFound     = errors.New("level not found")
	errClassNotFound     = errors.New("class not found")
	errOtherSubject      = errors.New("question belongs to another subject")
	errNotEnough         = errors.New("not enough questions in the bank")
	errQuestionInUse     = errors.New("this question is used by an exam")
	errUnknownQuestionID = errors.New("question is not part of this exam")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// QueryQuestions returns the questions matching filter, oldest first.
		QueryQuestions(ctx context.Context, filter QuestionFilter) ([]Question, error)
		GetQuestionByID(ctx context.Context, id string) (Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestion(ctx context.Context, id string) error

		CreateExam(ctx context.Context, e Exam) (Exam, error)
		// QueryExams returns the exams matching filter, latest first.
		QueryExams(ctx context.Context, filter ExamFilter) ([]Exam, error)
		GetExamByID(ctx context.Context, id string) (Exam, error)
		UpdateExam(ctx context.Context, e Exam) (Exam, error)
		DeleteExam(ctx context.Context, id string) error
	}

	// Directory resolves the academic records questions and exams refer to.
	Directory interface {
		SubjectExists(ctx context.Context, id string) (bool, error)
		LevelExists(ctx context.Context, id string) (bool, error)
		// ClassLevel returns the level ID of a class, or a not found error.
		ClassLevel(ctx context.Context, classID string) (string, error)
	}

	Service struct {
		repo Repository
		dir  Directory
	}
)

func NewService(repo Repository, dir Directory) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
	).CheckAndPanic()
	return &Service{repo: repo, dir: dir}
}

// Questions

func (svc *Service) CreateQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	if err := nq.Validate(); err != nil {
		return Question{}, err
	}
	if err := svc.checkQuestionRefs(ctx, nq); err != nil {
		return Question{}, err
	}
	return svc.repo.CreateQuestion(ctx, Question{
		SubjectID: nq.SubjectID,
		LevelID:   nq.LevelID,
		Type:      nq.Type,
		Text:      nq.Text,
		Choices:   nq.Choices,
		Answers:   nq.Answers,
		Points:    nq.Points,
		CreatedAt: NowFunc().UTC(),
	})
}

func (svc *Service) QueryQuestions(ctx context.Context, filter QuestionFilter) ([]Question, error) {
	filter.Clean()
	return svc.repo.QueryQuestions(ctx, filter)
}

func (svc *Service) GetQuestion(ctx context.Context, id string) (Question, error) {
	return svc.repo.GetQuestionByID(ctx, id)
}

func (svc *Service) UpdateQuestion(ctx context.Context, id string, nq NewQuestion) (Question, error) {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if err = nq.Validate(); err != nil {
		return Question{}, err
	}
	if err = svc.checkQuestionRefs(ctx, nq); err != nil {
		return Question{}, err
	}
	q.SubjectID = nq.SubjectID
	q.LevelID = nq.LevelID
	q.Type = nq.Type
	q.Text = nq.Text
	q.Choices = nq.Choices
	q.Answers = nq.Answers
	q.Points = nq.Points
	return svc.repo.UpdateQuestion(ctx, q)
}

// DeleteQuestion fails while an exam uses the question.
func (svc *Service) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := svc.repo.GetQuestionByID(ctx, id); err != nil {
		return err
	}
	exams, err := svc.repo.QueryExams(ctx, ExamFilter{})
	if err != nil {
		return err
	}
	for _, e := range exams {
		if core.ContainsString(e.QuestionIDs, id) {
			return core.NewValidationError(errQuestionInUse)
		}
	}
	return svc.repo.DeleteQuestion(ctx, id)
}

func (svc *Service) checkQuestionRefs(ctx context.Context, nq NewQuestion) error {
	var fldErrs []core.FieldError
	ok, err := svc.dir.SubjectExists(ctx, nq.SubjectID)
	if err != nil {
		return err
	}
	if !ok {
		fldErrs = append(fldErrs, core.FieldError{Field: "subject_id", Error: errSubjectNotFound.Error()})
	}
	if nq.LevelID != "" {
		if ok, err = svc.dir.LevelExists(ctx, nq.LevelID); err != nil {
			return err
		}
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: "level_id", Error: errLevelNotFound.Error()})
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}

// Exams

func (svc *Service) CreateExam(ctx context.Context, ne NewExam) (Exam, error) {
	if err := ne.Validate(); err != nil {
		return Exam{}, err
	}
	questions, err := svc.examQuestions(ctx, ne)
	if err != nil {
		return Exam{}, err
	}
	now := NowFunc().UTC()
	return svc.repo.CreateExam(ctx, Exam{
		Title:           ne.Title,
		SubjectID:       ne.SubjectID,
		ClassID:         ne.ClassID,
		ScheduledAt:     ne.ScheduledAt,
		DurationMinutes: ne.DurationMinutes,
		QuestionIDs:     ne.QuestionIDs,
		TotalPoints:     totalPoints(questions),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (svc *Service) QueryExams(ctx context.Context, filter ExamFilter) ([]Exam, error) {
	filter.SubjectID = core.CleanString(filter.SubjectID)
	filter.ClassID = core.CleanString(filter.ClassID)
	return svc.repo.QueryExams(ctx, filter)
}

func (svc *Service) GetExam(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}

func (svc *Service) UpdateExam(ctx context.Context, id string, ne NewExam) (Exam, error) {
	e, err := svc.repo.GetExamByID(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	if err = ne.Validate(); err != nil {
		return Exam{}, err
	}
	questions, err := svc.examQuestions(ctx, ne)
	if err != nil {
		return Exam{}, err
	}
	e.Title = ne.Title
	e.SubjectID = ne.SubjectID
	e.ClassID = ne.ClassID
	e.ScheduledAt = ne.ScheduledAt
	e.DurationMinutes = ne.DurationMinutes
	e.QuestionIDs = ne.QuestionIDs
	e.TotalPoints = totalPoints(questions)
	e.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateExam(ctx, e)
}

func (svc *Service) DeleteExam(ctx context.Context, id string) error {
	return svc.repo.DeleteExam(ctx, id)
}

// Generate creates an Exam from Count questions drawn at random from the bank.
// Questions are drawn among the subject's questions of the class level, or of any level without a class.
// The same Seed over the same bank draws the same questions.
func (svc *Service) Generate(ctx context.Context, ge GenerateExam) (Exam, error) {
	if err := ge.Validate(); err != nil {
		return Exam{}, err
	}
	filter := QuestionFilter{SubjectID: ge.SubjectID}
	if ge.ClassID != "" {
		levelID, err := svc.dir.ClassLevel(ctx, ge.ClassID)
		if err != nil {
			if !core.IsNotFound(err) {
				return Exam{}, err
			}
			return Exam{}, core.NewValidationError(errClassNotFound, core.FieldError{Field: "class_id", Error: errClassNotFound.Error()})
		}
		filter.LevelID = levelID
	}

	bank, err := svc.repo.QueryQuestions(ctx, filter)
	if err != nil {
		return Exam{}, errors.Wrap(err, "querying questions")
	}
	if len(ge.Types) > 0 {
		kept := bank[:0]
		for _, q := range bank {
			for _, t := range ge.Types {
				if q.Type == t {
					kept = append(kept, q)
					break
				}
			}
		}
		bank = kept
	}
	if len(bank) < ge.Count {
		return Exam{}, core.NewValidationError(errNotEnough, core.FieldError{Field: "count", Error: errNotEnough.Error()})
	}

	seed := ge.Seed
	if seed == 0 {
		seed = NowFunc().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(bank), func(i, j int) { bank[i], bank[j] = bank[j], bank[i] })

	ids := make([]string, 0, ge.Count)
	for _, q := range bank[:ge.Count] {
		ids = append(ids, q.ID)
	}
	return svc.CreateExam(ctx, NewExam{
		Title:           ge.Title,
		SubjectID:       ge.SubjectID,
		ClassID:         ge.ClassID,
		ScheduledAt:     ge.ScheduledAt,
		DurationMinutes: ge.DurationMinutes,
		QuestionIDs:     ids,
	})
}

// Print lays out the exam as markdown and sanitised HTML.
func (svc *Service) Print(ctx context.Context, id string) (Printable, error) {
	e, err := svc.repo.GetExamByID(ctx, id)
	if err != nil {
		return Printable{}, err
	}
	questions, err := svc.questions(ctx, e.QuestionIDs)
	if err != nil {
		return Printable{}, err
	}
	md := renderMarkdown(e, questions)
	return Printable{Exam: e, Markdown: md, HTML: renderHTML(md)}, nil
}

// Grade scores a submission. Unanswered questions score nothing.
func (svc *Service) Grade(ctx context.Context, id string, sub Submission) (Result, error) {
	if err := core.Validate.Struct(sub); err != nil {
		return Result{}, err
	}
	e, err := svc.repo.GetExamByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	for qid := range sub.Answers {
		if !core.ContainsString(e.QuestionIDs, qid) {
			return Result{}, core.NewValidationError(errUnknownQuestionID, core.FieldError{Field: "answers." + qid, Error: errUnknownQuestionID.Error()})
		}
	}
	questions, err := svc.questions(ctx, e.QuestionIDs)
	if err != nil {
		return Result{}, err
	}

	res := Result{Questions: make([]QuestionResult, 0, len(questions))}
	for _, q := range questions {
		qr := QuestionResult{QuestionID: q.ID}
		if q.Check(sub.Answers[q.ID]) {
			qr.Correct = true
			qr.Points = q.Points
		}
		res.Score += qr.Points
		res.Total += q.Points
		res.Questions = append(res.Questions, qr)
	}
	if res.Total > 0 {
		res.Percent = math.Round(res.Score/res.Total*10000) / 100
	}
	return res, nil
}

// examQuestions checks the references of ne and returns its questions in order.
func (svc *Service) examQuestions(ctx context.Context, ne NewExam) ([]Question, error) {
	ok, err := svc.dir.SubjectExists(ctx, ne.SubjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NewValidationError(errSubjectNotFound, core.FieldError{Field: "subject_id", Error: errSubjectNotFound.Error()})
	}
	if ne.ClassID != "" {
		if _, err = svc.dir.ClassLevel(ctx, ne.ClassID); err != nil {
			if !core.IsNotFound(err) {
				return nil, err
			}
			return nil, core.NewValidationError(errClassNotFound, core.FieldError{Field: "class_id", Error: errClassNotFound.Error()})
		}
	}

	var fldErrs []core.FieldError
	questions := make([]Question, 0, len(ne.QuestionIDs))
	for _, qid := range ne.QuestionIDs {
		q, err := svc.repo.GetQuestionByID(ctx, qid)
		if err != nil {
			if !core.IsNotFound(err) {
				return nil, err
			}
			fldErrs = append(fldErrs, core.FieldError{Field: "question_ids", Error: err.Error() + ": " + qid})
			continue
		}
		if q.SubjectID != ne.SubjectID {
			fldErrs = append(fldErrs, core.FieldError{Field: "question_ids", Error: errOtherSubject.Error() + ": " + qid})
			continue
		}
		questions = append(questions, q)
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}
	return questions, nil
}

// questions returns the questions of ids in order, skipping those deleted from the bank.
func (svc *Service) questions(ctx context.Context, ids []string) ([]Question, error) {
	questions := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, err := svc.repo.GetQuestionByID(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func totalPoints(questions []Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.Points
	}
	return total
}
