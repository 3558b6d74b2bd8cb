package exam

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

type QuestionType string

// Question types
const (
	TypeSingle    QuestionType = "single"
	TypeMultiple  QuestionType = "multiple"
	TypeTrueFalse QuestionType = "true-false"
	TypeShort     QuestionType = "short"
)

var trueFalseChoices = []string{"true", "false"}

// Question is an entry of the question bank. Text is markdown.
// Short answer questions list every accepted answer in Answers.
type Question struct {
	ID        string       `json:"id"`
	SubjectID string       `json:"subject_id"`
	LevelID   string       `json:"level_id"`
	Type      QuestionType `json:"type"`
	Text      string       `json:"text"`
	Choices   []string     `json:"choices"`
	Answers   []string     `json:"answers"`
	Points    float64      `json:"points"`
	CreatedAt time.Time    `json:"created_at"` // UTC
}

// Check reports whether given answers are correct. Multiple choice answers must match exactly, in any order.
func (q Question) Check(given []string) bool {
	given = core.CleanStrings(given)
	switch q.Type {
	case TypeShort:
		if len(given) != 1 {
			return false
		}
		for _, a := range q.Answers {
			if strings.EqualFold(a, given[0]) {
				return true
			}
		}
		return false
	default:
		if len(given) != len(q.Answers) {
			return false
		}
		seen := make(map[string]bool, len(given))
		for _, g := range given {
			if q.Type == TypeTrueFalse {
				g = strings.ToLower(g)
			}
			if seen[g] || !core.ContainsString(q.Answers, g) {
				return false
			}
			seen[g] = true
		}
		return true
	}
}

// NewQuestion contains information needed to add a Question to the bank.
type NewQuestion struct {
	SubjectID string       `json:"subject_id" validate:"required"`
	LevelID   string       `json:"level_id"`
	Type      QuestionType `json:"type" validate:"required,oneof=single multiple true-false short"`
	Text      string       `json:"text" validate:"required,max=5000"`
	Choices   []string     `json:"choices" validate:"omitempty,unique"`
	Answers   []string     `json:"answers" validate:"required,min=1,unique"`
	Points    float64      `json:"points" validate:"gt=0,lte=100"`
}

func (nq *NewQuestion) Validate() error {
	nq.SubjectID = core.CleanString(nq.SubjectID)
	nq.LevelID = core.CleanString(nq.LevelID)
	nq.Type = QuestionType(core.CleanString(string(nq.Type), true /* lower */))
	nq.Text = strings.TrimSpace(nq.Text)
	nq.Choices = core.CleanStrings(nq.Choices)
	nq.Answers = core.CleanStrings(nq.Answers)
	if nq.Points == 0 {
		nq.Points = 1
	}
	switch nq.Type {
	case TypeTrueFalse:
		nq.Choices = append([]string(nil), trueFalseChoices...)
		for i, a := range nq.Answers {
			nq.Answers[i] = strings.ToLower(a)
		}
	case TypeShort:
		nq.Choices = nil
	}
	return core.Validate.Struct(nq)
}

type QuestionFilter struct {
	SubjectID string       `query:"subject_id"`
	LevelID   string       `query:"level_id"`
	Type      QuestionType `query:"type"`
	Search    string       `query:"search"`
}

func (qf *QuestionFilter) Clean() {
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.LevelID = core.CleanString(qf.LevelID)
	qf.Type = QuestionType(core.CleanString(string(qf.Type), true /* lower */))
	qf.Search = core.CleanString(qf.Search)
}

// Match reports whether q satisfies every set field of the filter.
func (qf QuestionFilter) Match(q Question) bool {
	return (qf.SubjectID == "" || q.SubjectID == qf.SubjectID) &&
		(qf.LevelID == "" || q.LevelID == "" || q.LevelID == qf.LevelID) &&
		(qf.Type == "" || q.Type == qf.Type) &&
		(qf.Search == "" || strings.Contains(strings.ToLower(q.Text), strings.ToLower(qf.Search)))
}

type Exam struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	SubjectID       string    `json:"subject_id"`
	ClassID         string    `json:"class_id"`
	ScheduledAt     null.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionIDs     []string  `json:"question_ids"`
	TotalPoints     float64   `json:"total_points"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

// NewExam contains information needed to create an Exam from chosen questions.
type NewExam struct {
	Title           string    `json:"title" validate:"required,max=200"`
	SubjectID       string    `json:"subject_id" validate:"required"`
	ClassID         string    `json:"class_id"`
	ScheduledAt     null.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0,max=600"`
	QuestionIDs     []string  `json:"question_ids" validate:"required,min=1,unique"`
}

func (ne *NewExam) Validate() error {
	ne.Title = core.Sanitize(ne.Title)
	ne.SubjectID = core.CleanString(ne.SubjectID)
	ne.ClassID = core.CleanString(ne.ClassID)
	ne.QuestionIDs = core.CleanStrings(ne.QuestionIDs)
	return core.Validate.Struct(ne)
}

// GenerateExam picks Count random questions of the subject. A zero Seed uses the current time.
type GenerateExam struct {
	Title           string         `json:"title" validate:"required,max=200"`
	SubjectID       string         `json:"subject_id" validate:"required"`
	ClassID         string         `json:"class_id"`
	ScheduledAt     null.Time      `json:"scheduled_at"`
	DurationMinutes int            `json:"duration_minutes" validate:"min=0,max=600"`
	Count           int            `json:"count" validate:"required,min=1,max=200"`
	Types           []QuestionType `json:"types" validate:"omitempty,unique,dive,oneof=single multiple true-false short"`
	Seed            int64          `json:"seed"`
}

func (ge *GenerateExam) Validate() error {
	ge.Title = core.Sanitize(ge.Title)
	ge.SubjectID = core.CleanString(ge.SubjectID)
	ge.ClassID = core.CleanString(ge.ClassID)
	return core.Validate.Struct(ge)
}

type ExamFilter struct {
	SubjectID string `query:"subject_id"`
	ClassID   string `query:"class_id"`
}

// Printable is an Exam laid out for printing, without answers.
type Printable struct {
	Exam     Exam   `json:"exam"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Submission maps question IDs to the given answers.
type Submission struct {
	Answers map[string][]string `json:"answers" validate:"required"`
}

type QuestionResult struct {
	QuestionID string  `json:"question_id"`
	Correct    bool    `json:"correct"`
	Points     float64 `json:"points"`
}

type Result struct {
	Score     float64          `json:"score"`
	Total     float64          `json:"total"`
	Percent   float64          `json:"percent"`
	Questions []QuestionResult `json:"questions"`
}
