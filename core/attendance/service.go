package attendance

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	errClassNotFound    = errors.New("class not found")
	errNotInClass       = errors.New("student is not in this class")
	errFutureDate       = errors.New("cannot mark attendance in the future")
	errDuplicateStudent = errors.New("student listed more than once")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// QueryRecords returns the records matching filter, sorted by date then student ID.
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		// UpsertRecords stores records, replacing any record of the same student and date.
		UpsertRecords(ctx context.Context, records []Record) ([]Record, error)
	}

	// Directory resolves the classes of students.
	Directory interface {
		ClassExists(ctx context.Context, id string) (bool, error)
		// StudentClass returns the class ID of a student, or a not found error.
		StudentClass(ctx context.Context, studentID string) (string, error)
	}

	// Notifier is told about students newly marked absent.
	Notifier interface {
		NotifyAbsence(ctx context.Context, rec Record) error
	}

	Service struct {
		repo     Repository
		dir      Directory
		notifier Notifier
		logger   core.Logger
	}
)

// NewService creates the attendance Service. notifier may be nil.
func NewService(repo Repository, dir Directory, notifier Notifier, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, dir: dir, notifier: notifier, logger: logger}
}

// today is the current date as stored on records.
func today() string {
	return NowFunc().UTC().Format(DateLayout)
}

// Mark records the roll call of a class. Students newly marked absent are notified.
func (svc *Service) Mark(ctx context.Context, ms MarkSheet) ([]Record, error) {
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	if ms.Date > today() {
		return nil, core.NewValidationError(errFutureDate, core.FieldError{Field: "date", Error: errFutureDate.Error()})
	}
	ok, err := svc.dir.ClassExists(ctx, ms.ClassID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NewValidationError(errClassNotFound, core.FieldError{Field: "class_id", Error: errClassNotFound.Error()})
	}

	var fldErrs []core.FieldError
	seen := make(map[string]bool, len(ms.Entries))
	for i, e := range ms.Entries {
		path := "entries[" + strconv.Itoa(i) + "].student_id"
		if seen[e.StudentID] {
			fldErrs = append(fldErrs, core.FieldError{Field: path, Error: errDuplicateStudent.Error()})
			continue
		}
		seen[e.StudentID] = true
		classID, err := svc.dir.StudentClass(ctx, e.StudentID)
		if err != nil {
			if !core.IsNotFound(err) {
				return nil, err
			}
			fldErrs = append(fldErrs, core.FieldError{Field: path, Error: err.Error()})
			continue
		}
		if classID != ms.ClassID {
			fldErrs = append(fldErrs, core.FieldError{Field: path, Error: errNotInClass.Error()})
		}
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}

	prev, err := svc.repo.QueryRecords(ctx, QueryFilter{ClassID: ms.ClassID, From: ms.Date, To: ms.Date})
	if err != nil {
		return nil, errors.Wrap(err, "querying previous records")
	}
	wasAbsent := make(map[string]bool, len(prev))
	for _, r := range prev {
		wasAbsent[r.StudentID] = r.Status == StatusAbsent
	}

	now := NowFunc().UTC()
	records := make([]Record, 0, len(ms.Entries))
	for _, e := range ms.Entries {
		records = append(records, Record{
			StudentID: e.StudentID,
			ClassID:   ms.ClassID,
			Date:      ms.Date,
			Status:    e.Status,
			Note:      e.Note,
			UpdatedAt: now,
		})
	}
	saved, err := svc.repo.UpsertRecords(ctx, records)
	if err != nil {
		return nil, errors.Wrap(err, "saving records")
	}

	if svc.notifier != nil {
		for _, r := range saved {
			if r.Status == StatusAbsent && !wasAbsent[r.StudentID] {
				if err := svc.notifier.NotifyAbsence(ctx, r); err != nil {
					svc.logger.Error(err.Error(), err)
				}
			}
		}
	}
	return saved, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return svc.repo.QueryRecords(ctx, filter)
}

// Summarize counts the matching records per student, sorted by student ID.
func (svc *Service) Summarize(ctx context.Context, filter QueryFilter) ([]Summary, error) {
	records, err := svc.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[string]*Summary)
	for _, r := range records {
		s, ok := byStudent[r.StudentID]
		if !ok {
			s = &Summary{StudentID: r.StudentID}
			byStudent[r.StudentID] = s
		}
		s.add(r.Status)
	}
	summaries := make([]Summary, 0, len(byStudent))
	for _, s := range byStudent {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].StudentID < summaries[j].StudentID })
	return summaries, nil
}
