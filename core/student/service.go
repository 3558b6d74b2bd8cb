package student

import (
	"context"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("student")
	errClassNotFound  = errors.New("class not found")
	errParentNotFound = errors.New("parent not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// QueryStudents applies AND operation on the QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the first or last name.
		QueryStudents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
	}

	// Directory resolves the records a Student refers to.
	Directory interface {
		// ClassNames maps every class ID to its name.
		ClassNames(ctx context.Context) (map[string]string, error)
		ParentExists(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo   Repository
		dir    Directory
		fields *person.Fields
	}
)

func NewService(repo Repository, dir Directory, templates *field.Service) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
	).CheckAndPanic()
	return &Service{
		repo:   repo,
		dir:    dir,
		fields: person.NewFields(field.KindStudent, templates),
	}
}

func (svc *Service) checkRefs(ctx context.Context, classID string, parentIDs []string) error {
	var fldErrs []core.FieldError
	if classID != "" {
		classes, err := svc.dir.ClassNames(ctx)
		if err != nil {
			return err
		}
		if _, ok := classes[classID]; !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: "class_id", Error: errClassNotFound.Error()})
		}
	}
	for _, id := range parentIDs {
		ok, err := svc.dir.ParentExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: "parent_ids", Error: errParentNotFound.Error() + ": " + id})
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	if err := svc.checkRefs(ctx, ns.ClassID, ns.ParentIDs); err != nil {
		return Student{}, err
	}
	dyn, err := svc.fields.Prepare(ctx, ns.DynamicFields, nil)
	if err != nil {
		return Student{}, err
	}

	now := NowFunc().UTC()
	s := Student{
		ClassID:   ns.ClassID,
		ParentIDs: ns.ParentIDs,
		BirthDate: ns.BirthDate,
	}
	ns.Apply(&s.Base)
	s.DynamicFields = dyn
	s.CreatedAt = now
	s.UpdatedAt = now
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(); err != nil {
		return Student{}, err
	}
	if err = svc.checkRefs(ctx, us.ClassID, us.ParentIDs); err != nil {
		return Student{}, err
	}
	if us.DynamicFields != nil {
		if s.DynamicFields, err = svc.fields.Prepare(ctx, us.DynamicFields, s.DynamicFields); err != nil {
			return Student{}, err
		}
	}

	us.Apply(&s.Base)
	s.ClassID = us.ClassID
	s.ParentIDs = us.ParentIDs
	s.BirthDate = us.BirthDate
	s.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

// SetField updates a single attribute inline: firstname, lastname, photo or a dynamic field.
func (svc *Service) SetField(ctx context.Context, id, name string, value interface{}) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	handled, err := person.SetBase(&s.Base, name, value)
	if err != nil {
		return Student{}, err
	}
	if !handled {
		if s.DynamicFields, err = svc.fields.SetOne(ctx, s.DynamicFields, name, value); err != nil {
			return Student{}, err
		}
	}
	s.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// Form renders the dynamic fields form. An empty id renders the creation form.
func (svc *Service) Form(ctx context.Context, id string) (field.Form, error) {
	if id == "" {
		return svc.fields.Form(ctx, nil, field.ModeCreate)
	}
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return field.Form{}, err
	}
	return svc.fields.Form(ctx, s.DynamicFields, field.ModeEdit)
}

func (svc *Service) View(ctx context.Context, id string) (person.Detail, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return person.Detail{}, err
	}
	display, err := svc.fields.View(ctx, s.DynamicFields)
	if err != nil {
		return person.Detail{}, err
	}
	return person.Detail{Record: s, Display: display}, nil
}

// Import creates a Student per sheet row. The class column accepts a class name or ID.
func (svc *Service) Import(ctx context.Context, sheet core.Sheet) (core.ImportResult, error) {
	tpl, err := svc.fields.Template(ctx)
	if err != nil {
		return core.ImportResult{}, err
	}
	rows, err := person.ParseSheet(sheet, sheetColumns, tpl)
	if err != nil {
		return core.ImportResult{}, err
	}
	classes, err := svc.dir.ClassNames(ctx)
	if err != nil {
		return core.ImportResult{}, err
	}
	classIDs := make(map[string]string, 2*len(classes))
	for id, name := range classes {
		classIDs[strings.ToLower(name)] = id
		classIDs[strings.ToLower(id)] = id
	}

	return person.ImportRows(rows, func(row person.Row) (string, error) {
		ns := NewStudent{
			Input: person.Input{
				Firstname:     row.Base["firstname"],
				Lastname:      row.Base["lastname"],
				DynamicFields: row.Dynamic,
			},
		}
		if class := row.Base["class"]; class != "" {
			id, ok := classIDs[strings.ToLower(class)]
			if !ok {
				return "", core.NewValidationError(errClassNotFound, core.FieldError{Field: "class", Error: errClassNotFound.Error()})
			}
			ns.ClassID = id
		}
		if bd := row.Base["birth_date"]; bd != "" {
			t, err := time.Parse(birthDateLayout, bd)
			if err != nil {
				return "", core.NewValidationError(err, core.FieldError{Field: "birth_date", Error: "must be a date (YYYY-MM-DD)"})
			}
			ns.BirthDate = null.TimeFrom(t)
		}
		s, err := svc.Create(ctx, ns)
		return s.ID, err
	})
}

// Export lays out every Student sorted by name, in the layout Import reads.
func (svc *Service) Export(ctx context.Context) (core.Sheet, error) {
	tpl, err := svc.fields.Template(ctx)
	if err != nil {
		return core.Sheet{}, err
	}
	students, err := svc.repo.QueryStudents(ctx, QueryFilter{},
		core.DBOrdering{Field: "lastname", Ascending: true},
		core.DBOrdering{Field: "firstname", Ascending: true},
	)
	if err != nil {
		return core.Sheet{}, errors.Wrap(err, "querying students")
	}
	classes, err := svc.dir.ClassNames(ctx)
	if err != nil {
		return core.Sheet{}, err
	}

	records := make([]person.SheetRecord, 0, len(students))
	for _, s := range students {
		var bd string
		if s.BirthDate.Valid {
			bd = s.BirthDate.Time.Format(birthDateLayout)
		}
		records = append(records, person.SheetRecord{
			Base:    []string{s.Firstname, s.Lastname, classes[s.ClassID], bd},
			Dynamic: s.DynamicFields,
		})
	}
	return person.BuildSheet(sheetColumns, tpl, records), nil
}
