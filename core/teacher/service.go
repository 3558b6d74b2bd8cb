package teacher

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("teacher")
	errSubjectNotFound = errors.New("subject not found")
	errClassNotFound   = errors.New("class not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckTeacherEmailUniqueness returns person.ErrEmailExists when a Teacher other than excludedID uses email.
		CheckTeacherEmailUniqueness(ctx context.Context, email, excludedID string) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		// QueryTeachers applies AND operation on the QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the names or the email.
		QueryTeachers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids ...string) error
	}

	// Directory resolves the records a Teacher refers to.
	Directory interface {
		SubjectExists(ctx context.Context, id string) (bool, error)
		ClassExists(ctx context.Context, id string) (bool, error)
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
		fields: person.NewFields(field.KindTeacher, templates),
	}
}

func (svc *Service) checkRefs(ctx context.Context, subjectIDs, classIDs []string) error {
	var fldErrs []core.FieldError
	for _, id := range subjectIDs {
		ok, err := svc.dir.SubjectExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: "subject_ids", Error: errSubjectNotFound.Error() + ": " + id})
		}
	}
	for _, id := range classIDs {
		ok, err := svc.dir.ClassExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: "class_ids", Error: errClassNotFound.Error() + ": " + id})
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(); err != nil {
		return Teacher{}, err
	}
	if err := person.CheckEmail(svc.repo.CheckTeacherEmailUniqueness(ctx, nt.Email, "")); err != nil {
		return Teacher{}, err
	}
	if err := svc.checkRefs(ctx, nt.SubjectIDs, nt.ClassIDs); err != nil {
		return Teacher{}, err
	}
	dyn, err := svc.fields.Prepare(ctx, nt.DynamicFields, nil)
	if err != nil {
		return Teacher{}, err
	}

	now := NowFunc().UTC()
	t := Teacher{
		Email:      nt.Email,
		Phone:      nt.Phone,
		SubjectIDs: nt.SubjectIDs,
		ClassIDs:   nt.ClassIDs,
	}
	nt.Apply(&t.Base)
	t.DynamicFields = dyn
	t.CreatedAt = now
	t.UpdatedAt = now
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Teacher, error) {
	filter.Clean()
	return svc.repo.QueryTeachers(ctx, filter, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if err = ut.Validate(); err != nil {
		return Teacher{}, err
	}
	if err = person.CheckEmail(svc.repo.CheckTeacherEmailUniqueness(ctx, ut.Email, t.ID)); err != nil {
		return Teacher{}, err
	}
	if err = svc.checkRefs(ctx, ut.SubjectIDs, ut.ClassIDs); err != nil {
		return Teacher{}, err
	}
	if ut.DynamicFields != nil {
		if t.DynamicFields, err = svc.fields.Prepare(ctx, ut.DynamicFields, t.DynamicFields); err != nil {
			return Teacher{}, err
		}
	}

	ut.Apply(&t.Base)
	t.Email = ut.Email
	t.Phone = ut.Phone
	t.SubjectIDs = ut.SubjectIDs
	t.ClassIDs = ut.ClassIDs
	t.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateTeacher(ctx, t)
}

// SetField updates a single attribute inline: firstname, lastname, photo or a dynamic field.
func (svc *Service) SetField(ctx context.Context, id, name string, value interface{}) (Teacher, error) {
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	handled, err := person.SetBase(&t.Base, name, value)
	if err != nil {
		return Teacher{}, err
	}
	if !handled {
		if t.DynamicFields, err = svc.fields.SetOne(ctx, t.DynamicFields, name, value); err != nil {
			return Teacher{}, err
		}
	}
	t.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}

// Form renders the dynamic fields form. An empty id renders the creation form.
func (svc *Service) Form(ctx context.Context, id string) (field.Form, error) {
	if id == "" {
		return svc.fields.Form(ctx, nil, field.ModeCreate)
	}
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return field.Form{}, err
	}
	return svc.fields.Form(ctx, t.DynamicFields, field.ModeEdit)
}

func (svc *Service) View(ctx context.Context, id string) (person.Detail, error) {
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return person.Detail{}, err
	}
	display, err := svc.fields.View(ctx, t.DynamicFields)
	if err != nil {
		return person.Detail{}, err
	}
	return person.Detail{Record: t, Display: display}, nil
}

func (svc *Service) Import(ctx context.Context, sheet core.Sheet) (core.ImportResult, error) {
	tpl, err := svc.fields.Template(ctx)
	if err != nil {
		return core.ImportResult{}, err
	}
	rows, err := person.ParseSheet(sheet, sheetColumns, tpl)
	if err != nil {
		return core.ImportResult{}, err
	}
	return person.ImportRows(rows, func(row person.Row) (string, error) {
		t, err := svc.Create(ctx, NewTeacher{
			Input: person.Input{
				Firstname:     row.Base["firstname"],
				Lastname:      row.Base["lastname"],
				DynamicFields: row.Dynamic,
			},
			Email: row.Base["email"],
			Phone: row.Base["phone"],
		})
		return t.ID, err
	})
}

// Export lays out every Teacher sorted by name, in the layout Import reads.
func (svc *Service) Export(ctx context.Context) (core.Sheet, error) {
	tpl, err := svc.fields.Template(ctx)
	if err != nil {
		return core.Sheet{}, err
	}
	teachers, err := svc.repo.QueryTeachers(ctx, QueryFilter{},
		core.DBOrdering{Field: "lastname", Ascending: true},
		core.DBOrdering{Field: "firstname", Ascending: true},
	)
	if err != nil {
		return core.Sheet{}, errors.Wrap(err, "querying teachers")
	}
	records := make([]person.SheetRecord, 0, len(teachers))
	for _, t := range teachers {
		records = append(records, person.SheetRecord{
			Base:    []string{t.Firstname, t.Lastname, t.Email, t.Phone},
			Dynamic: t.DynamicFields,
		})
	}
	return person.BuildSheet(sheetColumns, tpl, records), nil
}
