package parent

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("parent")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckParentEmailUniqueness returns person.ErrEmailExists when a Parent other than excludedID uses email.
		CheckParentEmailUniqueness(ctx context.Context, email, excludedID string) error
		CreateParent(ctx context.Context, p Parent) (Parent, error)
		// QueryParents does a case-insensitive match of QueryFilter.Search on the names or the email.
		QueryParents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Parent, error)
		GetParentByID(ctx context.Context, id string) (Parent, error)
		UpdateParent(ctx context.Context, p Parent) (Parent, error)
		DeleteParentsByID(ctx context.Context, ids ...string) error
	}

	// Students finds the children of a Parent.
	Students interface {
		QueryStudents(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error)
	}

	Service struct {
		repo     Repository
		students Students
		fields   *person.Fields
	}
)

func NewService(repo Repository, students Students, templates *field.Service) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
	).CheckAndPanic()
	return &Service{
		repo:     repo,
		students: students,
		fields:   person.NewFields(field.KindParent, templates),
	}
}

func (svc *Service) Create(ctx context.Context, np NewParent) (Parent, error) {
	if err := np.Validate(); err != nil {
		return Parent{}, err
	}
	if err := person.CheckEmail(svc.repo.CheckParentEmailUniqueness(ctx, np.Email, "")); err != nil {
		return Parent{}, err
	}
	dyn, err := svc.fields.Prepare(ctx, np.DynamicFields, nil)
	if err != nil {
		return Parent{}, err
	}

	now := NowFunc().UTC()
	p := Parent{Email: np.Email, Phone: np.Phone}
	np.Apply(&p.Base)
	p.DynamicFields = dyn
	p.CreatedAt = now
	p.UpdatedAt = now
	return svc.repo.CreateParent(ctx, p)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Parent, error) {
	filter.Clean()
	return svc.repo.QueryParents(ctx, filter, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Parent, error) {
	return svc.repo.GetParentByID(ctx, id)
}

// GetFamily returns the Parent and its children sorted by name.
func (svc *Service) GetFamily(ctx context.Context, id string) (Family, error) {
	p, err := svc.repo.GetParentByID(ctx, id)
	if err != nil {
		return Family{}, err
	}
	children, err := svc.students.QueryStudents(ctx, student.QueryFilter{ParentID: p.ID},
		core.DBOrdering{Field: "firstname", Ascending: true},
	)
	if err != nil {
		return Family{}, errors.Wrap(err, "querying children")
	}
	return Family{Parent: p, Children: children}, nil
}

func (svc *Service) Update(ctx context.Context, id string, up UpdateParent) (Parent, error) {
	p, err := svc.repo.GetParentByID(ctx, id)
	if err != nil {
		return Parent{}, err
	}
	if err = up.Validate(); err != nil {
		return Parent{}, err
	}
	if err = person.CheckEmail(svc.repo.CheckParentEmailUniqueness(ctx, up.Email, p.ID)); err != nil {
		return Parent{}, err
	}
	if up.DynamicFields != nil {
		if p.DynamicFields, err = svc.fields.Prepare(ctx, up.DynamicFields, p.DynamicFields); err != nil {
			return Parent{}, err
		}
	}

	up.Apply(&p.Base)
	p.Email = up.Email
	p.Phone = up.Phone
	p.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateParent(ctx, p)
}

// SetField updates a single attribute inline: firstname, lastname, photo or a dynamic field.
func (svc *Service) SetField(ctx context.Context, id, name string, value interface{}) (Parent, error) {
	p, err := svc.repo.GetParentByID(ctx, id)
	if err != nil {
		return Parent{}, err
	}
	handled, err := person.SetBase(&p.Base, name, value)
	if err != nil {
		return Parent{}, err
	}
	if !handled {
		if p.DynamicFields, err = svc.fields.SetOne(ctx, p.DynamicFields, name, value); err != nil {
			return Parent{}, err
		}
	}
	p.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateParent(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteParentsByID(ctx, ids...)
}

// Form renders the dynamic fields form. An empty id renders the creation form.
func (svc *Service) Form(ctx context.Context, id string) (field.Form, error) {
	if id == "" {
		return svc.fields.Form(ctx, nil, field.ModeCreate)
	}
	p, err := svc.repo.GetParentByID(ctx, id)
	if err != nil {
		return field.Form{}, err
	}
	return svc.fields.Form(ctx, p.DynamicFields, field.ModeEdit)
}

func (svc *Service) View(ctx context.Context, id string) (person.Detail, error) {
	fam, err := svc.GetFamily(ctx, id)
	if err != nil {
		return person.Detail{}, err
	}
	display, err := svc.fields.View(ctx, fam.Parent.DynamicFields)
	if err != nil {
		return person.Detail{}, err
	}
	return person.Detail{Record: fam, Display: display}, nil
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
		p, err := svc.Create(ctx, NewParent{
			Input: person.Input{
				Firstname:     row.Base["firstname"],
				Lastname:      row.Base["lastname"],
				DynamicFields: row.Dynamic,
			},
			Email: row.Base["email"],
			Phone: row.Base["phone"],
		})
		return p.ID, err
	})
}

// Export lays out every Parent sorted by name, in the layout Import reads.
func (svc *Service) Export(ctx context.Context) (core.Sheet, error) {
	tpl, err := svc.fields.Template(ctx)
	if err != nil {
		return core.Sheet{}, err
	}
	parents, err := svc.repo.QueryParents(ctx, QueryFilter{},
		core.DBOrdering{Field: "lastname", Ascending: true},
		core.DBOrdering{Field: "firstname", Ascending: true},
	)
	if err != nil {
		return core.Sheet{}, errors.Wrap(err, "querying parents")
	}
	records := make([]person.SheetRecord, 0, len(parents))
	for _, p := range parents {
		records = append(records, person.SheetRecord{
			Base:    []string{p.Firstname, p.Lastname, p.Email, p.Phone},
			Dynamic: p.DynamicFields,
		})
	}
	return person.BuildSheet(sheetColumns, tpl, records), nil
}
