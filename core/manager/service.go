package manager

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
	ErrNotFound = core.NewNotFoundError("manager")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckManagerEmailUniqueness returns person.ErrEmailExists when a Manager other than excludedID uses email.
		CheckManagerEmailUniqueness(ctx context.Context, email, excludedID string) error
		CreateManager(ctx context.Context, m Manager) (Manager, error)
		// QueryManagers does a case-insensitive match of QueryFilter.Search on the names or the email.
		QueryManagers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Manager, error)
		GetManagerByID(ctx context.Context, id string) (Manager, error)
		UpdateManager(ctx context.Context, m Manager) (Manager, error)
		DeleteManagersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo   Repository
		fields *person.Fields
	}
)

func NewService(repo Repository, templates *field.Service) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()
	return &Service{
		repo:   repo,
		fields: person.NewFields(field.KindManager, templates),
	}
}

func (svc *Service) Create(ctx context.Context, nm NewManager) (Manager, error) {
	if err := nm.Validate(); err != nil {
		return Manager{}, err
	}
	if err := person.CheckEmail(svc.repo.CheckManagerEmailUniqueness(ctx, nm.Email, "")); err != nil {
		return Manager{}, err
	}
	dyn, err := svc.fields.Prepare(ctx, nm.DynamicFields, nil)
	if err != nil {
		return Manager{}, err
	}

	now := NowFunc().UTC()
	m := Manager{Email: nm.Email, Phone: nm.Phone, Position: nm.Position}
	nm.Apply(&m.Base)
	m.DynamicFields = dyn
	m.CreatedAt = now
	m.UpdatedAt = now
	return svc.repo.CreateManager(ctx, m)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Manager, error) {
	filter.Clean()
	return svc.repo.QueryManagers(ctx, filter, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Manager, error) {
	return svc.repo.GetManagerByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateManager) (Manager, error) {
	m, err := svc.repo.GetManagerByID(ctx, id)
	if err != nil {
		return Manager{}, err
	}
	if err = um.Validate(); err != nil {
		return Manager{}, err
	}
	if err = person.CheckEmail(svc.repo.CheckManagerEmailUniqueness(ctx, um.Email, m.ID)); err != nil {
		return Manager{}, err
	}
	if um.DynamicFields != nil {
		if m.DynamicFields, err = svc.fields.Prepare(ctx, um.DynamicFields, m.DynamicFields); err != nil {
			return Manager{}, err
		}
	}

	um.Apply(&m.Base)
	m.Email = um.Email
	m.Phone = um.Phone
	m.Position = um.Position
	m.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateManager(ctx, m)
}

// SetField updates a single attribute inline: firstname, lastname, photo or a dynamic field.
func (svc *Service) SetField(ctx context.Context, id, name string, value interface{}) (Manager, error) {
	m, err := svc.repo.GetManagerByID(ctx, id)
	if err != nil {
		return Manager{}, err
	}
	handled, err := person.SetBase(&m.Base, name, value)
	if err != nil {
		return Manager{}, err
	}
	if !handled {
		if m.DynamicFields, err = svc.fields.SetOne(ctx, m.DynamicFields, name, value); err != nil {
			return Manager{}, err
		}
	}
	m.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateManager(ctx, m)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteManagersByID(ctx, ids...)
}

// Form renders the dynamic fields form. An empty id renders the creation form.
func (svc *Service) Form(ctx context.Context, id string) (field.Form, error) {
	if id == "" {
		return svc.fields.Form(ctx, nil, field.ModeCreate)
	}
	m, err := svc.repo.GetManagerByID(ctx, id)
	if err != nil {
		return field.Form{}, err
	}
	return svc.fields.Form(ctx, m.DynamicFields, field.ModeEdit)
}

func (svc *Service) View(ctx context.Context, id string) (person.Detail, error) {
	m, err := svc.repo.GetManagerByID(ctx, id)
	if err != nil {
		return person.Detail{}, err
	}
	display, err := svc.fields.View(ctx, m.DynamicFields)
	if err != nil {
		return person.Detail{}, err
	}
	return person.Detail{Record: m, Display: display}, nil
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
		m, err := svc.Create(ctx, NewManager{
			Input: person.Input{
				Firstname:     row.Base["firstname"],
				Lastname:      row.Base["lastname"],
				DynamicFields: row.Dynamic,
			},
			Email:    row.Base["email"],
			Phone:    row.Base["phone"],
			Position: row.Base["position"],
		})
		return m.ID, err
	})
}

// Export lays out every Manager sorted by name, in the layout Import reads.
func (svc *Service) Export(ctx context.Context) (core.Sheet, error) {
	tpl, err := svc.fields.Template(ctx)
	if err != nil {
		return core.Sheet{}, err
	}
	managers, err := svc.repo.QueryManagers(ctx, QueryFilter{},
		core.DBOrdering{Field: "lastname", Ascending: true},
		core.DBOrdering{Field: "firstname", Ascending: true},
	)
	if err != nil {
		return core.Sheet{}, errors.Wrap(err, "querying managers")
	}
	records := make([]person.SheetRecord, 0, len(managers))
	for _, m := range managers {
		records = append(records, person.SheetRecord{
			Base:    []string{m.Firstname, m.Lastname, m.Email, m.Phone, positionName(m.Position)},
			Dynamic: m.DynamicFields,
		})
	}
	return person.BuildSheet(sheetColumns, tpl, records), nil
}
