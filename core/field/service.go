package field

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("template")
	ErrUnknownKind     = core.NewNotFoundError("entity kind")
	ErrVersionConflict = errors.New("template was modified by someone else; reload it and try again")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// GetTemplate returns the latest version of the kind's template, or ErrNotFound.
		GetTemplate(ctx context.Context, kind Kind) (Template, error)
		// SaveTemplate stores tpl as the latest version. tpl.Version must follow the stored one.
		SaveTemplate(ctx context.Context, tpl Template) (Template, error)
		// QueryTemplateHistory returns every saved version, newest first.
		QueryTemplateHistory(ctx context.Context, kind Kind) ([]Template, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()
	return &Service{repo: repo}
}

// Get returns the kind's template. A kind never saved has an empty version 0 template.
func (svc *Service) Get(ctx context.Context, kind Kind) (Template, error) {
	tpl, err := svc.repo.GetTemplate(ctx, kind)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Template{Kind: kind, Fields: []Descriptor{}}, nil
		}
		return Template{}, errors.Wrap(err, "getting template")
	}
	return tpl, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Template, error) {
	tpls := make([]Template, 0, len(Kinds))
	for _, kind := range Kinds {
		tpl, err := svc.Get(ctx, kind)
		if err != nil {
			return nil, err
		}
		tpls = append(tpls, tpl)
	}
	return tpls, nil
}

// Save replaces the kind's field list and bumps its version.
// A non-zero expectedVersion must match the current version.
func (svc *Service) Save(ctx context.Context, kind Kind, ut UpdateTemplate, expectedVersion int) (Template, error) {
	if err := ut.Validate(); err != nil {
		return Template{}, err
	}
	curr, err := svc.Get(ctx, kind)
	if err != nil {
		return Template{}, err
	}
	if expectedVersion != 0 && expectedVersion != curr.Version {
		return Template{}, core.NewValidationError(ErrVersionConflict)
	}
	return svc.save(ctx, curr, ut.Fields)
}

// Install saves tpl only when its kind has no template yet.
func (svc *Service) Install(ctx context.Context, tpl Template) (Template, bool, error) {
	curr, err := svc.Get(ctx, tpl.Kind)
	if err != nil {
		return Template{}, false, err
	}
	if curr.Version > 0 {
		return curr, false, nil
	}
	ut := UpdateTemplate{Fields: tpl.Fields}
	if err = ut.Validate(); err != nil {
		return Template{}, false, errors.Wrapf(err, "invalid %s template", tpl.Kind)
	}
	saved, err := svc.save(ctx, curr, ut.Fields)
	return saved, err == nil, err
}

// Reorder sets the display order of every field at once.
func (svc *Service) Reorder(ctx context.Context, kind Kind, names []string) (Template, error) {
	curr, err := svc.Get(ctx, kind)
	if err != nil {
		return Template{}, err
	}
	next := curr
	next.Fields = append([]Descriptor(nil), curr.Fields...)
	if err = next.Reorder(names); err != nil {
		return Template{}, err
	}
	return svc.save(ctx, curr, next.Fields)
}

// Move drops the named field at index of the display order, like a drag and drop.
func (svc *Service) Move(ctx context.Context, kind Kind, name string, index int) (Template, error) {
	curr, err := svc.Get(ctx, kind)
	if err != nil {
		return Template{}, err
	}
	next := curr
	next.Fields = append([]Descriptor(nil), curr.Fields...)
	if err = next.Move(name, index); err != nil {
		return Template{}, err
	}
	return svc.save(ctx, curr, next.Fields)
}

func (svc *Service) History(ctx context.Context, kind Kind) ([]Template, error) {
	tpls, err := svc.repo.QueryTemplateHistory(ctx, kind)
	if err != nil {
		return nil, errors.Wrap(err, "querying template history")
	}
	return tpls, nil
}

// Schema returns the kind's template and its compiled Schema.
func (svc *Service) Schema(ctx context.Context, kind Kind) (Template, *Schema, error) {
	tpl, err := svc.Get(ctx, kind)
	if err != nil {
		return Template{}, nil, err
	}
	return tpl, Compile(tpl.Fields), nil
}

func (svc *Service) save(ctx context.Context, curr Template, fields []Descriptor) (Template, error) {
	tpl := Template{
		Kind:      curr.Kind,
		Fields:    fields,
		Version:   curr.Version + 1,
		UpdatedAt: NowFunc().UTC(),
	}
	saved, err := svc.repo.SaveTemplate(ctx, tpl)
	if err != nil {
		if errors.Cause(err) == ErrVersionConflict {
			return Template{}, core.NewValidationError(ErrVersionConflict)
		}
		return Template{}, errors.Wrap(err, "saving template")
	}
	return saved, nil
}
