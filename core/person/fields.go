package person

import (
	"context"
	"errors"

	"github.com/kat-co/vala"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
)

var (
	errUnknownField     = errors.New("unknown field")
	errFieldNotEditable = errors.New("this field is not editable")
)

// Fields validates the dynamic fields of one entity kind against its current template.
type Fields struct {
	kind      field.Kind
	templates *field.Service
}

func NewFields(kind field.Kind, templates *field.Service) *Fields {
	vala.BeginValidation().Validate(
		vala.StringNotEmpty(string(kind), "kind"),
		vala.IsNotNil(templates, "templates"),
	).CheckAndPanic()
	return &Fields{kind: kind, templates: templates}
}

func (f *Fields) Kind() field.Kind { return f.kind }

func (f *Fields) Template(ctx context.Context) (field.Template, error) {
	return f.templates.Get(ctx, f.kind)
}

// Prepare checks incoming values and returns the map to store.
// When editing (existing != nil), non-editable fields keep their stored value (and are not
// required when the record never had one) and values of fields no longer in the template are retained.
func (f *Fields) Prepare(ctx context.Context, incoming, existing map[string]interface{}) (map[string]interface{}, error) {
	tpl, schema, err := f.templates.Schema(ctx, f.kind)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(incoming))
	for name, value := range incoming {
		if _, kept := existing[name]; kept && !schema.Has(name) {
			continue
		}
		merged[name] = value
	}
	if existing != nil {
		locked := false
		descs := make([]field.Descriptor, len(tpl.Fields))
		for i, d := range tpl.Fields {
			descs[i] = d
			if d.Editable {
				continue
			}
			if value, ok := existing[d.Name]; ok {
				merged[d.Name] = value
			} else {
				delete(merged, d.Name)
				descs[i].Required = false
				locked = true
			}
		}
		// a locked field the record never had cannot be supplied on edit
		if locked {
			schema = field.Compile(descs)
		}
	}

	cleaned, err := schema.Clean(merged)
	if err != nil {
		return nil, prefixErrors(err)
	}
	for name, value := range existing {
		if !schema.Has(name) {
			cleaned[name] = value
		}
	}
	return cleaned, nil
}

// SetOne updates a single editable field and returns the new map. An empty value clears the field.
func (f *Fields) SetOne(ctx context.Context, existing map[string]interface{}, name string, value interface{}) (map[string]interface{}, error) {
	tpl, schema, err := f.templates.Schema(ctx, f.kind)
	if err != nil {
		return nil, err
	}
	d, ok := tpl.Field(name)
	if !ok {
		return nil, core.NewValidationError(errUnknownField, core.FieldError{Field: name, Error: errUnknownField.Error()})
	}
	if !d.Editable {
		return nil, core.NewValidationError(errFieldNotEditable, core.FieldError{Field: name, Error: errFieldNotEditable.Error()})
	}

	cleaned, err := schema.CleanOne(name, value)
	if err != nil {
		return nil, err
	}
	values := make(map[string]interface{}, len(existing)+1)
	for k, v := range existing {
		values[k] = v
	}
	if cleaned == nil {
		delete(values, name)
	} else {
		values[name] = cleaned
	}
	return values, nil
}

func (f *Fields) Form(ctx context.Context, values map[string]interface{}, mode field.Mode) (field.Form, error) {
	tpl, err := f.Template(ctx)
	if err != nil {
		return field.Form{}, err
	}
	return field.RenderForm(tpl, values, mode), nil
}

func (f *Fields) View(ctx context.Context, values map[string]interface{}) ([]field.Display, error) {
	tpl, err := f.Template(ctx)
	if err != nil {
		return nil, err
	}
	return field.RenderView(tpl, values), nil
}

// prefixErrors reports dynamic field errors under "dynamic_fields.<name>".
func prefixErrors(err error) error {
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		return err
	}
	flds := make([]core.FieldError, len(vErr.Fields))
	for i, fe := range vErr.Fields {
		flds[i] = core.FieldError{Field: "dynamic_fields." + fe.Field, Error: fe.Error}
	}
	return core.NewValidationError(vErr.Err, flds...)
}
