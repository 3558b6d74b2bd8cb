package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core/field"
)

type templateRepository struct {
	db *templateTable
}

var _ field.Repository = (*templateRepository)(nil) // interface compliance check

func NewTemplateRepository(db *DB) *templateRepository {
	return &templateRepository{db: db.template}
}

func copyTemplate(tpl field.Template) field.Template {
	fields := make([]field.Descriptor, len(tpl.Fields))
	for i, d := range tpl.Fields {
		if d.Options != nil {
			d.Options = append([]field.Option(nil), d.Options...)
		}
		fields[i] = d
	}
	tpl.Fields = fields
	return tpl
}

func (repo *templateRepository) GetTemplate(_ context.Context, kind field.Kind) (field.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	versions := repo.db.table[kind]
	if len(versions) == 0 {
		return field.Template{}, field.ErrNotFound
	}
	return copyTemplate(versions[len(versions)-1]), nil
}

func (repo *templateRepository) SaveTemplate(_ context.Context, tpl field.Template) (field.Template, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	versions := repo.db.table[tpl.Kind]
	if tpl.Version != len(versions)+1 {
		return field.Template{}, field.ErrVersionConflict
	}
	tpl = copyTemplate(tpl)
	repo.db.table[tpl.Kind] = append(versions, tpl)
	return copyTemplate(tpl), nil
}

func (repo *templateRepository) QueryTemplateHistory(_ context.Context, kind field.Kind) ([]field.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	versions := repo.db.table[kind]
	history := make([]field.Template, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		history = append(history, copyTemplate(versions[i]))
	}
	return history, nil
}
