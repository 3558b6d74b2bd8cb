package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/person"
)

type parentRepository struct {
	db *parentTable
}

var _ parent.Repository = (*parentRepository)(nil) // interface compliance check

func NewParentRepository(db *DB) *parentRepository {
	return &parentRepository{db: db.parent}
}

func copyParent(p parent.Parent) parent.Parent {
	p.DynamicFields = copyValues(p.DynamicFields)
	return p
}

func (repo *parentRepository) query() []parent.Parent {
	parents := make([]parent.Parent, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		parents = append(parents, copyParent(*p))
	}
	return parents
}

func (repo *parentRepository) CheckParentEmailUniqueness(_ context.Context, email, excludedID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.table {
		if p.ID != excludedID && strings.EqualFold(p.Email, email) {
			return person.ErrEmailExists
		}
	}
	return nil
}

func (repo *parentRepository) CreateParent(_ context.Context, p parent.Parent) (parent.Parent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p = copyParent(p)
	p.ID = newID()
	repo.db.table[p.ID] = &p
	return copyParent(p), nil
}

func (repo *parentRepository) QueryParents(_ context.Context, filter parent.QueryFilter, ordering ...core.DBOrdering) ([]parent.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	parents := make([]parent.Parent, 0, len(repo.db.table))
	for _, p := range repo.query() {
		if p.Matches(search) || strings.Contains(p.Email, search) {
			parents = append(parents, p)
		}
	}

	err := sortPersons(len(parents),
		func(i int) person.Base { return parents[i].Base },
		func(i, j int) { parents[i], parents[j] = parents[j], parents[i] },
		ordering,
	)
	return parents, err
}

func (repo *parentRepository) GetParentByID(_ context.Context, id string) (parent.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return copyParent(*p), nil
	}
	return parent.Parent{}, parent.ErrNotFound
}

func (repo *parentRepository) UpdateParent(_ context.Context, p parent.Parent) (parent.Parent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return parent.Parent{}, parent.ErrNotFound
	}
	p = copyParent(p)
	repo.db.table[p.ID] = &p
	return copyParent(p), nil
}

func (repo *parentRepository) DeleteParentsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
