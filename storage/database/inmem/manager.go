package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/person"
)

type managerRepository struct {
	db *managerTable
}

var _ manager.Repository = (*managerRepository)(nil) // interface compliance check

func NewManagerRepository(db *DB) *managerRepository {
	return &managerRepository{db: db.manager}
}

func copyManager(m manager.Manager) manager.Manager {
	m.DynamicFields = copyValues(m.DynamicFields)
	return m
}

func (repo *managerRepository) query() []manager.Manager {
	managers := make([]manager.Manager, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		managers = append(managers, copyManager(*m))
	}
	return managers
}

func (repo *managerRepository) CheckManagerEmailUniqueness(_ context.Context, email, excludedID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, m := range repo.db.table {
		if m.ID != excludedID && strings.EqualFold(m.Email, email) {
			return person.ErrEmailExists
		}
	}
	return nil
}

func (repo *managerRepository) CreateManager(_ context.Context, m manager.Manager) (manager.Manager, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m = copyManager(m)
	m.ID = newID()
	repo.db.table[m.ID] = &m
	return copyManager(m), nil
}

func (repo *managerRepository) QueryManagers(_ context.Context, filter manager.QueryFilter, ordering ...core.DBOrdering) ([]manager.Manager, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	managers := make([]manager.Manager, 0, len(repo.db.table))
	for _, m := range repo.query() {
		if !m.Matches(search) && !strings.Contains(m.Email, search) {
			continue
		}
		if filter.Position != "" && m.Position != filter.Position {
			continue
		}
		managers = append(managers, m)
	}

	err := sortPersons(len(managers),
		func(i int) person.Base { return managers[i].Base },
		func(i, j int) { managers[i], managers[j] = managers[j], managers[i] },
		ordering,
	)
	return managers, err
}

func (repo *managerRepository) GetManagerByID(_ context.Context, id string) (manager.Manager, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return copyManager(*m), nil
	}
	return manager.Manager{}, manager.ErrNotFound
}

func (repo *managerRepository) UpdateManager(_ context.Context, m manager.Manager) (manager.Manager, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[m.ID]; !ok {
		return manager.Manager{}, manager.ErrNotFound
	}
	m = copyManager(m)
	repo.db.table[m.ID] = &m
	return copyManager(m), nil
}

func (repo *managerRepository) DeleteManagersByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
