package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/thaimooc/platform/core/institution"
)

type institutionRepository struct {
	db *institutionTable
}

var _ institution.Repository = (*institutionRepository)(nil) // interface compliance check

func NewInstitutionRepository(db *DB) institution.Repository {
	return &institutionRepository{db: db.institution}
}

func (repo *institutionRepository) CreateInstitution(_ context.Context, inst institution.Institution) (institution.Institution, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst.ID = uuid.New().String()
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *institutionRepository) QueryInstitutions(_ context.Context) ([]institution.Institution, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	insts := make([]institution.Institution, 0, len(repo.db.table))
	for _, inst := range repo.db.table {
		insts = append(insts, *inst)
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i].Name < insts[j].Name })
	return insts, nil
}

func (repo *institutionRepository) GetInstitution(_ context.Context, id string) (institution.Institution, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return institution.Institution{}, institution.ErrNotFound
}

func (repo *institutionRepository) UpdateInstitution(_ context.Context, inst institution.Institution) (institution.Institution, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[inst.ID]; !ok {
		return institution.Institution{}, institution.ErrNotFound
	}
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *institutionRepository) DeleteInstitutionsByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			delete(repo.db.menus, id+":"+institution.MenuHeader)
			delete(repo.db.menus, id+":"+institution.MenuFooter)
			n++
		}
	}
	return n, nil
}

func (repo *institutionRepository) QueryMenuItems(_ context.Context, institutionID, position string) ([]institution.MenuItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := append([]institution.MenuItem(nil), repo.db.menus[institutionID+":"+position]...)
	sort.Slice(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items, nil
}

func (repo *institutionRepository) ReplaceMenuItems(_ context.Context, institutionID, position string, items []institution.MenuItem) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := make([]institution.MenuItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		stored[i] = item
	}
	repo.db.menus[institutionID+":"+position] = stored
	return nil
}
