package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/thaimooc/platform/core/support"
)

type supportRepository struct {
	db *supportTable
}

var _ support.Repository = (*supportRepository)(nil) // interface compliance check

func NewSupportRepository(db *DB) support.Repository {
	return &supportRepository{db: db.support}
}

func (repo *supportRepository) CreateTicket(_ context.Context, t support.Ticket) (support.Ticket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *supportRepository) QueryTickets(_ context.Context, institutionID, status string) ([]support.Ticket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tickets := make([]support.Ticket, 0)
	for _, t := range repo.db.table {
		if institutionID != "" && t.InstitutionID.String != institutionID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		tickets = append(tickets, *t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets, nil
}

func (repo *supportRepository) GetTicket(_ context.Context, id string) (support.Ticket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return support.Ticket{}, support.ErrNotFound
}

func (repo *supportRepository) UpdateTicket(_ context.Context, t support.Ticket) (support.Ticket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return support.Ticket{}, support.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}
