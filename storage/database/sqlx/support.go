package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core/support"
)

type supportRepository struct {
	db *sqlx.DB
}

var _ support.Repository = (*supportRepository)(nil) // interface compliance check

func NewSupportRepository(db *sqlx.DB) support.Repository {
	return &supportRepository{db: db}
}

func (repo *supportRepository) CreateTicket(ctx context.Context, t support.Ticket) (support.Ticket, error) {
	t.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO support_tickets (id, institution_id, name, email, subject, message, status, created_at, closed_at)
		VALUES (:id, :institution_id, :name, :email, :subject, :message, :status, :created_at, :closed_at)`,
		t,
	)
	if err != nil {
		return support.Ticket{}, errors.Wrap(err, "inserting ticket")
	}
	return t, nil
}

func (repo *supportRepository) QueryTickets(ctx context.Context, institutionID, status string) ([]support.Ticket, error) {
	query := `SELECT * FROM support_tickets`
	var where string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if institutionID != "" {
		where = ` WHERE institution_id = ` + arg(institutionID)
	}
	if status != "" {
		if where == "" {
			where = ` WHERE status = ` + arg(status)
		} else {
			where += ` AND status = ` + arg(status)
		}
	}

	var tickets []support.Ticket
	err := repo.db.SelectContext(ctx, &tickets, query+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying tickets")
	}
	return tickets, nil
}

func (repo *supportRepository) GetTicket(ctx context.Context, id string) (support.Ticket, error) {
	var t support.Ticket
	err := repo.db.GetContext(ctx, &t, `SELECT * FROM support_tickets WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return support.Ticket{}, support.ErrNotFound
		}
		return support.Ticket{}, errors.Wrap(err, "getting ticket")
	}
	return t, nil
}

func (repo *supportRepository) UpdateTicket(ctx context.Context, t support.Ticket) (support.Ticket, error) {
	res, err := repo.db.NamedExecContext(ctx,
		`UPDATE support_tickets SET status = :status, closed_at = :closed_at WHERE id = :id`, t)
	if err != nil {
		return support.Ticket{}, errors.Wrap(err, "updating ticket")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return support.Ticket{}, support.ErrNotFound
	}
	return t, nil
}
