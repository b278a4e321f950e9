package support

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

// Ticket statuses
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Ticket struct {
	ID            string      `db:"id" json:"id"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	Name          string      `db:"name" json:"name"`
	Email         string      `db:"email" json:"email"`
	Subject       string      `db:"subject" json:"subject"`
	Message       string      `db:"message" json:"message"`
	Status        string      `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"` // UTC
	ClosedAt      null.Time   `db:"closed_at" json:"closed_at"`
}

// NewTicket is a contact-form submission.
type NewTicket struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Subject       string `json:"subject" validate:"required"`
	Message       string `json:"message" validate:"required"`
}

func (nt *NewTicket) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Subject = core.CleanString(nt.Subject)
	return core.Validate.Struct(nt)
}
