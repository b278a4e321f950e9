package support

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

// ErrNotFound is returned when the requested ticket does not exist.
var ErrNotFound = errors.New("ticket not found")

type (
	Repository interface {
		CreateTicket(ctx context.Context, t Ticket) (Ticket, error)
		// QueryTickets returns tickets newest first; status "" means all.
		QueryTickets(ctx context.Context, institutionID, status string) ([]Ticket, error)
		GetTicket(ctx context.Context, id string) (Ticket, error)
		UpdateTicket(ctx context.Context, t Ticket) (Ticket, error)
	}

	Service struct {
		repo   Repository
		mail   core.EmailService
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, mail: mailSvc, conf: conf, logger: logger}
}

// Submit records a contact-form submission and notifies the support inbox.
// The notification is best-effort; the ticket is saved either way.
func (svc *Service) Submit(ctx context.Context, nt NewTicket) (Ticket, error) {
	t := Ticket{
		InstitutionID: null.NewString(nt.InstitutionID, nt.InstitutionID != ""),
		Name:          nt.Name,
		Email:         nt.Email,
		Subject:       nt.Subject,
		Message:       nt.Message,
		Status:        StatusOpen,
		CreatedAt:     time.Now().UTC(),
	}
	t, err := svc.repo.CreateTicket(ctx, t)
	if err != nil {
		return Ticket{}, err
	}

	if svc.conf.SupportEmail != "" {
		svc.mail.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Address: svc.conf.SupportEmail}},
			Subject:      "[Support] " + t.Subject,
			TemplateName: "support_ticket",
			TemplateData: t,
		})
	}
	return t, nil
}

func (svc *Service) QueryAll(ctx context.Context, institutionID, status string) ([]Ticket, error) {
	return svc.repo.QueryTickets(ctx, institutionID, status)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Ticket, error) {
	return svc.repo.GetTicket(ctx, id)
}

// Close marks a ticket resolved. Closing a closed ticket is a no-op.
func (svc *Service) Close(ctx context.Context, id string) (Ticket, error) {
	t, err := svc.repo.GetTicket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if t.Status == StatusClosed {
		return t, nil
	}
	t.Status = StatusClosed
	t.ClosedAt = null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateTicket(ctx, t)
}
