package institution

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

var (
	// ErrNotFound means no institution exists for the given id; pages render
	// a 404 for it.
	ErrNotFound = errors.New("institution not found")
	// ErrSiteDisabled means the institution exists but its microsite is
	// switched off; pages render a maintenance message, not a 404.
	ErrSiteDisabled = errors.New("microsite disabled")
)

type (
	Repository interface {
		CreateInstitution(ctx context.Context, inst Institution) (Institution, error)
		QueryInstitutions(ctx context.Context) ([]Institution, error)
		GetInstitution(ctx context.Context, id string) (Institution, error)
		UpdateInstitution(ctx context.Context, inst Institution) (Institution, error)
		DeleteInstitutionsByID(ctx context.Context, ids []string) (int, error)

		// QueryMenuItems returns the configured items for one menu position,
		// ordered by their order field.
		QueryMenuItems(ctx context.Context, institutionID, position string) ([]MenuItem, error)
		// ReplaceMenuItems swaps out all items for one menu position.
		ReplaceMenuItems(ctx context.Context, institutionID, position string, items []MenuItem) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
		conf   *core.Config
	}
)

func NewService(repo Repository, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, logger: logger, conf: conf}
}

func (svc *Service) Create(ctx context.Context, ni NewInstitution) (Institution, error) {
	now := time.Now().UTC()
	inst := Institution{
		Name:             ni.Name,
		NameEn:           ni.NameEn,
		PrimaryColor:     nullString(ni.PrimaryColor),
		SecondaryColor:   nullString(ni.SecondaryColor),
		LogoRef:          nullString(ni.LogoRef),
		BannerRef:        nullString(ni.BannerRef),
		Address:          ni.Address,
		Phone:            ni.Phone,
		Email:            ni.Email,
		SocialLinks:      ni.SocialLinks,
		MicrositeEnabled: ni.MicrositeEnabled,
		MetaTitle:        nullString(ni.MetaTitle),
		MetaDescription:  nullString(ni.MetaDescription),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateInstitution(ctx, inst)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Institution, error) {
	return svc.repo.QueryInstitutions(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Institution, error) {
	return svc.repo.GetInstitution(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Institution, ui UpdateInstitution) (Institution, error) {
	inst := orig
	inst.Name = ui.Name
	if ui.NameEn != "" {
		inst.NameEn = ui.NameEn
	}
	if ui.PrimaryColor.Valid {
		inst.PrimaryColor = ui.PrimaryColor
	}
	if ui.SecondaryColor.Valid {
		inst.SecondaryColor = ui.SecondaryColor
	}
	if ui.LogoRef.Valid {
		inst.LogoRef = ui.LogoRef
	}
	if ui.BannerRef.Valid {
		inst.BannerRef = ui.BannerRef
	}
	if ui.Address != "" {
		inst.Address = ui.Address
	}
	if ui.Phone != "" {
		inst.Phone = ui.Phone
	}
	inst.Email = ui.Email
	if ui.SocialLinks != nil {
		inst.SocialLinks = ui.SocialLinks
	}
	if ui.MicrositeEnabled != nil {
		inst.MicrositeEnabled = *ui.MicrositeEnabled
	}
	if ui.MetaTitle.Valid {
		inst.MetaTitle = ui.MetaTitle
	}
	if ui.MetaDescription.Valid {
		inst.MetaDescription = ui.MetaDescription
	}
	inst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInstitution(ctx, inst)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteInstitutionsByID(ctx, ids)
	return err
}

func (svc *Service) ReplaceMenu(ctx context.Context, institutionID string, um UpdateMenu) error {
	return svc.repo.ReplaceMenuItems(ctx, institutionID, um.Position, um.Items)
}

// ResolveSite loads the institution and computes its render context.
// It returns ErrNotFound when the institution does not exist and
// ErrSiteDisabled when its microsite flag is off; the two outcomes stay
// distinguishable all the way to the page layer.
//
// Menu resolution chain: configured header items, else the fixed default
// menu; footer items, else whatever the header resolved to. A failed menu
// fetch counts as "not configured" so the page still renders.
func (svc *Service) ResolveSite(ctx context.Context, id string) (SiteContext, error) {
	inst, err := svc.repo.GetInstitution(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return SiteContext{}, ErrNotFound
		}
		return SiteContext{}, errors.Wrap(err, "loading institution")
	}
	if !inst.MicrositeEnabled {
		return SiteContext{}, ErrSiteDisabled
	}

	header := svc.menuItems(ctx, inst, MenuHeader)
	if len(header) == 0 {
		header = DefaultMenuItems(inst.BasePath())
	}
	footer := svc.menuItems(ctx, inst, MenuFooter)
	if len(footer) == 0 {
		footer = header
	}

	sc := SiteContext{
		Institution:    inst,
		PrimaryColor:   inst.PrimaryColor.String,
		SecondaryColor: inst.SecondaryColor.String,
		Menus:          Menus{Header: header, Footer: footer},
	}
	if !inst.PrimaryColor.Valid || inst.PrimaryColor.String == "" {
		sc.PrimaryColor = DefaultPrimaryColor
	}
	if !inst.SecondaryColor.Valid || inst.SecondaryColor.String == "" {
		sc.SecondaryColor = DefaultSecondaryColor
	}
	return sc, nil
}

func (svc *Service) menuItems(ctx context.Context, inst Institution, position string) []MenuItem {
	items, err := svc.repo.QueryMenuItems(ctx, inst.ID, position)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("fetching %s menu for institution %s: %v", position, inst.ID, err), err)
		return nil
	}
	return items
}
