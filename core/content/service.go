package content

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

// ErrNotFound is returned when the requested article, banner or guide does
// not exist.
var ErrNotFound = errors.New("content not found")

type (
	Repository interface {
		CreateNews(ctx context.Context, article News) (News, error)
		// QueryNews returns articles for one institution, newest first.
		// publishedOnly hides drafts; limit <= 0 means no limit.
		QueryNews(ctx context.Context, institutionID string, publishedOnly bool, limit int) ([]News, error)
		GetNews(ctx context.Context, id string) (News, error)
		UpdateNews(ctx context.Context, article News) (News, error)
		DeleteNewsByID(ctx context.Context, ids []string) (int, error)

		CreateBanner(ctx context.Context, bnr Banner) (Banner, error)
		// QueryBanners returns an institution's banners in display order.
		QueryBanners(ctx context.Context, institutionID string, activeOnly bool) ([]Banner, error)
		UpdateBanner(ctx context.Context, bnr Banner) (Banner, error)
		DeleteBannersByID(ctx context.Context, ids []string) (int, error)

		CreateGuide(ctx context.Context, g Guide) (Guide, error)
		QueryGuides(ctx context.Context) ([]Guide, error)
		GetGuideBySlug(ctx context.Context, slug string) (Guide, error)
		UpdateGuide(ctx context.Context, g Guide) (Guide, error)
		DeleteGuidesByID(ctx context.Context, ids []string) (int, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func (svc *Service) CreateNews(ctx context.Context, nn NewNews) (News, error) {
	now := time.Now().UTC()
	article := News{
		InstitutionID: nullString(nn.InstitutionID),
		Title:         nn.Title,
		TitleEn:       nn.TitleEn,
		Body:          nn.Body,
		BodyEn:        nn.BodyEn,
		ImageRef:      nullString(nn.ImageRef),
		IsPublished:   nn.IsPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if nn.IsPublished {
		article.PublishedAt = null.TimeFrom(now)
	}
	return svc.repo.CreateNews(ctx, article)
}

// PublishedNews returns an institution's published articles, newest first.
func (svc *Service) PublishedNews(ctx context.Context, institutionID string, limit int) ([]News, error) {
	return svc.repo.QueryNews(ctx, institutionID, true, limit)
}

func (svc *Service) AllNews(ctx context.Context, institutionID string) ([]News, error) {
	return svc.repo.QueryNews(ctx, institutionID, false, 0)
}

func (svc *Service) GetNews(ctx context.Context, id string) (News, error) {
	return svc.repo.GetNews(ctx, id)
}

func (svc *Service) UpdateNews(ctx context.Context, orig News, un UpdateNews) (News, error) {
	article := orig
	if un.Title != "" {
		article.Title = un.Title
	}
	if un.TitleEn != "" {
		article.TitleEn = un.TitleEn
	}
	if un.Body != "" {
		article.Body = un.Body
	}
	if un.BodyEn != "" {
		article.BodyEn = un.BodyEn
	}
	if un.ImageRef.Valid {
		article.ImageRef = un.ImageRef
	}
	if un.IsPublished != nil {
		article.IsPublished = *un.IsPublished
		if article.IsPublished && !article.PublishedAt.Valid {
			article.PublishedAt = null.TimeFrom(time.Now().UTC())
		}
	}
	article.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNews(ctx, article)
}

func (svc *Service) DeleteNews(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteNewsByID(ctx, ids)
	return err
}

func (svc *Service) CreateBanner(ctx context.Context, nb NewBanner) (Banner, error) {
	now := time.Now().UTC()
	bnr := Banner{
		InstitutionID: nullString(nb.InstitutionID),
		Title:         nb.Title,
		ImageRef:      nb.ImageRef,
		LinkURL:       nullString(nb.LinkURL),
		Order:         nb.Order,
		IsActive:      nb.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateBanner(ctx, bnr)
}

// ActiveBanners returns an institution's active banners in display order.
func (svc *Service) ActiveBanners(ctx context.Context, institutionID string) ([]Banner, error) {
	return svc.repo.QueryBanners(ctx, institutionID, true)
}

func (svc *Service) AllBanners(ctx context.Context, institutionID string) ([]Banner, error) {
	return svc.repo.QueryBanners(ctx, institutionID, false)
}

func (svc *Service) UpdateBanner(ctx context.Context, bnr Banner) (Banner, error) {
	bnr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBanner(ctx, bnr)
}

func (svc *Service) DeleteBanners(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteBannersByID(ctx, ids)
	return err
}

func (svc *Service) CreateGuide(ctx context.Context, ng NewGuide) (Guide, error) {
	now := time.Now().UTC()
	g := Guide{
		Slug:      ng.Slug,
		Title:     ng.Title,
		TitleEn:   ng.TitleEn,
		Body:      ng.Body,
		BodyEn:    ng.BodyEn,
		Order:     ng.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateGuide(ctx, g)
}

func (svc *Service) Guides(ctx context.Context) ([]Guide, error) {
	return svc.repo.QueryGuides(ctx)
}

func (svc *Service) GuideBySlug(ctx context.Context, slug string) (Guide, error) {
	return svc.repo.GetGuideBySlug(ctx, slug)
}

func (svc *Service) UpdateGuide(ctx context.Context, g Guide) (Guide, error) {
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGuide(ctx, g)
}

func (svc *Service) DeleteGuides(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteGuidesByID(ctx, ids)
	return err
}
