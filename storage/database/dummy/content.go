package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/thaimooc/platform/core/content"
)

type contentRepository struct {
	db *contentTable
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db.content}
}

func (repo *contentRepository) CreateNews(_ context.Context, article content.News) (content.News, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	article.ID = uuid.New().String()
	repo.db.news[article.ID] = &article
	return article, nil
}

func (repo *contentRepository) QueryNews(_ context.Context, institutionID string, publishedOnly bool, limit int) ([]content.News, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	articles := make([]content.News, 0)
	for _, article := range repo.db.news {
		if article.InstitutionID.String != institutionID {
			continue
		}
		if publishedOnly && !article.IsPublished {
			continue
		}
		articles = append(articles, *article)
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].CreatedAt.After(articles[j].CreatedAt) })
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (repo *contentRepository) GetNews(_ context.Context, id string) (content.News, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if article, ok := repo.db.news[id]; ok {
		return *article, nil
	}
	return content.News{}, content.ErrNotFound
}

func (repo *contentRepository) UpdateNews(_ context.Context, article content.News) (content.News, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.news[article.ID]; !ok {
		return content.News{}, content.ErrNotFound
	}
	repo.db.news[article.ID] = &article
	return article, nil
}

func (repo *contentRepository) DeleteNewsByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.news[id]; ok {
			delete(repo.db.news, id)
			n++
		}
	}
	return n, nil
}

func (repo *contentRepository) CreateBanner(_ context.Context, bnr content.Banner) (content.Banner, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	bnr.ID = uuid.New().String()
	repo.db.banners[bnr.ID] = &bnr
	return bnr, nil
}

func (repo *contentRepository) QueryBanners(_ context.Context, institutionID string, activeOnly bool) ([]content.Banner, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	banners := make([]content.Banner, 0)
	for _, bnr := range repo.db.banners {
		if bnr.InstitutionID.String != institutionID {
			continue
		}
		if activeOnly && !bnr.IsActive {
			continue
		}
		banners = append(banners, *bnr)
	}
	sort.Slice(banners, func(i, j int) bool { return banners[i].Order < banners[j].Order })
	return banners, nil
}

func (repo *contentRepository) UpdateBanner(_ context.Context, bnr content.Banner) (content.Banner, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.banners[bnr.ID]; !ok {
		return content.Banner{}, content.ErrNotFound
	}
	repo.db.banners[bnr.ID] = &bnr
	return bnr, nil
}

func (repo *contentRepository) DeleteBannersByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.banners[id]; ok {
			delete(repo.db.banners, id)
			n++
		}
	}
	return n, nil
}

func (repo *contentRepository) CreateGuide(_ context.Context, g content.Guide) (content.Guide, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = uuid.New().String()
	repo.db.guides[g.ID] = &g
	return g, nil
}

func (repo *contentRepository) QueryGuides(_ context.Context) ([]content.Guide, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	guides := make([]content.Guide, 0, len(repo.db.guides))
	for _, g := range repo.db.guides {
		guides = append(guides, *g)
	}
	sort.Slice(guides, func(i, j int) bool { return guides[i].Order < guides[j].Order })
	return guides, nil
}

func (repo *contentRepository) GetGuideBySlug(_ context.Context, slug string) (content.Guide, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, g := range repo.db.guides {
		if g.Slug == slug {
			return *g, nil
		}
	}
	return content.Guide{}, content.ErrNotFound
}

func (repo *contentRepository) UpdateGuide(_ context.Context, g content.Guide) (content.Guide, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.guides[g.ID]; !ok {
		return content.Guide{}, content.ErrNotFound
	}
	repo.db.guides[g.ID] = &g
	return g, nil
}

func (repo *contentRepository) DeleteGuidesByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.guides[id]; ok {
			delete(repo.db.guides, id)
			n++
		}
	}
	return n, nil
}
