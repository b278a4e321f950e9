package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core/content"
)

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateNews(ctx context.Context, article content.News) (content.News, error) {
	article.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO news (id, institution_id, title, title_en, body, body_en, image_ref,
		                  is_published, published_at, created_at, updated_at)
		VALUES (:id, :institution_id, :title, :title_en, :body, :body_en, :image_ref,
		        :is_published, :published_at, :created_at, :updated_at)`,
		article,
	)
	if err != nil {
		return content.News{}, errors.Wrap(err, "inserting news")
	}
	return article, nil
}

func (repo *contentRepository) QueryNews(ctx context.Context, institutionID string, publishedOnly bool, limit int) ([]content.News, error) {
	// an empty institution id selects the global rows
	query := `SELECT * FROM news WHERE institution_id IS NULL`
	args := make([]interface{}, 0, 2)
	if institutionID != "" {
		query = `SELECT * FROM news WHERE institution_id = $1`
		args = append(args, institutionID)
	}
	if publishedOnly {
		query += ` AND is_published = TRUE`
	}
	query += ` ORDER BY published_at DESC NULLS LAST, created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	var articles []content.News
	if err := repo.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying news")
	}
	return articles, nil
}

func (repo *contentRepository) GetNews(ctx context.Context, id string) (content.News, error) {
	var article content.News
	err := repo.db.GetContext(ctx, &article, `SELECT * FROM news WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.News{}, content.ErrNotFound
		}
		return content.News{}, errors.Wrap(err, "getting news")
	}
	return article, nil
}

func (repo *contentRepository) UpdateNews(ctx context.Context, article content.News) (content.News, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE news
		SET title = :title, title_en = :title_en, body = :body, body_en = :body_en,
		    image_ref = :image_ref, is_published = :is_published, published_at = :published_at,
		    updated_at = :updated_at
		WHERE id = :id`,
		article,
	)
	if err != nil {
		return content.News{}, errors.Wrap(err, "updating news")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.News{}, content.ErrNotFound
	}
	return article, nil
}

func (repo *contentRepository) DeleteNewsByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, `DELETE FROM news WHERE id IN (?)`, ids)
}

func (repo *contentRepository) CreateBanner(ctx context.Context, bnr content.Banner) (content.Banner, error) {
	bnr.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO banners (id, institution_id, title, image_ref, link_url, "order", is_active, created_at, updated_at)
		VALUES (:id, :institution_id, :title, :image_ref, :link_url, :order, :is_active, :created_at, :updated_at)`,
		bnr,
	)
	if err != nil {
		return content.Banner{}, errors.Wrap(err, "inserting banner")
	}
	return bnr, nil
}

func (repo *contentRepository) QueryBanners(ctx context.Context, institutionID string, activeOnly bool) ([]content.Banner, error) {
	query := `SELECT * FROM banners WHERE institution_id IS NULL`
	args := make([]interface{}, 0, 1)
	if institutionID != "" {
		query = `SELECT * FROM banners WHERE institution_id = $1`
		args = append(args, institutionID)
	}
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY "order"`

	var banners []content.Banner
	if err := repo.db.SelectContext(ctx, &banners, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying banners")
	}
	return banners, nil
}

func (repo *contentRepository) UpdateBanner(ctx context.Context, bnr content.Banner) (content.Banner, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE banners
		SET title = :title, image_ref = :image_ref, link_url = :link_url, "order" = :order,
		    is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`,
		bnr,
	)
	if err != nil {
		return content.Banner{}, errors.Wrap(err, "updating banner")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.Banner{}, content.ErrNotFound
	}
	return bnr, nil
}

func (repo *contentRepository) DeleteBannersByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, `DELETE FROM banners WHERE id IN (?)`, ids)
}

func (repo *contentRepository) CreateGuide(ctx context.Context, g content.Guide) (content.Guide, error) {
	g.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO guides (id, slug, title, title_en, body, body_en, "order", created_at, updated_at)
		VALUES (:id, :slug, :title, :title_en, :body, :body_en, :order, :created_at, :updated_at)`,
		g,
	)
	if err != nil {
		return content.Guide{}, errors.Wrap(err, "inserting guide")
	}
	return g, nil
}

func (repo *contentRepository) QueryGuides(ctx context.Context) ([]content.Guide, error) {
	var guides []content.Guide
	if err := repo.db.SelectContext(ctx, &guides, `SELECT * FROM guides ORDER BY "order"`); err != nil {
		return nil, errors.Wrap(err, "querying guides")
	}
	return guides, nil
}

func (repo *contentRepository) GetGuideBySlug(ctx context.Context, slug string) (content.Guide, error) {
	var g content.Guide
	err := repo.db.GetContext(ctx, &g, `SELECT * FROM guides WHERE slug = $1`, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.Guide{}, content.ErrNotFound
		}
		return content.Guide{}, errors.Wrap(err, "getting guide")
	}
	return g, nil
}

func (repo *contentRepository) UpdateGuide(ctx context.Context, g content.Guide) (content.Guide, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE guides
		SET slug = :slug, title = :title, title_en = :title_en, body = :body, body_en = :body_en,
		    "order" = :order, updated_at = :updated_at
		WHERE id = :id`,
		g,
	)
	if err != nil {
		return content.Guide{}, errors.Wrap(err, "updating guide")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.Guide{}, content.ErrNotFound
	}
	return g, nil
}

func (repo *contentRepository) DeleteGuidesByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, `DELETE FROM guides WHERE id IN (?)`, ids)
}

func (repo *contentRepository) deleteByID(ctx context.Context, query string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting rows")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
