package content

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

type News struct {
	ID            string      `db:"id" json:"id"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	Title         string      `db:"title" json:"title"`
	TitleEn       string      `db:"title_en" json:"title_en"`
	Body          string      `db:"body" json:"body"`
	BodyEn        string      `db:"body_en" json:"body_en"`
	ImageRef      null.String `db:"image_ref" json:"image_ref"`
	IsPublished   bool        `db:"is_published" json:"is_published"`
	PublishedAt   null.Time   `db:"published_at" json:"published_at"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

type Banner struct {
	ID            string      `db:"id" json:"id"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	Title         string      `db:"title" json:"title"`
	ImageRef      string      `db:"image_ref" json:"image_ref"`
	LinkURL       null.String `db:"link_url" json:"link_url"`
	Order         int         `db:"order" json:"order"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

// Guide is a static how-to page (registration steps, certificate requests and
// the like), shared across all institutions.
type Guide struct {
	ID        string    `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Title     string    `db:"title" json:"title"`
	TitleEn   string    `db:"title_en" json:"title_en"`
	Body      string    `db:"body" json:"body"`
	BodyEn    string    `db:"body_en" json:"body_en"`
	Order     int       `db:"order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// NewNews contains information needed to publish a news article.
type NewNews struct {
	InstitutionID string `json:"institution_id"`
	Title         string `json:"title" validate:"required"`
	TitleEn       string `json:"title_en"`
	Body          string `json:"body" validate:"required"`
	BodyEn        string `json:"body_en"`
	ImageRef      string `json:"image_ref"`
	IsPublished   bool   `json:"is_published"`
}

func (nn *NewNews) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.TitleEn = core.CleanString(nn.TitleEn)
	return core.Validate.Struct(nn)
}

type UpdateNews struct {
	Title       string      `json:"title"`
	TitleEn     string      `json:"title_en"`
	Body        string      `json:"body"`
	BodyEn      string      `json:"body_en"`
	ImageRef    null.String `json:"image_ref"`
	IsPublished *bool       `json:"is_published"`
}

func (un *UpdateNews) Validate() error {
	un.Title = core.CleanString(un.Title)
	return core.Validate.Struct(un)
}

type NewBanner struct {
	InstitutionID string `json:"institution_id"`
	Title         string `json:"title" validate:"required"`
	ImageRef      string `json:"image_ref" validate:"required"`
	LinkURL       string `json:"link_url" validate:"omitempty,url"`
	Order         int    `json:"order" validate:"gte=0"`
	IsActive      bool   `json:"is_active"`
}

func (nb *NewBanner) Validate() error {
	nb.Title = core.CleanString(nb.Title)
	return core.Validate.Struct(nb)
}

type NewGuide struct {
	Slug    string `json:"slug" validate:"required,alphanum_"`
	Title   string `json:"title" validate:"required"`
	TitleEn string `json:"title_en"`
	Body    string `json:"body" validate:"required"`
	BodyEn  string `json:"body_en"`
	Order   int    `json:"order" validate:"gte=0"`
}

func (ng *NewGuide) Validate() error {
	ng.Slug = core.CleanString(ng.Slug, true /* lower */)
	ng.Title = core.CleanString(ng.Title)
	return core.Validate.Struct(ng)
}
