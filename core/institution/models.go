package institution

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

// Branding fallbacks applied when an institution has not configured its colors.
const (
	DefaultPrimaryColor   = "#1e40af"
	DefaultSecondaryColor = "#f59e0b"
)

// Menu positions
const (
	MenuHeader = "header"
	MenuFooter = "footer"
)

// SocialLinks maps a platform name (facebook, line, youtube...) to a URL.
// Stored as a JSONB column.
type SocialLinks map[string]string

func (sl SocialLinks) Value() (driver.Value, error) {
	if sl == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(sl)
}

func (sl *SocialLinks) Scan(src interface{}) error {
	if src == nil {
		*sl = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.Errorf("scanning social links: unexpected type %T", src)
	}
	return json.Unmarshal(data, sl)
}

type Institution struct {
	ID               string      `db:"id" json:"id"`
	Name             string      `db:"name" json:"name"`
	NameEn           string      `db:"name_en" json:"name_en"`
	PrimaryColor     null.String `db:"primary_color" json:"primary_color"`
	SecondaryColor   null.String `db:"secondary_color" json:"secondary_color"`
	LogoRef          null.String `db:"logo_ref" json:"logo_ref"`
	BannerRef        null.String `db:"banner_ref" json:"banner_ref"`
	Address          string      `db:"address" json:"address"`
	Phone            string      `db:"phone" json:"phone"`
	Email            string      `db:"email" json:"email"`
	SocialLinks      SocialLinks `db:"social_links" json:"social_links"`
	MicrositeEnabled bool        `db:"microsite_enabled" json:"microsite_enabled"`
	MetaTitle        null.String `db:"meta_title" json:"meta_title"`
	MetaDescription  null.String `db:"meta_description" json:"meta_description"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

// BasePath is the root of the institution's microsite, menu targets are
// relative to it.
func (i Institution) BasePath() string {
	return "/institutions/" + i.ID
}

type MenuItem struct {
	ID      string `db:"id" json:"id"`
	Label   string `db:"label" json:"label"`
	LabelEn string `db:"label_en" json:"label_en"`
	Target  string `db:"target" json:"target"`
	Order   int    `db:"order" json:"order"`
}

type Menus struct {
	Header []MenuItem `json:"header"`
	Footer []MenuItem `json:"footer"`
}

// SiteContext is the resolved render context for a microsite: effective
// branding colors, menus and the institution itself.
type SiteContext struct {
	Institution    Institution `json:"institution"`
	PrimaryColor   string      `json:"primary_color"`
	SecondaryColor string      `json:"secondary_color"`
	Menus          Menus       `json:"menus"`
}

// PortalSite is the render context of the main portal pages, which have no
// institution behind them: default colors and the default menus rooted at "/".
func PortalSite() SiteContext {
	menu := DefaultMenuItems("")
	return SiteContext{
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		Menus:          Menus{Header: menu, Footer: menu},
	}
}

// DefaultMenuItems returns the fixed four-item menu used when an institution
// has not configured one. Targets are relative to the microsite base path.
func DefaultMenuItems(basePath string) []MenuItem {
	return []MenuItem{
		{Label: "หน้าแรก", LabelEn: "Home", Target: basePath, Order: 1},
		{Label: "รายวิชาทั้งหมด", LabelEn: "All Courses", Target: basePath + "/courses", Order: 2},
		{Label: "ข่าวสาร", LabelEn: "News", Target: basePath + "/news", Order: 3},
		{Label: "ติดต่อเรา", LabelEn: "Contact", Target: basePath + "/contact", Order: 4},
	}
}

// NewInstitution contains information needed to register a new Institution.
type NewInstitution struct {
	Name             string      `json:"name" validate:"required"`
	NameEn           string      `json:"name_en"`
	PrimaryColor     string      `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor   string      `json:"secondary_color" validate:"omitempty,hexcolor"`
	LogoRef          string      `json:"logo_ref"`
	BannerRef        string      `json:"banner_ref"`
	Address          string      `json:"address"`
	Phone            string      `json:"phone"`
	Email            string      `json:"email" validate:"omitempty,email"`
	SocialLinks      SocialLinks `json:"social_links" validate:"omitempty,dive,url"`
	MicrositeEnabled bool        `json:"microsite_enabled"`
	MetaTitle        string      `json:"meta_title"`
	MetaDescription  string      `json:"meta_description"`
}

func (ni *NewInstitution) Validate() error {
	ni.Name = core.CleanString(ni.Name)
	ni.NameEn = core.CleanString(ni.NameEn)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	return core.Validate.Struct(ni)
}

// UpdateInstitution defines what information may be provided to modify an
// existing Institution. Zero-valued fields keep their stored value.
type UpdateInstitution struct {
	Name             string      `json:"name"`
	NameEn           string      `json:"name_en"`
	PrimaryColor     null.String `json:"primary_color" validate:"omitempty"`
	SecondaryColor   null.String `json:"secondary_color" validate:"omitempty"`
	LogoRef          null.String `json:"logo_ref"`
	BannerRef        null.String `json:"banner_ref"`
	Address          string      `json:"address"`
	Phone            string      `json:"phone"`
	Email            string      `json:"email" validate:"omitempty,email"`
	SocialLinks      SocialLinks `json:"social_links" validate:"omitempty,dive,url"`
	MicrositeEnabled *bool       `json:"microsite_enabled"`
	MetaTitle        null.String `json:"meta_title"`
	MetaDescription  null.String `json:"meta_description"`
}

func (ui *UpdateInstitution) Validate(orig Institution) error {
	name := core.CleanString(ui.Name)
	if name != "" {
		ui.Name = name
	} else {
		ui.Name = orig.Name
	}
	ui.Email = core.CleanString(ui.Email, true /* lower */)
	if ui.Email == "" {
		ui.Email = orig.Email
	}
	return core.Validate.Struct(ui)
}

// UpdateMenu replaces an institution's menu items for one position.
type UpdateMenu struct {
	Position string     `json:"position" validate:"required,oneof=header footer"`
	Items    []MenuItem `json:"items" validate:"dive"`
}

func (um *UpdateMenu) Validate() error {
	um.Position = core.CleanString(um.Position, true /* lower */)
	return core.Validate.Struct(um)
}
