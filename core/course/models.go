package course

import (
	"encoding/json"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

// Levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Sort modes for course queries.
type SortMode string

const (
	SortNewest SortMode = "newest"
	// SortPopular orders by the enrollment counter; rows without one sink to
	// recency order.
	SortPopular SortMode = "popular"
)

type Category struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	NameEn string `db:"name_en" json:"name_en"`
	Icon   string `db:"icon" json:"icon"`
}

type CourseType struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	NameEn string `db:"name_en" json:"name_en"`
	Icon   string `db:"icon" json:"icon"`
}

// CourseCategory is a course↔category link row.
type CourseCategory struct {
	CourseID   string `db:"course_id" json:"course_id"`
	CategoryID string `db:"category_id" json:"category_id"`
}

// CourseCourseType is a course↔course-type link row.
type CourseCourseType struct {
	CourseID     string `db:"course_id" json:"course_id"`
	CourseTypeID string `db:"course_type_id" json:"course_type_id"`
}

type Course struct {
	ID            string      `db:"id" json:"id"`
	CourseCode    null.String `db:"course_code" json:"course_code"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	Title         string      `db:"title" json:"title"`
	TitleEn       string      `db:"title_en" json:"title_en"`
	Description   string      `db:"description" json:"description"`
	DescriptionEn string      `db:"description_en" json:"description_en"`
	DurationHours int         `db:"duration_hours" json:"duration_hours"`
	Level         string      `db:"level" json:"level"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	EnrollCount   null.Int    `db:"enroll_count" json:"enroll_count"`
	ImageRef      null.String `db:"image_ref" json:"image_ref"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"` // UTC

	// attached by the stitcher, not persisted columns
	Categories []CourseCategory   `db:"-" json:"courseCategories"`
	Types      []CourseCourseType `db:"-" json:"courseCourseTypes"`
}

// RoutingKey is the public identifier used in course URLs: the external
// course code when one exists, the raw id otherwise.
func (c Course) RoutingKey() string {
	if c.CourseCode.Valid && c.CourseCode.String != "" {
		return c.CourseCode.String
	}
	return c.ID
}

// HasCategory reports whether the course is linked to the given category.
func (c Course) HasCategory(categoryID string) bool {
	for _, cc := range c.Categories {
		if cc.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// HasType reports whether the course is linked to the given course type.
func (c Course) HasType(courseTypeID string) bool {
	for _, ct := range c.Types {
		if ct.CourseTypeID == courseTypeID {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts relation lists under either the canonical
// relation-object keys (courseCategories/courseCourseTypes) or the legacy
// flat keys (course_categories/course_course_types) left behind by an old
// schema export. The relation-object form wins when non-empty; this is the
// single place where the legacy names are known.
func (c *Course) UnmarshalJSON(data []byte) error {
	type courseAlias Course
	aux := struct {
		*courseAlias
		LegacyCategories []CourseCategory   `json:"course_categories"`
		LegacyTypes      []CourseCourseType `json:"course_course_types"`
	}{courseAlias: (*courseAlias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(c.Categories) == 0 && len(aux.LegacyCategories) > 0 {
		c.Categories = aux.LegacyCategories
	}
	if len(c.Types) == 0 && len(aux.LegacyTypes) > 0 {
		c.Types = aux.LegacyTypes
	}
	return nil
}

// NewCourse contains information needed to publish a new Course.
type NewCourse struct {
	CourseCode    string   `json:"course_code" validate:"omitempty,alphanum_"`
	InstitutionID string   `json:"institution_id"`
	Title         string   `json:"title" validate:"required"`
	TitleEn       string   `json:"title_en"`
	Description   string   `json:"description"`
	DescriptionEn string   `json:"description_en"`
	DurationHours int      `json:"duration_hours" validate:"gte=0"`
	Level         string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	IsActive      bool     `json:"is_active"`
	ImageRef      string   `json:"image_ref"`
	CategoryIDs   []string `json:"category_ids"`
	TypeIDs       []string `json:"type_ids"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.TitleEn = core.CleanString(nc.TitleEn)
	nc.CourseCode = core.CleanString(nc.CourseCode, true /* lower */)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an
// existing Course.
type UpdateCourse struct {
	CourseCode    null.String `json:"course_code"`
	InstitutionID null.String `json:"institution_id"`
	Title         string      `json:"title"`
	TitleEn       string      `json:"title_en"`
	Description   string      `json:"description"`
	DescriptionEn string      `json:"description_en"`
	DurationHours *int        `json:"duration_hours" validate:"omitempty,gte=0"`
	Level         string      `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsActive      *bool       `json:"is_active"`
	ImageRef      null.String `json:"image_ref"`
	CategoryIDs   []string    `json:"category_ids"`
	TypeIDs       []string    `json:"type_ids"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Title = core.CleanString(uc.Title)
	return core.Validate.Struct(uc)
}

// QueryFilter narrows admin course queries; fields are ANDed.
type QueryFilter struct {
	Search        string `query:"search"`
	InstitutionID string `query:"institution"`
	CategoryID    string `query:"category"`
	TypeID        string `query:"type"`
	IsActive      *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.InstitutionID == "" && qf.CategoryID == "" && qf.TypeID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
