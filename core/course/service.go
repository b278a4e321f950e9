package course

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

// ErrNotFound is returned when a requested course does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string) (int, error)

		// QueryTenantCourses returns active courses visible to one institution:
		// courses it owns plus courses shared with it as a guest, deduplicated.
		QueryTenantCourses(ctx context.Context, institutionID string, sort SortMode, limit int) ([]Course, error)
		// QueryActiveCourses returns all active courses platform-wide.
		QueryActiveCourses(ctx context.Context, sort SortMode, limit int) ([]Course, error)

		// QueryCategoryLinks and QueryTypeLinks return the link rows for the
		// given course ids only.
		QueryCategoryLinks(ctx context.Context, courseIDs []string) ([]CourseCategory, error)
		QueryTypeLinks(ctx context.Context, courseIDs []string) ([]CourseCourseType, error)
		ReplaceCourseLinks(ctx context.Context, courseID string, categoryIDs, typeIDs []string) error
		ReplaceGuestLinks(ctx context.Context, institutionID string, courseIDs []string) error

		QueryCategories(ctx context.Context) ([]Category, error)
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		DeleteCategoriesByID(ctx context.Context, ids []string) (int, error)
		QueryCourseTypes(ctx context.Context) ([]CourseType, error)
		CreateCourseType(ctx context.Context, ct CourseType) (CourseType, error)
		DeleteCourseTypesByID(ctx context.Context, ids []string) (int, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		CourseCode:    nullString(nc.CourseCode),
		InstitutionID: nullString(nc.InstitutionID),
		Title:         nc.Title,
		TitleEn:       nc.TitleEn,
		Description:   nc.Description,
		DescriptionEn: nc.DescriptionEn,
		DurationHours: nc.DurationHours,
		Level:         nc.Level,
		IsActive:      nc.IsActive,
		ImageRef:      nullString(nc.ImageRef),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	crs, err := svc.repo.CreateCourse(ctx, crs)
	if err != nil {
		return Course{}, err
	}
	if len(nc.CategoryIDs) > 0 || len(nc.TypeIDs) > 0 {
		if err = svc.repo.ReplaceCourseLinks(ctx, crs.ID, nc.CategoryIDs, nc.TypeIDs); err != nil {
			return Course{}, errors.Wrap(err, "linking course")
		}
	}
	return crs, nil
}

func (svc *Service) QueryAll(ctx context.Context, filter QueryFilter) ([]Course, error) {
	filter.Clean()
	courses, err := svc.repo.QueryCourses(ctx, filter)
	if err != nil {
		return nil, err
	}
	return svc.stitchAll(ctx, courses), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	courses := svc.stitchAll(ctx, []Course{crs})
	return courses[0], nil
}

// GetByRoutingKey resolves a public course identifier: the external course
// code first, falling back to the raw id for courses that have no code.
func (svc *Service) GetByRoutingKey(ctx context.Context, key string) (Course, error) {
	crs, err := svc.repo.GetCourseByCode(ctx, key)
	if errors.Cause(err) == ErrNotFound {
		crs, err = svc.repo.GetCourse(ctx, key)
	}
	if err != nil {
		return Course{}, err
	}
	courses := svc.stitchAll(ctx, []Course{crs})
	return courses[0], nil
}

func (svc *Service) Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error) {
	crs := orig
	if uc.CourseCode.Valid {
		crs.CourseCode = uc.CourseCode
	}
	if uc.InstitutionID.Valid {
		crs.InstitutionID = uc.InstitutionID
	}
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.TitleEn != "" {
		crs.TitleEn = uc.TitleEn
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.DescriptionEn != "" {
		crs.DescriptionEn = uc.DescriptionEn
	}
	if uc.DurationHours != nil {
		crs.DurationHours = *uc.DurationHours
	}
	if uc.Level != "" {
		crs.Level = uc.Level
	}
	if uc.IsActive != nil {
		crs.IsActive = *uc.IsActive
	}
	if uc.ImageRef.Valid {
		crs.ImageRef = uc.ImageRef
	}
	crs.UpdatedAt = time.Now().UTC()

	crs, err := svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Course{}, err
	}
	if uc.CategoryIDs != nil || uc.TypeIDs != nil {
		if err = svc.repo.ReplaceCourseLinks(ctx, crs.ID, uc.CategoryIDs, uc.TypeIDs); err != nil {
			return Course{}, errors.Wrap(err, "linking course")
		}
	}
	return crs, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCoursesByID(ctx, ids)
	return err
}

func (svc *Service) ShareWithInstitution(ctx context.Context, institutionID string, courseIDs []string) error {
	return svc.repo.ReplaceGuestLinks(ctx, institutionID, courseIDs)
}

// TenantCourses returns the courses visible to one institution, owned or
// shared, newest first or by popularity. PopularByEnrollment reports whether
// a popularity sort actually had enrollment data to order by; when false the
// rows came back in recency order instead.
func (svc *Service) TenantCourses(ctx context.Context, institutionID string, sort SortMode, limit int) ([]Course, bool, error) {
	courses, err := svc.repo.QueryTenantCourses(ctx, institutionID, sort, limit)
	if err != nil {
		return nil, false, err
	}
	return svc.finishQuery(ctx, courses, sort)
}

// ActiveCourses is the platform-wide equivalent of TenantCourses, used by the
// main portal pages.
func (svc *Service) ActiveCourses(ctx context.Context, sort SortMode, limit int) ([]Course, bool, error) {
	courses, err := svc.repo.QueryActiveCourses(ctx, sort, limit)
	if err != nil {
		return nil, false, err
	}
	return svc.finishQuery(ctx, courses, sort)
}

func (svc *Service) finishQuery(ctx context.Context, courses []Course, sort SortMode) ([]Course, bool, error) {
	var popularByEnrollment bool
	if sort == SortPopular {
		for _, c := range courses {
			if c.EnrollCount.Valid {
				popularByEnrollment = true
				break
			}
		}
	}
	return svc.stitchAll(ctx, courses), popularByEnrollment, nil
}

func (svc *Service) Categories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) CreateCategory(ctx context.Context, cat Category) (Category, error) {
	return svc.repo.CreateCategory(ctx, cat)
}

func (svc *Service) DeleteCategories(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCategoriesByID(ctx, ids)
	return err
}

func (svc *Service) CourseTypes(ctx context.Context) ([]CourseType, error) {
	return svc.repo.QueryCourseTypes(ctx)
}

func (svc *Service) CreateCourseType(ctx context.Context, ct CourseType) (CourseType, error) {
	return svc.repo.CreateCourseType(ctx, ct)
}

func (svc *Service) DeleteCourseTypes(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCourseTypesByID(ctx, ids)
	return err
}

// stitchAll loads and attaches relation rows for the given courses. Link
// fetch failures are logged and leave the courses unstitched; the caller
// still gets its rows.
func (svc *Service) stitchAll(ctx context.Context, courses []Course) []Course {
	if len(courses) == 0 {
		return courses
	}
	ids := CourseIDs(courses)
	categories, err := svc.repo.QueryCategoryLinks(ctx, ids)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("fetching category links: %v", err), err)
		categories = nil
	}
	types, err := svc.repo.QueryTypeLinks(ctx, ids)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("fetching type links: %v", err), err)
		types = nil
	}
	Stitch(courses, categories, types)
	return courses
}
