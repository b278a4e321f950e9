package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/thaimooc/platform/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, crs := range repo.db.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.query() {
		if filter.InstitutionID != "" && crs.InstitutionID.String != filter.InstitutionID {
			continue
		}
		if filter.IsActive != nil && crs.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(crs.Title), needle) &&
				!strings.Contains(strings.ToLower(crs.TitleEn), needle) &&
				!strings.Contains(strings.ToLower(crs.Description), needle) &&
				!strings.Contains(strings.ToLower(crs.DescriptionEn), needle) {
				continue
			}
		}
		if filter.CategoryID != "" && !repo.linkedToCategory(crs.ID, filter.CategoryID) {
			continue
		}
		if filter.TypeID != "" && !repo.linkedToType(crs.ID, filter.TypeID) {
			continue
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo *courseRepository) linkedToCategory(courseID, categoryID string) bool {
	for _, link := range repo.db.catLinks {
		if link.CourseID == courseID && link.CategoryID == categoryID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) linkedToType(courseID, typeID string) bool {
	for _, link := range repo.db.typeLinks {
		if link.CourseID == courseID && link.CourseTypeID == typeID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByCode(_ context.Context, code string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, crs := range repo.db.table {
		if crs.CourseCode.Valid && crs.CourseCode.String == code {
			return *crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *courseRepository) QueryTenantCourses(_ context.Context, institutionID string, sortMode course.SortMode, limit int) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	guest := make(map[string]bool, len(repo.db.guestLinks[institutionID]))
	for _, courseID := range repo.db.guestLinks[institutionID] {
		guest[courseID] = true
	}

	courses := make([]course.Course, 0)
	for _, crs := range repo.query() {
		if !crs.IsActive {
			continue
		}
		if crs.InstitutionID.String == institutionID || guest[crs.ID] {
			courses = append(courses, crs)
		}
	}
	if sortMode == course.SortPopular {
		sort.SliceStable(courses, func(i, j int) bool {
			a, b := courses[i].EnrollCount, courses[j].EnrollCount
			if a.Valid != b.Valid {
				return a.Valid // rows without a count sink to recency order
			}
			return a.Int > b.Int
		})
	}
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (repo *courseRepository) QueryActiveCourses(_ context.Context, sortMode course.SortMode, limit int) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.query() {
		if crs.IsActive {
			courses = append(courses, crs)
		}
	}
	if sortMode == course.SortPopular {
		sort.SliceStable(courses, func(i, j int) bool {
			a, b := courses[i].EnrollCount, courses[j].EnrollCount
			if a.Valid != b.Valid {
				return a.Valid // rows without a count sink to recency order
			}
			return a.Int > b.Int
		})
	}
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (repo *courseRepository) QueryCategoryLinks(_ context.Context, courseIDs []string) ([]course.CourseCategory, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	var links []course.CourseCategory
	for _, link := range repo.db.catLinks {
		if wanted[link.CourseID] {
			links = append(links, link)
		}
	}
	return links, nil
}

func (repo *courseRepository) QueryTypeLinks(_ context.Context, courseIDs []string) ([]course.CourseCourseType, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	var links []course.CourseCourseType
	for _, link := range repo.db.typeLinks {
		if wanted[link.CourseID] {
			links = append(links, link)
		}
	}
	return links, nil
}

func (repo *courseRepository) ReplaceCourseLinks(_ context.Context, courseID string, categoryIDs, typeIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	catLinks := repo.db.catLinks[:0]
	for _, link := range repo.db.catLinks {
		if link.CourseID != courseID {
			catLinks = append(catLinks, link)
		}
	}
	for _, catID := range categoryIDs {
		catLinks = append(catLinks, course.CourseCategory{CourseID: courseID, CategoryID: catID})
	}
	repo.db.catLinks = catLinks

	typeLinks := repo.db.typeLinks[:0]
	for _, link := range repo.db.typeLinks {
		if link.CourseID != courseID {
			typeLinks = append(typeLinks, link)
		}
	}
	for _, typeID := range typeIDs {
		typeLinks = append(typeLinks, course.CourseCourseType{CourseID: courseID, CourseTypeID: typeID})
	}
	repo.db.typeLinks = typeLinks
	return nil
}

func (repo *courseRepository) ReplaceGuestLinks(_ context.Context, institutionID string, courseIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.guestLinks[institutionID] = append([]string(nil), courseIDs...)
	return nil
}

func (repo *courseRepository) QueryCategories(_ context.Context) ([]course.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cats := make([]course.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *courseRepository) CreateCategory(_ context.Context, cat course.Category) (course.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cat.ID = uuid.New().String()
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *courseRepository) DeleteCategoriesByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.categories[id]; ok {
			delete(repo.db.categories, id)
			n++
		}
	}
	return n, nil
}

func (repo *courseRepository) QueryCourseTypes(_ context.Context) ([]course.CourseType, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	types := make([]course.CourseType, 0, len(repo.db.types))
	for _, ct := range repo.db.types {
		types = append(types, *ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (repo *courseRepository) CreateCourseType(_ context.Context, ct course.CourseType) (course.CourseType, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ct.ID = uuid.New().String()
	repo.db.types[ct.ID] = &ct
	return ct, nil
}

func (repo *courseRepository) DeleteCourseTypesByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.types[id]; ok {
			delete(repo.db.types, id)
			n++
		}
	}
	return n, nil
}
