package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO courses (id, course_code, institution_id, title, title_en, description, description_en,
		                     duration_hours, level, is_active, enroll_count, image_ref, created_at, updated_at)
		VALUES (:id, :course_code, :institution_id, :title, :title_en, :description, :description_en,
		        :duration_hours, :level, :is_active, :enroll_count, :image_ref, :created_at, :updated_at)`,
		crs,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	query := `SELECT DISTINCT c.* FROM courses c`
	var joins, where string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		and(`(c.title ILIKE ` + p + ` OR c.title_en ILIKE ` + p + ` OR c.description ILIKE ` + p + ` OR c.description_en ILIKE ` + p + `)`)
	}
	if filter.InstitutionID != "" {
		and(`c.institution_id = ` + arg(filter.InstitutionID))
	}
	if filter.CategoryID != "" {
		joins += ` JOIN course_categories cc ON cc.course_id = c.id`
		and(`cc.category_id = ` + arg(filter.CategoryID))
	}
	if filter.TypeID != "" {
		joins += ` JOIN course_course_types cct ON cct.course_id = c.id`
		and(`cct.course_type_id = ` + arg(filter.TypeID))
	}
	if filter.IsActive != nil {
		and(`c.is_active = ` + arg(*filter.IsActive))
	}

	var courses []course.Course
	err := repo.db.SelectContext(ctx, &courses, query+joins+where+` ORDER BY c.created_at DESC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM courses WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByCode(ctx context.Context, code string) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM courses WHERE course_code = $1`, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by code")
	}
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE courses
		SET course_code = :course_code, institution_id = :institution_id, title = :title,
		    title_en = :title_en, description = :description, description_en = :description_en,
		    duration_hours = :duration_hours, level = :level, is_active = :is_active,
		    enroll_count = :enroll_count, image_ref = :image_ref, updated_at = :updated_at
		WHERE id = :id`,
		crs,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, `DELETE FROM courses WHERE id IN (?)`, ids)
}

// QueryTenantCourses returns the active courses an institution can show:
// the ones it owns plus the ones shared with it, without duplicates.
func (repo *courseRepository) QueryTenantCourses(ctx context.Context, institutionID string, sort course.SortMode, limit int) ([]course.Course, error) {
	order := `c.created_at DESC`
	if sort == course.SortPopular {
		order = `c.enroll_count DESC NULLS LAST, c.created_at DESC`
	}
	query := `
		SELECT DISTINCT c.*
		FROM courses c
		LEFT JOIN institution_guest_courses igc ON igc.course_id = c.id
		WHERE c.is_active = TRUE
		  AND (c.institution_id = $1 OR igc.institution_id = $1)
		ORDER BY ` + order
	args := []interface{}{institutionID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var courses []course.Course
	if err := repo.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying tenant courses")
	}
	return courses, nil
}

func (repo *courseRepository) QueryActiveCourses(ctx context.Context, sort course.SortMode, limit int) ([]course.Course, error) {
	order := `created_at DESC`
	if sort == course.SortPopular {
		order = `enroll_count DESC NULLS LAST, created_at DESC`
	}
	query := `SELECT * FROM courses WHERE is_active = TRUE ORDER BY ` + order
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var courses []course.Course
	if err := repo.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying active courses")
	}
	return courses, nil
}

func (repo *courseRepository) QueryCategoryLinks(ctx context.Context, courseIDs []string) ([]course.CourseCategory, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT course_id, category_id FROM course_categories WHERE course_id IN (?)`, courseIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building category link query")
	}
	var links []course.CourseCategory
	if err = repo.db.SelectContext(ctx, &links, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying category links")
	}
	return links, nil
}

func (repo *courseRepository) QueryTypeLinks(ctx context.Context, courseIDs []string) ([]course.CourseCourseType, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT course_id, course_type_id FROM course_course_types WHERE course_id IN (?)`, courseIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building type link query")
	}
	var links []course.CourseCourseType
	if err = repo.db.SelectContext(ctx, &links, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying type links")
	}
	return links, nil
}

func (repo *courseRepository) ReplaceCourseLinks(ctx context.Context, courseID string, categoryIDs, typeIDs []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning link replace")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM course_categories WHERE course_id = $1`, courseID); err != nil {
		return errors.Wrap(err, "clearing category links")
	}
	for _, catID := range categoryIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO course_categories (course_id, category_id) VALUES ($1, $2)`,
			courseID, catID); err != nil {
			return errors.Wrap(err, "inserting category link")
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM course_course_types WHERE course_id = $1`, courseID); err != nil {
		return errors.Wrap(err, "clearing type links")
	}
	for _, typeID := range typeIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO course_course_types (course_id, course_type_id) VALUES ($1, $2)`,
			courseID, typeID); err != nil {
			return errors.Wrap(err, "inserting type link")
		}
	}
	return errors.Wrap(tx.Commit(), "committing link replace")
}

func (repo *courseRepository) ReplaceGuestLinks(ctx context.Context, institutionID string, courseIDs []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning guest link replace")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM institution_guest_courses WHERE institution_id = $1`, institutionID); err != nil {
		return errors.Wrap(err, "clearing guest links")
	}
	for _, courseID := range courseIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO institution_guest_courses (institution_id, course_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			institutionID, courseID,
		); err != nil {
			return errors.Wrap(err, "inserting guest link")
		}
	}
	return errors.Wrap(tx.Commit(), "committing guest link replace")
}

func (repo *courseRepository) QueryCategories(ctx context.Context) ([]course.Category, error) {
	var cats []course.Category
	if err := repo.db.SelectContext(ctx, &cats, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (repo *courseRepository) CreateCategory(ctx context.Context, cat course.Category) (course.Category, error) {
	cat.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO categories (id, name, name_en, icon) VALUES (:id, :name, :name_en, :icon)`, cat)
	if err != nil {
		return course.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo *courseRepository) DeleteCategoriesByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, `DELETE FROM categories WHERE id IN (?)`, ids)
}

func (repo *courseRepository) QueryCourseTypes(ctx context.Context) ([]course.CourseType, error) {
	var types []course.CourseType
	if err := repo.db.SelectContext(ctx, &types, `SELECT * FROM course_types ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying course types")
	}
	return types, nil
}

func (repo *courseRepository) CreateCourseType(ctx context.Context, ct course.CourseType) (course.CourseType, error) {
	ct.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO course_types (id, name, name_en, icon) VALUES (:id, :name, :name_en, :icon)`, ct)
	if err != nil {
		return course.CourseType{}, errors.Wrap(err, "inserting course type")
	}
	return ct, nil
}

func (repo *courseRepository) DeleteCourseTypesByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, `DELETE FROM course_types WHERE id IN (?)`, ids)
}

func (repo *courseRepository) deleteByID(ctx context.Context, query string, ids []string) (int, error) {
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
