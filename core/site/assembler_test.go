package site

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
)

type fakeSites struct {
	sc  institution.SiteContext
	err error
}

func (f *fakeSites) ResolveSite(context.Context, string) (institution.SiteContext, error) {
	return f.sc, f.err
}

type fakeCourses struct {
	courses    []course.Course
	byEnroll   bool
	coursesErr error
	categories []course.Category
	catErr     error
	types      []course.CourseType
	typesErr   error
	detail     course.Course
	detailErr  error
}

func (f *fakeCourses) TenantCourses(context.Context, string, course.SortMode, int) ([]course.Course, bool, error) {
	return f.courses, f.byEnroll, f.coursesErr
}

func (f *fakeCourses) ActiveCourses(context.Context, course.SortMode, int) ([]course.Course, bool, error) {
	return f.courses, f.byEnroll, f.coursesErr
}

func (f *fakeCourses) GetByRoutingKey(context.Context, string) (course.Course, error) {
	return f.detail, f.detailErr
}

func (f *fakeCourses) Categories(context.Context) ([]course.Category, error) {
	return f.categories, f.catErr
}

func (f *fakeCourses) CourseTypes(context.Context) ([]course.CourseType, error) {
	return f.types, f.typesErr
}

type fakeContent struct {
	news       []content.News
	newsErr    error
	article    content.News
	articleErr error
	banners    []content.Banner
	bannersErr error
	guides     []content.Guide
	guidesErr  error
}

func (f *fakeContent) PublishedNews(context.Context, string, int) ([]content.News, error) {
	return f.news, f.newsErr
}

func (f *fakeContent) GetNews(context.Context, string) (content.News, error) {
	return f.article, f.articleErr
}

func (f *fakeContent) ActiveBanners(context.Context, string) ([]content.Banner, error) {
	return f.banners, f.bannersErr
}

func (f *fakeContent) Guides(context.Context) ([]content.Guide, error) {
	return f.guides, f.guidesErr
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func enabledSite(id string) institution.SiteContext {
	return institution.SiteContext{
		Institution:    institution.Institution{ID: id, MicrositeEnabled: true},
		PrimaryColor:   institution.DefaultPrimaryColor,
		SecondaryColor: institution.DefaultSecondaryColor,
	}
}

func TestHomeSiteErrorsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		siteErr error
	}{
		{name: "not found", siteErr: institution.ErrNotFound},
		{name: "site disabled", siteErr: institution.ErrSiteDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(&fakeSites{err: tt.siteErr}, &fakeCourses{}, &fakeContent{}, nopLogger{})
			_, err := a.Home(context.Background(), "uni")
			assert.Equal(t, tt.siteErr, errors.Cause(err))
		})
	}
}

func TestHomeSectionsIndependent(t *testing.T) {
	boom := errors.New("connection refused")
	courses := []course.Course{{ID: "c1", IsActive: true}}
	news := []content.News{{ID: "n1", IsPublished: true}}

	// courses and categories fail; every other section still renders
	a := NewAssembler(
		&fakeSites{sc: enabledSite("uni")},
		&fakeCourses{coursesErr: boom, catErr: boom, types: []course.CourseType{{ID: "t1"}}},
		&fakeContent{news: news, banners: []content.Banner{{ID: "b1"}}},
		nopLogger{},
	)
	view, err := a.Home(context.Background(), "uni")
	assert.NoError(t, err)

	assert.Empty(t, view.NewCourses)
	assert.Empty(t, view.PopularCourses)
	assert.Empty(t, view.Categories)
	assert.Equal(t, news, view.News)
	assert.Len(t, view.Banners, 1)
	assert.Len(t, view.CourseTypes, 1)

	// and the other way around
	a = NewAssembler(
		&fakeSites{sc: enabledSite("uni")},
		&fakeCourses{courses: courses},
		&fakeContent{newsErr: boom, bannersErr: boom},
		nopLogger{},
	)
	view, err = a.Home(context.Background(), "uni")
	assert.NoError(t, err)
	assert.Equal(t, courses, view.NewCourses)
	assert.Empty(t, view.News)
	assert.Empty(t, view.Banners)
}

func TestHomeSlicesNeverNil(t *testing.T) {
	boom := errors.New("down")
	a := NewAssembler(
		&fakeSites{sc: enabledSite("uni")},
		&fakeCourses{coursesErr: boom, catErr: boom, typesErr: boom},
		&fakeContent{newsErr: boom, bannersErr: boom},
		nopLogger{},
	)
	view, err := a.Home(context.Background(), "uni")
	assert.NoError(t, err)

	assert.NotNil(t, view.Banners)
	assert.NotNil(t, view.NewCourses)
	assert.NotNil(t, view.PopularCourses)
	assert.NotNil(t, view.News)
	assert.NotNil(t, view.Categories)
	assert.NotNil(t, view.CourseTypes)
}

func TestHomePopularByEnrollment(t *testing.T) {
	a := NewAssembler(
		&fakeSites{sc: enabledSite("uni")},
		&fakeCourses{courses: []course.Course{{ID: "c1"}}, byEnroll: true},
		&fakeContent{},
		nopLogger{},
	)
	view, err := a.Home(context.Background(), "uni")
	assert.NoError(t, err)
	assert.True(t, view.PopularByEnrollment)
}

func TestCourseListPaging(t *testing.T) {
	courses := make([]course.Course, 65)
	for i := range courses {
		courses[i] = course.Course{ID: string(rune('a' + i%26)), TitleEn: "Course", IsActive: true}
	}
	a := NewAssembler(&fakeSites{sc: enabledSite("uni")}, &fakeCourses{courses: courses}, &fakeContent{}, nopLogger{})

	view, err := a.CourseList(context.Background(), "uni", course.Filter{}, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, view.Page)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, 65, view.TotalCount)
	assert.Len(t, view.Courses, course.PageSize)
}

func TestCourseListCoursesFailureRendersEmptyPage(t *testing.T) {
	a := NewAssembler(
		&fakeSites{sc: enabledSite("uni")},
		&fakeCourses{coursesErr: errors.New("down")},
		&fakeContent{},
		nopLogger{},
	)
	view, err := a.CourseList(context.Background(), "uni", course.Filter{}, 1)
	assert.NoError(t, err)
	assert.NotNil(t, view.Courses)
	assert.Empty(t, view.Courses)
	assert.Equal(t, 1, view.TotalPages)
}

func TestPortalHomeUsesDefaults(t *testing.T) {
	courses := []course.Course{{ID: "c1", IsActive: true}}
	a := NewAssembler(
		&fakeSites{err: institution.ErrNotFound}, // resolver must not be consulted
		&fakeCourses{courses: courses},
		&fakeContent{news: []content.News{{ID: "n1", IsPublished: true}}},
		nopLogger{},
	)
	view, err := a.PortalHome(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, institution.DefaultPrimaryColor, view.Site.PrimaryColor)
	assert.Empty(t, view.Site.Institution.ID)
	assert.Len(t, view.Site.Menus.Header, 4)
	assert.Equal(t, courses, view.NewCourses)
	assert.Len(t, view.News, 1)
}

func TestPortalCourseListPaging(t *testing.T) {
	courses := make([]course.Course, 35)
	for i := range courses {
		courses[i] = course.Course{ID: string(rune('a' + i%26)), TitleEn: "Course", IsActive: true}
	}
	a := NewAssembler(&fakeSites{err: institution.ErrNotFound}, &fakeCourses{courses: courses}, &fakeContent{}, nopLogger{})

	view, err := a.PortalCourseList(context.Background(), course.Filter{}, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, view.Page)
	assert.Equal(t, 2, view.TotalPages)
	assert.Equal(t, 35, view.TotalCount)
}

func TestNewsDetailHidesDrafts(t *testing.T) {
	a := NewAssembler(
		&fakeSites{sc: enabledSite("uni")},
		&fakeCourses{},
		&fakeContent{article: content.News{ID: "n1", IsPublished: false}},
		nopLogger{},
	)
	_, err := a.NewsDetail(context.Background(), "uni", "n1")
	assert.Equal(t, content.ErrNotFound, errors.Cause(err))
}
