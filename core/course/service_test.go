package course

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

type fakeRepo struct {
	Repository

	owned   map[string][]Course // institution id -> owned active courses
	guest   map[string][]Course // institution id -> shared active courses
	catRows []CourseCategory
	typRows []CourseCourseType
	linkErr error
}

func (r *fakeRepo) QueryTenantCourses(_ context.Context, institutionID string, sort SortMode, limit int) ([]Course, error) {
	seen := map[string]bool{}
	var out []Course
	for _, c := range append(r.owned[institutionID], r.guest[institutionID]...) {
		if seen[c.ID] || !c.IsActive {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) QueryActiveCourses(_ context.Context, sort SortMode, limit int) ([]Course, error) {
	seen := map[string]bool{}
	var out []Course
	for _, courses := range []map[string][]Course{r.owned, r.guest} {
		for _, list := range courses {
			for _, c := range list {
				if seen[c.ID] || !c.IsActive {
					continue
				}
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) QueryCategoryLinks(_ context.Context, courseIDs []string) ([]CourseCategory, error) {
	if r.linkErr != nil {
		return nil, r.linkErr
	}
	return r.catRows, nil
}

func (r *fakeRepo) QueryTypeLinks(_ context.Context, courseIDs []string) ([]CourseCourseType, error) {
	if r.linkErr != nil {
		return nil, r.linkErr
	}
	return r.typRows, nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestTenantCoursesVisibility(t *testing.T) {
	shared := Course{ID: "shared", Title: "รายวิชากลาง", IsActive: true}
	repo := &fakeRepo{
		owned: map[string][]Course{
			"uni-a": {
				{ID: "a1", Title: "ของ ม.ก", IsActive: true},
				{ID: "a2", Title: "ปิดไปแล้ว", IsActive: false},
				shared, // owner also shares it with uni-b
			},
		},
		guest: map[string][]Course{
			"uni-b": {shared},
			"uni-a": {shared}, // owned and shared at once: must not duplicate
		},
	}
	svc := NewService(repo, nopLogger{})

	courses, _, err := svc.TenantCourses(context.Background(), "uni-a", SortNewest, 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a1", "shared"}, CourseIDs(courses))

	courses, _, err = svc.TenantCourses(context.Background(), "uni-b", SortNewest, 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"shared"}, CourseIDs(courses))

	courses, _, err = svc.TenantCourses(context.Background(), "uni-c", SortNewest, 0)
	assert.NoError(t, err)
	assert.Empty(t, courses)
}

func TestTenantCoursesPopularByEnrollment(t *testing.T) {
	withCounts := []Course{
		{ID: "p1", IsActive: true, EnrollCount: null.IntFrom(900)},
		{ID: "p2", IsActive: true, EnrollCount: null.IntFrom(40)},
	}
	withoutCounts := []Course{
		{ID: "n1", IsActive: true},
		{ID: "n2", IsActive: true},
	}

	tests := []struct {
		name  string
		owned []Course
		sort  SortMode
		want  bool
	}{
		{name: "popular with enrollment data", owned: withCounts, sort: SortPopular, want: true},
		{name: "popular without enrollment data falls back", owned: withoutCounts, sort: SortPopular, want: false},
		{name: "newest never reports popularity", owned: withCounts, sort: SortNewest, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{owned: map[string][]Course{"uni": tt.owned}}
			_, popular, err := NewService(repo, nopLogger{}).TenantCourses(context.Background(), "uni", tt.sort, 0)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, popular)
		})
	}
}

func TestActiveCoursesPlatformWide(t *testing.T) {
	repo := &fakeRepo{
		owned: map[string][]Course{
			"uni-a": {{ID: "a1", IsActive: true}, {ID: "a2", IsActive: false}},
			"uni-b": {{ID: "b1", IsActive: true}},
		},
	}
	svc := NewService(repo, nopLogger{})

	courses, _, err := svc.ActiveCourses(context.Background(), SortNewest, 0)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "b1"}, CourseIDs(courses))
}

func TestTenantCoursesStitched(t *testing.T) {
	repo := &fakeRepo{
		owned: map[string][]Course{
			"uni": {{ID: "c1", IsActive: true}},
		},
		catRows: []CourseCategory{{CourseID: "c1", CategoryID: "cat-1"}},
		typRows: []CourseCourseType{{CourseID: "c1", CourseTypeID: "type-1"}},
	}
	svc := NewService(repo, nopLogger{})

	courses, _, err := svc.TenantCourses(context.Background(), "uni", SortNewest, 0)
	assert.NoError(t, err)
	assert.True(t, courses[0].HasCategory("cat-1"))
	assert.True(t, courses[0].HasType("type-1"))
}

func TestTenantCoursesLinkFailureTolerated(t *testing.T) {
	repo := &fakeRepo{
		owned: map[string][]Course{
			"uni": {{ID: "c1", IsActive: true}},
		},
		linkErr: assert.AnError,
	}
	svc := NewService(repo, nopLogger{})

	courses, _, err := svc.TenantCourses(context.Background(), "uni", SortNewest, 0)
	assert.NoError(t, err, "link fetch failures must not fail the course query")
	assert.Len(t, courses, 1)
	assert.Empty(t, courses[0].Categories)
}
