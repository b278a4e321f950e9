package course

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeCourses(n int) []Course {
	courses := make([]Course, n)
	for i := range courses {
		courses[i] = Course{
			ID:      fmt.Sprintf("c%03d", i+1),
			Title:   fmt.Sprintf("รายวิชาที่ %d", i+1),
			TitleEn: fmt.Sprintf("Course %d", i+1),
		}
	}
	return courses
}

func TestListingPagination(t *testing.T) {
	l := NewListing(makeCourses(65))

	assert.Equal(t, 65, l.TotalCount())
	assert.Equal(t, 3, l.TotalPages())
	assert.Equal(t, 1, l.Page())
	assert.Len(t, l.CurrentPage(), PageSize)

	l.SetPage(3)
	assert.Len(t, l.CurrentPage(), 5)
	assert.Equal(t, "c061", l.CurrentPage()[0].ID)

	l.SetPage(99)
	assert.Equal(t, 3, l.Page())
	l.SetPage(-1)
	assert.Equal(t, 1, l.Page())
}

func TestListingFilterResetsPage(t *testing.T) {
	courses := makeCourses(65)
	// tag 12 of them so a search shrinks the result set below one page
	for i := 0; i < 12; i++ {
		courses[i*5].TitleEn = fmt.Sprintf("Data Science %d", i+1)
	}
	l := NewListing(courses)
	l.SetPage(3)

	l.SetFilter(Filter{Search: "data science"})

	assert.Equal(t, 12, l.TotalCount())
	assert.Equal(t, 1, l.TotalPages())
	assert.Equal(t, 1, l.Page(), "filter change must reset to page 1")
	assert.Len(t, l.CurrentPage(), 12)

	// same filter again keeps the position
	l.SetPage(1)
	l.SetFilter(Filter{Search: "data science"})
	assert.Equal(t, 1, l.Page())
}

func TestListingEmptyResult(t *testing.T) {
	l := NewListing(makeCourses(10))
	l.SetFilter(Filter{Search: "ไม่มีอยู่จริง"})

	assert.Equal(t, 0, l.TotalCount())
	assert.Equal(t, 1, l.TotalPages())
	page := l.CurrentPage()
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestFilterMatches(t *testing.T) {
	crs := Course{
		ID:            "c1",
		Title:         "การตลาดดิจิทัล",
		TitleEn:       "Digital Marketing",
		Description:   "พื้นฐานการตลาดออนไลน์",
		DescriptionEn: "Online marketing fundamentals",
		Categories:    []CourseCategory{{CourseID: "c1", CategoryID: "cat-biz"}},
		Types:         []CourseCourseType{{CourseID: "c1", CourseTypeID: "type-cert"}},
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "zero filter", filter: Filter{}, want: true},
		{name: "thai title substring", filter: Filter{Search: "ตลาด"}, want: true},
		{name: "english title case-insensitive", filter: Filter{Search: "DIGITAL"}, want: true},
		{name: "english description", filter: Filter{Search: "fundamentals"}, want: true},
		{name: "no match", filter: Filter{Search: "blockchain"}, want: false},
		{name: "category hit", filter: Filter{CategoryID: "cat-biz"}, want: true},
		{name: "category miss", filter: Filter{CategoryID: "cat-tech"}, want: false},
		{name: "type hit", filter: Filter{CourseTypeID: "type-cert"}, want: true},
		{name: "anded: search hit, type miss", filter: Filter{Search: "ตลาด", CourseTypeID: "type-x"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(crs))
		})
	}
}
