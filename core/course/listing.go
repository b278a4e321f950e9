package course

import (
	"strings"
)

// PageSize is the fixed page length of public course listings.
const PageSize = 30

// Filter narrows a public course listing. Conditions are ANDed; the search
// term matches case-insensitively against both Thai and English titles and
// descriptions.
type Filter struct {
	Search       string `query:"search" json:"search"`
	CategoryID   string `query:"category" json:"category"`
	CourseTypeID string `query:"type" json:"type"`
}

func (f Filter) IsZero() bool {
	return f.Search == "" && f.CategoryID == "" && f.CourseTypeID == ""
}

// Matches reports whether the course passes every set condition.
func (f Filter) Matches(c Course) bool {
	if f.CategoryID != "" && !c.HasCategory(f.CategoryID) {
		return false
	}
	if f.CourseTypeID != "" && !c.HasType(f.CourseTypeID) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Title), needle) &&
			!strings.Contains(strings.ToLower(c.TitleEn), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) &&
			!strings.Contains(strings.ToLower(c.DescriptionEn), needle) {
			return false
		}
	}
	return true
}

// Listing pages a fixed course collection through a changing filter. Any
// filter change resets the position to page 1 so the pager can never point
// past the shrunken result set.
type Listing struct {
	courses []Course
	filter  Filter
	page    int

	matched []Course
}

func NewListing(courses []Course) *Listing {
	l := &Listing{courses: courses, page: 1}
	l.refilter()
	return l
}

// SetFilter installs a new filter. The page resets to 1 whenever the filter
// actually changed.
func (l *Listing) SetFilter(f Filter) {
	if f == l.filter {
		return
	}
	l.filter = f
	l.page = 1
	l.refilter()
}

func (l *Listing) Filter() Filter { return l.filter }

// SetPage moves to the given page, clamped to [1, TotalPages].
func (l *Listing) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if total := l.TotalPages(); page > total {
		page = total
	}
	l.page = page
}

func (l *Listing) Page() int { return l.page }

// TotalCount is the number of courses matching the current filter.
func (l *Listing) TotalCount() int { return len(l.matched) }

// TotalPages is the number of pages for the current filter, at least 1.
func (l *Listing) TotalPages() int {
	pages := (len(l.matched) + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// CurrentPage returns the courses on the current page. The slice is never
// nil.
func (l *Listing) CurrentPage() []Course {
	start := (l.page - 1) * PageSize
	if start >= len(l.matched) {
		return []Course{}
	}
	end := start + PageSize
	if end > len(l.matched) {
		end = len(l.matched)
	}
	return l.matched[start:end]
}

func (l *Listing) refilter() {
	l.matched = make([]Course, 0, len(l.courses))
	for _, c := range l.courses {
		if l.filter.Matches(c) {
			l.matched = append(l.matched, c)
		}
	}
}
