package site

import (
	"context"
	"fmt"
	"sync"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
)

// Section sizes on the home page.
const (
	HomeNewCourses     = 8
	HomePopularCourses = 8
	HomeNews           = 4
)

type (
	// SiteResolver loads an institution's render context.
	SiteResolver interface {
		ResolveSite(ctx context.Context, id string) (institution.SiteContext, error)
	}

	// CourseFetcher provides the course data shown on microsite and portal
	// pages.
	CourseFetcher interface {
		TenantCourses(ctx context.Context, institutionID string, sort course.SortMode, limit int) ([]course.Course, bool, error)
		ActiveCourses(ctx context.Context, sort course.SortMode, limit int) ([]course.Course, bool, error)
		GetByRoutingKey(ctx context.Context, key string) (course.Course, error)
		Categories(ctx context.Context) ([]course.Category, error)
		CourseTypes(ctx context.Context) ([]course.CourseType, error)
	}

	// ContentFetcher provides news, banners and guides.
	ContentFetcher interface {
		PublishedNews(ctx context.Context, institutionID string, limit int) ([]content.News, error)
		GetNews(ctx context.Context, id string) (content.News, error)
		ActiveBanners(ctx context.Context, institutionID string) ([]content.Banner, error)
		Guides(ctx context.Context) ([]content.Guide, error)
	}

	// Assembler builds page views from independent data sources. A failed
	// section comes back empty instead of failing the page; only site
	// resolution errors propagate.
	Assembler struct {
		sites   SiteResolver
		courses CourseFetcher
		content ContentFetcher
		logger  core.Logger
	}
)

func NewAssembler(sites SiteResolver, courses CourseFetcher, contentSvc ContentFetcher, logger core.Logger) *Assembler {
	return &Assembler{sites: sites, courses: courses, content: contentSvc, logger: logger}
}

// HomeView is everything the home page renders. Slice fields are never nil.
type HomeView struct {
	Site                institution.SiteContext `json:"site"`
	Banners             []content.Banner        `json:"banners"`
	NewCourses          []course.Course         `json:"new_courses"`
	PopularCourses      []course.Course         `json:"popular_courses"`
	PopularByEnrollment bool                    `json:"popular_by_enrollment"`
	News                []content.News          `json:"news"`
	Categories          []course.Category       `json:"categories"`
	CourseTypes         []course.CourseType     `json:"course_types"`
}

// Home assembles the microsite home page. The site context is resolved
// first; its errors (institution.ErrNotFound, institution.ErrSiteDisabled)
// propagate unchanged. The data sections are then fetched concurrently and
// independently: a failed fetch is logged and its section rendered empty.
func (a *Assembler) Home(ctx context.Context, institutionID string) (HomeView, error) {
	sc, err := a.sites.ResolveSite(ctx, institutionID)
	if err != nil {
		return HomeView{}, err
	}
	return a.assembleHome(ctx, sc, institutionID), nil
}

// PortalHome assembles the main portal home page. There is no institution to
// resolve; sections draw from the global pool (all active courses, global
// news and banners).
func (a *Assembler) PortalHome(ctx context.Context) (HomeView, error) {
	return a.assembleHome(ctx, institution.PortalSite(), ""), nil
}

func (a *Assembler) assembleHome(ctx context.Context, sc institution.SiteContext, institutionID string) HomeView {
	view := HomeView{
		Site:           sc,
		Banners:        []content.Banner{},
		NewCourses:     []course.Course{},
		PopularCourses: []course.Course{},
		News:           []content.News{},
		Categories:     []course.Category{},
		CourseTypes:    []course.CourseType{},
	}

	var wg sync.WaitGroup
	wg.Add(6)
	go func() {
		defer wg.Done()
		if banners, err := a.content.ActiveBanners(ctx, institutionID); err != nil {
			a.warn("banners", institutionID, err)
		} else if banners != nil {
			view.Banners = banners
		}
	}()
	go func() {
		defer wg.Done()
		if courses, _, err := a.fetchCourses(ctx, institutionID, course.SortNewest, HomeNewCourses); err != nil {
			a.warn("new courses", institutionID, err)
		} else if courses != nil {
			view.NewCourses = courses
		}
	}()
	go func() {
		defer wg.Done()
		if courses, byEnrollment, err := a.fetchCourses(ctx, institutionID, course.SortPopular, HomePopularCourses); err != nil {
			a.warn("popular courses", institutionID, err)
		} else {
			view.PopularByEnrollment = byEnrollment
			if courses != nil {
				view.PopularCourses = courses
			}
		}
	}()
	go func() {
		defer wg.Done()
		if news, err := a.content.PublishedNews(ctx, institutionID, HomeNews); err != nil {
			a.warn("news", institutionID, err)
		} else if news != nil {
			view.News = news
		}
	}()
	go func() {
		defer wg.Done()
		if cats, err := a.courses.Categories(ctx); err != nil {
			a.warn("categories", institutionID, err)
		} else if cats != nil {
			view.Categories = cats
		}
	}()
	go func() {
		defer wg.Done()
		if types, err := a.courses.CourseTypes(ctx); err != nil {
			a.warn("course types", institutionID, err)
		} else if types != nil {
			view.CourseTypes = types
		}
	}()
	wg.Wait()

	return view
}

// fetchCourses picks the tenant-scoped or platform-wide course query; an
// empty institution id means the portal.
func (a *Assembler) fetchCourses(ctx context.Context, institutionID string, sort course.SortMode, limit int) ([]course.Course, bool, error) {
	if institutionID == "" {
		return a.courses.ActiveCourses(ctx, sort, limit)
	}
	return a.courses.TenantCourses(ctx, institutionID, sort, limit)
}

// CourseListView is the paginated all-courses page.
type CourseListView struct {
	Site        institution.SiteContext `json:"site"`
	Courses     []course.Course         `json:"courses"`
	Filter      course.Filter           `json:"filter"`
	Page        int                     `json:"page"`
	TotalPages  int                     `json:"total_pages"`
	TotalCount  int                     `json:"total_count"`
	Categories  []course.Category       `json:"categories"`
	CourseTypes []course.CourseType     `json:"course_types"`
}

// CourseList assembles the all-courses page: the institution's visible
// courses run through the filter and pager. Category and type lists feed the
// filter widgets and render empty on failure.
func (a *Assembler) CourseList(ctx context.Context, institutionID string, filter course.Filter, page int) (CourseListView, error) {
	sc, err := a.sites.ResolveSite(ctx, institutionID)
	if err != nil {
		return CourseListView{}, err
	}
	return a.assembleCourseList(ctx, sc, institutionID, filter, page), nil
}

// PortalCourseList assembles the portal's all-courses page over every active
// course on the platform.
func (a *Assembler) PortalCourseList(ctx context.Context, filter course.Filter, page int) (CourseListView, error) {
	return a.assembleCourseList(ctx, institution.PortalSite(), "", filter, page), nil
}

func (a *Assembler) assembleCourseList(ctx context.Context, sc institution.SiteContext, institutionID string, filter course.Filter, page int) CourseListView {
	courses, _, err := a.fetchCourses(ctx, institutionID, course.SortNewest, 0)
	if err != nil {
		a.warn("courses", institutionID, err)
		courses = nil
	}

	listing := course.NewListing(courses)
	listing.SetFilter(filter)
	listing.SetPage(page)

	view := CourseListView{
		Site:        sc,
		Courses:     listing.CurrentPage(),
		Filter:      listing.Filter(),
		Page:        listing.Page(),
		TotalPages:  listing.TotalPages(),
		TotalCount:  listing.TotalCount(),
		Categories:  []course.Category{},
		CourseTypes: []course.CourseType{},
	}
	if cats, err := a.courses.Categories(ctx); err != nil {
		a.warn("categories", institutionID, err)
	} else if cats != nil {
		view.Categories = cats
	}
	if types, err := a.courses.CourseTypes(ctx); err != nil {
		a.warn("course types", institutionID, err)
	} else if types != nil {
		view.CourseTypes = types
	}
	return view
}

// CourseDetailView is one course page.
type CourseDetailView struct {
	Site   institution.SiteContext `json:"site"`
	Course course.Course           `json:"course"`
}

// CourseDetail assembles a course page; key is the public routing key
// (course code or id). Course lookup errors propagate, a missing course is
// a page-level not-found.
func (a *Assembler) CourseDetail(ctx context.Context, institutionID, key string) (CourseDetailView, error) {
	sc, err := a.sites.ResolveSite(ctx, institutionID)
	if err != nil {
		return CourseDetailView{}, err
	}
	crs, err := a.courses.GetByRoutingKey(ctx, key)
	if err != nil {
		return CourseDetailView{}, err
	}
	return CourseDetailView{Site: sc, Course: crs}, nil
}

// NewsListView is the news index page.
type NewsListView struct {
	Site institution.SiteContext `json:"site"`
	News []content.News          `json:"news"`
}

func (a *Assembler) NewsList(ctx context.Context, institutionID string) (NewsListView, error) {
	sc, err := a.sites.ResolveSite(ctx, institutionID)
	if err != nil {
		return NewsListView{}, err
	}
	return a.assembleNewsList(ctx, sc, institutionID), nil
}

// PortalNewsList assembles the portal news index over the global articles.
func (a *Assembler) PortalNewsList(ctx context.Context) (NewsListView, error) {
	return a.assembleNewsList(ctx, institution.PortalSite(), ""), nil
}

func (a *Assembler) assembleNewsList(ctx context.Context, sc institution.SiteContext, institutionID string) NewsListView {
	view := NewsListView{Site: sc, News: []content.News{}}
	if news, err := a.content.PublishedNews(ctx, institutionID, 0); err != nil {
		a.warn("news", institutionID, err)
	} else if news != nil {
		view.News = news
	}
	return view
}

// NewsDetailView is one news article page.
type NewsDetailView struct {
	Site    institution.SiteContext `json:"site"`
	Article content.News            `json:"article"`
}

func (a *Assembler) NewsDetail(ctx context.Context, institutionID, newsID string) (NewsDetailView, error) {
	sc, err := a.sites.ResolveSite(ctx, institutionID)
	if err != nil {
		return NewsDetailView{}, err
	}
	return a.assembleNewsDetail(ctx, sc, newsID)
}

// PortalNewsDetail assembles one article under the portal chrome.
func (a *Assembler) PortalNewsDetail(ctx context.Context, newsID string) (NewsDetailView, error) {
	return a.assembleNewsDetail(ctx, institution.PortalSite(), newsID)
}

func (a *Assembler) assembleNewsDetail(ctx context.Context, sc institution.SiteContext, newsID string) (NewsDetailView, error) {
	article, err := a.content.GetNews(ctx, newsID)
	if err != nil {
		return NewsDetailView{}, err
	}
	if !article.IsPublished {
		return NewsDetailView{}, content.ErrNotFound
	}
	return NewsDetailView{Site: sc, Article: article}, nil
}

// GuidesView lists the platform how-to pages under an institution's chrome.
type GuidesView struct {
	Site   institution.SiteContext `json:"site"`
	Guides []content.Guide         `json:"guides"`
}

func (a *Assembler) GuideList(ctx context.Context, institutionID string) (GuidesView, error) {
	sc, err := a.sites.ResolveSite(ctx, institutionID)
	if err != nil {
		return GuidesView{}, err
	}
	view := GuidesView{Site: sc, Guides: []content.Guide{}}
	if guides, err := a.content.Guides(ctx); err != nil {
		a.warn("guides", institutionID, err)
	} else if guides != nil {
		view.Guides = guides
	}
	return view, nil
}

func (a *Assembler) warn(section, institutionID string, err error) {
	scope := "portal"
	if institutionID != "" {
		scope = "institution " + institutionID
	}
	a.logger.Warn(fmt.Sprintf("fetching %s for %s: %v", section, scope, err), err)
}
