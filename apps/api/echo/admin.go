package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
	"github.com/thaimooc/platform/core/support"
)

// adminApi is the JWT-authed back-office. Institution management is
// admin-only; content management (courses, news, banners, guides, tickets,
// uploads) is open to editors as well.
type adminApi struct {
	instSvc    *institution.Service
	courseSvc  *course.Service
	contentSvc *content.Service
	supportSvc *support.Service
	files      core.FileStore
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := adminApi{
		instSvc:    deps.InstitutionSvc,
		courseSvc:  deps.CourseSvc,
		contentSvc: deps.ContentSvc,
		supportSvc: deps.SupportSvc,
		files:      deps.Files,
	}

	ag := g.Group("/admin", jwt)
	admin := adminMiddleware()
	staff := staffMiddleware()

	// institutions
	ig := ag.Group("/institutions")
	ig.POST("", api.institutionCreate, admin)
	ig.GET("", api.institutionQuery, staff)
	ig.DELETE("", api.institutionDestroyMultiple, admin)
	ig.GET("/:id", api.institutionRetrieve, staff)
	ig.PUT("/:id", api.institutionUpdate, admin)
	ig.PUT("/:id/menu", api.institutionReplaceMenu, staff)
	ig.PUT("/:id/guest-courses", api.institutionShareCourses, staff)

	// courses
	cg := ag.Group("/courses", staff)
	cg.POST("", api.courseCreate)
	cg.GET("", api.courseQuery)
	cg.DELETE("", api.courseDestroyMultiple)
	cg.GET("/:id", api.courseRetrieve)
	cg.PUT("/:id", api.courseUpdate)

	// categories & course types
	ag.GET("/categories", api.categoryQuery, staff)
	ag.POST("/categories", api.categoryCreate, staff)
	ag.DELETE("/categories", api.categoryDestroyMultiple, staff)
	ag.GET("/course-types", api.courseTypeQuery, staff)
	ag.POST("/course-types", api.courseTypeCreate, staff)
	ag.DELETE("/course-types", api.courseTypeDestroyMultiple, staff)

	// news
	ng := ag.Group("/news", staff)
	ng.POST("", api.newsCreate)
	ng.GET("", api.newsQuery)
	ng.DELETE("", api.newsDestroyMultiple)
	ng.GET("/:id", api.newsRetrieve)
	ng.PUT("/:id", api.newsUpdate)

	// banners
	bg := ag.Group("/banners", staff)
	bg.POST("", api.bannerCreate)
	bg.GET("", api.bannerQuery)
	bg.DELETE("", api.bannerDestroyMultiple)
	bg.PUT("/:id", api.bannerUpdate)

	// guides
	gg := ag.Group("/guides", staff)
	gg.POST("", api.guideCreate)
	gg.GET("", api.guideQuery)
	gg.DELETE("", api.guideDestroyMultiple)
	gg.PUT("/:id", api.guideUpdate)

	// support tickets
	tg := ag.Group("/tickets", staff)
	tg.GET("", api.ticketQuery)
	tg.GET("/:id", api.ticketRetrieve)
	tg.POST("/:id/close", api.ticketClose)

	// uploads
	ag.POST("/uploads", api.upload, staff)
}

// Institutions

func (api *adminApi) institutionCreate(ctx echo.Context) error {
	var data institution.NewInstitution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstitution")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inst, err := api.instSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating institution")
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *adminApi) institutionQuery(ctx echo.Context) error {
	insts, err := api.instSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying institutions")
	}
	if insts == nil {
		insts = []institution.Institution{}
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *adminApi) institutionRetrieve(ctx echo.Context) error {
	inst, err := api.instSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding institution by ID")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *adminApi) institutionUpdate(ctx echo.Context) error {
	orig, err := api.instSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding institution by ID")
	}

	var data institution.UpdateInstitution
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInstitution")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	inst, err := api.instSvc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating institution")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *adminApi) institutionDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.instSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting institutions")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) institutionReplaceMenu(ctx echo.Context) error {
	var data institution.UpdateMenu
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMenu")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.instSvc.ReplaceMenu(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return errors.Wrap(err, "replacing menu")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) institutionShareCourses(ctx echo.Context) error {
	var data ShareCoursesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ShareCoursesRequest")
	}

	if err := api.courseSvc.ShareWithInstitution(ctx.Request().Context(), ctx.Param("id"), data.CourseIDs); err != nil {
		return errors.Wrap(err, "sharing courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Courses

func (api *adminApi) courseCreate(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.courseSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *adminApi) courseQuery(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}

	courses, err := api.courseSvc.QueryAll(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) courseRetrieve(ctx echo.Context) error {
	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *adminApi) courseUpdate(ctx echo.Context) error {
	orig, err := api.courseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	crs, err := api.courseSvc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *adminApi) courseDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.courseSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Categories & course types

func (api *adminApi) categoryQuery(ctx echo.Context) error {
	cats, err := api.courseSvc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []course.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *adminApi) categoryCreate(ctx echo.Context) error {
	var data course.Category
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Category")
	}
	data.Name = core.CleanString(data.Name)
	if data.Name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	cat, err := api.courseSvc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *adminApi) categoryDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.courseSvc.DeleteCategories(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting categories")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) courseTypeQuery(ctx echo.Context) error {
	types, err := api.courseSvc.CourseTypes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course types")
	}
	if types == nil {
		types = []course.CourseType{}
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *adminApi) courseTypeCreate(ctx echo.Context) error {
	var data course.CourseType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseType")
	}
	data.Name = core.CleanString(data.Name)
	if data.Name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	ct, err := api.courseSvc.CreateCourseType(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course type")
	}
	return ctx.JSON(http.StatusCreated, ct)
}

func (api *adminApi) courseTypeDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.courseSvc.DeleteCourseTypes(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting course types")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// News

func (api *adminApi) newsCreate(ctx echo.Context) error {
	var data content.NewNews
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNews")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	article, err := api.contentSvc.CreateNews(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating news")
	}
	return ctx.JSON(http.StatusCreated, article)
}

func (api *adminApi) newsQuery(ctx echo.Context) error {
	news, err := api.contentSvc.AllNews(ctx.Request().Context(), ctx.QueryParam("institution"))
	if err != nil {
		return errors.Wrap(err, "querying news")
	}
	if news == nil {
		news = []content.News{}
	}
	return ctx.JSON(http.StatusOK, news)
}

func (api *adminApi) newsRetrieve(ctx echo.Context) error {
	article, err := api.contentSvc.GetNews(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding news by ID")
	}
	return ctx.JSON(http.StatusOK, article)
}

func (api *adminApi) newsUpdate(ctx echo.Context) error {
	orig, err := api.contentSvc.GetNews(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding news by ID")
	}

	var data content.UpdateNews
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNews")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	article, err := api.contentSvc.UpdateNews(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating news")
	}
	return ctx.JSON(http.StatusOK, article)
}

func (api *adminApi) newsDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.contentSvc.DeleteNews(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting news")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Banners

func (api *adminApi) bannerCreate(ctx echo.Context) error {
	var data content.NewBanner
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBanner")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	bnr, err := api.contentSvc.CreateBanner(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating banner")
	}
	return ctx.JSON(http.StatusCreated, bnr)
}

func (api *adminApi) bannerQuery(ctx echo.Context) error {
	banners, err := api.contentSvc.AllBanners(ctx.Request().Context(), ctx.QueryParam("institution"))
	if err != nil {
		return errors.Wrap(err, "querying banners")
	}
	if banners == nil {
		banners = []content.Banner{}
	}
	return ctx.JSON(http.StatusOK, banners)
}

func (api *adminApi) bannerUpdate(ctx echo.Context) error {
	var data content.Banner
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Banner")
	}
	data.ID = ctx.Param("id")

	bnr, err := api.contentSvc.UpdateBanner(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating banner")
	}
	return ctx.JSON(http.StatusOK, bnr)
}

func (api *adminApi) bannerDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.contentSvc.DeleteBanners(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting banners")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Guides

func (api *adminApi) guideCreate(ctx echo.Context) error {
	var data content.NewGuide
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGuide")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	g, err := api.contentSvc.CreateGuide(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating guide")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *adminApi) guideQuery(ctx echo.Context) error {
	guides, err := api.contentSvc.Guides(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying guides")
	}
	if guides == nil {
		guides = []content.Guide{}
	}
	return ctx.JSON(http.StatusOK, guides)
}

func (api *adminApi) guideUpdate(ctx echo.Context) error {
	var data content.Guide
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Guide")
	}
	data.ID = ctx.Param("id")

	g, err := api.contentSvc.UpdateGuide(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating guide")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *adminApi) guideDestroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.contentSvc.DeleteGuides(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting guides")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Support tickets

func (api *adminApi) ticketQuery(ctx echo.Context) error {
	tickets, err := api.supportSvc.QueryAll(ctx.Request().Context(), ctx.QueryParam("institution"), ctx.QueryParam("status"))
	if err != nil {
		return errors.Wrap(err, "querying tickets")
	}
	if tickets == nil {
		tickets = []support.Ticket{}
	}
	return ctx.JSON(http.StatusOK, tickets)
}

func (api *adminApi) ticketRetrieve(ctx echo.Context) error {
	t, err := api.supportSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding ticket by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *adminApi) ticketClose(ctx echo.Context) error {
	t, err := api.supportSvc.Close(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "closing ticket")
	}
	return ctx.JSON(http.StatusOK, t)
}

// Uploads

func (api *adminApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	ref, err := api.files.Save(ctx.Request().Context(), fh.Filename, src)
	if err != nil {
		return errors.Wrap(err, "saving upload")
	}
	return ctx.JSON(http.StatusCreated, UploadResponse{Ref: ref})
}

type (
	ShareCoursesRequest struct {
		CourseIDs []string `json:"course_ids"`
	}

	UploadResponse struct {
		Ref string `json:"ref"`
	}
)
