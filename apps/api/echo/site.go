package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/site"
	"github.com/thaimooc/platform/core/support"
)

// siteApi serves the public, un-authed pages: the main portal and the
// per-institution microsites. Microsite pages are scoped via the :id path
// param; resolution failures surface as 404 (unknown institution) or 503
// (microsite switched off).
type siteApi struct {
	assembler  *site.Assembler
	supportSvc *support.Service
	files      core.FileStore
}

func registerSiteAPI(g *echo.Group, assembler *site.Assembler, supportSvc *support.Service, fileStore core.FileStore) {
	api := siteApi{
		assembler:  assembler,
		supportSvc: supportSvc,
		files:      fileStore,
	}

	g.GET("/uploads/:name", api.serveUpload)

	// portal pages draw from the global pool, no institution behind them
	g.GET("", api.portalHome)
	g.GET("/courses", api.portalCourseList)
	g.GET("/news", api.portalNewsList)
	g.GET("/news/:newsID", api.portalNewsDetail)

	sg := g.Group("/institutions/:id")
	sg.GET("", api.home)
	sg.GET("/courses", api.courseList)
	sg.GET("/courses/:key", api.courseDetail)
	sg.GET("/news", api.newsList)
	sg.GET("/news/:newsID", api.newsDetail)
	sg.GET("/guides", api.guideList)
	sg.POST("/contact", api.submitContact)
}

// Handlers

func (api *siteApi) portalHome(ctx echo.Context) error {
	view, err := api.assembler.PortalHome(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "assembling portal home")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) portalCourseList(ctx echo.Context) error {
	var filter course.Filter
	if err := ctx.Bind(&filter); err != nil {
		filter = course.Filter{}
	}

	view, err := api.assembler.PortalCourseList(ctx.Request().Context(), filter, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "assembling portal course list")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) portalNewsList(ctx echo.Context) error {
	view, err := api.assembler.PortalNewsList(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "assembling portal news list")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) portalNewsDetail(ctx echo.Context) error {
	view, err := api.assembler.PortalNewsDetail(ctx.Request().Context(), ctx.Param("newsID"))
	if err != nil {
		return errors.Wrap(err, "assembling portal news detail")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) home(ctx echo.Context) error {
	view, err := api.assembler.Home(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "assembling home page")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) courseList(ctx echo.Context) error {
	var filter course.Filter
	if err := ctx.Bind(&filter); err != nil {
		filter = course.Filter{}
	}

	view, err := api.assembler.CourseList(ctx.Request().Context(), ctx.Param("id"), filter, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "assembling course list")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) courseDetail(ctx echo.Context) error {
	view, err := api.assembler.CourseDetail(ctx.Request().Context(), ctx.Param("id"), ctx.Param("key"))
	if err != nil {
		return errors.Wrap(err, "assembling course detail")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) newsList(ctx echo.Context) error {
	view, err := api.assembler.NewsList(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "assembling news list")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) newsDetail(ctx echo.Context) error {
	view, err := api.assembler.NewsDetail(ctx.Request().Context(), ctx.Param("id"), ctx.Param("newsID"))
	if err != nil {
		return errors.Wrap(err, "assembling news detail")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) guideList(ctx echo.Context) error {
	view, err := api.assembler.GuideList(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "assembling guide list")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *siteApi) submitContact(ctx echo.Context) error {
	var data support.NewTicket
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTicket")
	}
	// the form is always scoped to the microsite it was submitted on
	data.InstitutionID = ctx.Param("id")
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.supportSvc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting ticket")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *siteApi) serveUpload(ctx echo.Context) error {
	rc, contentType, err := api.files.Open(ctx.Param("name"))
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = rc.Close() }()
	return ctx.Stream(http.StatusOK, contentType, rc)
}
