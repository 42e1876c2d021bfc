package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/notice"
)

type noticeApi struct {
	svc      notice.Service
	validate *validator.Validate
}

func registerNoticeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc notice.Service, validate *validator.Validate) {
	api := noticeApi{svc: svc, validate: validate}
	admin := roleMiddleware(adminRoles...)

	// notifications are private to their user
	ng := g.Group("/notifications", jwt)
	ng.GET("", api.queryNotifications)
	ng.POST("", create(validate, svc.Notify), roleMiddleware(staffRoles...))
	ng.POST("/read-all", api.markAllRead)
	ng.POST("/:id/read", api.markRead)
	ng.DELETE("/:id", api.destroyNotification)

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.queryAnnouncements)
	ag.POST("", create(validate, svc.CreateAnnouncement), admin)
	ag.GET("/:id", byID(svc.GetAnnouncement))
	ag.PUT("/:id", update(validate, svc.UpdateAnnouncement), admin)
	ag.DELETE("/:id", destroy(svc.DeleteAnnouncement), admin)
}

// Handlers

func (api *noticeApi) queryNotifications(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var filter notice.NotificationFilter
	page, ordering, err := listParams(ctx, &filter)
	if err != nil {
		return err
	}

	res, err := api.svc.UserNotifications(ctx.Request().Context(), usr.ID, filter, page, ordering...)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return respond(ctx, http.StatusOK, res)
}

func (api *noticeApi) markRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	n, err := api.svc.MarkRead(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return respond(ctx, http.StatusOK, n)
}

func (api *noticeApi) markAllRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	count, err := api.svc.MarkAllRead(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking notifications as read")
	}
	return respond(ctx, http.StatusOK, map[string]int{"count": count})
}

func (api *noticeApi) destroyNotification(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteNotification(ctx.Request().Context(), usr.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// queryAnnouncements lists every announcement to admins, and only the ones currently visible to their role
// to anybody else.
func (api *noticeApi) queryAnnouncements(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var (
		filter notice.AnnouncementFilter
		res    core.Paginated
	)
	page, ordering, err := listParams(ctx, &filter)
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		res, err = api.svc.QueryAnnouncements(ctx.Request().Context(), filter, page, ordering...)
	} else {
		res, err = api.svc.ActiveAnnouncements(ctx.Request().Context(), usr.Role, page)
	}
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return respond(ctx, http.StatusOK, res)
}
