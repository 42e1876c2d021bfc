package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/user"
)

type meetingApi struct {
	svc       meeting.Service
	peopleSvc people.Service
	validate  *validator.Validate
}

func registerMeetingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc meeting.Service, peopleSvc people.Service, validate *validator.Validate) {
	api := meetingApi{
		svc:       svc,
		peopleSvc: peopleSvc,
		validate:  validate,
	}
	staff := roleMiddleware(academicRoles...)

	mg := g.Group("/meetings", jwt)
	mg.GET("", api.query)
	mg.POST("", api.create, roleMiddleware(user.RoleTeacher))
	mg.GET("/:id", byID(svc.GetMeeting))
	mg.PUT("/:id", update(validate, svc.UpdateMeeting), staff)
	mg.POST("/:id/status", update(validate, svc.UpdateStatus), staff)
	mg.DELETE("/:id", destroy(svc.DeleteMeeting), staff)

	mg.GET("/:id/participants", byID(svc.Participants))
	mg.POST("/:id/participants", update(validate, svc.AddParticipant), staff)
	mg.DELETE("/:id/participants/:userId", api.removeParticipant, staff)
	mg.POST("/:id/respond", api.respond)
}

// Handlers

// query lists every meeting to admins and only the meetings they take part in to anybody else.
func (api *meetingApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var filter meeting.MeetingFilter
	page, ordering, err := listParams(ctx, &filter)
	if err != nil {
		return err
	}
	if !usr.IsAdmin() {
		filter.UserID = usr.ID
	}

	res, err := api.svc.QueryMeetings(ctx.Request().Context(), filter, page, ordering...)
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	return respond(ctx, http.StatusOK, res)
}

// create schedules a meeting organized by the authenticated teacher.
func (api *meetingApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	teacher, err := api.peopleSvc.TeacherByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		if core.IsNotFound(err) {
			return errHttpForbidden
		}
		return errors.Wrap(err, "finding teacher by user")
	}

	var data meeting.NewMeeting
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	data.CreatedBy = teacher.ID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.CreateMeeting(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating meeting")
	}
	return respond(ctx, http.StatusCreated, m)
}

func (api *meetingApi) removeParticipant(ctx echo.Context) error {
	if err := api.svc.RemoveParticipant(ctx.Request().Context(), ctx.Param("id"), ctx.Param("userId")); err != nil {
		return errors.Wrap(err, "removing participant")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// respond records the answer of the authenticated user, who must be a participant.
func (api *meetingApi) respond(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data meeting.Response
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	p, err := api.svc.Respond(ctx.Request().Context(), ctx.Param("id"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "responding to meeting")
	}
	return respond(ctx, http.StatusOK, p)
}
