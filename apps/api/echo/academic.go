package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core/academic"
)

type academicApi struct {
	svc      academic.Service
	validate *validator.Validate
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc academic.Service, validate *validator.Validate) {
	api := academicApi{svc: svc, validate: validate}
	staff := roleMiddleware(academicRoles...)

	ag := g.Group("/attendance", jwt)
	ag.GET("", list(svc.QueryAttendance))
	ag.GET("/summary/:studentId", api.attendanceSummary)
	ag.POST("", create(validate, svc.MarkAttendance), staff)
	ag.GET("/:id", byID(svc.GetAttendance))
	ag.PUT("/:id", update(validate, svc.UpdateAttendance), staff)
	ag.DELETE("/:id", destroy(svc.DeleteAttendance), staff)

	eg := g.Group("/exams", jwt)
	eg.GET("", list(svc.QueryExams))
	eg.POST("", create(validate, svc.CreateExam), staff)
	eg.GET("/:id", byID(svc.GetExam))
	eg.PUT("/:id", update(validate, svc.UpdateExam), staff)
	eg.POST("/:id/publish", byID(svc.PublishExam), staff)
	eg.DELETE("/:id", destroy(svc.DeleteExam), staff)

	rg := g.Group("/results", jwt)
	rg.GET("", list(svc.QueryResults))
	rg.POST("", create(validate, svc.RecordResult), staff)
	rg.GET("/:id", byID(svc.GetResult))
	rg.PUT("/:id", update(validate, svc.UpdateResult), staff)
	rg.DELETE("/:id", destroy(svc.DeleteResult), staff)

	asg := g.Group("/assignments", jwt)
	asg.GET("", list(svc.QueryAssignments))
	asg.POST("", create(validate, svc.CreateAssignment), staff)
	asg.GET("/:id", byID(svc.GetAssignment))
	asg.PUT("/:id", update(validate, svc.UpdateAssignment), staff)
	asg.POST("/:id/submit", byID(svc.SubmitAssignment))
	asg.POST("/:id/grade", update(validate, svc.GradeAssignment), staff)
	asg.DELETE("/:id", destroy(svc.DeleteAssignment), staff)
}

// Handlers

// SummaryPeriod bounds an attendance summary. Both ends are optional.
type SummaryPeriod struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

func (api *academicApi) attendanceSummary(ctx echo.Context) error {
	var period SummaryPeriod
	if err := ctx.Bind(&period); err != nil {
		return err
	}

	summary, err := api.svc.AttendanceSummary(ctx.Request().Context(), ctx.Param("studentId"), period.From, period.To)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return respond(ctx, http.StatusOK, summary)
}
