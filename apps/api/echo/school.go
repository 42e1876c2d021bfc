package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolsaas/core/school"
)

// school structure: readable by any authenticated user, writable by admins
func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.Service, validate *validator.Validate) {
	admin := roleMiddleware(adminRoles...)

	sg := g.Group("/schools", jwt)
	sg.GET("", list(svc.QuerySchools))
	sg.POST("", create(validate, svc.CreateSchool), admin)
	sg.GET("/:id", byID(svc.GetSchool))
	sg.PUT("/:id", update(validate, svc.UpdateSchool), admin)
	sg.DELETE("/:id", destroy(svc.DeleteSchool), admin)

	cg := g.Group("/classes", jwt)
	cg.GET("", list(svc.QueryClasses))
	cg.POST("", create(validate, svc.CreateClass), admin)
	cg.GET("/:id", byID(svc.GetClass))
	cg.PUT("/:id", update(validate, svc.UpdateClass), admin)
	cg.DELETE("/:id", destroy(svc.DeleteClass), admin)

	subg := g.Group("/subjects", jwt)
	subg.GET("", list(svc.QuerySubjects))
	subg.POST("", create(validate, svc.CreateSubject), admin)
	subg.GET("/:id", byID(svc.GetSubject))
	subg.PUT("/:id", update(validate, svc.UpdateSubject), admin)
	subg.DELETE("/:id", destroy(svc.DeleteSubject), admin)

	csg := g.Group("/class-subjects", jwt)
	csg.GET("", list(svc.QueryClassSubjects))
	csg.POST("", create(validate, svc.AssignSubject), admin)
	csg.GET("/:id", byID(svc.GetClassSubject))
	csg.PUT("/:id", update(validate, svc.UpdateClassSubject), admin)
	csg.DELETE("/:id", destroy(svc.DeleteClassSubject), admin)

	tg := g.Group("/timetables", jwt)
	tg.GET("", list(svc.QueryTimetables))
	tg.POST("", create(validate, svc.CreateTimetable), admin)
	tg.GET("/:id", byID(svc.GetTimetable))
	tg.PUT("/:id", update(validate, svc.UpdateTimetable), admin)
	tg.DELETE("/:id", destroy(svc.DeleteTimetable), admin)
}
