package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolsaas/core/people"
)

func registerPeopleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc people.Service, validate *validator.Validate) {
	admin := roleMiddleware(adminRoles...)

	tg := g.Group("/teachers", jwt)
	tg.GET("", list(svc.QueryTeachers))
	tg.POST("", create(validate, svc.CreateTeacher), admin)
	tg.GET("/:id", byID(svc.GetTeacher))
	tg.PUT("/:id", update(validate, svc.UpdateTeacher), admin)
	tg.DELETE("/:id", destroy(svc.DeleteTeacher), admin)

	pg := g.Group("/parents", jwt)
	pg.GET("", list(svc.QueryParents))
	pg.POST("", create(validate, svc.CreateParent), admin)
	pg.GET("/:id", byID(svc.GetParent))
	pg.PUT("/:id", update(validate, svc.UpdateParent), admin)
	pg.DELETE("/:id", destroy(svc.DeleteParent), admin)

	sg := g.Group("/students", jwt)
	sg.GET("", list(svc.QueryStudents))
	sg.POST("", create(validate, svc.CreateStudent), admin)
	sg.GET("/:id", byID(svc.GetStudent))
	sg.PUT("/:id", update(validate, svc.UpdateStudent), admin)
	sg.DELETE("/:id", destroy(svc.DeleteStudent), admin)
}
