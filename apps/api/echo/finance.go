package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolsaas/core/finance"
)

func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc finance.Service, validate *validator.Validate) {
	fin := roleMiddleware(financeRoles...)

	fsg := g.Group("/fee-structures", jwt)
	fsg.GET("", list(svc.QueryFeeStructures))
	fsg.POST("", create(validate, svc.CreateFeeStructure), fin)
	fsg.GET("/:id", byID(svc.GetFeeStructure))
	fsg.PUT("/:id", update(validate, svc.UpdateFeeStructure), fin)
	fsg.DELETE("/:id", destroy(svc.DeleteFeeStructure), fin)

	fpg := g.Group("/fee-payments", jwt)
	fpg.GET("", list(svc.QueryPayments))
	fpg.GET("/balance/:studentId", balance(svc))
	fpg.POST("", create(validate, svc.RecordPayment), fin)
	fpg.GET("/:id", byID(svc.GetPayment))
	fpg.PUT("/:id", update(validate, svc.UpdatePayment), fin)
	fpg.POST("/:id/refund", byID(svc.RefundPayment), fin)
	fpg.DELETE("/:id", destroy(svc.DeletePayment), fin)
}

func balance(svc finance.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		bal, err := svc.Balance(ctx.Request().Context(), ctx.Param("studentId"))
		if err != nil {
			return err
		}
		return respond(ctx, http.StatusOK, bal)
	}
}
