package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolsaas/core/user"
)

// roles allowed to write each area
var (
	adminRoles    = user.AdminRoles
	academicRoles = []string{user.RoleTeacher, user.RolePrincipal, user.RoleAdmin}
	financeRoles  = []string{user.RoleFinance, user.RolePrincipal, user.RoleAdmin}
	staffRoles    = user.StaffRoles
)

// roleMiddleware lets through the authenticated users having one of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if user.HasRole(usr.Role, roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
