package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

const errNoPermsToSetRole = "not enough rights to set this role"

type authApi struct {
	tokens   *Tokens
	svc      user.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerAuthAPI(
	g *echo.Group,
	jwt, optionalJWT echo.MiddlewareFunc,
	tokens *Tokens,
	svc user.Service,
	validate *validator.Validate,
	logger core.Logger,
) {
	api := authApi{
		tokens:   tokens,
		svc:      svc,
		validate: validate,
		logger:   logger,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/login` & `/forgot-password`
	ag.POST("/login", api.login)
	ag.POST("/refresh", api.refresh)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/reset-password", api.resetPassword)
	ag.POST("/register", api.register, optionalJWT)

	// authed endpoints
	ag.POST("/logout", api.logout, jwt)
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return api.respondAuth(ctx, http.StatusOK, usr)
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	// anonymous callers (and non-admins) may only self-register public roles;
	// admins cannot set a role above their own.
	ctxUsr, err := getContextUser(ctx)
	allowed := user.HasRole(data.Role, user.PublicRoles...)
	if err == nil && ctxUsr.IsAdmin() {
		allowed = user.RolePriority(data.Role) <= user.RolePriority(ctxUsr.Role)
	}
	if !allowed {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: errNoPermsToSetRole})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return api.respondAuth(ctx, http.StatusCreated, usr)
}

func (api *authApi) logout(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Logout(ctx.Request().Context(), usr); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return respondMsg(ctx, http.StatusOK, "Logged out successfully.")
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, usr)
}

func (api *authApi) refresh(ctx echo.Context) error {
	var data RefreshRequest
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	claims, err := api.tokens.Parse(data.RefreshToken, refreshToken)
	if err != nil {
		return err
	}
	usr, err := tokenUser(ctx, claims, api.svc)
	if err != nil {
		return err
	}
	return api.respondAuth(ctx, http.StatusOK, usr)
}

func (api *authApi) forgotPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil && !core.IsNotFound(err) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset: "+err.Error(), err)
	}
	return respondMsg(ctx, http.StatusOK,
		"If the email address supplied is associated with an active account on this system, "+
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	)
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return respondMsg(ctx, http.StatusOK, "Password has been reset with the new password.")
}

func (api *authApi) respondAuth(ctx echo.Context, code int, usr user.User) error {
	pair, err := api.tokens.Issue(usr)
	if err != nil {
		return err
	}
	return respond(ctx, code, AuthResponse{User: usr, TokenPair: pair})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	AuthResponse struct {
		User user.User `json:"user"`
		TokenPair
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (rr *RefreshRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
