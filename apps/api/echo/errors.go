package echoapi

import (
	"net/http"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/user"
)

var (
	errMissingToken       = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken       = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errTokenRevoked       = echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")

	// state errors: the request is valid but the record cannot go through it in its current state
	conflicts = []error{
		core.ErrConflict,
		core.ErrInUse,
		academic.ErrAlreadyGraded,
		academic.ErrNotSubmitted,
		finance.ErrNotRefundable,
		meeting.ErrMeetingClosed,
	}
)

// Response is the envelope of every JSON response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   interface{} `json:"error,omitempty"` // string or {field: message}
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, Response{Success: true, Data: data})
}

func respondMsg(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, Response{Success: true, Message: msg})
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translate func(validator.ValidationErrors) map[string]string, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var (
			code    int
			message interface{}
			msg     string

			herr     *echo.HTTPError
			vErrs    validator.ValidationErrors
			appErr   *core.ValidationError
			notFound *core.NotFoundError
		)
		switch {
		case errors.As(err, &herr):
			if herr.Internal != nil {
				if inner, ok := herr.Internal.(*echo.HTTPError); ok {
					herr = inner
				}
			}
			code = herr.Code
			message = herr.Message
		case isConflict(err): // before validation errors, which may carry a state error
			code = http.StatusConflict
			message = errors.Cause(err).Error()
		case errors.As(err, &vErrs):
			code = http.StatusBadRequest
			message = translate(vErrs)
			msg = "validation failed"
		case errors.As(err, &appErr):
			code = http.StatusBadRequest
			if len(appErr.Fields) > 0 {
				fldErrs := make(map[string]string, len(appErr.Fields))
				for _, fErr := range appErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
				msg = "validation failed"
				if appErr.Err != nil {
					msg = appErr.Err.Error()
				}
			} else {
				message = appErr.Error()
			}
		case errors.As(err, &notFound):
			code = http.StatusNotFound
			message = notFound.Error()
		case errors.Is(err, user.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			message = user.ErrInvalidCredentials.Error()
		case errors.Is(err, user.ErrAccountDeactivated):
			code = http.StatusForbidden
			message = user.ErrAccountDeactivated.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			text := http.StatusText(http.StatusInternalServerError)
			message = text

			if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
				logger.Error(text, errors.Wrap(err, text), usr)
			} else {
				logger.Error(text, errors.Wrap(err, text))
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				message = err.Error()
			}
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, Response{Success: false, Message: msg, Error: message})
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func isConflict(err error) bool {
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// shutdownSignaler sends SIGTERM on ch without blocking when a signal is already pending.
func shutdownSignaler(ch chan<- os.Signal) func() {
	return func() {
		select {
		case ch <- syscall.SIGTERM:
		default:
		}
	}
}
