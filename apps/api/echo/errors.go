package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// errorStatus maps the domain errors to their HTTP status; 0 means a server error.
func errorStatus(err error) int {
	switch errors.Cause(err) {
	case core.ErrUnauthenticated:
		return http.StatusUnauthorized
	case core.ErrForbidden:
		return http.StatusForbidden
	case core.ErrNotFound:
		return http.StatusNotFound
	case core.ErrUnreachable:
		return http.StatusBadGateway
	case submission.ErrInvalidTransition, submission.ErrActionNotAllowed, invitation.ErrTerminal, store.ErrInFlight:
		return http.StatusConflict
	case submission.ErrUnknownFilter, invitation.ErrUnknownFilter, invitation.ErrUnknownAction, content.ErrUnknownTab, content.ErrUnknownSection:
		return http.StatusBadRequest
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.APIError:
			// the portal's client errors are passed through; its failures make us a bad gateway
			code = origErr.Status
			message = origErr.Message
			if code < http.StatusBadRequest || code >= http.StatusInternalServerError {
				code = http.StatusBadGateway
				logger.Error("portal error", err)
			}
			if message == "" {
				message = http.StatusText(code)
			}
		default:
			if code = errorStatus(err); code != 0 {
				message = origErr.Error()
				if code == http.StatusBadGateway {
					logger.Error("portal unreachable", err)
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			if sess, sErr := getContextSession(ctx); sErr == nil {
				logger.Error(msg, errors.Wrap(err, msg), sess.Claims)
			} else {
				logger.Error(msg, errors.Wrap(err, msg))
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
