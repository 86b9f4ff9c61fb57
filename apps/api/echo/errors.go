package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
)

var errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps
// domain errors onto status codes.
// signalShutdown is called in order to gracefully shutdown the Server whenever
// a core.shutdown error is caught.
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
		default:
			code, message = statusForError(origErr)
			if code == http.StatusInternalServerError {
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
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

// statusForError maps domain sentinels onto status codes. Unknown errors are
// server errors.
func statusForError(err error) (int, string) {
	switch err {
	case core.ErrUnauthenticated, auth.ErrInvalidToken:
		return http.StatusUnauthorized, err.Error()
	case core.ErrForbidden, progress.ErrStandardMismatch:
		return http.StatusForbidden, err.Error()
	case core.ErrNotFound, student.ErrNotFound, account.ErrNotFound,
		course.ErrNotFound, course.ErrQuizNotFound, progress.ErrNotFound,
		badge.ErrNotFound:
		return http.StatusNotFound, err.Error()
	case core.ErrConflict, student.ErrMobileExists,
		account.ErrInstitutionIDExists, account.ErrEmailExists:
		return http.StatusConflict, err.Error()
	case core.ErrPreconditionFailed, progress.ErrVideoNotCompleted:
		return http.StatusPreconditionFailed, err.Error()
	case progress.ErrInvalidWatch:
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, ""
}
