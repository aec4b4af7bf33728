package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler.
// Errors escaping an admin handler never change the HTTP status: the reply is
// 200 with the error envelope and the cause is logged server side, as the
// legacy console expects. Everything else gets the usual status mapping.
// signalShutdown is called whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		if strings.HasPrefix(ctx.Request().URL.Path, "/api/admin") {
			msg := fmt.Sprintf("%s %s", ctx.Request().Method, ctx.Request().URL.Path)
			if httpErr, ok := errors.Cause(err).(*echo.HTTPError); !ok || httpErr.Code >= http.StatusInternalServerError {
				logger.Error(msg, errors.Wrap(err, msg))
			}
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if jErr := ctx.JSON(http.StatusOK, errorResult); jErr != nil {
				ctx.Echo().Logger.Error(jErr)
			}
			return
		}

		var code int
		var message interface{}
		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			code = origErr.Code
			message = origErr.Message
		default:
			code = http.StatusInternalServerError
			msg := http.StatusText(code)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}
		if jErr := ctx.JSON(code, message); jErr != nil {
			ctx.Echo().Logger.Error(jErr)
		}
	}
}
