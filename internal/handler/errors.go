package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
)

// ErrorHandler replaces echo's default error handler so every failure is
// rendered as {"error": "..."}.  Errors that are not *echo.HTTPError become
// a generic 500, and 405 is reported as 404.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch {
		case code == http.StatusNotFound || code == http.StatusMethodNotAllowed:
			// echo answers methods it does not route with 405; any
			// method that matches no route is a plain miss.
			code = http.StatusNotFound
			msg = "Not found"
			c.Response().Header().Del(echo.HeaderAllow)
		case code >= http.StatusInternalServerError:
			// keep the generic message
		default:
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		}
	}
	if code >= http.StatusInternalServerError {
		log.Printf("http: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, model.ErrorBody{Error: msg})
	}
	if werr != nil {
		log.Printf("http: write error response: %v", werr)
	}
}
