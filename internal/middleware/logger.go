package middleware

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLog logs one line per request through the standard logger.
func RequestLog() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				log.Printf("%s %s -> %d (%s) ip=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP, v.Error)
				return nil
			}
			log.Printf("%s %s -> %d (%s) ip=%s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	})
}

// Recover turns panics in handlers into errors handled by the server's
// error handler, which renders them as a generic 500.
func Recover() echo.MiddlewareFunc {
	return echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll:   true,
		DisablePrintStack: false,
	})
}
