package router // package router defines how HTTP requests are dispatched

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/handler"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/middleware"
)

// Route maps an exact method and literal path to a handler.  Middleware runs
// in order, the first entry outermost, only for this route.
type Route struct {
	Method     string
	Path       string
	Handler    echo.HandlerFunc
	Middleware []echo.MiddlewareFunc
}

type routeKey struct {
	method string
	path   string
}

// Table is the fixed dispatch table of the server.  A request whose method
// and path match an entry exactly goes to that entry; everything else goes
// to the fallback.
type Table struct {
	routes   map[routeKey]echo.HandlerFunc
	fallback echo.HandlerFunc
}

// NewTable builds a table from routes.  It panics on duplicate entries since
// the table is assembled once at startup.
func NewTable(fallback echo.HandlerFunc, routes ...Route) *Table {
	if fallback == nil {
		panic("nil fallback passed to NewTable")
	}
	t := &Table{routes: make(map[routeKey]echo.HandlerFunc, len(routes)), fallback: fallback}
	for _, r := range routes {
		k := routeKey{method: r.Method, path: r.Path}
		if _, dup := t.routes[k]; dup {
			panic(fmt.Sprintf("duplicate route %s %s", r.Method, r.Path))
		}
		t.routes[k] = chain(r.Handler, r.Middleware...)
	}
	return t
}

// Match looks up the handler registered for method and path.
func (t *Table) Match(method, path string) (echo.HandlerFunc, bool) {
	h, ok := t.routes[routeKey{method: method, path: path}]
	return h, ok
}

// Len reports the number of registered routes.
func (t *Table) Len() int { return len(t.routes) }

// Dispatch is the single echo handler serving every request.
func (t *Table) Dispatch(c echo.Context) error {
	r := c.Request()
	if h, ok := t.Match(r.Method, r.URL.Path); ok {
		return h(c)
	}
	return t.fallback(c)
}

// Deps lists what the server's table is built from.  Deployments is nil
// when deployment history is not configured.
type Deps struct {
	API         *handler.APIHandler
	Static      *handler.StaticHandler
	Deployments *handler.DeploymentHandler

	APIMiddleware    []echo.MiddlewareFunc // e.g. rate limiting
	StaticMiddleware []echo.MiddlewareFunc // e.g. response caching
	AdminMiddleware  []echo.MiddlewareFunc // operator authentication
}

// Build assembles the server's dispatch table.
func Build(d Deps) *Table {
	routes := []Route{
		{Method: http.MethodGet, Path: "/api/health", Handler: d.API.Health, Middleware: d.APIMiddleware},
		{Method: http.MethodGet, Path: "/api/hello", Handler: d.API.Hello, Middleware: d.APIMiddleware},
		{Method: http.MethodGet, Path: "/api/random", Handler: d.API.Random, Middleware: d.APIMiddleware},
	}
	if d.Deployments != nil {
		mw := append(append([]echo.MiddlewareFunc{}, d.APIMiddleware...), d.AdminMiddleware...)
		routes = append(routes, Route{Method: http.MethodGet, Path: "/api/deployments", Handler: d.Deployments.List, Middleware: mw})
	}
	return NewTable(chain(d.Static.Serve, d.StaticMiddleware...), routes...)
}

// RegisterRoutes hands every request on e to the table.
func RegisterRoutes(e *echo.Echo, t *Table) {
	e.Any("/", t.Dispatch)
	e.Any("/*", t.Dispatch)
}

func chain(h echo.HandlerFunc, mw ...echo.MiddlewareFunc) echo.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// NewEcho returns an echo instance serving t with the server-wide middleware:
// panic recovery, the permissive CORS header and JSON error bodies.  Request
// logging is added when logRequests is true.
func NewEcho(t *Table, logRequests bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	if logRequests {
		e.Use(middleware.RequestLog())
	}
	e.Use(middleware.AllowAnyOrigin())
	e.Use(middleware.Recover())

	RegisterRoutes(e, t)
	return e
}
