package http

import (
	"errors"
	"log/slog"
	"strings"
)

var ErrRouteNotFound = errors.New("http: route not found")

// Router maps "METHOD /path/:param" templates to handlers. Routes are meant
// to be registered before serving starts; after that the router is only read
// and can be shared by all connections without locking.
type Router struct {
	RootDir string
	Logger  *slog.Logger

	routes     []Route
	index      map[string]int
	middleware []Middleware
}

func NewRouter(rootDir string) *Router {
	return &Router{
		RootDir: rootDir,
		Logger:  slog.Default(),
		routes:  make([]Route, 0),
		index:   make(map[string]int),
	}
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) {
	router.AddRoute(MethodGet, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) {
	router.AddRoute(MethodPost, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) {
	router.AddRoute(MethodPut, path, handler, middleware...)
}

func (router *Router) PATCH(path string, handler Handler, middleware ...Middleware) {
	router.AddRoute(MethodPatch, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) {
	router.AddRoute(MethodDelete, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) {
	router.AddRoute(MethodOptions, path, handler, middleware...)
}

// AddRoute registers handler for method and path template. Registering the
// same pair again replaces the handler but keeps the original position.
func (router *Router) AddRoute(method, path string, handler Handler, middleware ...Middleware) {
	for _, mw := range middleware {
		handler = mw(handler)
	}

	route := newRoute(method, path, handler)
	key := routeKey(method, path)

	if i, found := router.index[key]; found {
		router.routes[i] = route
	} else {
		router.index[key] = len(router.routes)
		router.routes = append(router.routes, route)
	}

	if router.Logger != nil {
		router.Logger.Debug("added route", "route", key)
	}
}

// Use appends middleware wrapping every resolved handler, the not found
// handler included.
func (router *Router) Use(middleware ...Middleware) {
	router.middleware = append(router.middleware, middleware...)
}

// Routes returns the registered routes in registration order.
func (router *Router) Routes() []Route {
	routes := make([]Route, len(router.routes))
	copy(routes, router.routes)
	return routes
}

// Resolve finds the first registered route matching method and path and
// returns it with the bound path variables.
func (router *Router) Resolve(method, path string) (Route, map[string]string, error) {
	segments := strings.Split(routeKey(method, path), "/")

	for i := range router.routes {
		if vars, ok := router.routes[i].match(segments); ok {
			return router.routes[i], vars, nil
		}
	}

	return Route{}, nil, ErrRouteNotFound
}

// Serve resolves req, fills its path variables, route and root directory and
// runs the matched handler, or NotFoundHandler on a miss.
func (router *Router) Serve(req *Request, res *Response) {
	handler := NotFoundHandler

	route, vars, err := router.Resolve(req.Method, req.Path)
	if err == nil {
		handler = route.Handler
		req.PathVars = vars
		req.Route = route.Path
	}
	req.RootDir = router.RootDir

	for i := len(router.middleware) - 1; i >= 0; i-- {
		handler = router.middleware[i](handler)
	}

	handler(req, res)
}
