package http

import "strings"

type Route struct {
	Method  string
	Path    string
	Handler Handler

	// segments is "METHOD path" split on '/'; the first entry carries the
	// method so a method mismatch fails like any literal segment.
	segments []string
}

func routeKey(method, path string) string {
	return method + " " + path
}

func newRoute(method, path string, handler Handler) Route {
	return Route{
		Method:   method,
		Path:     path,
		Handler:  handler,
		segments: strings.Split(routeKey(method, path), "/"),
	}
}

// match binds the placeholders of the route against the split request key.
// Nothing is returned unless every segment matched.
func (route *Route) match(segments []string) (map[string]string, bool) {
	if len(route.segments) != len(segments) {
		return nil, false
	}

	vars := make(map[string]string)
	for i, segment := range route.segments {
		if strings.HasPrefix(segment, ":") {
			vars[segment] = segments[i]
			continue
		}

		if segment != segments[i] {
			return nil, false
		}
	}

	return vars, true
}

var NotFoundHandler Handler = func(req *Request, res *Response) {
	res.NotFound()
}
