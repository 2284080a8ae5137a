package http

const (
	DefaultReadChunkSize = 512

	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

// Methods is the fixed set of verbs recognised on the request line.
var Methods = []string{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions}

var (
	crlf           = []byte("\r\n")
	headSeparator  = []byte("\r\n\r\n")
	protocolHttp11 = "HTTP/1.1"
)

// Handler builds the response for a request and finishes it with a Flush or
// one of the status helpers.
type Handler func(req *Request, res *Response)

func validMethod(token string) bool {
	for _, method := range Methods {
		if token == method {
			return true
		}
	}
	return false
}
