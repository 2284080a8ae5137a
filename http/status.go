package http

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusInternalServerError = 500
	StatusNotImplemented      = 501
)

var (
	unknownStatusCode = "Unknown Status Code"

	statusMessages = map[int]string{
		StatusOK:                  "OK",
		StatusCreated:             "Created",
		StatusNoContent:           "No Content",
		StatusBadRequest:          "Bad Request",
		StatusNotFound:            "Not Found",
		StatusMethodNotAllowed:    "Method Not Allowed",
		StatusInternalServerError: "Internal Server Error",
		StatusNotImplemented:      "Not Implemented",
	}
)

// StatusText returns the reason phrase sent on the status line.
func StatusText(code int) string {
	if message, found := statusMessages[code]; found {
		return message
	}
	return unknownStatusCode
}
