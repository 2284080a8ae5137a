// Package handler holds the routes served by the application.
package handler

import (
	"log/slog"
	"strings"

	"github.com/freekieb7/rawhttp/filesystem"
	"github.com/freekieb7/rawhttp/http"
)

type Handlers struct {
	fs     filesystem.Filesystem
	logger *slog.Logger
}

// Register adds the application routes to router. The file routes are only
// added when the router has a root directory.
func Register(router *http.Router, fs filesystem.Filesystem, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := Handlers{fs: fs, logger: logger}

	router.GET("/", h.Root)
	router.GET("/echo/:text", h.Echo)
	router.GET("/user-agent", h.UserAgent)

	if router.RootDir != "" {
		router.GET("/files/:file_name", h.ReadFile)
		router.POST("/files/:file_name", h.WriteFile)
	}
}

// NormalizeRootDir makes sure a non-empty directory ends with a slash so file
// names can be appended directly.
func NormalizeRootDir(dir string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

func (h Handlers) Root(req *http.Request, res *http.Response) {
	res.OK(nil)
}

func (h Handlers) Echo(req *http.Request, res *http.Response) {
	res.SetHeader("Content-Type", "text/plain")
	res.OK([]byte(req.PathValue("text")))
}

func (h Handlers) UserAgent(req *http.Request, res *http.Response) {
	res.SetHeader("Content-Type", "text/plain")
	res.OK([]byte(req.Header("User-Agent")))
}

func (h Handlers) ReadFile(req *http.Request, res *http.Response) {
	path := req.RootDir + req.PathValue("file_name")

	content, err := h.fs.ReadFile(path)
	if err != nil {
		h.logger.InfoContext(req.Context(), "reading file failed", "path", path, "error", err)
		res.NotFound()
		return
	}

	res.SetHeader("Content-Type", "application/octet-stream")
	res.OK(content)
}

func (h Handlers) WriteFile(req *http.Request, res *http.Response) {
	path := req.RootDir + req.PathValue("file_name")

	if err := h.fs.WriteFile(path, req.Body); err != nil {
		h.logger.ErrorContext(req.Context(), "writing file failed", "path", path, "error", err)
		res.InternalServerError(nil)
		return
	}

	res.Created(nil)
}
