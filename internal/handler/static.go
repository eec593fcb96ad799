package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
)

// StaticHandler serves the built front end from Root.  It never lists
// directories; a directory resolves to its index.html.
type StaticHandler struct {
	Root string
}

func NewStaticHandler(root string) *StaticHandler {
	return &StaticHandler{Root: root}
}

// Serve answers GET and HEAD requests with the matching file under Root, or
// the JSON not-found body when no such file exists.
func (s *StaticHandler) Serve(c echo.Context) error {
	r := c.Request()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return NotFound(c)
	}
	name, ok := s.resolve(r.URL.Path)
	if !ok {
		return NotFound(c)
	}
	return c.File(name)
}

// resolve maps a URL path to a regular file inside Root.  Cleaning the path
// against "/" first keeps ".." segments from escaping the root.
func (s *StaticHandler) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	full := filepath.Join(s.Root, filepath.FromSlash(clean))
	fi, err := os.Stat(full)
	if err != nil {
		return "", false
	}
	if fi.IsDir() {
		full = filepath.Join(full, "index.html")
		fi, err = os.Stat(full)
		if err != nil || fi.IsDir() {
			return "", false
		}
	}
	return full, true
}

// NotFound writes the structured 404 body.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, model.ErrorBody{Error: "Not found"})
}
