package static

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sleepstars/personachat/internal/logger"
)

// NotFoundBody is written for every path that does not resolve to a file
const NotFoundBody = "404 Not Found"

// ErrNotFound is returned by Resolve when no regular file backs the path
var ErrNotFound = errors.New("static file not found")

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType returns the Content-Type served for name
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "text/plain"
}

// Responder serves files from a directory
type Responder struct {
	root   string
	index  string
	logger *logger.Logger
}

// NewResponder creates a responder rooted at root. An empty index falls back
// to index.html.
func NewResponder(root, index string) *Responder {
	if root == "" {
		root = "."
	}
	if index == "" {
		index = "index.html"
	}
	return &Responder{
		root:   root,
		index:  index,
		logger: logger.GetLogger().WithComponent("static"),
	}
}

// Resolve maps a URL path onto a file under the root. "/" maps to the index
// file. Traversal segments are cleaned away before joining, so the result
// never leaves the root.
func (r *Responder) Resolve(urlPath string) (string, error) {
	cleaned := path.Clean("/" + urlPath)
	if cleaned == "/" {
		cleaned = "/" + r.index
	}

	full := filepath.Join(r.root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(r.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotFound
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return full, nil
}

// ServeHTTP writes the file backing req's path, or a 404
func (r *Responder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	full, err := r.Resolve(req.URL.Path)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.FromContext(req.Context()).WithComponent("static").WithError(err).
				Warn("Failed to resolve %s", req.URL.Path)
		}
		r.notFound(w)
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to read %s", full)
		r.notFound(w)
		return
	}

	w.Header().Set("Content-Type", ContentType(full))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (r *Responder) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(NotFoundBody))
}
