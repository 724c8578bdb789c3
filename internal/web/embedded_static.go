package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed static/*
var EmbeddedStaticFS embed.FS

// entryFile is what "/" and every unknown path resolve to
const entryFile = "index.html"

// openStaticFS returns the embedded assets, or dir when one is configured
func openStaticFS(dir string) (fs.FS, error) {
	if dir != "" {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return nil, fmt.Errorf("web: static_dir %q is not a directory", dir)
		}
		return os.DirFS(dir), nil
	}
	sub, err := fs.Sub(EmbeddedStaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("web: embedded static filesystem: %w", err)
	}
	return sub, nil
}

// ListEmbeddedFiles returns a list of all embedded static files for debugging
func ListEmbeddedFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(EmbeddedStaticFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// staticHandler serves the single page shell. Missing files fall back to the
// entry file so client side paths survive a reload.
func (s *WebServer) staticHandler(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "404 Not Found")
		return
	}

	name := staticPath(c.Request.URL.Path)
	content, err := fs.ReadFile(s.staticFS, name)
	if err != nil {
		name = entryFile
		content, err = fs.ReadFile(s.staticFS, name)
		if err != nil {
			c.String(http.StatusNotFound, "404 Not Found")
			return
		}
	}

	if name == entryFile {
		c.Header("Cache-Control", "no-cache")
	} else {
		c.Header("Cache-Control", "public, max-age=3600") // browser caches an hour
	}
	c.Data(http.StatusOK, getContentType(name), content)
}

// staticPath maps a URL path onto an fs.FS name. Cleaning a rooted path
// cannot climb above the root.
func staticPath(urlPath string) string {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" || strings.HasSuffix(urlPath, "/") {
		if name == "" {
			return entryFile
		}
		return name + "/" + entryFile
	}
	return name
}

// getContentType returns the MIME type for the extensions the shell ships.
// Anything else is served as html.
func getContentType(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	default:
		return "text/html"
	}
}
