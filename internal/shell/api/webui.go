package api

import (
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
)

const webUINotBuilt = `<!DOCTYPE html>
<html>
<head><title>Catalog UI Not Built</title></head>
<body style="font-family: system-ui; padding: 2rem; max-width: 600px; margin: 0 auto;">
<h1>Catalog UI Not Built</h1>
<p>No index.html was found in the configured web directory. Build the
frontend and point <code>web.static_dir</code> at its output.</p>
</body>
</html>`

// WebUIHandler serves the storefront/admin SPA from dir. Existing files are
// served as-is; extensionless paths fall back to index.html for client-side
// routing; missing assets are 404.
func WebUIHandler(dir string) http.Handler {
	return webUIHandler(os.DirFS(dir))
}

func webUIHandler(distFS fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if urlPath == "" || urlPath == "." {
			urlPath = "index.html"
		}

		if content, err := fs.ReadFile(distFS, urlPath); err == nil {
			w.Header().Set("Content-Type", contentTypeFor(urlPath))
			w.Write(content)
			return
		}

		// Asset requests (with an extension) are not routed by the SPA.
		if urlPath != "index.html" && strings.Contains(path.Base(urlPath), ".") {
			http.NotFound(w, r)
			return
		}

		content, err := fs.ReadFile(distFS, "index.html")
		if err != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(webUINotBuilt))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// IsWebUIBuilt reports whether dir contains an index.html.
func IsWebUIBuilt(dir string) bool {
	info, err := os.Stat(path.Join(dir, "index.html"))
	return err == nil && !info.IsDir()
}
