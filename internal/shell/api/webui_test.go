package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestWebUIHandler(t *testing.T) {
	dist := fstest.MapFS{
		"index.html":     {Data: []byte("<html>app</html>")},
		"assets/app.js":  {Data: []byte("console.log(1)")},
		"assets/app.css": {Data: []byte("body{}")},
	}
	h := webUIHandler(dist)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantBody    string
		wantContent string
	}{
		{"root serves index", "/", http.StatusOK, "<html>app</html>", "text/html"},
		{"asset served", "/assets/app.js", http.StatusOK, "console.log(1)", "javascript"},
		{"css served", "/assets/app.css", http.StatusOK, "body{}", "text/css"},
		{"client route falls back", "/products/some-slug", http.StatusOK, "<html>app</html>", "text/html"},
		{"missing asset is 404", "/assets/missing.js", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantContent != "" {
				assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantContent)
			}
		})
	}
}

func TestWebUIHandler_NotBuilt(t *testing.T) {
	h := webUIHandler(fstest.MapFS{})

	for _, p := range []string{"/", "/index.html", "/products/some-slug"} {
		t.Run(p, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), "Catalog UI Not Built")
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIsWebUIBuilt(t *testing.T) {
	assert.False(t, IsWebUIBuilt(t.TempDir()))
}
