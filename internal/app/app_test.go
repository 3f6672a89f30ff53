package app

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const manifestJSON = `[
  {
    "maskedLink": "https://filesharepro.us.kg/abc",
    "originalLink": "https://host/x",
    "fileDetails": {"id": "1", "name": "f.zip", "size": 2048, "mimetype": "application/zip", "md5": "x", "servers": ["s1"]}
  },
  {
    "maskedLink": "https://filesharepro.us.kg/nothumb/",
    "originalLink": "https://host/y",
    "fileDetails": {"id": "2", "name": "g.txt", "size": 10, "mimetype": "text/plain"}
  },
  {
    "maskedLink": "https://filesharepro.us.kg/a+b",
    "originalLink": "https://host/z",
    "fileDetails": {"id": "3", "name": "notes (1).txt", "size": 128, "mimetype": "text/plain"}
  }
]`

func newTestApp(t *testing.T, manifestPath string) *httptest.Server {
	t.Helper()

	thumbs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/file/1/thumbnail" {
			w.Write([]byte("png"))
			return
		}

		http.NotFound(w, r)
	}))
	t.Cleanup(thumbs.Close)

	dir := t.TempDir()
	pagesDir := filepath.Join(dir, "pages")
	require.NoError(t, os.MkdirAll(pagesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "home.md"), []byte("---\ntitle: Home\n---\n# Shared files\n[[abc|Archive]]"), 0644))

	cfgPath := filepath.Join(dir, "config.yml")
	cfg := fmt.Sprintf(`log_level: error
manifest:
  url: %q
thumbnail:
  url_template: %q
  wait: 2s
cache:
  backend: memory
  ttl: 1m
pages:
  dir: %q
`, manifestPath, thumbs.URL+"/api/file/%s/thumbnail?width=%d&height=%d", pagesDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	a := New(cfgPath)
	require.NoError(t, a.build())

	srv := httptest.NewServer(a.handler)
	t.Cleanup(srv.Close)

	return srv
}

func get(t *testing.T, url string) (int, string, http.Header) {
	t.Helper()

	cl := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := cl.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body), resp.Header
}

func writeManifest(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte(manifestJSON), 0644))

	return path
}

func TestDetailPage(t *testing.T) {
	srv := newTestApp(t, writeManifest(t))

	for _, path := range []string{"/d/abc", "/d/abc/"} {
		status, body, _ := get(t, srv.URL+path)
		require.Equal(t, http.StatusOK, status, path)
		require.Contains(t, body, "f.zip")
		require.Contains(t, body, "2.00 KB")
		require.Contains(t, body, `<img class="thumbnail"`)
	}

	status, body, _ := get(t, srv.URL+"/d/nothumb")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "g.txt")
	require.NotContains(t, body, "<img")

	status, body, _ = get(t, srv.URL+"/d/a+b")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "notes (1).txt")
	require.Contains(t, body, "0.13 KB")

	status, body, _ = get(t, srv.URL+"/d/zzz")
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, body, "File Not Found")

	status, body, _ = get(t, srv.URL+"/d/a/b")
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, body, "File Not Found")
}

func TestDownloadRedirect(t *testing.T) {
	srv := newTestApp(t, writeManifest(t))

	status, _, header := get(t, srv.URL+"/download/abc")
	require.Equal(t, http.StatusFound, status)
	require.Equal(t, "https://host/x?id=abc", header.Get("Location"))

	status, _, header = get(t, srv.URL+"/download/a+b")
	require.Equal(t, http.StatusFound, status)
	require.Equal(t, "https://host/z?id=a%2Bb", header.Get("Location"))

	status, _, _ = get(t, srv.URL+"/download/zzz")
	require.Equal(t, http.StatusNotFound, status)
}

func TestManifestUnavailable(t *testing.T) {
	srv := newTestApp(t, filepath.Join(t.TempDir(), "missing.json"))

	for _, link := range []string{"abc", "zzz"} {
		status, body, _ := get(t, srv.URL+"/d/"+link)
		require.Equal(t, http.StatusBadGateway, status)
		require.Contains(t, body, "File Not Found")
	}

	status, body, _ := get(t, srv.URL+"/api/d/abc")
	require.Equal(t, http.StatusBadGateway, status)
	require.True(t, strings.Contains(body, `"state":"fetch_failed"`), body)
}

func TestPages(t *testing.T) {
	srv := newTestApp(t, writeManifest(t))

	status, body, _ := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "<title>Home</title>")
	require.Contains(t, body, `<a href="/d/abc">Archive</a>`)

	status, body, _ = get(t, srv.URL+"/blog/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "No posts yet.")

	status, _, _ = get(t, srv.URL+"/health")
	require.Equal(t, http.StatusOK, status)
}
