package mfadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jgivc/maskedlink/internal/common"
	"github.com/jgivc/maskedlink/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const manifestJSON = `[
  {
    "maskedLink": "https://filesharepro.us.kg/abc",
    "originalLink": "https://host/x",
    "fileDetails": {
      "id": "1",
      "name": "f.zip",
      "size": 2048,
      "mimetype": "application/zip",
      "md5": "d41d8cd98f00b204e9800998ecf8427e",
      "createTime": 1718000000000,
      "modTime": 1718000000001,
      "servers": ["store1", "store2"],
      "parentFolder": "root",
      "type": "file"
    }
  },
  {
    "maskedLink": "https://filesharepro.us.kg/def/",
    "originalLink": "https://host/y",
    "fileDetails": {"id": "2", "name": "g.txt", "size": 10, "mimetype": "text/plain"}
  }
]`

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestDecode(t *testing.T) {
	entries, err := Decode([]byte(manifestJSON))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := entries[0]
	require.Equal(t, "https://filesharepro.us.kg/abc", e.MaskedLink)
	require.Equal(t, "https://host/x", e.OriginalLink)
	require.Equal(t, "1", e.FileDetails.ID)
	require.Equal(t, "f.zip", e.FileDetails.Name)
	require.Equal(t, int64(2048), e.FileDetails.Size)
	require.Equal(t, "application/zip", e.FileDetails.MIMEType)
	require.Equal(t, []string{"store1", "store2"}, e.FileDetails.Servers)
	require.Equal(t, int64(1718000000001), e.FileDetails.ModTime)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"maskedLink": "x"}`))
	require.Error(t, err)

	_, err = Decode([]byte(`[{"maskedLink": `))
	require.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(manifestJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL+"/file.json", discardLog())
	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, manifestJSON, string(data))

	missing := NewHTTPSource(srv.Client(), srv.URL+"/missing.json", discardLog())
	_, err = missing.Fetch(context.Background())
	require.Error(t, err)
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src := NewHTTPSource(&http.Client{Timeout: time.Second}, url, discardLog())
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestHTTPSourceCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewHTTPSource(srv.Client(), srv.URL, discardLog())
	_, err := src.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewSourceWithFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/file.json", []byte(manifestJSON), 0644))

	testCases := []struct {
		name        string
		url         string
		expectError bool
		location    string
	}{
		{
			name:     "https url",
			url:      "https://raw.githubusercontent.com/codecrumbs404/databse/main/file.json",
			location: "https://raw.githubusercontent.com/codecrumbs404/databse/main/file.json",
		},
		{
			name:     "file url",
			url:      "file:///srv/file.json",
			location: "file:///srv/file.json",
		},
		{
			name:     "bare path",
			url:      "/srv/file.json",
			location: "file:///srv/file.json",
		},
		{
			name:        "unsupported scheme",
			url:         "ftp://example.com/file.json",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := NewSourceWithFS(fs, http.DefaultClient, &config.ManifestConfig{URL: tc.url}, discardLog())
			if tc.expectError {
				require.ErrorIs(t, err, common.ErrInvalidSource)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.location, src.Location())
		})
	}
}

func TestFSSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/file.json", []byte(manifestJSON), 0644))

	data, err := NewFSSource(fs, "/srv/file.json", discardLog()).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, manifestJSON, string(data))

	_, err = NewFSSource(fs, "/srv/other.json", discardLog()).Fetch(context.Background())
	require.Error(t, err)

	_, err = NewFSSource(fs, "/srv/../etc/passwd", discardLog()).Fetch(context.Background())
	require.Error(t, err)
}
