package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

func TestDownloader_Download(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 64*1024)

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var (
		buf   bytes.Buffer
		calls int
		last  int64
		total int64
	)
	d := NewDownloader(Config{})
	n, err := d.Download(context.Background(), srv.URL+"/chromedriver-win64.zip", &buf,
		func(written, tot int64) {
			calls++
			last = written
			total = tot
		})

	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Greater(t, calls, 1)
	assert.Equal(t, int64(len(payload)), last)
	assert.Equal(t, int64(len(payload)), total)
}

func TestDownloader_Download_NilProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("zip"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := NewDownloader(Config{UserAgent: "test"}).Download(context.Background(), srv.URL, &buf, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "zip", buf.String())
}

func TestDownloader_Download_Non200(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			var buf bytes.Buffer
			_, err := NewDownloader(Config{}).Download(context.Background(), srv.URL, &buf, nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDownloadFailed)
			assert.Contains(t, err.Error(), strconv.Itoa(tt.status))
			assert.Zero(t, buf.Len())
		})
	}
}

func TestDownloader_Download_ShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("only ten!!"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := NewDownloader(Config{}).Download(context.Background(), srv.URL, &buf, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
}

func TestDownloader_Download_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := NewDownloader(Config{}).Download(ctx, srv.URL, &buf, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownloader_Download_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	_, err := NewDownloader(Config{}).Download(context.Background(), url, &buf, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
}
