package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonEcho(payload string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	})
}

func TestCompression_GzipsJSONWhenAccepted(t *testing.T) {
	t.Parallel()
	payload := strings.Repeat(`{"k":"v"}`, 64)
	handler := Compression(CompressionConfig{Level: gzip.DefaultCompression})(jsonEcho(payload))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")

	gr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))
}

func TestCompression_SkippedWithoutAcceptEncoding(t *testing.T) {
	t.Parallel()
	payload := strings.Repeat(`{"k":"v"}`, 64)
	handler := Compression(CompressionConfig{Level: gzip.DefaultCompression})(jsonEcho(payload))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, rec.Body.String())
}

func TestCompression_SkipsSmallResponsesUnderMinSize(t *testing.T) {
	t.Parallel()
	handler := Compression(CompressionConfig{Level: gzip.DefaultCompression, MinSize: 1024})(jsonEcho(`{"ok":true}`))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
}

func TestCompression_SkipsNonCompressibleContentType(t *testing.T) {
	t.Parallel()
	handler := Compression(CompressionConfig{Level: gzip.DefaultCompression})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("binary"))
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestCompression_SkipsHeadRequests(t *testing.T) {
	t.Parallel()
	handler := Compression(CompressionConfig{Level: gzip.DefaultCompression})(jsonEcho(`{"ok":true}`))

	req := httptest.NewRequest(http.MethodHead, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestAcceptsGzip_QValues(t *testing.T) {
	t.Parallel()

	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("br, gzip;q=0.8"))
	assert.False(t, acceptsGzip("gzip;q=0"))
	assert.False(t, acceptsGzip(""))
	assert.False(t, acceptsGzip("br"))
}
