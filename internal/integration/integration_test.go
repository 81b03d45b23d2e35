package integration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		require.Empty(t, r.URL.RawQuery)
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "hello", req.Contents[0].Parts[0].Text)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi there"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient("k", "gemini-test")
	g.baseURL = srv.URL + "/"
	out, err := g.Complete(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hi there", out)
}

func TestGeminiErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "empty") {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiClient("k", "limited")
	g.baseURL = srv.URL + "/"
	_, err := g.Complete(context.Background(), "x")
	require.Error(t, err)

	g.model = "empty"
	_, err = g.Complete(context.Background(), "x")
	require.Error(t, err)
}

func TestGeminiTransportErrorOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/"
	srv.Close()

	g := NewGeminiClient("SECRET-KEY-123", "")
	g.baseURL = base
	_, err := g.Complete(context.Background(), "hi")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	s := &DiskStore{Dir: dir, BaseURL: "http://localhost:8080/uploads/"}
	url, err := s.Store(context.Background(), "Room.JPG", strings.NewReader("img"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	require.True(t, strings.HasSuffix(url, ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	require.Equal(t, "img", string(data))
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestDiskStoreRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	s := &DiskStore{Dir: dir, BaseURL: "http://localhost:8080/uploads"}
	_, err := s.Store(context.Background(), "room.png", io.MultiReader(strings.NewReader("half"), brokenReader{}))
	require.ErrorContains(t, err, "connection reset")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestMinorUnits(t *testing.T) {
	require.Equal(t, int64(19999), minorUnits(decimal.RequireFromString("199.99")))
	require.Equal(t, int64(5000), minorUnits(decimal.NewFromInt(50)))
	require.Equal(t, int64(101), minorUnits(decimal.RequireFromString("1.005")))
}
