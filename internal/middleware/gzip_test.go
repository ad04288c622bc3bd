package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGzipReader(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`{"url":"example.com"}`))
	gz.Close()

	var received string
	handler := GzipReader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}
		received = string(body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/shorten", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if received != `{"url":"example.com"}` {
		t.Errorf("handler received %q, want decompressed JSON", received)
	}
}

func TestGzipReaderBadBody(t *testing.T) {
	handler := GzipReader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a corrupt gzip body")
	}))

	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGzipWriter(t *testing.T) {
	handler := GzipWriter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":"ok"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/shorten", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("response is not gzip encoded")
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("opening gzip reader: %v", err)
	}
	defer gz.Close()

	body, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("reading gzip body: %v", err)
	}
	if string(body) != `{"result":"ok"}` {
		t.Errorf("body = %q, want %q", body, `{"result":"ok"}`)
	}
}

func TestGzipWriterSkipsUncompressibleTypes(t *testing.T) {
	handler := GzipWriter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("binary"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("uncompressible content type was gzip encoded")
	}
	if rec.Body.String() != "binary" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "binary")
	}
}

func TestGzipWriterSkipsWithoutAcceptEncoding(t *testing.T) {
	handler := GzipWriter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("response gzip encoded without Accept-Encoding")
	}
}
