package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// compressibleTypes lists the content types worth compressing.
var compressibleTypes = []string{"application/json", "text/plain", "text/html"}

// GzipReader transparently decompresses gzipped request bodies.
func GzipReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		gzReader, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Failed to read gzipped request", http.StatusBadRequest)
			return
		}
		defer gzReader.Close()

		r.Body = io.NopCloser(gzReader)
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}

// GzipWriter compresses eligible responses when the client accepts
// gzip. The response is buffered so the Content-Type set by the
// handler decides whether compression applies.
func GzipWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferingWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(buf, r)

		if !isCompressible(buf.Header().Get("Content-Type")) {
			buf.flushPlain(w)
			return
		}

		gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			buf.flushPlain(w)
			return
		}
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(buf.statusCode)
		gz.Write(buf.body)
	})
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

// bufferingWriter captures status and body so the middleware can decide
// after the fact whether to compress.
type bufferingWriter struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

func (w *bufferingWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return len(b), nil
}

func (w *bufferingWriter) flushPlain(dst http.ResponseWriter) {
	dst.WriteHeader(w.statusCode)
	dst.Write(w.body)
}
