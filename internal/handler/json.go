package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akarpov/urlmap/internal/service"
)

// ShortenRequest is the POST /shorten payload.
type ShortenRequest struct {
	URL string `json:"url"`
}

// Reset prepares the request for reuse through the handler pool.
func (r *ShortenRequest) Reset() {
	r.URL = ""
}

// ShortenResponse carries the absolute short URL back to the caller.
type ShortenResponse struct {
	Result string `json:"result"`
}

// DeleteRequest is the DELETE /{code} payload.
type DeleteRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Reset prepares the request for reuse through the handler pool.
func (r *DeleteRequest) Reset() {
	r.Username = ""
	r.Password = ""
}

func isJSONRequest(r *http.Request) bool {
	if r.Header.Get("Content-Encoding") == "gzip" {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// HandleShorten accepts {"url": "..."} and responds with the short URL
// that resolves to it, minting a code only for URLs not seen before.
func (h *Handler) HandleShorten(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	request := h.shortenPool.Get()
	if request == nil {
		request = new(ShortenRequest)
	}
	defer h.shortenPool.Put(request)

	if err := json.Unmarshal(body, request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	code, err := h.urlService.Shorten(r.Context(), request.URL)
	if err != nil {
		if errors.Is(err, service.ErrEmptyURL) {
			http.Error(w, "Please provide a URL.", http.StatusBadRequest)
			return
		}
		http.Error(w, "Database error.", http.StatusInternalServerError)
		return
	}

	response, err := json.Marshal(ShortenResponse{Result: h.shortURL(code)})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(response)
}

// HandleDelete removes a mapping once the credentials in the request
// body match a record in the user store.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !isJSONRequest(r) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	request := h.deletePool.Get()
	if request == nil {
		request = new(DeleteRequest)
	}
	defer h.deletePool.Put(request)

	if err := json.Unmarshal(body, request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = h.urlService.Delete(r.Context(), code, request.Username, request.Password)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Short code deleted."))
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, "Wrong username and, or password.", http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Unable to find or delete the shortcode.", http.StatusNotFound)
	default:
		http.Error(w, "Database error.", http.StatusInternalServerError)
	}
}
