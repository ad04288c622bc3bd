package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/akarpov/urlmap/internal/logger"
	"github.com/akarpov/urlmap/internal/middleware"
	"github.com/akarpov/urlmap/internal/pool"
)

// URLService is the workflow boundary the HTTP and gRPC surfaces consume.
type URLService interface {
	Shorten(ctx context.Context, rawURL string) (string, error)
	Resolve(ctx context.Context, code string) (string, bool)
	Delete(ctx context.Context, code, username, password string) error
}

// Pinger reports persistence-layer reachability for the health route.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	urlService URLService
	pinger     Pinger
	baseURL    string

	shortenPool *pool.Pool[*ShortenRequest]
	deletePool  *pool.Pool[*DeleteRequest]
}

func NewHandler(urlService URLService, pinger Pinger, baseURL string) *Handler {
	return &Handler{
		urlService:  urlService,
		pinger:      pinger,
		baseURL:     baseURL,
		shortenPool: pool.New[*ShortenRequest](64),
		deletePool:  pool.New[*DeleteRequest](64),
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipWriter)

	r.Get("/", h.handleIndex)
	r.Post("/shorten", h.HandleShorten)
	r.Get("/{code}", h.handleRedirect)
	r.Delete("/{code}", h.HandleDelete)
	r.Get("/ping", h.handlePing)

	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Hello, world! :D"))
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	target, found := h.urlService.Resolve(r.Context(), code)
	if !found {
		http.Error(w, "No URL assigned to that shortcode.", http.StatusNotFound)
		return
	}

	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := h.pinger.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// shortURL joins the configured base URL with a short code.
func (h *Handler) shortURL(code string) string {
	joined, err := url.JoinPath(h.baseURL, code)
	if err != nil {
		return h.baseURL + "/" + code
	}
	return joined
}
